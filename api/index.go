package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/autoschedule-api/pkg/config"
	"github.com/arnavshah/autoschedule-api/pkg/logging"
	"github.com/arnavshah/autoschedule-api/pkg/router"
	"github.com/gin-gonic/gin"
)

var (
	r       http.Handler
	initErr error
)

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadEnvFiles(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logger := logging.Setup(cfg.Environment)

	gin.SetMode(gin.ReleaseMode)
	engine, _, err := router.Setup(context.Background(), cfg, logger)
	if err != nil {
		initErr = err
		return
	}
	r = engine
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, "service misconfigured: "+initErr.Error(), http.StatusInternalServerError)
		return
	}
	r.ServeHTTP(w, req)
}
