package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/config"
	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, directionsURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:       "test",
		DataPath:          filepath.Join(t.TempDir(), "router.db"),
		APIKey:            "maps-key",
		AccessToken:       "shared-secret",
		JWTSecret:         "jwt-secret",
		AdminUsername:     "admin",
		AdminPassword:     "admin-pass",
		DirectionsBaseURL: directionsURL,
		OracleTimeout:     2 * time.Second,
		OracleRate:        100,
		OracleConcurrency: 2,
		HorizonDays:       14,
	}
}

func directionsStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"legs":[{"duration":{"value":600}}]}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSetup_ServesRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := directionsStub(t)

	r, cleanup, err := Setup(context.Background(), testConfig(t, stub.URL), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/poll", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	monday := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	body, err := json.Marshal(models.PollInput{
		Event: models.Event{
			ID:          "e1",
			StartTime:   monday,
			EndTime:     monday.Add(time.Hour),
			Coordinates: models.Coordinates{Latitude: 1, Longitude: 2},
		},
		Coordinates: models.Coordinates{Latitude: 3, Longitude: 4},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/poll", bytes.NewReader(body))
	req.Header.Set("x-access-token", "shared-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"travelTime":10}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/poll"`)
	assert.Contains(t, w.Body.String(), `outcome="ok"`)
}

func TestSetup_SeedsAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := directionsStub(t)

	r, cleanup, err := Setup(context.Background(), testConfig(t, stub.URL), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	body := bytes.NewBufferString(`{"username":"admin","password":"admin-pass"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestSetup_UnreachableRedisIsNotFatal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := directionsStub(t)

	cfg := testConfig(t, stub.URL)
	cfg.RedisAddr = "127.0.0.1:1"

	r, cleanup, err := Setup(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.NotNil(t, r)
}
