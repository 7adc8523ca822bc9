package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/auth"
	"github.com/arnavshah/autoschedule-api/pkg/database"
	"github.com/arnavshah/autoschedule-api/pkg/metrics"
	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Context keys shared between middleware and handlers
const (
	ctxAPIKey          = "apiKey"
	ctxClientID        = "clientID"
	ctxUsername        = "username"
	ctxEventsScheduled = "eventsScheduled"
	ctxOracleCalls     = "oracleCalls"
)

const defaultClientName = "default"

// RouteProvider returns raw directions JSON for drawing a route
type RouteProvider interface {
	Route(ctx context.Context, origin, destination models.Coordinates, mode models.TransportationMode) (json.RawMessage, error)
}

// Handler contains dependencies for the route handlers
type Handler struct {
	DB                *gorm.DB
	Oracle            travel.Oracle
	Routes            RouteProvider
	Metrics           metrics.Sink
	Logger            zerolog.Logger
	AccessToken       string
	JWTSecret         string
	HorizonDays       int
	OracleConcurrency int
}

func (h *Handler) sink() metrics.Sink {
	if h.Metrics == nil {
		return metrics.Nop{}
	}
	return h.Metrics
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := auth.VerifyToken(h.JWTSecret, auth.BearerToken(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// AccessMiddleware accepts the shared access token or a client key derived
// from it, enforces the key's daily request limit and records usage once the
// handler has run.
func (h *Handler) AccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("x-access-token")
		if key == "" {
			key = auth.BearerToken(c.GetHeader("Authorization"))
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		clientID := defaultClientName
		if !auth.VerifyAccessToken(h.AccessToken, key) {
			id, err := auth.VerifyHMACKey(h.AccessToken, key)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
				return
			}
			clientID = id
		}

		var apiKey database.APIKey
		if err := h.DB.Where(database.APIKey{Key: fingerprint(key)}).FirstOrCreate(&apiKey, database.APIKey{
			Key:        fingerprint(key),
			KeyPreview: preview(key),
			Name:       clientID,
			RateLimit:  10000,
		}).Error; err != nil {
			h.Logger.Error().Err(err).Str("client_id", clientID).Msg("could not load api key record")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not verify access token"})
			return
		}

		// client keys verify on their own, so revocation has to live on the record
		if apiKey.Revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access key revoked"})
			return
		}

		if apiKey.RateLimit > 0 {
			var usage database.APIUsage
			err := h.DB.Where("key_id = ? AND date = ?", apiKey.ID, today()).First(&usage).Error
			if err == nil && usage.RequestCount >= apiKey.RateLimit {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
				return
			}
		}

		now := time.Now()
		h.DB.Model(&apiKey).Update("last_used", &now)

		c.Set(ctxAPIKey, &apiKey)
		c.Set(ctxClientID, clientID)
		c.Next()

		h.RecordUsage(c, c.GetInt(ctxEventsScheduled), c.GetInt(ctxOracleCalls))
	}
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, eventsScheduled, oracleCalls int) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":    gorm.Expr("request_count + ?", 1),
			"events_scheduled": gorm.Expr("events_scheduled + ?", eventsScheduled),
			"oracle_calls":     gorm.Expr("oracle_calls + ?", oracleCalls),
		}),
	}).Create(&database.APIUsage{
		KeyID:           apiKey.ID,
		Date:            today(),
		RequestCount:    1,
		EventsScheduled: eventsScheduled,
		OracleCalls:     oracleCalls,
	}).Error
	if err != nil {
		h.Logger.Warn().Err(err).Uint("key_id", apiKey.ID).Msg("could not record usage")
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(h.JWTSecret, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey issues a client key derived from the shared access token
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	key := auth.GenerateHMACKey(h.AccessToken, req.Name)
	apiKey := database.APIKey{
		Key:        fingerprint(key),
		Name:       req.Name,
		KeyPreview: preview(key),
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id").Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey marks an API key as revoked. The record is kept so the key cannot
// re-register itself on its next request.
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	res := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke key"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the daily request limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	res := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func preview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
