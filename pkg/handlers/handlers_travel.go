package handlers

import (
	"net/http"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/gin-gonic/gin"
)

// Poll returns how long it takes to reach the next event from where the user is now
func (h *Handler) Poll(c *gin.Context) {
	var input models.PollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := input.Event.TransportationMode
	if mode == "" {
		mode = models.ModeDriving
	}
	arrival := input.Event.StartTime

	counter := travel.NewCounter(h.Oracle)
	minutes, err := counter.TravelTime(c.Request.Context(), travel.Query{
		Origin:      input.Coordinates,
		Destination: input.Event.Coordinates,
		Mode:        mode,
		ArrivalTime: &arrival,
	})
	c.Set(ctxOracleCalls, counter.Calls())
	if err != nil {
		h.Logger.Warn().Err(err).Str("event_id", input.Event.ID).Msg("poll travel time failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PollResponse{TravelTime: minutes})
}

// Route passes the provider's directions JSON through for map polylines
func (h *Handler) Route(c *gin.Context) {
	var input models.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Transportation != "" && !input.Transportation.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transportation mode"})
		return
	}

	raw, err := h.Routes.Route(c.Request.Context(), input.Origin, input.Destination, input.Transportation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
