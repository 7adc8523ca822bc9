package handlers

import (
	"net/http"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks an autoschedule body without querying travel times
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.AutoscheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	req, err := h.scheduleRequest(input)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	if err := scheduler.Validate(req); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	eventIDs := make(map[string]bool)
	for _, e := range input.Events {
		if e.ID != "" && eventIDs[e.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate event ID: " + e.ID})
			return
		}
		eventIDs[e.ID] = true
		if !e.StartTime.Before(e.EndTime) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Event " + e.ID + " ends before it starts"})
			return
		}
	}

	days := scheduler.CandidateDays(req.HorizonStart, req.HorizonDays, req.Workflow, req.OnePerDay, req.Events, req.Location)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"event_count":    len(input.Events),
			"candidate_days": len(days),
			"one_per_day":    req.OnePerDay,
		},
	})
}
