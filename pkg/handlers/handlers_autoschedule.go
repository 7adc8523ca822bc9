package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/database"
	"github.com/arnavshah/autoschedule-api/pkg/metrics"
	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/scheduler"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/gin-gonic/gin"
)

const noSlotMessage = "unable to autoschedule: no free time in the search window"

// Autoschedule handles POST /api/autoschedule. On success the body is the
// event JSON encoded once more as a JSON string, which is what the mobile
// client parses.
func (h *Handler) Autoschedule(c *gin.Context) {
	var input models.AutoscheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	req, err := h.scheduleRequest(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	event, err := h.runAutoschedule(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if event == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": noSlotMessage})
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode event"})
		return
	}
	c.JSON(http.StatusOK, string(data))
}

// AutoscheduleStored schedules against the stored workflow and events and
// saves the new event.
func (h *Handler) AutoscheduleStored(c *gin.Context) {
	var input models.StoredAutoscheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var wfRec database.WorkflowRecord
	if err := h.DB.First(&wfRec, "id = ?", input.WorkflowID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no workflow selected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load workflow"})
		return
	}

	req, err := h.scheduleRequest(models.AutoscheduleInput{
		Workflow:       wfRec.Model(),
		Coordinates:    input.Coordinates,
		Duration:       input.Duration,
		TimeZone:       input.TimeZone,
		Name:           input.Name,
		Description:    input.Description,
		Transportation: input.Transportation,
		StartSearch:    input.StartSearch,
		DaysAhead:      input.DaysAhead,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records []database.EventRecord
	if err := h.DB.Where("end_time >= ?", req.HorizonStart.Add(-scheduler.DefaultLookaround).UTC()).
		Order("start_time").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load events"})
		return
	}
	req.Events = make([]models.Event, 0, len(records))
	for _, r := range records {
		req.Events = append(req.Events, r.Model())
	}

	event, err := h.runAutoschedule(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if event == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": noSlotMessage})
		return
	}

	rec := database.NewEventRecord(*event)
	if err := h.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save event"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// scheduleRequest turns the wire input into a scheduler request
func (h *Handler) scheduleRequest(input models.AutoscheduleInput) (scheduler.Request, error) {
	loc, err := loadLocation(input.TimeZone)
	if err != nil {
		return scheduler.Request{}, err
	}

	horizonStart := input.StartSearch
	if horizonStart.IsZero() {
		horizonStart = time.Now()
	}
	days := input.DaysAhead
	if days <= 0 {
		days = h.HorizonDays
	}

	return scheduler.Request{
		Workflow:     input.Workflow,
		Events:       input.Events,
		Target:       input.Coordinates,
		Duration:     time.Duration(input.Duration) * time.Minute,
		Location:     loc,
		Name:         input.Name,
		Description:  input.Description,
		OnePerDay:    input.Workflow.SchedulingStyle.OnePerDay(),
		Mode:         input.Transportation,
		HorizonStart: horizonStart.In(loc),
		HorizonDays:  days,
	}, nil
}

func (h *Handler) runAutoschedule(c *gin.Context, req scheduler.Request) (*models.Event, error) {
	counter := travel.NewCounter(h.Oracle)
	s := scheduler.NewScheduler(counter, h.Logger, scheduler.WithConcurrency(h.OracleConcurrency))

	event, err := s.Autoschedule(c.Request.Context(), req)
	c.Set(ctxOracleCalls, counter.Calls())

	switch {
	case err != nil:
		h.sink().ObserveAutoschedule(metrics.OutcomeError)
		h.Logger.Warn().Err(err).Str("workflow_id", req.Workflow.ID).Msg("autoschedule failed")
	case event == nil:
		h.sink().ObserveAutoschedule(metrics.OutcomeNoSlot)
	default:
		h.sink().ObserveAutoschedule(metrics.OutcomeScheduled)
		c.Set(ctxEventsScheduled, 1)
	}
	return event, err
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}
