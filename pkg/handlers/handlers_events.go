package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/database"
	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListEvents returns stored events ordered by start, optionally filtered by
// ?workflow=, ?from= and ?to= (RFC3339).
func (h *Handler) ListEvents(c *gin.Context) {
	q := h.DB.Order("start_time")
	if wf := c.Query("workflow"); wf != "" {
		q = q.Where("workflow_id = ?", wf)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		q = q.Where("end_time >= ?", t.UTC())
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		q = q.Where("start_time <= ?", t.UTC())
	}

	var records []database.EventRecord
	if err := q.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list events"})
		return
	}
	events := make([]models.Event, 0, len(records))
	for _, r := range records {
		events = append(events, r.Model())
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent stores a new event
func (h *Handler) CreateEvent(c *gin.Context) {
	event, ok := h.bindEvent(c)
	if !ok {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	rec := database.NewEventRecord(event)
	if err := h.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not create event"})
		return
	}
	c.JSON(http.StatusCreated, rec.Model())
}

// UpdateEvent replaces a stored event
func (h *Handler) UpdateEvent(c *gin.Context) {
	event, ok := h.bindEvent(c)
	if !ok {
		return
	}
	event.ID = c.Param("id")

	var existing database.EventRecord
	if err := h.DB.First(&existing, "id = ?", event.ID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load event"})
		return
	}

	rec := database.NewEventRecord(event)
	rec.CreatedAt = existing.CreatedAt
	if err := h.DB.Save(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update event"})
		return
	}
	c.JSON(http.StatusOK, rec.Model())
}

// DeleteEvent removes a stored event
func (h *Handler) DeleteEvent(c *gin.Context) {
	res := h.DB.Delete(&database.EventRecord{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete event"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// bindEvent decodes and validates an event body. The same-day check runs in
// ?timeZone= when given.
func (h *Handler) bindEvent(c *gin.Context) (models.Event, bool) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return event, false
	}
	if event.TransportationMode == "" {
		event.TransportationMode = models.ModeDriving
	}
	if !event.TransportationMode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transportation mode"})
		return event, false
	}

	if tz := c.Query("timeZone"); tz != "" {
		loc, err := loadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return event, false
		}
		if err := event.Validate(loc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return event, false
		}
	} else if !event.StartTime.Before(event.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event startTime must be before endTime"})
		return event, false
	}
	return event, true
}

// ListWorkflows returns every stored workflow
func (h *Handler) ListWorkflows(c *gin.Context) {
	var records []database.WorkflowRecord
	if err := h.DB.Order("name").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list workflows"})
		return
	}
	workflows := make([]models.Workflow, 0, len(records))
	for _, r := range records {
		workflows = append(workflows, r.Model())
	}
	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

// CreateWorkflow stores a new workflow
func (h *Handler) CreateWorkflow(c *gin.Context) {
	wf, ok := bindWorkflow(c)
	if !ok {
		return
	}
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}

	rec := database.NewWorkflowRecord(wf)
	if err := h.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not create workflow"})
		return
	}
	c.JSON(http.StatusCreated, rec.Model())
}

// UpdateWorkflow replaces a stored workflow
func (h *Handler) UpdateWorkflow(c *gin.Context) {
	wf, ok := bindWorkflow(c)
	if !ok {
		return
	}
	wf.ID = c.Param("id")

	var existing database.WorkflowRecord
	if err := h.DB.First(&existing, "id = ?", wf.ID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load workflow"})
		return
	}

	rec := database.NewWorkflowRecord(wf)
	rec.CreatedAt = existing.CreatedAt
	if err := h.DB.Save(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update workflow"})
		return
	}
	c.JSON(http.StatusOK, rec.Model())
}

// DeleteWorkflow removes a workflow and detaches its events
func (h *Handler) DeleteWorkflow(c *gin.Context) {
	id := c.Param("id")
	var deleted int64
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.EventRecord{}).Where("workflow_id = ?", id).Update("workflow_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&database.WorkflowRecord{}, "id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete workflow"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

func bindWorkflow(c *gin.Context) (models.Workflow, bool) {
	var wf models.Workflow
	if err := c.ShouldBindJSON(&wf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return wf, false
	}
	if wf.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return wf, false
	}
	if err := wf.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return wf, false
	}
	return wf, true
}
