package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/service"
)

const (
	statusFed     = "fed"
	statusCreated = "created"
	statusUpdated = "updated"
	statusDeleted = "deleted"

	errFeed        = "failed to dispense"
	errListLogs    = "failed to load feeding logs"
	errListScheds  = "failed to load schedules"
	errSaveSched   = "failed to save schedule"
	errDeleteSched = "failed to delete schedule"
)

// FeedRequest is the manual feed payload.
type FeedRequest struct {
	// Portions to dispense (1-3, default 1)
	PortionSize int `json:"portion_size" example:"1"`
}

// ScheduleRequest is the create/update payload for a feeding schedule.
type ScheduleRequest struct {
	Enabled bool   `json:"enabled" example:"true"`
	Name    string `json:"schedule_name" binding:"required" example:"morning"`
	// Local time of day, HH:MM
	FeedTime string `json:"feed_time" binding:"required" example:"08:00"`
	// Weekday codes 0-6, 0=Sunday
	FeedDays    []int `json:"feed_days" binding:"required" example:"1,3,5"`
	PortionSize int   `json:"portion_size" binding:"required" example:"2"`
}

// ToggleRequest flips a schedule's enabled flag.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// @Summary      Feed now
// @Description  Dispenses immediately unless the cooldown since the last feed has not elapsed
// @Tags         feeding
// @Accept       json
// @Produce      json
// @Param        body  body  FeedRequest  false  "Portion size"
// @Success      200  {object}  models.FeedResult
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string  "cooldown active"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/feeding/feed [post]
func (h *Handler) feedNow(c *gin.Context) {
	var req FeedRequest
	_ = c.ShouldBindJSON(&req)
	if req.PortionSize == 0 {
		req.PortionSize = 1
	}

	result, err := h.services.Feeding.FeedNow(c.Request.Context(), req.PortionSize)
	if err != nil {
		var cooldown *service.CooldownError
		if errors.As(err, &cooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":             cooldown.Error(),
				"remaining_minutes": cooldown.Remaining.Minutes(),
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errFeed, "feed_now_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      List feeding logs
// @Tags         feeding
// @Produce      json
// @Param        limit  query  int  false  "Max entries (default 10)"
// @Success      200  {array}   models.FeedingLogEntry
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/feeding/logs [get]
func (h *Handler) getFeedingLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.services.Feeding.Logs(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListLogs, "feeding_logs_failed", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Delete a feeding log entry
// @Tags         feeding
// @Produce      json
// @Param        id  path  int  true  "Log entry ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/feeding/logs/{id} [delete]
func (h *Handler) deleteFeedingLog(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.services.Feeding.DeleteLog(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

// @Summary      List feeding schedules
// @Tags         schedules
// @Produce      json
// @Success      200  {array}   models.FeedingSchedule
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/feeding/schedules [get]
func (h *Handler) listSchedules(c *gin.Context) {
	schedules, err := h.services.Schedules.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListScheds, "schedules_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// @Summary      Create feeding schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        body  body  ScheduleRequest  true  "Schedule"
// @Success      200  {object}  map[string]interface{}  "status, id"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/feeding/schedules [post]
func (h *Handler) createSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id, err := h.services.Schedules.Create(c.Request.Context(), scheduleFromRequest(req, 0))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCreated, "id": id})
}

// @Summary      Update feeding schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "Schedule ID"
// @Param        body  body  ScheduleRequest  true  "Schedule"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/feeding/schedules/{id} [put]
func (h *Handler) updateSchedule(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Schedules.Update(c.Request.Context(), scheduleFromRequest(req, id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusUpdated})
}

// @Summary      Enable or disable a schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        id    path  int            true  "Schedule ID"
// @Param        body  body  ToggleRequest  true  "Enabled flag"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/feeding/schedules/{id}/enabled [patch]
func (h *Handler) toggleSchedule(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Schedules.SetEnabled(c.Request.Context(), id, req.Enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusUpdated})
}

// @Summary      Delete feeding schedule
// @Tags         schedules
// @Produce      json
// @Param        id  path  int  true  "Schedule ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/feeding/schedules/{id} [delete]
func (h *Handler) deleteSchedule(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.services.Schedules.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

func scheduleFromRequest(req ScheduleRequest, id int64) models.FeedingSchedule {
	return models.FeedingSchedule{
		ID:          id,
		Enabled:     req.Enabled,
		Name:        req.Name,
		FeedTime:    req.FeedTime,
		FeedDays:    req.FeedDays,
		PortionSize: req.PortionSize,
	}
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
