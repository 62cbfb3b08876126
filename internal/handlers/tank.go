package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusSwitched = "switched"
	statusArmed    = "timer_armed"
	statusBeeped   = "beeped"

	errGetStatus       = "failed to load status"
	errGetHistory      = "failed to load sensor history"
	errSetActuator     = "failed to switch actuator"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current snapshot if available
// (best-effort).
func (h *Handler) respondWithStatus(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.Status(ctx); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// SetActuatorRequest is the payload for switching a relay channel.
type SetActuatorRequest struct {
	// Desired state of the channel
	On bool `json:"on" example:"true"`
}

// PumpTimerRequest is the payload for the water-pump auto-off timer.
type PumpTimerRequest struct {
	// Run duration in seconds (1-600)
	Seconds int `json:"seconds" binding:"required" example:"30"`
}

// BeepRequest is the payload for the buzzer endpoint.
type BeepRequest struct {
	// Number of beeps (default 1)
	Count int `json:"count" example:"2"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get tank status
// @Tags         monitoring
// @Produce      json
// @Success      200  {object}  models.TankStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.Status(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get sensor history
// @Description  Persisted environment readings; defaults to the last 24h
// @Tags         monitoring
// @Produce      json
// @Param        from  query  string  false  "RFC3339 start"
// @Param        to    query  string  false  "RFC3339 end"
// @Success      200  {array}   models.SensorReading
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensors/history [get]
func (h *Handler) getSensorHistory(c *gin.Context) {
	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	readings, err := h.services.Monitoring.SensorHistory(c.Request.Context(), from, to)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "sensor_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// @Summary      Switch actuator
// @Description  name is one of fan, air_pump, water_pump
// @Tags         actuators
// @Accept       json
// @Produce      json
// @Param        name  path  string              true  "Actuator name"
// @Param        body  body  SetActuatorRequest  true  "Desired state"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/actuators/{name} [put]
func (h *Handler) setActuator(c *gin.Context) {
	var req SetActuatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	name := c.Param("name")
	if err := h.services.Actuators.SetActuator(c.Request.Context(), name, req.On); err != nil {
		// Unknown names are caller mistakes; switch failures are ours.
		if h.log != nil {
			h.log.Errorw("actuator_set_failed", "err", err, "actuator", name)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatus(c, statusSwitched, gin.H{"actuator": name, "on": req.On})
}

// @Summary      Run water pump with auto-off
// @Description  Starts the pump and stops it after the given duration; a new call replaces the pending timer
// @Tags         actuators
// @Accept       json
// @Produce      json
// @Param        body  body  PumpTimerRequest  true  "Run duration"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/actuators/water-pump/timer [post]
func (h *Handler) runWaterPump(c *gin.Context) {
	var req PumpTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Actuators.RunWaterPumpFor(c.Request.Context(), req.Seconds); err != nil {
		if h.log != nil {
			h.log.Errorw("pump_timer_failed", "err", err, "seconds", req.Seconds)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatus(c, statusArmed, gin.H{"seconds": req.Seconds})
}

// @Summary      Beep the buzzer
// @Tags         actuators
// @Accept       json
// @Produce      json
// @Param        body  body  BeepRequest  false  "Beep count"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/actuators/buzzer/beep [post]
func (h *Handler) beep(c *gin.Context) {
	var req BeepRequest
	_ = c.ShouldBindJSON(&req)
	if req.Count < 1 {
		req.Count = 1
	}
	go h.services.Actuators.Beep(req.Count)
	c.JSON(http.StatusOK, gin.H{"status": statusBeeped})
}

// parseTimeRange reads optional RFC3339 from/to query params.
func parseTimeRange(c *gin.Context) (from, to time.Time, err error) {
	if s := c.Query("from"); s != "" {
		if from, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
