package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/service"
)

// @Summary      List system events
// @Description  Alerts, recoveries, feeds, actuator switches and errors; filter by time range and type
// @Tags         logs
// @Produce      json
// @Param        from  query  string  false  "RFC3339 start"
// @Param        to    query  string  false  "RFC3339 end"
// @Param        type  query  string  false  "ALERT | RECOVERY | FEED | ACTUATOR | ERROR"
// @Success      200  {array}   models.SystemEvent
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), service.LogFilter{
		From: from,
		To:   to,
		Type: c.Query("type"),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
