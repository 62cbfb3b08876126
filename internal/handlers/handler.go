package handlers

import (
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		api.GET("/sensors/history", h.getSensorHistory)

		h.registerActuatorRoutes(api)
		h.registerFeedingRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerActuatorRoutes(api *gin.RouterGroup) {
	actuators := api.Group("/actuators")
	{
		// Body example: {"on":true}
		actuators.PUT("/:name", h.setActuator)
		actuators.POST("/water-pump/timer", h.runWaterPump)
		actuators.POST("/buzzer/beep", h.beep)
	}
}

func (h *Handler) registerFeedingRoutes(api *gin.RouterGroup) {
	feeding := api.Group("/feeding")
	{
		feeding.POST("/feed", h.feedNow)
		feeding.GET("/logs", h.getFeedingLogs)
		feeding.DELETE("/logs/:id", h.deleteFeedingLog)

		schedules := feeding.Group("/schedules")
		{
			schedules.GET("/", h.listSchedules)
			schedules.POST("/", h.createSchedule)
			schedules.PUT("/:id", h.updateSchedule)
			schedules.PATCH("/:id/enabled", h.toggleSchedule)
			schedules.DELETE("/:id", h.deleteSchedule)
		}
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
