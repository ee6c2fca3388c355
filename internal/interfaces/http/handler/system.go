package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/futurosresidentes/backoffice/internal/infrastructure/worldoffice"
	"github.com/futurosresidentes/backoffice/internal/interfaces/http/dto"
)

// Pinger reports whether the database connection is alive.
type Pinger interface {
	Ping() error
}

// CityCacheInfo reports city cache state.
type CityCacheInfo interface {
	Info() worldoffice.Info
}

// SystemHandler handles system and health endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	cities    CityCacheInfo
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db and cities may be nil;
// the health report marks absent components as skipped.
func NewSystemHandler(db Pinger, cities CityCacheInfo) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cities:    cities,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "Futuros Residentes Backoffice",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Database  string            `json:"database"`
	CityCache *worldoffice.Info `json:"city_cache,omitempty"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports database connectivity and city cache state
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "skipped"}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
		} else {
			resp.Database = "up"
		}
	}

	if h.cities != nil {
		info := h.cities.Info()
		resp.CityCache = &info
	}

	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
}
