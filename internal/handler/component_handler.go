package handler

import (
	"net/http"
	"strconv"

	"railtrace/internal/middleware"
	"railtrace/internal/service"
	"railtrace/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ComponentHandler serves the installation-team view: component lookup by
// scanned QR payload and on-site installation
type ComponentHandler struct {
	registry *service.Registry
	tracker  *service.Tracker
}

func NewComponentHandler(registry *service.Registry, tracker *service.Tracker) *ComponentHandler {
	return &ComponentHandler{registry: registry, tracker: tracker}
}

// List returns components with optional filters
func (h *ComponentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	components, total, err := h.registry.List(c.Request().Context(), service.ComponentFilter{
		QCStatus: c.QueryParam("qc_status"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		log.Error("Failed to list components", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"components": components,
		"total":      total,
	})
}

// Get returns one component by the id carried in its QR payload
func (h *ComponentHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	component, err := h.registry.Get(c.Request().Context(), componentID)
	if err != nil {
		log.Warn("Component not found", zap.String("component_id", componentID), zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, component)
}

// InstallRequest defines the structure for installation submissions
type InstallRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Install marks a component as installed at the submitted coordinates
func (h *ComponentHandler) Install(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	var req InstallRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Latitude == nil || req.Longitude == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Location coordinates required"})
	}

	component, err := h.tracker.Install(c.Request().Context(), componentID,
		*req.Latitude, *req.Longitude, middleware.UsernameFromContext(c))
	if err != nil {
		log.Error("Failed to install component",
			zap.String("component_id", componentID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Component installed",
		zap.String("component_id", componentID),
		zap.Float64("latitude", *req.Latitude),
		zap.Float64("longitude", *req.Longitude))
	return c.JSON(http.StatusOK, component)
}
