package handler

import (
	"net/http"

	"railtrace/internal/middleware"
	"railtrace/internal/model"
	"railtrace/internal/service"
	"railtrace/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InspectionHandler serves the field-inspection mobile client: component
// lookup after a QR scan, inspection reports, history and replacement
type InspectionHandler struct {
	db       *gorm.DB
	registry *service.Registry
	tracker  *service.Tracker
}

func NewInspectionHandler(db *gorm.DB, registry *service.Registry, tracker *service.Tracker) *InspectionHandler {
	return &InspectionHandler{db: db, registry: registry, tracker: tracker}
}

// GetComponent returns a component with its manufacturer's company name
// attached for the inspector's detail screen
func (h *InspectionHandler) GetComponent(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	component, err := h.registry.Get(c.Request().Context(), componentID)
	if err != nil {
		log.Warn("Component not found", zap.String("component_id", componentID), zap.Error(err))
		return serviceError(c, err)
	}

	manufacturerName := "Unknown"
	var manufacturer model.Manufacturer
	if err := h.db.First(&manufacturer, component.ManufacturerID).Error; err == nil {
		manufacturerName = manufacturer.CompanyName
	}

	return c.JSON(http.StatusOK, echo.Map{
		"component":    component,
		"manufacturer": manufacturerName,
	})
}

// ReportRequest defines the structure for field inspection submissions
type ReportRequest struct {
	ComponentID string  `json:"component_id"`
	Status      string  `json:"status"`
	DefectType  *string `json:"defect_type,omitempty"`
	Comments    string  `json:"comments,omitempty"`
}

// Report records a field inspection; a DEFECTED result flags the component
// for replacement
func (h *InspectionHandler) Report(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.ComponentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "component_id is required"})
	}

	record, err := h.tracker.Inspect(c.Request().Context(), req.ComponentID,
		middleware.UsernameFromContext(c), req.Status, req.DefectType, req.Comments)
	if err != nil {
		log.Error("Failed to record inspection",
			zap.String("component_id", req.ComponentID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Inspection submitted",
		zap.String("component_id", req.ComponentID),
		zap.String("result", record.Result))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "Inspection submitted",
		"inspection_id": record.InspectionID,
	})
}

// History returns all inspection records for a component, newest first
func (h *InspectionHandler) History(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	records, err := h.tracker.History(c.Request().Context(), componentID)
	if err != nil {
		log.Error("Failed to load inspection history",
			zap.String("component_id", componentID),
			zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, records)
}

// Replace records the physical swap of a defective component and restarts
// its inspection cycle
func (h *InspectionHandler) Replace(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	component, err := h.tracker.Replace(c.Request().Context(), componentID, middleware.UsernameFromContext(c))
	if err != nil {
		log.Error("Failed to replace component",
			zap.String("component_id", componentID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Component replaced", zap.String("component_id", componentID))
	return c.JSON(http.StatusOK, echo.Map{
		"component": component,
		"message":   "Component replaced successfully",
	})
}
