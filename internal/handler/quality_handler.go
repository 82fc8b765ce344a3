package handler

import (
	"net/http"

	"railtrace/internal/middleware"
	"railtrace/internal/service"
	"railtrace/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// QualityHandler serves the QC inspector dashboard
type QualityHandler struct {
	qc *service.QCEngine
}

func NewQualityHandler(qc *service.QCEngine) *QualityHandler {
	return &QualityHandler{qc: qc}
}

// Tests returns the configured QC test catalog
func (h *QualityHandler) Tests(c echo.Context) error {
	log := logger.FromEcho(c)

	tests, err := h.qc.Catalog(c.Request().Context())
	if err != nil {
		log.Error("Failed to load test catalog", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"tests": tests})
}

// Pending lists components awaiting quality control
func (h *QualityHandler) Pending(c echo.Context) error {
	log := logger.FromEcho(c)

	components, err := h.qc.Pending(c.Request().Context())
	if err != nil {
		log.Error("Failed to list pending components", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"components": components})
}

// InspectRequest defines the structure for QC submissions
type InspectRequest struct {
	ComponentID string            `json:"component_id"`
	TestResults map[string]string `json:"test_results"`
	Notes       string            `json:"notes,omitempty"`
}

// Inspect evaluates a QC submission against the test catalog and moves the
// component to Approved or Rejected
func (h *QualityHandler) Inspect(c echo.Context) error {
	log := logger.FromEcho(c)

	var req InspectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.ComponentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "component_id is required"})
	}

	component, record, err := h.qc.SubmitInspection(c.Request().Context(),
		req.ComponentID, middleware.UsernameFromContext(c), req.TestResults, req.Notes)
	if err != nil {
		log.Error("Failed to submit QC inspection",
			zap.String("component_id", req.ComponentID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("QC inspection submitted",
		zap.String("component_id", req.ComponentID),
		zap.String("qc_status", component.QCStatus))
	return c.JSON(http.StatusOK, echo.Map{
		"component":     component,
		"inspection_id": record.InspectionID,
		"qc_status":     component.QCStatus,
	})
}
