package handler

import (
	"net/http"
	"strconv"
	"time"

	"railtrace/internal/middleware"
	"railtrace/internal/model"
	"railtrace/internal/service"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ManufacturerHandler serves the manufacturer dashboard: batch generation,
// component listings, production analytics and replenishment fulfillment
type ManufacturerHandler struct {
	db               *gorm.DB
	registry         *service.Registry
	coordinator      *service.Coordinator
	defaultWarehouse string
}

func NewManufacturerHandler(db *gorm.DB, registry *service.Registry, coordinator *service.Coordinator, defaultWarehouse string) *ManufacturerHandler {
	return &ManufacturerHandler{
		db:               db,
		registry:         registry,
		coordinator:      coordinator,
		defaultWarehouse: defaultWarehouse,
	}
}

// manufacturerForRequest resolves the authenticated username to its profile
func (h *ManufacturerHandler) manufacturerForRequest(c echo.Context) (*model.Manufacturer, error) {
	username := middleware.UsernameFromContext(c)

	var manufacturer model.Manufacturer
	if err := h.db.Where("username = ?", username).First(&manufacturer).Error; err != nil {
		return nil, err
	}
	return &manufacturer, nil
}

// MyDetails returns the caller's company profile
func (h *ManufacturerHandler) MyDetails(c echo.Context) error {
	log := logger.FromEcho(c)

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		log.Warn("Manufacturer profile not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	return c.JSON(http.StatusOK, manufacturer)
}

// GenerateQRRequest defines the structure for batch generation requests
type GenerateQRRequest struct {
	ItemCode         string        `json:"item_code"`
	ComponentName    string        `json:"component_name"`
	Specifications   model.JSONMap `json:"specifications"`
	ProductionDate   string        `json:"production_date"`
	WarrantyPeriod   int           `json:"warranty_period"`
	UnitWeight       float64       `json:"unit_weight"`
	IRSSpecification string        `json:"irs_specification"`
	BatchSize        *int          `json:"batch_size"`
	WarehouseID      string        `json:"warehouse_id,omitempty"`
}

// GenerateQR manufactures a batch of components with server-issued
// identifiers and QR payloads
func (h *ManufacturerHandler) GenerateQR(c echo.Context) error {
	log := logger.FromEcho(c)

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		log.Warn("Manufacturer profile not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	var req GenerateQRRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	// Omitted batch_size means a single unit; an explicit non-positive value
	// is rejected downstream
	batchSize := 1
	if req.BatchSize != nil {
		batchSize = *req.BatchSize
	}

	var productionDate time.Time
	if req.ProductionDate != "" {
		productionDate, err = parseDate(req.ProductionDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "production_date must be YYYY-MM-DD or RFC3339"})
		}
	}

	warehouseID := req.WarehouseID
	if warehouseID == "" {
		warehouseID = h.defaultWarehouse
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	components, err := h.registry.Create(c.Request().Context(), service.CreateComponentParams{
		ManufacturerID:   manufacturer.ID,
		ItemCode:         req.ItemCode,
		ComponentName:    req.ComponentName,
		Specifications:   req.Specifications,
		BatchSize:        batchSize,
		ProductionDate:   productionDate,
		WarrantyPeriod:   req.WarrantyPeriod,
		UnitWeight:       decimal.NewFromFloat(req.UnitWeight),
		IRSSpecification: req.IRSSpecification,
		WarehouseID:      warehouseID,
	})
	if err != nil {
		log.Error("Failed to generate component batch",
			zap.String("item_code", req.ItemCode),
			zap.Int("batch_size", batchSize),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Component batch generated",
		zap.String("item_code", req.ItemCode),
		zap.String("batch_number", components[0].BatchNumber),
		zap.Int("count", len(components)))
	return c.JSON(http.StatusCreated, echo.Map{
		"components": components,
		"message":    "Component batch generated successfully",
	})
}

// ListComponents returns the caller's components with optional filters
func (h *ManufacturerHandler) ListComponents(c echo.Context) error {
	log := logger.FromEcho(c)

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	components, total, err := h.registry.List(c.Request().Context(), service.ComponentFilter{
		ManufacturerID: manufacturer.ID,
		QCStatus:       c.QueryParam("qc_status"),
		Status:         c.QueryParam("status"),
		Search:         c.QueryParam("search"),
		Page:           page,
		PerPage:        perPage,
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

// GetComponent returns one of the caller's components by id
func (h *ManufacturerHandler) GetComponent(c echo.Context) error {
	log := logger.FromEcho(c)
	componentID := c.Param("id")

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	component, err := h.registry.Get(c.Request().Context(), componentID)
	if err != nil {
		log.Warn("Component not found", zap.String("component_id", componentID), zap.Error(err))
		return serviceError(c, err)
	}

	if component.ManufacturerID != manufacturer.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Component not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"component": component})
}

// DailyCountsLocal returns per-day production counts for the caller
func (h *ManufacturerHandler) DailyCountsLocal(c echo.Context) error {
	return h.dailyCounts(c, "")
}

// DailyCountsByDate returns production counts for one day
func (h *ManufacturerHandler) DailyCountsByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required"})
	}
	return h.dailyCounts(c, date)
}

func (h *ManufacturerHandler) dailyCounts(c echo.Context, date string) error {
	log := logger.FromEcho(c)

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	counts, err := h.registry.DailyCounts(c.Request().Context(), manufacturer.ID, date)
	if err != nil {
		log.Error("Failed to aggregate daily counts", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"counts_by_date": counts})
}

// ListRequests returns replenishment requests awaiting this manufacturer
func (h *ManufacturerHandler) ListRequests(c echo.Context) error {
	log := logger.FromEcho(c)

	status := c.QueryParam("status")
	if status == "" {
		status = model.RequestOpen
	}

	requests, err := h.coordinator.ListRequests(c.Request().Context(), c.QueryParam("warehouse_id"), status)
	if err != nil {
		log.Error("Failed to list replenishment requests", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}

// AcceptRequest fulfills an open replenishment request: the requested
// quantity is manufactured and the warehouse ledger credited, atomically
func (h *ManufacturerHandler) AcceptRequest(c echo.Context) error {
	log := logger.FromEcho(c)
	requestID := c.Param("id")

	manufacturer, err := h.manufacturerForRequest(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Manufacturer not found"})
	}

	request, components, err := h.coordinator.Accept(c.Request().Context(), requestID, manufacturer.ID)
	if err != nil {
		log.Error("Failed to accept replenishment request",
			zap.String("request_id", requestID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Replenishment request accepted",
		zap.String("request_id", requestID),
		zap.String("item_code", request.ItemCode),
		zap.String("warehouse_id", request.WarehouseID),
		zap.Int("quantity", request.Quantity))
	return c.JSON(http.StatusOK, echo.Map{
		"request":    request,
		"components": components,
		"message":    "Request accepted and batch manufactured",
	})
}

// RejectRequest declines an open replenishment request
func (h *ManufacturerHandler) RejectRequest(c echo.Context) error {
	log := logger.FromEcho(c)
	requestID := c.Param("id")

	request, err := h.coordinator.Reject(c.Request().Context(), requestID)
	if err != nil {
		log.Error("Failed to reject replenishment request",
			zap.String("request_id", requestID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Replenishment request rejected", zap.String("request_id", requestID))
	return c.JSON(http.StatusOK, echo.Map{
		"request": request,
		"message": "Request rejected",
	})
}

// parseDate accepts YYYY-MM-DD or RFC3339
func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
