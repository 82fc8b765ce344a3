package handler

import (
	"net/http"

	"railtrace/internal/middleware"
	"railtrace/internal/service"
	"railtrace/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WarehouseHandler serves the warehouse manager dashboard: stock snapshots,
// manual restocks and replenishment requests
type WarehouseHandler struct {
	ledger      *service.Ledger
	coordinator *service.Coordinator
}

func NewWarehouseHandler(ledger *service.Ledger, coordinator *service.Coordinator) *WarehouseHandler {
	return &WarehouseHandler{ledger: ledger, coordinator: coordinator}
}

// Inventory returns the current stock snapshot with optional filters
func (h *WarehouseHandler) Inventory(c echo.Context) error {
	log := logger.FromEcho(c)

	items, err := h.ledger.Query(c.Request().Context(), c.QueryParam("warehouse_id"), c.QueryParam("item_code"))
	if err != nil {
		log.Error("Failed to query inventory", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"inventory": items})
}

// RestockRequest defines the structure for manual stock adjustments
type RestockRequest struct {
	ItemCode    string `json:"item_code"`
	WarehouseID string `json:"warehouse_id"`
	Delta       int    `json:"delta"`
}

// Restock applies a manual stock adjustment
func (h *WarehouseHandler) Restock(c echo.Context) error {
	log := logger.FromEcho(c)

	var req RestockRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	item, err := h.ledger.Restock(c.Request().Context(), req.ItemCode, req.WarehouseID, req.Delta)
	if err != nil {
		log.Error("Failed to restock",
			zap.String("item_code", req.ItemCode),
			zap.String("warehouse_id", req.WarehouseID),
			zap.Int("delta", req.Delta),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Stock adjusted",
		zap.String("item_code", req.ItemCode),
		zap.String("warehouse_id", req.WarehouseID),
		zap.Int("delta", req.Delta),
		zap.Int("stock_count", item.StockCount),
		zap.String("status", item.Status))
	return c.JSON(http.StatusOK, item)
}

// CreateRequestRequest defines the structure for replenishment requests
type CreateRequestRequest struct {
	WarehouseID string `json:"warehouse_id"`
	ItemCode    string `json:"item_code"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note,omitempty"`
}

// CreateRequest opens a replenishment request for a component type
func (h *WarehouseHandler) CreateRequest(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	request, err := h.coordinator.CreateRequest(c.Request().Context(),
		req.WarehouseID, req.ItemCode, req.Quantity, req.Note, middleware.UsernameFromContext(c))
	if err != nil {
		log.Error("Failed to create replenishment request",
			zap.String("item_code", req.ItemCode),
			zap.String("warehouse_id", req.WarehouseID),
			zap.Error(err))
		return serviceError(c, err)
	}

	log.Info("Replenishment request created",
		zap.String("request_id", request.RequestID),
		zap.String("item_code", request.ItemCode),
		zap.Int("quantity", request.Quantity))
	return c.JSON(http.StatusCreated, echo.Map{
		"request": request,
		"message": "Replenishment request created",
	})
}

// ListRequests returns the warehouse's replenishment requests
func (h *WarehouseHandler) ListRequests(c echo.Context) error {
	log := logger.FromEcho(c)

	requests, err := h.coordinator.ListRequests(c.Request().Context(),
		c.QueryParam("warehouse_id"), c.QueryParam("status"))
	if err != nil {
		log.Error("Failed to list replenishment requests", zap.Error(err))
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}
