package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
)

type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// StockAt 物品在指定库位的当前库存，as_of 可选
func (h *StockHandler) StockAt(c *gin.Context) {
	itemID := c.Query("item_id")
	locationID := c.Query("location_id")
	if itemID == "" || locationID == "" {
		c.JSON(400, gin.H{"code": 10001, "message": "item_id 和 location_id 不能为空"})
		return
	}
	asOf, err := parseDate("as_of", c.Query("as_of"))
	if err != nil {
		respondError(c, err)
		return
	}
	stock, err := h.svc.StockAt(itemID, locationID, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"item_id": itemID, "location_id": locationID, "current_stock": stock})
}

// Total 物品全库位总库存
func (h *StockHandler) Total(c *gin.Context) {
	itemID := c.Param("id")
	total, err := h.svc.TotalStock(itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"item_id": itemID, "total_stock": total})
}

// LocationSummary 库位下各物品的当前库存
func (h *StockHandler) LocationSummary(c *gin.Context) {
	rows, err := h.svc.LocationSummary(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, rows)
}

// Alerts 低库存告警
func (h *StockHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.LowStockItems()
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, alerts)
}
