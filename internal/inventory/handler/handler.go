package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
)

// Handlers HTTP处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Location    *LocationHandler
	Item        *ItemHandler
	Transaction *TransactionHandler
	Stock       *StockHandler
	Report      *ReportHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(services.Auth),
		Location:    NewLocationHandler(services.Location),
		Item:        NewItemHandler(services.Item),
		Transaction: NewTransactionHandler(services.Ledger),
		Stock:       NewStockHandler(services.Stock),
		Report:      NewReportHandler(services.Report),
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func okPage(c *gin.Context, items interface{}, total int64, page, size int) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{
		"items": items, "total": total, "page": page, "size": size,
	}})
}

// respondError 把领域错误映射到响应码。预期内的业务错误
// 原样透出给调用方，只有基础设施错误才归为 50001。
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *service.ValidationError
		hierarchyErr   *service.HierarchyViolationError
		stockErr       *service.InsufficientStockError
		referentialErr *service.ReferentialIntegrityError
		notFoundErr    *service.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": validationErr.Error()})
	case errors.As(err, &hierarchyErr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10003, "message": hierarchyErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": notFoundErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"code": 10005, "message": stockErr.Error(), "data": gin.H{
			"available": stockErr.Available, "requested": stockErr.Requested,
		}})
	case errors.As(err, &referentialErr):
		c.JSON(http.StatusConflict, gin.H{"code": 10004, "message": referentialErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
