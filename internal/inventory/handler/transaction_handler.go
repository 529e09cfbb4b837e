package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
)

type TransactionHandler struct {
	svc *service.LedgerService
}

func NewTransactionHandler(svc *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// parseDate 接受 2006-01-02 或 RFC3339。空串表示未提供，
// 解析不了的值按参数错误拒绝，不能当成未提供悄悄放宽查询。
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, &service.ValidationError{Field: field, Reason: "日期格式须为 2006-01-02 或 RFC3339"}
}

func txListParams(c *gin.Context) (repository.TxListParams, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	dateFrom, err := parseDate("date_from", c.Query("date_from"))
	if err != nil {
		return repository.TxListParams{}, err
	}
	dateTo, err := parseDate("date_to", c.Query("date_to"))
	if err != nil {
		return repository.TxListParams{}, err
	}
	return repository.TxListParams{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Type:       c.Query("type"),
		BatchID:    c.Query("batch_id"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Page:       page,
		Size:       size,
	}, nil
}

func (h *TransactionHandler) List(c *gin.Context) {
	params, err := txListParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	txs, total, err := h.svc.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	okPage(c, txs, total, params.Page, params.Size)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, record)
}

// Create 单笔入账
func (h *TransactionHandler) Create(c *gin.Context) {
	var draft service.TransactionDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	record, err := h.svc.Record(draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": record})
}

type batchRequest struct {
	BatchID      string                     `json:"batch_id"`
	Transactions []service.TransactionDraft `json:"transactions" binding:"required"`
}

// CreateBatch 批量入账，部分成功时逐条返回拒绝原因
func (h *TransactionHandler) CreateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	result, err := h.svc.RecordBatch(req.Transactions, req.BatchID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, result)
}

// Reverse 冲销
func (h *TransactionHandler) Reverse(c *gin.Context) {
	operator := c.GetString("user_name")
	if operator == "" {
		operator = c.GetString("user_id")
	}
	record, err := h.svc.Reverse(c.Param("id"), operator)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": record})
}

// Update 仅允许修正备注类字段
func (h *TransactionHandler) Update(c *gin.Context) {
	var input service.AnnotationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	record, err := h.svc.UpdateAnnotations(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, record)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}
