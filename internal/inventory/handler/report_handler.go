package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
	"github.com/xuri/excelize/v2"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// dateRange 解析统计区间，缺省为最近30天
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if t, err := parseDate("date_from", c.Query("date_from")); err != nil {
		return from, to, err
	} else if t != nil {
		from = *t
	}
	if t, err := parseDate("date_to", c.Query("date_to")); err != nil {
		return from, to, err
	} else if t != nil {
		// 含当天
		to = t.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

// MovementSummary 统计期内各物品出入库汇总
func (h *ReportHandler) MovementSummary(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.svc.MovementSummary(from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, rows)
}

// TopOutbound 出库排行
func (h *ReportHandler) TopOutbound(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.svc.TopOutbound(from, to, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, rows)
}

// StockReport 当前库存明细
func (h *ReportHandler) StockReport(c *gin.Context) {
	rows, err := h.svc.StockReport()
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, rows)
}

// ExportTransactions 导出流水 xlsx
func (h *ReportHandler) ExportTransactions(c *gin.Context) {
	params, err := txListParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	f, filename, err := h.svc.ExportTransactions(params)
	if err != nil {
		respondError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}

// ExportStock 导出库存明细 xlsx
func (h *ReportHandler) ExportStock(c *gin.Context) {
	f, filename, err := h.svc.ExportStock()
	if err != nil {
		respondError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}

func writeXLSX(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := f.WriteTo(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
