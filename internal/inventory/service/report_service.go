package service

import (
	"fmt"
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService 报表与导出。全部基于流水表的只读查询，
// 不持有任何聚合状态。
type ReportService struct {
	txRepo   *repository.TransactionRepository
	itemRepo *repository.ItemRepository
	locRepo  *repository.LocationRepository
}

func NewReportService(txRepo *repository.TransactionRepository, itemRepo *repository.ItemRepository, locRepo *repository.LocationRepository) *ReportService {
	return &ReportService{txRepo: txRepo, itemRepo: itemRepo, locRepo: locRepo}
}

// MovementReportRow 统计期内物品出入库汇总
type MovementReportRow struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	InboundQty  int64  `json:"inbound_qty"`
	OutboundQty int64  `json:"outbound_qty"`
}

// MovementSummary 统计期内各物品的出入库总量
func (s *ReportService) MovementSummary(from, to time.Time) ([]MovementReportRow, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date_range", Reason: "结束日期不能早于开始日期"}
	}
	rows, err := s.txRepo.MovementSummary(from, to)
	if err != nil {
		return nil, err
	}
	items, err := s.itemIndex()
	if err != nil {
		return nil, err
	}
	result := make([]MovementReportRow, 0, len(rows))
	for _, row := range rows {
		report := MovementReportRow{
			ItemID:      row.ItemID,
			InboundQty:  row.InboundQty,
			OutboundQty: row.OutboundQty,
		}
		if item, ok := items[row.ItemID]; ok {
			report.ItemName = item.Name
			report.Category = item.Category
			report.Unit = item.Unit
		}
		result = append(result, report)
	}
	return result, nil
}

// TopOutboundRow 出库排行条目
type TopOutboundRow struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
	Unit        string `json:"unit"`
	OutboundQty int64  `json:"outbound_qty"`
}

// TopOutbound 统计期内出库量前 N 的物品
func (s *ReportService) TopOutbound(from, to time.Time, limit int) ([]TopOutboundRow, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date_range", Reason: "结束日期不能早于开始日期"}
	}
	rows, err := s.txRepo.TopOutbound(from, to, limit)
	if err != nil {
		return nil, err
	}
	items, err := s.itemIndex()
	if err != nil {
		return nil, err
	}
	result := make([]TopOutboundRow, 0, len(rows))
	for _, row := range rows {
		report := TopOutboundRow{ItemID: row.ItemID, OutboundQty: row.CurrentStock}
		if item, ok := items[row.ItemID]; ok {
			report.ItemName = item.Name
			report.Unit = item.Unit
		}
		result = append(result, report)
	}
	return result, nil
}

// StockReportRow 库存明细行
type StockReportRow struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Unit         string `json:"unit"`
	LocationID   string `json:"location_id"`
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	CurrentStock int64  `json:"current_stock"`
}

// StockReport 全部物品+库位的当前库存明细，只含库存大于零的行
func (s *ReportService) StockReport() ([]StockReportRow, error) {
	rows, err := s.txRepo.StockByItemAndLocation()
	if err != nil {
		return nil, err
	}
	items, err := s.itemIndex()
	if err != nil {
		return nil, err
	}
	locs, err := s.locRepo.ListAll()
	if err != nil {
		return nil, err
	}
	locByID := make(map[string]*entity.Location, len(locs))
	for i := range locs {
		locByID[locs[i].ID] = &locs[i]
	}

	result := make([]StockReportRow, 0, len(rows))
	for _, row := range rows {
		report := StockReportRow{
			ItemID:       row.ItemID,
			LocationID:   row.LocationID,
			CurrentStock: row.CurrentStock,
		}
		if item, ok := items[row.ItemID]; ok {
			report.ItemName = item.Name
			report.Unit = item.Unit
		}
		if loc, ok := locByID[row.LocationID]; ok {
			report.LocationCode = loc.Code
			report.LocationName = loc.Name
		}
		result = append(result, report)
	}
	return result, nil
}

var txExportHeaders = []string{
	"日期", "类型", "物品", "库位", "数量", "单位",
	"经办人", "供应商", "领用人", "用途", "批次号", "备注",
}

// ExportTransactions 导出流水为 xlsx
func (s *ReportService) ExportTransactions(params repository.TxListParams) (*excelize.File, string, error) {
	// 导出不分页
	params.Page = 1
	params.Size = 100000
	txs, _, err := s.txRepo.List(params)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	items, err := s.itemIndex()
	if err != nil {
		return nil, "", err
	}
	locs, err := s.locRepo.ListAll()
	if err != nil {
		return nil, "", err
	}
	locByID := make(map[string]*entity.Location, len(locs))
	for i := range locs {
		locByID[locs[i].ID] = &locs[i]
	}

	f := excelize.NewFile()
	sheet := "出入库流水"
	f.SetSheetName("Sheet1", sheet)
	writeHeaderRow(f, sheet, txExportHeaders)

	for i, tx := range txs {
		row := i + 2
		typeName := "入库"
		if tx.Type == entity.TxTypeOutbound {
			typeName = "出库"
		}
		itemName, unit := tx.ItemID, ""
		if item, ok := items[tx.ItemID]; ok {
			itemName, unit = item.Name, item.Unit
		}
		locName := tx.LocationID
		if loc, ok := locByID[tx.LocationID]; ok {
			locName = loc.Code + " " + loc.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), tx.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), typeName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), itemName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), locName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), tx.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), unit)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), tx.Operator)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), tx.Supplier)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), tx.Recipient)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), tx.Purpose)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), tx.BatchID)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), tx.Notes)
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102150405"))
	return f, filename, nil
}

var stockExportHeaders = []string{
	"物品", "单位", "库位编码", "库位名称", "当前库存",
}

// ExportStock 导出库存明细为 xlsx
func (s *ReportService) ExportStock() (*excelize.File, string, error) {
	rows, err := s.StockReport()
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "库存明细"
	f.SetSheetName("Sheet1", sheet)
	writeHeaderRow(f, sheet, stockExportHeaders)

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Unit)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.LocationCode)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.LocationName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.CurrentStock)
	}

	filename := fmt.Sprintf("stock_%s.xlsx", time.Now().Format("20060102150405"))
	return f, filename, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}
}

func (s *ReportService) itemIndex() (map[string]*entity.Item, error) {
	items, err := s.itemRepo.ListAll()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID, nil
}
