package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
)

func TestMovementSummary(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)
	clip := mustCreateItem(t, svcs, "回形针", 0)

	mustInbound(t, svcs, pen.ID, loc.ID, 100)
	mustOutbound(t, svcs, pen.ID, loc.ID, 30)
	mustInbound(t, svcs, clip.ID, loc.ID, 20)

	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()
	rows, err := svcs.Report.MovementSummary(from, to)
	if err != nil {
		t.Fatalf("movement summary: %v", err)
	}
	byID := make(map[string]MovementReportRow, len(rows))
	for _, row := range rows {
		byID[row.ItemID] = row
	}
	if row := byID[pen.ID]; row.InboundQty != 100 || row.OutboundQty != 30 {
		t.Fatalf("unexpected pen row: %+v", row)
	}
	if row := byID[clip.ID]; row.InboundQty != 20 || row.OutboundQty != 0 {
		t.Fatalf("unexpected clip row: %+v", row)
	}
	if byID[pen.ID].ItemName != "签字笔" {
		t.Fatal("expected item info joined onto report rows")
	}

	var validationErr *ValidationError
	if _, err := svcs.Report.MovementSummary(to, from); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for inverted range, got %v", err)
	}
}

func TestTopOutbound(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)
	clip := mustCreateItem(t, svcs, "回形针", 0)

	mustInbound(t, svcs, pen.ID, loc.ID, 100)
	mustInbound(t, svcs, clip.ID, loc.ID, 100)
	mustOutbound(t, svcs, pen.ID, loc.ID, 10)
	mustOutbound(t, svcs, clip.ID, loc.ID, 40)

	from := time.Now().Add(-24 * time.Hour)
	rows, err := svcs.Report.TopOutbound(from, time.Now(), 1)
	if err != nil {
		t.Fatalf("top outbound: %v", err)
	}
	if len(rows) != 1 || rows[0].ItemID != clip.ID || rows[0].OutboundQty != 40 {
		t.Fatalf("expected clip on top with 40, got %+v", rows)
	}
}

func TestStockReport(t *testing.T) {
	svcs, _ := newTestServices(t)
	locA := mustCreateLocation(t, svcs, "A-01", nil)
	locB := mustCreateLocation(t, svcs, "B-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)

	mustInbound(t, svcs, pen.ID, locA.ID, 10)
	mustInbound(t, svcs, pen.ID, locB.ID, 5)
	mustOutbound(t, svcs, pen.ID, locB.ID, 5) // 折算为零的行不出现在明细里

	rows, err := svcs.Report.StockReport()
	if err != nil {
		t.Fatalf("stock report: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %+v", rows)
	}
	row := rows[0]
	if row.LocationID != locA.ID || row.CurrentStock != 10 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.LocationCode != "A-01" || row.ItemName != "签字笔" {
		t.Fatal("expected location and item info joined onto the row")
	}
}

func TestExportTransactions(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)
	mustInbound(t, svcs, pen.ID, loc.ID, 100)
	mustOutbound(t, svcs, pen.ID, loc.ID, 30)

	f, filename, err := svcs.Report.ExportTransactions(repository.TxListParams{})
	if err != nil {
		t.Fatalf("export transactions: %v", err)
	}
	defer f.Close()
	if filename == "" {
		t.Fatal("expected generated filename")
	}

	sheet := "出入库流水"
	header, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if header != "日期" {
		t.Fatalf("unexpected header cell: %q", header)
	}
	name, _ := f.GetCellValue(sheet, "C2")
	if name != "签字笔" {
		t.Fatalf("expected item name in first data row, got %q", name)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(rows))
	}
}

func TestExportStock(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)
	mustInbound(t, svcs, pen.ID, loc.ID, 10)

	f, _, err := svcs.Report.ExportStock()
	if err != nil {
		t.Fatalf("export stock: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("库存明细")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 data row, got %d", len(rows))
	}
	if rows[1][0] != "签字笔" || rows[1][4] != "10" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
}
