package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
)

func TestStockFold(t *testing.T) {
	svcs, _ := newTestServices(t)
	locA := mustCreateLocation(t, svcs, "A-01", nil)
	locB := mustCreateLocation(t, svcs, "B-01", nil)
	item := mustCreateItem(t, svcs, "签字笔", 0)

	mustInbound(t, svcs, item.ID, locA.ID, 100)
	mustOutbound(t, svcs, item.ID, locA.ID, 30)
	mustInbound(t, svcs, item.ID, locB.ID, 20)

	stockA, err := svcs.Stock.StockAt(item.ID, locA.ID, nil)
	if err != nil {
		t.Fatalf("stock at A: %v", err)
	}
	if stockA != 70 {
		t.Fatalf("expected 70 at A, got %d", stockA)
	}

	total, err := svcs.Stock.TotalStock(item.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if total != 90 {
		t.Fatalf("expected total 90, got %d", total)
	}

	// 无流水即零库存
	other := mustCreateItem(t, svcs, "回形针", 0)
	stock, err := svcs.Stock.StockAt(other.ID, locA.ID, nil)
	if err != nil {
		t.Fatalf("stock for empty ledger: %v", err)
	}
	if stock != 0 {
		t.Fatalf("expected 0 without transactions, got %d", stock)
	}
}

func TestTotalStockUnknownItem(t *testing.T) {
	svcs, _ := newTestServices(t)
	var notFoundErr *NotFoundError
	if _, err := svcs.Stock.TotalStock("no-such-item"); !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStockAsOf(t *testing.T) {
	svcs, db := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	item := mustCreateItem(t, svcs, "签字笔", 0)

	in := mustInbound(t, svcs, item.ID, loc.ID, 100)
	out := mustOutbound(t, svcs, item.ID, loc.ID, 40)

	// 把两笔流水的业务日期拉开到不同的天
	dayOne := time.Now().Add(-48 * time.Hour)
	dayTwo := time.Now().Add(-24 * time.Hour)
	if err := db.Model(&entity.Transaction{}).Where("id = ?", in.ID).Update("date", dayOne).Error; err != nil {
		t.Fatalf("backdate inbound: %v", err)
	}
	if err := db.Model(&entity.Transaction{}).Where("id = ?", out.ID).Update("date", dayTwo).Error; err != nil {
		t.Fatalf("backdate outbound: %v", err)
	}

	between := dayOne.Add(time.Hour)
	stock, err := svcs.Stock.StockAt(item.ID, loc.ID, &between)
	if err != nil {
		t.Fatalf("stock as of: %v", err)
	}
	if stock != 100 {
		t.Fatalf("expected 100 before the outbound, got %d", stock)
	}

	now := time.Now()
	stock, err = svcs.Stock.StockAt(item.ID, loc.ID, &now)
	if err != nil {
		t.Fatalf("stock as of now: %v", err)
	}
	if stock != 60 {
		t.Fatalf("expected 60 after both entries, got %d", stock)
	}
}

// 相同时点入账的流水折算结果与入账顺序无关
func TestStockFoldCommutative(t *testing.T) {
	svcs, db := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	item := mustCreateItem(t, svcs, "签字笔", 0)

	mustInbound(t, svcs, item.ID, loc.ID, 30)
	mustInbound(t, svcs, item.ID, loc.ID, 20)
	mustOutbound(t, svcs, item.ID, loc.ID, 10)

	at := time.Now().Add(-time.Hour)
	if err := db.Model(&entity.Transaction{}).
		Where("item_id = ?", item.ID).Update("date", at).Error; err != nil {
		t.Fatalf("align dates: %v", err)
	}

	cutoff := at.Add(time.Minute)
	stock, err := svcs.Stock.StockAt(item.ID, loc.ID, &cutoff)
	if err != nil {
		t.Fatalf("stock at cutoff: %v", err)
	}
	if stock != 40 {
		t.Fatalf("expected 40 regardless of entry order, got %d", stock)
	}
}

func TestLocationSummaryFiltersZeroRows(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 0)
	clip := mustCreateItem(t, svcs, "回形针", 0)

	mustInbound(t, svcs, pen.ID, loc.ID, 10)
	mustInbound(t, svcs, clip.ID, loc.ID, 5)
	mustOutbound(t, svcs, clip.ID, loc.ID, 5)

	rows, err := svcs.Stock.LocationSummary(loc.ID)
	if err != nil {
		t.Fatalf("location summary: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row with positive stock, got %d", len(rows))
	}
	if rows[0].ItemID != pen.ID || rows[0].CurrentStock != 10 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].ItemName != "签字笔" || rows[0].Unit != "个" {
		t.Fatalf("expected item info on the row, got %+v", rows[0])
	}
}

func TestLowStockItems(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	low := mustCreateItem(t, svcs, "签字笔", 10)
	fine := mustCreateItem(t, svcs, "回形针", 10)
	never := mustCreateItem(t, svcs, "订书机", 5)

	mustInbound(t, svcs, low.ID, loc.ID, 10) // 等于阈值也算低库存
	mustInbound(t, svcs, fine.ID, loc.ID, 11)

	alerts, err := svcs.Stock.LowStockItems()
	if err != nil {
		t.Fatalf("low stock items: %v", err)
	}
	byID := make(map[string]LowStockRow, len(alerts))
	for _, row := range alerts {
		byID[row.ItemID] = row
	}
	if _, ok := byID[fine.ID]; ok {
		t.Fatal("item above threshold must not be flagged")
	}
	if row, ok := byID[low.ID]; !ok || row.CurrentStock != 10 {
		t.Fatalf("expected alert at threshold, got %+v", row)
	}
	// 从未入库的物品库存视为0,同样在告警之列
	if row, ok := byID[never.ID]; !ok || row.CurrentStock != 0 {
		t.Fatalf("expected never-stocked item flagged, got %+v", row)
	}
}
