package service

import (
	"errors"
	"testing"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
)

func TestItemCreateValidation(t *testing.T) {
	svcs, _ := newTestServices(t)

	cases := []struct {
		name  string
		input ItemInput
	}{
		{"empty name", ItemInput{Category: "办公用品", Unit: "个"}},
		{"empty category", ItemInput{Name: "签字笔", Unit: "个"}},
		{"empty unit", ItemInput{Name: "签字笔", Category: "办公用品"}},
		{"negative threshold", ItemInput{Name: "签字笔", Category: "办公用品", Unit: "个", LowStockThreshold: -1}},
	}

	var validationErr *ValidationError
	for _, tc := range cases {
		if _, err := svcs.Item.Create(tc.input); !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestItemDefaultLocationChecks(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	off := false
	inactive := mustCreateLocation(t, svcs, "B-01", nil)
	if _, err := svcs.Location.Update(inactive.ID, UpdateLocationInput{IsActive: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var validationErr *ValidationError
	_, err := svcs.Item.Create(ItemInput{
		Name: "签字笔", Category: "办公用品", Unit: "个",
		DefaultLocationID: &inactive.ID,
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for inactive default location, got %v", err)
	}

	item, err := svcs.Item.Create(ItemInput{
		Name: "签字笔", Category: "办公用品", Unit: "个",
		DefaultLocationID: &loc.ID,
	})
	if err != nil {
		t.Fatalf("create with active default location: %v", err)
	}

	// 清除默认库位
	updated, err := svcs.Item.SetDefaultLocation(item.ID, nil)
	if err != nil {
		t.Fatalf("clear default location: %v", err)
	}
	if updated.DefaultLocationID != nil {
		t.Fatal("expected default location cleared")
	}
}

// 无库存无流水的物品可删,有过流水的物品即使库存清零也不可删
func TestItemDelete(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)

	fresh := mustCreateItem(t, svcs, "回形针", 0)
	if err := svcs.Item.Delete(fresh.ID); err != nil {
		t.Fatalf("delete fresh item: %v", err)
	}
	var notFoundErr *NotFoundError
	if _, err := svcs.Item.Get(fresh.ID); !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}

	used := mustCreateItem(t, svcs, "签字笔", 0)
	mustInbound(t, svcs, used.ID, loc.ID, 50)
	mustOutbound(t, svcs, used.ID, loc.ID, 50)

	var referentialErr *ReferentialIntegrityError
	if err := svcs.Item.Delete(used.ID); !errors.As(err, &referentialErr) {
		t.Fatalf("expected ReferentialIntegrityError, got %v", err)
	}
}

func TestItemListWithStock(t *testing.T) {
	svcs, _ := newTestServices(t)
	loc := mustCreateLocation(t, svcs, "A-01", nil)
	pen := mustCreateItem(t, svcs, "签字笔", 20)
	clip := mustCreateItem(t, svcs, "回形针", 0)
	mustInbound(t, svcs, pen.ID, loc.ID, 10)
	mustInbound(t, svcs, clip.ID, loc.ID, 5)

	rows, total, err := svcs.Item.List(repository.ItemListParams{Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	byID := make(map[string]ItemWithStock, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	if row := byID[pen.ID]; row.CurrentStock != 10 || !row.IsLowStock {
		t.Fatalf("expected pen stock 10 and low-stock flag, got %+v", row)
	}
	if row := byID[clip.ID]; row.CurrentStock != 5 || row.IsLowStock {
		t.Fatalf("expected clip stock 5 above zero threshold, got %+v", row)
	}
}

func TestItemImportPartialFailure(t *testing.T) {
	svcs, _ := newTestServices(t)

	rows := []ItemInput{
		{Name: "签字笔", Category: "办公用品", Unit: "个"},
		{Name: "", Category: "办公用品", Unit: "个"},
		{Name: "订书机", Category: "办公设备", Unit: "台"},
	}
	result, err := svcs.Item.Import(rows)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d", len(result.Accepted))
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Index != 1 {
		t.Fatalf("expected rejection at index 1, got %+v", result.Rejected)
	}

	categories, err := svcs.Item.Categories()
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 distinct categories, got %v", categories)
	}
}
