package service

import (
	"testing"
	"time"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/config"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/testutil"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	return NewServices(repos, db, nil, cfg), db
}

func mustCreateLocation(t *testing.T, svcs *Services, code string, parentID *string) *entity.Location {
	t.Helper()
	loc, err := svcs.Location.Create(CreateLocationInput{
		Code:     code,
		Name:     "库位" + code,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create location %s: %v", code, err)
	}
	return loc
}

func mustCreateItem(t *testing.T, svcs *Services, name string, threshold int64) *entity.Item {
	t.Helper()
	item, err := svcs.Item.Create(ItemInput{
		Name:              name,
		Category:          "办公用品",
		Unit:              "个",
		LowStockThreshold: threshold,
	})
	if err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return item
}

func mustInbound(t *testing.T, svcs *Services, itemID, locationID string, qty int64) *entity.Transaction {
	t.Helper()
	record, err := svcs.Ledger.Record(TransactionDraft{
		ItemID:     itemID,
		LocationID: locationID,
		Type:       entity.TxTypeInbound,
		Quantity:   qty,
		Date:       time.Now().Add(-time.Hour),
		Operator:   "张三",
		Supplier:   "晨光文具",
	})
	if err != nil {
		t.Fatalf("inbound %d: %v", qty, err)
	}
	return record
}

func mustOutbound(t *testing.T, svcs *Services, itemID, locationID string, qty int64) *entity.Transaction {
	t.Helper()
	record, err := svcs.Ledger.Record(TransactionDraft{
		ItemID:     itemID,
		LocationID: locationID,
		Type:       entity.TxTypeOutbound,
		Quantity:   qty,
		Date:       time.Now().Add(-time.Minute),
		Operator:   "张三",
		Recipient:  "李四",
		Purpose:    "日常领用",
	})
	if err != nil {
		t.Fatalf("outbound %d: %v", qty, err)
	}
	return record
}
