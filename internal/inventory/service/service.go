package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/config"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth     *AuthService
	Guard    *GuardService
	Location *LocationService
	Item     *ItemService
	Stock    *StockService
	Ledger   *LedgerService
	Report   *ReportService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Services {
	guard := NewGuardService(repos.Location, repos.Item, repos.Transaction)
	stock := NewStockService(repos.Transaction, repos.Item)
	return &Services{
		Auth:     NewAuthService(repos.User, rdb, cfg),
		Guard:    guard,
		Location: NewLocationService(repos.Location, guard, db),
		Item:     NewItemService(repos.Item, repos.Transaction, guard, stock),
		Stock:    stock,
		Ledger:   NewLedgerService(repos.Transaction, repos.Item, repos.Location, db),
		Report:   NewReportService(repos.Transaction, repos.Item, repos.Location),
	}
}
