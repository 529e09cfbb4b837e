package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/config"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/testutil"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/middleware"
)

// setupAPI wires the full route table against an in-memory database,
// mirroring the registration in cmd/server.
func setupAPI(t *testing.T) (*gin.Engine, *service.Services) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, nil, &config.Config{})
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	v1 := testutil.AuthGroup(r, "/api/v1")

	locations := v1.Group("/locations")
	{
		locations.GET("", handlers.Location.List)
		locations.GET("/tree", handlers.Location.Tree)
		locations.GET("/:id", handlers.Location.Get)
		locations.GET("/:id/descendants", handlers.Location.Descendants)
		locations.GET("/:id/stock", handlers.Stock.LocationSummary)
		locations.POST("", middleware.RequireRole("admin"), handlers.Location.Create)
		locations.PUT("/:id", middleware.RequireRole("admin"), handlers.Location.Update)
		locations.PUT("/:id/parent", middleware.RequireRole("admin"), handlers.Location.Reparent)
		locations.PUT("/status", middleware.RequireRole("admin"), handlers.Location.BatchStatus)
		locations.DELETE("/:id", middleware.RequireRole("admin"), handlers.Location.Delete)
	}

	items := v1.Group("/items")
	{
		items.GET("", handlers.Item.List)
		items.GET("/categories", handlers.Item.Categories)
		items.GET("/:id", handlers.Item.Get)
		items.GET("/:id/stock", handlers.Stock.Total)
		items.POST("", middleware.RequireRole("admin"), handlers.Item.Create)
		items.POST("/import", middleware.RequireRole("admin"), handlers.Item.Import)
		items.PUT("/:id", middleware.RequireRole("admin"), handlers.Item.Update)
		items.PUT("/:id/default-location", middleware.RequireRole("admin"), handlers.Item.SetDefaultLocation)
		items.DELETE("/:id", middleware.RequireRole("admin"), handlers.Item.Delete)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.GET("", handlers.Transaction.List)
		transactions.GET("/:id", handlers.Transaction.Get)
		transactions.POST("", handlers.Transaction.Create)
		transactions.POST("/batch", handlers.Transaction.CreateBatch)
		transactions.POST("/:id/reverse", handlers.Transaction.Reverse)
		transactions.PUT("/:id", handlers.Transaction.Update)
		transactions.DELETE("/:id", middleware.RequireRole("admin"), handlers.Transaction.Delete)
	}

	stock := v1.Group("/stock")
	{
		stock.GET("", handlers.Stock.StockAt)
		stock.GET("/alerts", handlers.Stock.Alerts)
	}

	return r, services
}

func seedLocation(t *testing.T, services *service.Services, code string, parentID *string) string {
	t.Helper()
	loc, err := services.Location.Create(service.CreateLocationInput{
		Code: code, Name: "库位" + code, ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("seed location %s: %v", code, err)
	}
	return loc.ID
}

func seedItem(t *testing.T, services *service.Services, name string) string {
	t.Helper()
	item, err := services.Item.Create(service.ItemInput{
		Name: name, Category: "办公用品", Unit: "个",
	})
	if err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
	return item.ID
}

func seedInbound(t *testing.T, services *service.Services, itemID, locationID string, qty int64) string {
	t.Helper()
	record, err := services.Ledger.Record(service.TransactionDraft{
		ItemID: itemID, LocationID: locationID,
		Type: "INBOUND", Quantity: qty,
		Operator: "张三", Supplier: "晨光文具",
	})
	if err != nil {
		t.Fatalf("seed inbound: %v", err)
	}
	return record.ID
}

func dataObject(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %v", resp["data"])
	}
	return data
}

func responseCode(resp map[string]interface{}) int {
	code, _ := resp["code"].(float64)
	return int(code)
}

func assertStatus(t *testing.T, got, want int, resp map[string]interface{}) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d (body %v)", want, got, resp)
	}
}
