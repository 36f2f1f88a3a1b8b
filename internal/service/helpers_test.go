package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/idempotency"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository/memstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testActor = Actor{ID: "op-1", Name: "Ana", Store: "store_a"}
	quietLog  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type recordedEvent struct {
	Type    string
	Payload map[string]interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(event string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: event, Payload: payload})
}

func (r *recorder) actions(event string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Type == event {
			out = append(out, e.Payload["action"].(string))
		}
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	events   *recorder
	redis    *miniredis.Miniredis
	catalog  CatalogService
	stock    StockService
	orders   OrderService
	receipts ReceiptService
	reports  ReportService
	cash     CashService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New()
	events := &recorder{}
	rollups := cache.New(client, 0)
	guard := idempotency.NewStore(client, 0)

	return &fixture{
		store:    store,
		events:   events,
		redis:    mr,
		catalog:  NewCatalogService(store, events, quietLog),
		stock:    NewStockService(store, events, quietLog),
		orders:   NewOrderService(store, events, quietLog),
		receipts: NewReceiptService(store, guard, rollups, events, quietLog),
		reports:  NewReportService(store, rollups, quietLog),
		cash:     NewCashService(store, events, quietLog),
	}
}

func (f *fixture) design(t *testing.T, code string) *model.Design {
	t.Helper()
	d := &model.Design{
		Code:      code,
		Name:      "Linen shirt",
		SalePrice: decimal.RequireFromString("100.00"),
		Colors:    []string{"black", "white"},
		Sizes:     []string{"S", "M"},
	}
	require.NoError(t, f.catalog.CreateDesign(context.Background(), d, testActor))
	return d
}

// item stocks one unit of a fresh design at store_a.
func (f *fixture) item(t *testing.T, stock int) *model.Item {
	t.Helper()
	d := f.design(t, "D-"+t.Name())
	items, err := f.catalog.CreateItems(context.Background(), &CreateItemsRequest{
		DesignID:     d.ID,
		Warehouses:   []model.Warehouse{model.WarehouseStoreA},
		Colors:       []string{"black"},
		Sizes:        []string{"M"},
		InitialStock: stock,
	}, testActor)
	require.NoError(t, err)
	require.Len(t, items, 1)
	return &items[0]
}

func (f *fixture) stockOf(t *testing.T, item *model.Item) int {
	t.Helper()
	got, err := f.stock.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	return got.Stock
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(n int) *int { return &n }

func statusp(s model.OrderStatus) *model.OrderStatus { return &s }
