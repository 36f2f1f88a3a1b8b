package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// SalesRange selects whole business days [From, To] for one store, or every store when Store is empty.
type SalesRange struct {
	Store model.Warehouse
	From  time.Time
	To    time.Time
}

type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type MethodSales struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type ReportService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	// DailySales totals non-voided receipts per day.
	DailySales(ctx context.Context, r SalesRange) ([]DailySales, error)
	// PaymentMethodSales totals non-voided receipt payments per method.
	PaymentMethodSales(ctx context.Context, r SalesRange) ([]MethodSales, error)
}

type reportService struct {
	store   repository.Store
	rollups RollupCache
	log     *slog.Logger
}

func NewReportService(store repository.Store, rollups RollupCache, logger *slog.Logger) ReportService {
	return &reportService{store: store, rollups: rollups, log: loggerOrDefault(logger)}
}

func (s *reportService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Tag: "gt"}
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.store.Movements().GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, backendErr("movement.chart", err, nil)
	}
	return data, nil
}

func (s *reportService) DailySales(ctx context.Context, r SalesRange) ([]DailySales, error) {
	var out []DailySales
	err := s.cached(ctx, "daily", r, &out, func(receipts []model.Receipt) interface{} {
		byDay := make(map[string]*DailySales)
		for _, rc := range receipts {
			day := rc.CreatedAt.Format(dateLayout)
			row, ok := byDay[day]
			if !ok {
				row = &DailySales{Date: day, Total: decimal.Zero}
				byDay[day] = row
			}
			row.Total = row.Total.Add(rc.Total)
			row.Count++
		}
		rows := make([]DailySales, 0, len(byDay))
		for _, row := range byDay {
			rows = append(rows, *row)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
		return rows
	})
	return out, err
}

func (s *reportService) PaymentMethodSales(ctx context.Context, r SalesRange) ([]MethodSales, error) {
	var out []MethodSales
	err := s.cached(ctx, "method", r, &out, func(receipts []model.Receipt) interface{} {
		byMethod := make(map[string]*MethodSales)
		for _, rc := range receipts {
			for _, p := range rc.Payments {
				row, ok := byMethod[p.Method]
				if !ok {
					row = &MethodSales{Method: p.Method, Total: decimal.Zero}
					byMethod[p.Method] = row
				}
				row.Total = row.Total.Add(p.Amount)
				row.Count++
			}
		}
		rows := make([]MethodSales, 0, len(byMethod))
		for _, row := range byMethod {
			rows = append(rows, *row)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Method < rows[j].Method })
		return rows
	})
	return out, err
}

// cached loads the non-voided receipts in r through the rollup cache and aggregates them.
func (s *reportService) cached(ctx context.Context, kind string, r SalesRange, dest interface{}, aggregate func([]model.Receipt) interface{}) error {
	if r.To.Before(r.From) {
		return &ValidationError{Field: "SalesRange.To", Tag: "gtefield"}
	}
	from := startOfDay(r.From)
	to := startOfDay(r.To).AddDate(0, 0, 1)

	key, err := s.rollups.BuildKey(ctx, "sales", kind, string(r.Store), from.Format(dateLayout), r.To.Format(dateLayout))
	if err != nil {
		return &BackendUnavailableError{Op: "sales.cacheKey", Err: err}
	}
	err = s.rollups.FetchJSON(ctx, key, dest, func(ctx context.Context) (interface{}, error) {
		receipts, err := s.store.Receipts().FindAll(ctx, repository.ReceiptFilter{
			Store: r.Store,
			From:  &from,
			To:    &to,
		})
		if err != nil {
			return nil, err
		}
		return aggregate(receipts), nil
	})
	if err != nil {
		s.log.Error("sales rollup failed", slog.String("kind", kind), slog.Any("error", err))
		return backendErr("sales."+kind, err, nil)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
