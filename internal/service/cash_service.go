package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashPaymentMethod is the receipt payment method counted into the drawer.
const CashPaymentMethod = "cash"

// CashEntryRequest records a manual movement or a drawer balance.
// BusinessDate is YYYY-MM-DD and defaults to today.
type CashEntryRequest struct {
	Store        model.Warehouse     `json:"store" validate:"required"`
	Type         model.CashEntryType `json:"type" validate:"required"`
	Amount       decimal.Decimal     `json:"amount" validate:"dec_gte0"`
	Remark       string              `json:"remark"`
	BusinessDate string              `json:"business_date"`
}

// DrawerSummary reconciles a store's drawer for one day. Difference is
// closing minus expected and is only reported.
type DrawerSummary struct {
	Store      model.Warehouse  `json:"store"`
	Date       string           `json:"date"`
	Opening    decimal.Decimal  `json:"opening"`
	CashIn     decimal.Decimal  `json:"cash_in"`
	CashOut    decimal.Decimal  `json:"cash_out"`
	CashSales  decimal.Decimal  `json:"cash_sales"`
	Expected   decimal.Decimal  `json:"expected"`
	Closing    *decimal.Decimal `json:"closing"`
	Difference *decimal.Decimal `json:"difference"`
}

type CashService interface {
	// Record appends a cash in/out movement.
	Record(ctx context.Context, req *CashEntryRequest, actor Actor) (*model.CashEntry, error)
	// RecordBalance appends an opening or closing balance; one of each per store and day.
	RecordBalance(ctx context.Context, req *CashEntryRequest, actor Actor) (*model.CashEntry, error)
	OpenDrawer(ctx context.Context, store model.Warehouse, amount decimal.Decimal, actor Actor) (*model.CashEntry, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	List(ctx context.Context, store model.Warehouse, day time.Time) ([]model.CashEntry, error)
	Summary(ctx context.Context, store model.Warehouse, day time.Time) (*DrawerSummary, error)
}

type cashService struct {
	store  repository.Store
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

func NewCashService(store repository.Store, events EventPublisher, logger *slog.Logger) CashService {
	return &cashService{store: store, events: publisherOrNop(events), log: loggerOrDefault(logger), now: time.Now}
}

func (s *cashService) entryFrom(req *CashEntryRequest, actor Actor) (*model.CashEntry, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.Store.IsStore() {
		return nil, &ValidationError{Field: "CashEntryRequest.Store", Tag: "oneof"}
	}
	day := startOfDay(s.now())
	if req.BusinessDate != "" {
		d, err := time.Parse(dateLayout, req.BusinessDate)
		if err != nil {
			return nil, &ValidationError{Field: "CashEntryRequest.BusinessDate", Tag: "datetime"}
		}
		day = d
	}
	entry := &model.CashEntry{
		Store:        req.Store,
		BusinessDate: day,
		Type:         req.Type,
		Amount:       req.Amount.Round(2),
		Remark:       req.Remark,
	}
	entry.CreatedBy = actor.ID
	entry.UpdatedBy = actor.ID
	return entry, nil
}

func (s *cashService) Record(ctx context.Context, req *CashEntryRequest, actor Actor) (*model.CashEntry, error) {
	if !req.Type.IsMovement() {
		return nil, &ValidationError{Field: "CashEntryRequest.Type", Tag: "oneof"}
	}
	entry, err := s.entryFrom(req, actor)
	if err != nil {
		return nil, err
	}
	if !entry.Amount.IsPositive() {
		return nil, &ValidationError{Field: "CashEntryRequest.Amount", Tag: "gt"}
	}
	return s.create(ctx, entry, actor)
}

func (s *cashService) RecordBalance(ctx context.Context, req *CashEntryRequest, actor Actor) (*model.CashEntry, error) {
	if !req.Type.IsBalance() {
		return nil, &ValidationError{Field: "CashEntryRequest.Type", Tag: "oneof"}
	}
	entry, err := s.entryFrom(req, actor)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, entry, actor)
}

func (s *cashService) OpenDrawer(ctx context.Context, store model.Warehouse, amount decimal.Decimal, actor Actor) (*model.CashEntry, error) {
	return s.RecordBalance(ctx, &CashEntryRequest{Store: store, Type: model.CashOpening, Amount: amount}, actor)
}

func (s *cashService) create(ctx context.Context, entry *model.CashEntry, actor Actor) (*model.CashEntry, error) {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if entry.Type.IsBalance() {
			existing, err := tx.Cash().FindByStoreAndDay(ctx, entry.Store, entry.BusinessDate)
			if err != nil {
				return backendErr("cash.list", err, nil)
			}
			for _, e := range existing {
				if e.Type == entry.Type {
					return &ValidationError{Field: "CashEntryRequest.Type", Tag: "unique"}
				}
			}
		}
		return backendErr("cash.create", tx.Cash().Create(ctx, entry), nil)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cash entry recorded", slog.String("cash_id", entry.ID.String()), slog.String("store", string(entry.Store)),
		slog.String("type", string(entry.Type)), slog.String("amount", entry.Amount.StringFixed(2)), actor.logAttr())
	s.events.Publish(EventCashUpdate, map[string]interface{}{
		"action": "cash_recorded",
		"store":  string(entry.Store),
		"entry": map[string]interface{}{
			"id":            entry.ID,
			"store":         entry.Store,
			"type":          entry.Type,
			"amount":        entry.Amount.StringFixed(2),
			"business_date": entry.BusinessDate.Format(dateLayout),
		},
		"user": actor.payload(),
	})
	return entry, nil
}

func (s *cashService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return backendErr("cash.delete", tx.Cash().Delete(ctx, id, actor.ID), ErrCashEntryNotFound)
	})
	if err != nil {
		return err
	}
	s.log.Info("cash entry deleted", slog.String("cash_id", id.String()), actor.logAttr())
	s.events.Publish(EventCashUpdate, map[string]interface{}{
		"action":  "cash_deleted",
		"cash_id": id,
		"user":    actor.payload(),
	})
	return nil
}

func (s *cashService) List(ctx context.Context, store model.Warehouse, day time.Time) ([]model.CashEntry, error) {
	entries, err := s.store.Cash().FindByStoreAndDay(ctx, store, day)
	if err != nil {
		return nil, backendErr("cash.list", err, nil)
	}
	return entries, nil
}

func (s *cashService) Summary(ctx context.Context, store model.Warehouse, day time.Time) (*DrawerSummary, error) {
	if !store.IsStore() {
		return nil, &ValidationError{Field: "store", Tag: "oneof"}
	}
	entries, err := s.List(ctx, store, day)
	if err != nil {
		return nil, err
	}

	sum := &DrawerSummary{
		Store:     store,
		Date:      day.Format(dateLayout),
		Opening:   decimal.Zero,
		CashIn:    decimal.Zero,
		CashOut:   decimal.Zero,
		CashSales: decimal.Zero,
	}
	net := decimal.Zero
	for _, e := range entries {
		net = net.Add(e.SignedAmount())
		switch e.Type {
		case model.CashOpening:
			sum.Opening = e.Amount
		case model.CashClosing:
			closing := e.Amount
			sum.Closing = &closing
		case model.CashIn:
			sum.CashIn = sum.CashIn.Add(e.Amount)
		case model.CashOut:
			sum.CashOut = sum.CashOut.Add(e.Amount)
		}
	}

	from := startOfDay(day)
	to := from.AddDate(0, 0, 1)
	receipts, err := s.store.Receipts().FindAll(ctx, repository.ReceiptFilter{Store: store, From: &from, To: &to})
	if err != nil {
		return nil, backendErr("receipt.list", err, nil)
	}
	for _, rc := range receipts {
		for _, p := range rc.Payments {
			if strings.EqualFold(p.Method, CashPaymentMethod) {
				sum.CashSales = sum.CashSales.Add(p.Amount)
			}
		}
	}

	sum.Expected = sum.Opening.Add(net).Add(sum.CashSales)
	if sum.Closing != nil {
		diff := sum.Closing.Sub(sum.Expected)
		sum.Difference = &diff
	}
	return sum, nil
}
