package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go-retail-pos/internal/idempotency"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/pricing"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const printModule = "receipt.print"

// IdempotencyGuard claims client request keys.
type IdempotencyGuard interface {
	Claim(ctx context.Context, module, key string) error
	Release(ctx context.Context, module, key string) error
}

// RollupCache stores versioned sales rollups.
type RollupCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	Bump(ctx context.Context) error
}

type PrintReceiptRequest struct {
	Store     model.Warehouse        `json:"store" validate:"required"`
	Cashier   string                 `json:"cashier"`
	Reference string                 `json:"reference" validate:"max=64"`
	Lines     []pricing.LineInput    `json:"lines" validate:"dive"`
	Payments  []pricing.PaymentInput `json:"payments" validate:"dive"`
}

// PreviewLine is a normalised cart line with its computed price.
type PreviewLine struct {
	Code            string          `json:"code"`
	ItemID          *uuid.UUID      `json:"item_id,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalPrice      decimal.Decimal `json:"final_price"`
}

// Preview is the priced, reconciled state of a draft that has not been printed.
type Preview struct {
	Lines          []PreviewLine          `json:"lines"`
	Payments       []model.ReceiptPayment `json:"payments"`
	Reconciliation pricing.Reconciliation `json:"reconciliation"`
	Balance        string                 `json:"balance"`
	Printable      bool                   `json:"printable"`
}

type ReceiptService interface {
	Preview(ctx context.Context, req *PrintReceiptRequest) (*Preview, error)
	// Print commits a settled draft as a receipt and takes stock for lines that reference an item.
	Print(ctx context.Context, req *PrintReceiptRequest, idempotencyKey string, actor Actor) (*model.Receipt, error)
	Void(ctx context.Context, id uuid.UUID, actor Actor) (*model.Receipt, error)
	Reprint(ctx context.Context, id uuid.UUID, actor Actor) (*model.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	List(ctx context.Context, filter repository.ReceiptFilter) ([]model.Receipt, error)
}

type receiptService struct {
	store   repository.Store
	guard   IdempotencyGuard
	rollups RollupCache
	events  EventPublisher
	log     *slog.Logger
	now     func() time.Time
}

func NewReceiptService(store repository.Store, guard IdempotencyGuard, rollups RollupCache, events EventPublisher, logger *slog.Logger) ReceiptService {
	return &receiptService{
		store:   store,
		guard:   guard,
		rollups: rollups,
		events:  publisherOrNop(events),
		log:     loggerOrDefault(logger),
		now:     time.Now,
	}
}

// draftFrom checks the request and folds it into a Draft.
func draftFrom(req *PrintReceiptRequest) (pricing.Draft, error) {
	if err := validate(req); err != nil {
		return pricing.Draft{}, err
	}
	if !req.Store.IsStore() {
		return pricing.Draft{}, &ValidationError{Field: "PrintReceiptRequest.Store", Tag: "oneof"}
	}
	draft := pricing.NewDraft()
	for _, in := range req.Lines {
		if in.Quantity != nil && *in.Quantity < 0 {
			return pricing.Draft{}, &ValidationError{Field: "PrintReceiptRequest.Lines.Quantity", Tag: "gte"}
		}
		draft = draft.WithLine(in)
	}
	for _, in := range req.Payments {
		draft = draft.WithPayment(in)
	}
	return draft, nil
}

func (s *receiptService) Preview(ctx context.Context, req *PrintReceiptRequest) (*Preview, error) {
	draft, err := draftFrom(req)
	if err != nil {
		return nil, err
	}
	rec := draft.Reconcile()
	out := &Preview{
		Reconciliation: rec,
		Balance:        rec.Balance().String(),
		Printable:      rec.Printable(),
	}
	for _, l := range draft.Lines() {
		out.Lines = append(out.Lines, PreviewLine{
			Code:            l.Code,
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			FinalPrice:      l.FinalPrice(),
		})
	}
	for i, p := range draft.Payments() {
		out.Payments = append(out.Payments, model.ReceiptPayment{Position: i + 1, Method: p.Method, Amount: p.Amount})
	}
	return out, nil
}

func (s *receiptService) Print(ctx context.Context, req *PrintReceiptRequest, idempotencyKey string, actor Actor) (*model.Receipt, error) {
	draft, err := draftFrom(req)
	if err != nil {
		return nil, err
	}
	rec := draft.Reconcile()
	if !rec.Printable() {
		s.log.Warn("receipt blocked", slog.String("store", string(req.Store)),
			slog.String("total", rec.Total.StringFixed(2)), slog.String("paid", rec.Paid.StringFixed(2)))
		return nil, &PaymentMismatchError{
			Total:     rec.Total,
			Paid:      rec.Paid,
			Remaining: rec.Remaining,
			Kind:      rec.Balance().String(),
		}
	}

	cashier := strings.TrimSpace(req.Cashier)
	if cashier == "" {
		cashier = actor.Name
	}
	if cashier == "" {
		return nil, &ValidationError{Field: "PrintReceiptRequest.Cashier", Tag: "required"}
	}

	if err := s.guard.Claim(ctx, printModule, idempotencyKey); err != nil {
		if errors.Is(err, idempotency.ErrConflict) {
			return nil, ErrDuplicateRequest
		}
		return nil, &BackendUnavailableError{Op: "idempotency.claim", Err: err}
	}

	now := s.now()
	receipt := s.buildReceipt(draft, rec, req, cashier, now, actor)

	type stockEvent struct {
		item     *model.Item
		oldStock int
	}
	var touched []stockEvent
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := ensureReferenceFree(ctx, tx, receipt.Reference); err != nil {
			return err
		}
		for _, line := range receipt.Lines {
			if line.ItemID == nil || line.Quantity == 0 {
				continue
			}
			item, old, err := applyStockDelta(ctx, tx, stockChange{
				itemID:    *line.ItemID,
				delta:     -line.Quantity,
				reason:    model.MovementSale,
				refID:     &receipt.ID,
				note:      receipt.Reference,
				warehouse: receipt.Store,
			}, actor)
			if err != nil {
				return err
			}
			touched = append(touched, stockEvent{item: item, oldStock: old})
		}
		return backendErr("receipt.create", tx.Receipts().Create(ctx, receipt), nil)
	})
	if err != nil {
		if relErr := s.guard.Release(ctx, printModule, idempotencyKey); relErr != nil {
			s.log.Error("idempotency release failed", slog.String("key", idempotencyKey), slog.Any("error", relErr))
		}
		s.log.Warn("receipt print failed", slog.String("reference", receipt.Reference), slog.Any("error", err))
		return nil, err
	}

	s.log.Info("receipt printed", slog.String("receipt_id", receipt.ID.String()), slog.String("reference", receipt.Reference),
		slog.String("total", receipt.Total.StringFixed(2)), actor.logAttr())
	s.invalidateRollups(ctx)
	s.publish("receipt_printed", receipt, actor)
	for _, ev := range touched {
		s.events.Publish(EventStockUpdate, map[string]interface{}{
			"action": "receipt_printed",
			"store":  string(receipt.Store),
			"item": map[string]interface{}{
				"id":        ev.item.ID,
				"old_stock": ev.oldStock,
				"new_stock": ev.item.Stock,
			},
			"user": actor.payload(),
		})
	}
	return receipt, nil
}

func ensureReferenceFree(ctx context.Context, tx repository.Store, reference string) error {
	_, err := tx.Receipts().FindByReference(ctx, reference)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return backendErr("receipt.findByReference", err, nil)
	}
	return &ValidationError{Field: "PrintReceiptRequest.Reference", Tag: "unique"}
}

func (s *receiptService) buildReceipt(draft pricing.Draft, rec pricing.Reconciliation, req *PrintReceiptRequest, cashier string, now time.Time, actor Actor) *model.Receipt {
	receipt := &model.Receipt{
		Store:         req.Store,
		Cashier:       cashier,
		CashierID:     actor.ID,
		Reference:     strings.TrimSpace(req.Reference),
		Total:         rec.Total,
		PrintCount:    1,
		LastPrintedAt: &now,
	}
	receipt.ID = uuid.New()
	receipt.CreatedBy = actor.ID
	receipt.UpdatedBy = actor.ID
	if receipt.Reference == "" {
		receipt.Reference = newReference(req.Store, now, receipt.ID)
	}
	for i, l := range draft.Lines() {
		receipt.Lines = append(receipt.Lines, model.ReceiptLine{
			Position:        i + 1,
			Code:            l.Code,
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			FinalPrice:      l.FinalPrice(),
		})
	}
	for i, p := range draft.Payments() {
		receipt.Payments = append(receipt.Payments, model.ReceiptPayment{
			Position: i + 1,
			Method:   p.Method,
			Amount:   pricing.Round2(p.Amount),
		})
	}
	return receipt
}

// newReference renders R<STORE>-<yyyymmdd>-<suffix>, the suffix taken from the receipt id.
func newReference(store model.Warehouse, at time.Time, id uuid.UUID) string {
	code := strings.ToUpper(strings.ReplaceAll(string(store), "_", ""))
	return "R" + code + "-" + at.Format("20060102") + "-" + strings.ToUpper(id.String()[:8])
}

func (s *receiptService) Void(ctx context.Context, id uuid.UUID, actor Actor) (*model.Receipt, error) {
	var (
		receipt *model.Receipt
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		receipt, err = tx.Receipts().FindByID(ctx, id)
		if err != nil {
			return backendErr("receipt.get", err, ErrReceiptNotFound)
		}
		if receipt.Voided {
			return nil
		}
		at := s.now()
		if err := tx.Receipts().MarkVoided(ctx, id, at, actor.ID); err != nil {
			return backendErr("receipt.void", err, ErrReceiptNotFound)
		}
		receipt.Voided = true
		receipt.VoidedAt = &at
		receipt.UpdatedBy = actor.ID
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("receipt voided", slog.String("receipt_id", id.String()), actor.logAttr())
		s.invalidateRollups(ctx)
		s.publish("receipt_voided", receipt, actor)
	}
	return receipt, nil
}

func (s *receiptService) Reprint(ctx context.Context, id uuid.UUID, actor Actor) (*model.Receipt, error) {
	var receipt *model.Receipt
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		current, err := tx.Receipts().FindByID(ctx, id)
		if err != nil {
			return backendErr("receipt.get", err, ErrReceiptNotFound)
		}
		if current.Voided {
			return ErrReceiptVoided
		}
		if err := tx.Receipts().MarkReprinted(ctx, id, s.now(), actor.ID); err != nil {
			return backendErr("receipt.reprint", err, ErrReceiptNotFound)
		}
		receipt, err = tx.Receipts().FindByID(ctx, id)
		return backendErr("receipt.get", err, ErrReceiptNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("receipt reprinted", slog.String("receipt_id", id.String()), slog.Int("print_count", receipt.PrintCount), actor.logAttr())
	s.publish("receipt_reprinted", receipt, actor)
	return receipt, nil
}

func (s *receiptService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return backendErr("receipt.delete", tx.Receipts().Delete(ctx, id), ErrReceiptNotFound)
	})
	if err != nil {
		return err
	}

	s.log.Info("receipt deleted", slog.String("receipt_id", id.String()), actor.logAttr())
	s.invalidateRollups(ctx)
	s.events.Publish(EventReceiptUpdate, map[string]interface{}{
		"action":     "receipt_deleted",
		"receipt_id": id,
		"user":       actor.payload(),
	})
	return nil
}

func (s *receiptService) Get(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	receipt, err := s.store.Receipts().FindByID(ctx, id)
	if err != nil {
		return nil, backendErr("receipt.get", err, ErrReceiptNotFound)
	}
	return receipt, nil
}

func (s *receiptService) List(ctx context.Context, filter repository.ReceiptFilter) ([]model.Receipt, error) {
	receipts, err := s.store.Receipts().FindAll(ctx, filter)
	if err != nil {
		return nil, backendErr("receipt.list", err, nil)
	}
	return receipts, nil
}

// invalidateRollups runs after commit; a failure leaves stale rollups until the TTL expires.
func (s *receiptService) invalidateRollups(ctx context.Context) {
	if err := s.rollups.Bump(ctx); err != nil {
		s.log.Error("sales cache bump failed", slog.Any("error", err))
	}
}

func (s *receiptService) publish(action string, r *model.Receipt, actor Actor) {
	s.events.Publish(EventReceiptUpdate, map[string]interface{}{
		"action": action,
		"store":  string(r.Store),
		"receipt": map[string]interface{}{
			"id":          r.ID,
			"reference":   r.Reference,
			"store":       r.Store,
			"total":       r.Total.StringFixed(2),
			"voided":      r.Voided,
			"print_count": r.PrintCount,
		},
		"user": actor.payload(),
	})
}
