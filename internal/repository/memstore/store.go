// Package memstore is an in-memory repository.Store. It backs tests and the
// STORE_DRIVER=memory development mode; WithTx snapshots state and restores
// it when the callback fails, so rollbacks behave like the database.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicate mirrors a unique-constraint violation.
var ErrDuplicate = errors.New("memstore: duplicate key")

type state struct {
	designs   map[uuid.UUID]model.Design
	items     map[uuid.UUID]model.Item
	movements []model.StockMovement
	orders    map[uuid.UUID]model.Order
	receipts  map[uuid.UUID]model.Receipt
	cash      map[uuid.UUID]model.CashEntry
}

func newState() *state {
	return &state{
		designs:  make(map[uuid.UUID]model.Design),
		items:    make(map[uuid.UUID]model.Item),
		orders:   make(map[uuid.UUID]model.Order),
		receipts: make(map[uuid.UUID]model.Receipt),
		cash:     make(map[uuid.UUID]model.CashEntry),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.designs {
		c.designs[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	c.movements = append(c.movements, st.movements...)
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.receipts {
		c.receipts[k] = cloneReceipt(v)
	}
	for k, v := range st.cash {
		c.cash[k] = v
	}
	return c
}

type root struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// Store implements repository.Store in memory.
type Store struct {
	root *root
	inTx bool
}

// Option configures a Store.
type Option func(*root)

// WithClock overrides the timestamp source used for created/updated fields.
func WithClock(now func() time.Time) Option {
	return func(r *root) { r.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	r := &root{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return &Store{root: r}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.root.mu.Lock()
	return s.root.mu.Unlock
}

func (s *Store) data() *state { return s.root.st }

func (s *Store) Designs() repository.DesignRepository     { return designs{s} }
func (s *Store) Items() repository.ItemRepository         { return items{s} }
func (s *Store) Movements() repository.MovementRepository { return movements{s} }
func (s *Store) Orders() repository.OrderRepository       { return orders{s} }
func (s *Store) Receipts() repository.ReceiptRepository   { return receipts{s} }
func (s *Store) Cash() repository.CashRepository          { return cash{s} }

// WithTx serialises fn against every other access and rolls state back on error.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	snapshot := s.root.st.clone()
	err := fn(&Store{root: s.root, inTx: true})
	if err == nil {
		// a cancelled context aborts the commit like the database would
		err = ctx.Err()
	}
	if err != nil {
		s.root.st = snapshot
		return err
	}
	return nil
}

func (s *Store) stamp(base *model.BaseModel) {
	now := s.root.now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func (s *Store) retire(base *model.BaseModel, by string) {
	base.DeletedAt = gorm.DeletedAt{Time: s.root.now(), Valid: true}
	base.DeletedBy = by
}

// designs

type designs struct{ s *Store }

func (r designs) Create(ctx context.Context, d *model.Design) error {
	defer r.s.lock()()
	for _, existing := range r.s.data().designs {
		if existing.Code == d.Code {
			return ErrDuplicate
		}
	}
	r.s.stamp(&d.BaseModel)
	stored := *d
	stored.Items = nil
	r.s.data().designs[d.ID] = stored
	return nil
}

func (r designs) Update(ctx context.Context, d *model.Design) error {
	defer r.s.lock()()
	if _, ok := r.s.data().designs[d.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.data().designs {
		if id != d.ID && existing.Code == d.Code {
			return ErrDuplicate
		}
	}
	r.s.stamp(&d.BaseModel)
	stored := *d
	stored.Items = nil
	r.s.data().designs[d.ID] = stored
	return nil
}

func (r designs) FindByID(ctx context.Context, id uuid.UUID) (*model.Design, error) {
	defer r.s.lock()()
	d, ok := r.s.data().designs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r designs) FindByCode(ctx context.Context, code string) (*model.Design, error) {
	defer r.s.lock()()
	for _, d := range r.s.data().designs {
		if d.Code == code {
			found := d
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r designs) FindAll(ctx context.Context) ([]model.Design, error) {
	defer r.s.lock()()
	out := make([]model.Design, 0, len(r.s.data().designs))
	for _, d := range r.s.data().designs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// items

type items struct{ s *Store }

func (r items) CreateBatch(ctx context.Context, batch []model.Item) error {
	defer r.s.lock()()
	seen := make(map[string]bool)
	for _, it := range r.s.data().items {
		seen[unitKey(it)] = true
	}
	for i := range batch {
		if _, ok := r.s.data().designs[batch[i].DesignID]; !ok {
			return repository.ErrNotFound
		}
		key := unitKey(batch[i])
		if seen[key] {
			return ErrDuplicate
		}
		seen[key] = true
	}
	for i := range batch {
		r.s.stamp(&batch[i].BaseModel)
		stored := batch[i]
		stored.Design = nil
		r.s.data().items[stored.ID] = stored
	}
	return nil
}

func unitKey(it model.Item) string {
	return it.DesignID.String() + "|" + string(it.Warehouse) + "|" + it.Color + "|" + it.Size
}

func (r items) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	defer r.s.lock()()
	return r.s.itemWithDesign(id)
}

func (r items) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	defer r.s.lock()()
	it, ok := r.s.data().items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *Store) itemWithDesign(id uuid.UUID) (*model.Item, error) {
	it, ok := s.data().items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if d, ok := s.data().designs[it.DesignID]; ok {
		it.Design = &d
	}
	return &it, nil
}

func (r items) FindByDesign(ctx context.Context, designID uuid.UUID) ([]model.Item, error) {
	defer r.s.lock()()
	var out []model.Item
	for _, it := range r.s.data().items {
		if it.DesignID == designID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return unitKey(out[i]) < unitKey(out[j]) })
	return out, nil
}

func (r items) FindUnit(ctx context.Context, designID uuid.UUID, warehouse model.Warehouse, color, size string) (*model.Item, error) {
	defer r.s.lock()()
	for _, it := range r.s.data().items {
		if it.DesignID == designID && it.Warehouse == warehouse && it.Color == color && it.Size == size {
			found := it
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r items) UpdateStock(ctx context.Context, id uuid.UUID, newStock int, updatedBy string) error {
	defer r.s.lock()()
	it, ok := r.s.data().items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if newStock < 0 {
		return errors.New("memstore: check constraint stock >= 0 violated")
	}
	it.Stock = newStock
	it.UpdatedBy = updatedBy
	r.s.stamp(&it.BaseModel)
	r.s.data().items[id] = it
	return nil
}

func (r items) SumStockByDesign(ctx context.Context, designIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	defer r.s.lock()()
	wanted := make(map[uuid.UUID]bool, len(designIDs))
	for _, id := range designIDs {
		wanted[id] = true
	}
	sums := make(map[uuid.UUID]int, len(designIDs))
	for _, it := range r.s.data().items {
		if wanted[it.DesignID] {
			sums[it.DesignID] += it.Stock
		}
	}
	return sums, nil
}

// movements

type movements struct{ s *Store }

func (r movements) Create(ctx context.Context, m *model.StockMovement) error {
	defer r.s.lock()()
	r.s.stamp(&m.BaseModel)
	stored := *m
	stored.Item = nil
	r.s.data().movements = append(r.s.data().movements, stored)
	return nil
}

func (r movements) FindByItem(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error) {
	defer r.s.lock()()
	var out []model.StockMovement
	for i := len(r.s.data().movements) - 1; i >= 0; i-- {
		if m := r.s.data().movements[i]; m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r movements) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	defer r.s.lock()()
	byDay := make(map[string]*repository.StockMovementData)
	for _, m := range r.s.data().movements {
		if m.CreatedAt.Before(startDate) || m.CreatedAt.After(endDate) {
			continue
		}
		day := m.CreatedAt.Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &repository.StockMovementData{Date: day}
			byDay[day] = row
		}
		if m.Delta > 0 {
			row.Inbound += m.Delta
		} else {
			row.Outbound -= m.Delta
		}
	}
	out := make([]repository.StockMovementData, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// orders

type orders struct{ s *Store }

func (r orders) Create(ctx context.Context, o *model.Order) error {
	defer r.s.lock()()
	if _, ok := r.s.data().items[o.ItemID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&o.BaseModel)
	stored := *o
	stored.Item = nil
	r.s.data().orders[o.ID] = stored
	return nil
}

func (r orders) Update(ctx context.Context, o *model.Order) error {
	defer r.s.lock()()
	if _, ok := r.s.data().orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&o.BaseModel)
	stored := *o
	stored.Item = nil
	r.s.data().orders[o.ID] = stored
	return nil
}

func (r orders) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.data().orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Item, _ = r.s.itemWithDesign(o.ItemID)
	return &o, nil
}

func (r orders) FindAll(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	defer r.s.lock()()
	var out []model.Order
	for _, o := range r.s.data().orders {
		if filter.ItemID != nil && o.ItemID != *filter.ItemID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			continue
		}
		o.Item, _ = r.s.itemWithDesign(o.ItemID)
		if filter.Warehouse != "" && (o.Item == nil || o.Item.Warehouse != filter.Warehouse) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r orders) Delete(ctx context.Context, ids []uuid.UUID, deletedBy string) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, id := range ids {
		if _, ok := r.s.data().orders[id]; ok {
			delete(r.s.data().orders, id)
			n++
		}
	}
	return n, nil
}

// receipts

type receipts struct{ s *Store }

func cloneReceipt(rc model.Receipt) model.Receipt {
	rc.Lines = append([]model.ReceiptLine(nil), rc.Lines...)
	rc.Payments = append([]model.ReceiptPayment(nil), rc.Payments...)
	return rc
}

func (r receipts) Create(ctx context.Context, rc *model.Receipt) error {
	defer r.s.lock()()
	for _, existing := range r.s.data().receipts {
		if existing.Reference == rc.Reference {
			return ErrDuplicate
		}
	}
	r.s.stamp(&rc.BaseModel)
	for i := range rc.Lines {
		rc.Lines[i].ReceiptID = rc.ID
	}
	for i := range rc.Payments {
		rc.Payments[i].ReceiptID = rc.ID
	}
	r.s.data().receipts[rc.ID] = cloneReceipt(*rc)
	return nil
}

func (r receipts) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	defer r.s.lock()()
	rc, ok := r.s.data().receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := cloneReceipt(rc)
	return &found, nil
}

func (r receipts) FindByReference(ctx context.Context, reference string) (*model.Receipt, error) {
	defer r.s.lock()()
	for _, rc := range r.s.data().receipts {
		if rc.Reference == reference {
			found := cloneReceipt(rc)
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r receipts) FindAll(ctx context.Context, filter repository.ReceiptFilter) ([]model.Receipt, error) {
	defer r.s.lock()()
	var out []model.Receipt
	for _, rc := range r.s.data().receipts {
		if filter.Store != "" && rc.Store != filter.Store {
			continue
		}
		if filter.From != nil && rc.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !rc.CreatedAt.Before(*filter.To) {
			continue
		}
		if !filter.IncludeVoided && rc.Voided {
			continue
		}
		out = append(out, cloneReceipt(rc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r receipts) MarkVoided(ctx context.Context, id uuid.UUID, at time.Time, by string) error {
	defer r.s.lock()()
	rc, ok := r.s.data().receipts[id]
	if !ok {
		return repository.ErrNotFound
	}
	rc.Voided = true
	rc.VoidedAt = &at
	rc.UpdatedBy = by
	rc.UpdatedAt = r.s.root.now()
	r.s.data().receipts[id] = rc
	return nil
}

func (r receipts) MarkReprinted(ctx context.Context, id uuid.UUID, at time.Time, by string) error {
	defer r.s.lock()()
	rc, ok := r.s.data().receipts[id]
	if !ok {
		return repository.ErrNotFound
	}
	rc.PrintCount++
	rc.LastPrintedAt = &at
	rc.UpdatedBy = by
	rc.UpdatedAt = r.s.root.now()
	r.s.data().receipts[id] = rc
	return nil
}

func (r receipts) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.data().receipts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data().receipts, id)
	return nil
}

// cash

type cash struct{ s *Store }

func (r cash) Create(ctx context.Context, e *model.CashEntry) error {
	defer r.s.lock()()
	r.s.stamp(&e.BaseModel)
	r.s.data().cash[e.ID] = *e
	return nil
}

func (r cash) FindByID(ctx context.Context, id uuid.UUID) (*model.CashEntry, error) {
	defer r.s.lock()()
	e, ok := r.s.data().cash[id]
	if !ok || e.DeletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r cash) FindByStoreAndDay(ctx context.Context, store model.Warehouse, day time.Time) ([]model.CashEntry, error) {
	defer r.s.lock()()
	want := day.Format("2006-01-02")
	var out []model.CashEntry
	for _, e := range r.s.data().cash {
		if e.DeletedAt.Valid || e.Store != store || e.BusinessDate.Format("2006-01-02") != want {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r cash) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	defer r.s.lock()()
	e, ok := r.s.data().cash[id]
	if !ok || e.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	r.s.retire(&e.BaseModel, deletedBy)
	r.s.data().cash[id] = e
	return nil
}
