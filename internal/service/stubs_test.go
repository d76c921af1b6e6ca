package service

import (
	"context"
	"time"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. Their DB() returns nil, which makes runTx
// call the transaction body directly — services execute the same code
// path they run in production, minus the actual SQL.

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── products ────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) AddQuantityTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity = p.Quantity.Add(delta)
	return nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	all, _ := r.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Quantity.LessThanOrEqual(p.MinStockLevel) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── stock movements ─────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) DeltasAfter(_ context.Context, cutoff time.Time) ([]repository.ProductDelta, error) {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, m := range r.movements {
		if m.CreatedAt.After(cutoff) {
			sums[m.ProductID] = sums[m.ProductID].Add(m.ChangeAmount)
		}
	}
	out := make([]repository.ProductDelta, 0, len(sums))
	for id, delta := range sums {
		out = append(out, repository.ProductDelta{ProductID: id, Delta: delta})
	}
	return out, nil
}

// ── expenses ────────────────────────────────────────────────────────────────

type stubExpenseRepo struct {
	expenses []model.Expense
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	return r.CreateTx(nil, e)
}

func (r *stubExpenseRepo) CreateTx(_ *gorm.DB, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.expenses = append(r.expenses, *e)
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	for i := range r.expenses {
		if r.expenses[i].ID == id {
			copied := r.expenses[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubExpenseRepo) List(_ context.Context, from, to *time.Time) ([]model.Expense, error) {
	if from == nil || to == nil {
		return append([]model.Expense(nil), r.expenses...), nil
	}
	var out []model.Expense
	for _, e := range r.expenses {
		if !e.CreatedAt.Before(*from) && !e.CreatedAt.After(*to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	for i := range r.expenses {
		if r.expenses[i].ID == e.ID {
			r.expenses[i] = *e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.expenses {
		if r.expenses[i].ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubExpenseRepo) SumAmounts(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.expenses {
		if !e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// ── sales ───────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales []model.Sale
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales = append(r.sales, *s)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for i := range r.sales {
		if r.sales[i].ID == id {
			copied := r.sales[i]
			copied.Items = append([]model.SaleItem(nil), r.sales[i].Items...)
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	return append([]model.Sale(nil), r.sales...), int64(len(r.sales)), nil
}

func (r *stubSaleRepo) ProductHistory(_ context.Context, _ uuid.UUID, _, _ int) ([]repository.SaleHistoryRow, error) {
	return nil, nil
}

func (r *stubSaleRepo) SumTotals(_ context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var count int64
	for _, s := range r.sales {
		if !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) {
			sum = sum.Add(s.TotalAmount)
			count++
		}
	}
	return sum, count, nil
}

func (r *stubSaleRepo) ProductSummary(_ context.Context, from, to time.Time) ([]repository.ProductSalesRow, error) {
	byProduct := make(map[uuid.UUID]*repository.ProductSalesRow)
	for _, s := range r.sales {
		if s.CreatedAt.Before(from) || s.CreatedAt.After(to) {
			continue
		}
		for _, item := range s.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &repository.ProductSalesRow{ProductID: item.ProductID}
				byProduct[item.ProductID] = row
			}
			row.TotalQuantity = row.TotalQuantity.Add(item.Quantity)
			row.TotalRevenue = row.TotalRevenue.Add(item.Quantity.Mul(item.Price))
		}
	}
	out := make([]repository.ProductSalesRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

// ── clients ─────────────────────────────────────────────────────────────────

type stubClientRepo struct {
	clients  map[uuid.UUID]*model.Client
	payments []model.Payment
}

func newStubClientRepo(clients ...*model.Client) *stubClientRepo {
	r := &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
	for _, c := range clients {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.clients[c.ID] = c
	}
	return r
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *stubClientRepo) FindByPhone(_ context.Context, phone string) (*model.Client, error) {
	for _, c := range r.clients {
		if c.Phone == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClientRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Client, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clients[id]; ok {
		c.Active = false
	}
	return nil
}

func (r *stubClientRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clients[id]; ok {
		c.Active = true
	}
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) SetDebtTx(_ *gorm.DB, id uuid.UUID, debt decimal.Decimal) error {
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalDebt = debt
	return nil
}

func (r *stubClientRepo) CreatePaymentTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubClientRepo) ListPayments(_ context.Context, clientID uuid.UUID, _, _ int) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) DB() *gorm.DB { return nil }

// ── refunds ─────────────────────────────────────────────────────────────────

type stubRefundRepo struct {
	refunds []model.Refund
}

func (r *stubRefundRepo) CreateTx(_ *gorm.DB, rf *model.Refund) error {
	if rf.ID == uuid.Nil {
		rf.ID = uuid.New()
	}
	if rf.CreatedAt.IsZero() {
		rf.CreatedAt = time.Now()
	}
	for i := range rf.Items {
		if rf.Items[i].ID == uuid.Nil {
			rf.Items[i].ID = uuid.New()
		}
		rf.Items[i].RefundID = rf.ID
	}
	r.refunds = append(r.refunds, *rf)
	return nil
}

func (r *stubRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Refund, error) {
	for i := range r.refunds {
		if r.refunds[i].ID == id {
			copied := r.refunds[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRefundRepo) List(_ context.Context, _, _ int) ([]model.Refund, int64, error) {
	return append([]model.Refund(nil), r.refunds...), int64(len(r.refunds)), nil
}

func (r *stubRefundRepo) SumRefundedQuantity(_ context.Context, saleID, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, rf := range r.refunds {
		if rf.SaleID != saleID {
			continue
		}
		for _, item := range rf.Items {
			if item.ProductID == productID {
				sum = sum.Add(item.Quantity)
			}
		}
	}
	return sum, nil
}

func (r *stubRefundRepo) SumTotals(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, rf := range r.refunds {
		if !rf.CreatedAt.Before(from) && !rf.CreatedAt.After(to) {
			sum = sum.Add(rf.TotalRefundAmount)
		}
	}
	return sum, nil
}

// ── product cache ───────────────────────────────────────────────────────────

type stubProductCache struct {
	entries     map[uuid.UUID]*model.Product
	invalidated []uuid.UUID
}

func newStubProductCache() *stubProductCache {
	return &stubProductCache{entries: make(map[uuid.UUID]*model.Product)}
}

func (c *stubProductCache) Get(_ context.Context, id uuid.UUID) (*model.Product, bool) {
	p, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	copied := *p
	return &copied, true
}

func (c *stubProductCache) Set(_ context.Context, p *model.Product) {
	copied := *p
	c.entries[p.ID] = &copied
}

func (c *stubProductCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
}
