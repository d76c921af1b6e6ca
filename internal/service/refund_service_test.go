package service

import (
	"context"
	"testing"

	"stockbook/internal/dto"
	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refundFixture struct {
	saleSvc   SaleService
	refundSvc RefundService
	sales     *stubSaleRepo
	refunds   *stubRefundRepo
	clients   *stubClientRepo
	products  *stubProductRepo
	movements *stubMovementRepo
	cache     *stubProductCache
}

func newRefundFixture(products []*model.Product, clients ...*model.Client) *refundFixture {
	productRepo := newStubProductRepo(products...)
	movementRepo := &stubMovementRepo{}
	expenseRepo := &stubExpenseRepo{}
	saleRepo := &stubSaleRepo{}
	refundRepo := &stubRefundRepo{}
	clientRepo := newStubClientRepo(clients...)
	cache := newStubProductCache()
	stock := NewStockService(productRepo, movementRepo, expenseRepo, nil, cache)
	return &refundFixture{
		saleSvc:   NewSaleService(saleRepo, clientRepo, stock, nil, cache),
		refundSvc: NewRefundService(refundRepo, saleRepo, clientRepo, stock, cache),
		sales:     saleRepo,
		refunds:   refundRepo,
		clients:   clientRepo,
		products:  productRepo,
		movements: movementRepo,
		cache:     cache,
	}
}

// sell is a helper that runs a sale through the real sale engine so the
// refund under test operates on realistic state.
func (f *refundFixture) sell(t *testing.T, clientID *string, paid string, items ...dto.SaleItemRequest) uuid.UUID {
	t.Helper()
	resp, err := f.saleSvc.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID:   clientID,
		PaidAmount: dec(paid),
		Items:      items,
	}, uuid.New())
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func TestCreateRefundRestoresStock(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice})
	saleID := f.sell(t, nil, "15.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("5"), SoldPrice: dec("3.00")})

	resp, err := f.refundSvc.CreateRefund(context.Background(), saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: rice.ID.String(), Quantity: dec("2")}},
	}, uuid.New())
	require.NoError(t, err)

	// 2 back at the original 3.00 line price.
	assert.True(t, resp.TotalRefundAmount.Equal(dec("6.00")))
	assert.True(t, f.products.products[rice.ID].Quantity.Equal(dec("17")))

	// Sale out movement plus refund in movement.
	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, model.MovementIn, f.movements.movements[1].Kind)
	assert.True(t, f.movements.movements[1].ChangeAmount.Equal(dec("2")))
}

func TestCreateRefundUsesOriginalPriceSnapshot(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice})
	saleID := f.sell(t, nil, "6.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("2"), SoldPrice: dec("3.00")})

	// Catalog price changes after the sale must not leak into the refund.
	f.products.products[rice.ID].RecommendedPrice = ptrDec("9.99")

	resp, err := f.refundSvc.CreateRefund(context.Background(), saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: rice.ID.String(), Quantity: dec("1")}},
	}, uuid.New())
	require.NoError(t, err)

	assert.True(t, resp.Items[0].RefundPrice.Equal(dec("3.00")))
	assert.True(t, resp.TotalRefundAmount.Equal(dec("3.00")))
}

func TestCreateRefundReducesDebtFlooredAtZero(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("40")}
	client := &model.Client{FullName: "Aibek", Phone: "555-0001", Active: true}
	f := newRefundFixture([]*model.Product{rice}, client)
	clientID := client.ID.String()

	// Credit sale: 50 total, 30 paid, 20 of debt.
	saleID := f.sell(t, &clientID, "30.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("10"), SoldPrice: dec("5.00")})
	require.True(t, f.clients.clients[client.ID].TotalDebt.Equal(dec("20.00")))

	// Refunding 8 units = 40, more than the outstanding 20: floor at zero.
	_, err := f.refundSvc.CreateRefund(context.Background(), saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: rice.ID.String(), Quantity: dec("8")}},
	}, uuid.New())
	require.NoError(t, err)

	assert.True(t, f.clients.clients[client.ID].TotalDebt.IsZero())
}

func TestCreateRefundProductNotInSale(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	oil := &model.Product{Name: "Oil", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice, oil})
	saleID := f.sell(t, nil, "3.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("1"), SoldPrice: dec("3.00")})

	_, err := f.refundSvc.CreateRefund(context.Background(), saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: oil.ID.String(), Quantity: dec("1")}},
	}, uuid.New())

	var notInSale *ProductNotInSaleError
	require.ErrorAs(t, err, &notInSale)
	assert.Equal(t, oil.ID, notInSale.ProductID)
}

func TestCreateRefundOverOriginalQuantity(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice})
	saleID := f.sell(t, nil, "9.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("3"), SoldPrice: dec("3.00")})

	_, err := f.refundSvc.CreateRefund(context.Background(), saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: rice.ID.String(), Quantity: dec("4")}},
	}, uuid.New())

	var overRefund *OverRefundError
	require.ErrorAs(t, err, &overRefund)
	assert.True(t, overRefund.Available.Equal(dec("3")))

	// Rejected before any restock.
	assert.True(t, f.products.products[rice.ID].Quantity.Equal(dec("17")))
}

func TestCreateRefundRepeatedPerLineAccepted(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice})
	saleID := f.sell(t, nil, "15.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("5"), SoldPrice: dec("3.00")})
	ctx := context.Background()

	// Each refund is validated against the original line quantity only;
	// the cumulative overshoot is logged, not rejected.
	for i := 0; i < 2; i++ {
		_, err := f.refundSvc.CreateRefund(ctx, saleID, dto.CreateRefundRequest{
			Items: []dto.RefundItemRequest{{ProductID: rice.ID.String(), Quantity: dec("4")}},
		}, uuid.New())
		require.NoError(t, err)
	}

	refunded, err := f.refunds.SumRefundedQuantity(ctx, saleID, rice.ID)
	require.NoError(t, err)
	assert.True(t, refunded.Equal(dec("8")))
}

func TestCreateRefundSaleNotFound(t *testing.T) {
	f := newRefundFixture(nil)

	_, err := f.refundSvc.CreateRefund(context.Background(), uuid.New(), dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{{ProductID: uuid.NewString(), Quantity: dec("1")}},
	}, uuid.New())

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "sale", notFound.Entity)
}

func TestCreateRefundInvalidatesCachedProduct(t *testing.T) {
	rice := &model.Product{Name: "Rice", Quantity: dec("20")}
	f := newRefundFixture([]*model.Product{rice})
	ctx := context.Background()

	saleID := f.sell(t, nil, "10.00",
		dto.SaleItemRequest{ProductID: rice.ID.String(), Quantity: dec("2"), SoldPrice: dec("5.00")})

	// A read-through after the sale cached the product at quantity 18.
	f.cache.Set(ctx, f.products.products[rice.ID])

	_, err := f.refundSvc.CreateRefund(ctx, saleID, dto.CreateRefundRequest{
		Items: []dto.RefundItemRequest{
			{ProductID: rice.ID.String(), Quantity: dec("2")},
		},
	}, uuid.New())
	require.NoError(t, err)

	_, cached := f.cache.Get(ctx, rice.ID)
	assert.False(t, cached, "restocked product must be dropped from the cache")
}
