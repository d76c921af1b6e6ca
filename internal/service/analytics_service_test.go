package service

import (
	"context"
	"testing"
	"time"

	"stockbook/internal/dto"
	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsFixture struct {
	svc       *analyticsService
	sales     *stubSaleRepo
	refunds   *stubRefundRepo
	expenses  *stubExpenseRepo
	products  *stubProductRepo
	movements *stubMovementRepo
}

func newAnalyticsFixture(now time.Time, products ...*model.Product) *analyticsFixture {
	f := &analyticsFixture{
		sales:     &stubSaleRepo{},
		refunds:   &stubRefundRepo{},
		expenses:  &stubExpenseRepo{},
		products:  newStubProductRepo(products...),
		movements: &stubMovementRepo{},
	}
	f.svc = &analyticsService{
		sales:     f.sales,
		refunds:   f.refunds,
		expenses:  f.expenses,
		products:  f.products,
		movements: f.movements,
		now:       func() time.Time { return now },
	}
	return f
}

func TestPeriodSummaryToday(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	f := newAnalyticsFixture(now)

	today := now.Add(-2 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)

	f.sales.sales = append(f.sales.sales,
		model.Sale{ID: uuid.New(), TotalAmount: dec("100.00"), CreatedAt: today},
		model.Sale{ID: uuid.New(), TotalAmount: dec("50.00"), CreatedAt: today},
		model.Sale{ID: uuid.New(), TotalAmount: dec("999.00"), CreatedAt: yesterday},
	)
	f.refunds.refunds = append(f.refunds.refunds,
		model.Refund{ID: uuid.New(), TotalRefundAmount: dec("20.00"), CreatedAt: today},
	)
	f.expenses.expenses = append(f.expenses.expenses,
		model.Expense{ID: uuid.New(), Amount: dec("40.00"), Category: model.ExpensePurchase, CreatedAt: today},
		model.Expense{ID: uuid.New(), Amount: dec("500.00"), Category: model.ExpenseRent, CreatedAt: yesterday},
	)

	resp, err := f.svc.PeriodSummary(context.Background(), dto.AnalyticsQuery{})
	require.NoError(t, err)

	assert.Equal(t, "today", resp.Period)
	assert.True(t, resp.TotalRevenue.Equal(dec("150.00")))
	assert.True(t, resp.TotalRefunds.Equal(dec("20.00")))
	assert.True(t, resp.TotalExpenses.Equal(dec("40.00")))
	assert.True(t, resp.NetRevenue.Equal(dec("130.00")))
	// Cost of goods already sits in expenses as PURCHASE rows, so profit
	// is simply net revenue minus expenses.
	assert.True(t, resp.NetProfit.Equal(dec("90.00")))
	assert.Equal(t, int64(2), resp.SalesCount)
}

func TestPeriodSummaryExplicitMonthWins(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	f := newAnalyticsFixture(now)

	inJune := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	f.sales.sales = append(f.sales.sales,
		model.Sale{ID: uuid.New(), TotalAmount: dec("70.00"), CreatedAt: inJune},
		model.Sale{ID: uuid.New(), TotalAmount: dec("30.00"), CreatedAt: now},
	)

	// Month set alongside a period name: the calendar month wins.
	resp, err := f.svc.PeriodSummary(context.Background(), dto.AnalyticsQuery{Period: "today", Month: 6})
	require.NoError(t, err)

	assert.Equal(t, "June 2026", resp.Period)
	assert.True(t, resp.TotalRevenue.Equal(dec("70.00")))
	assert.Equal(t, int64(1), resp.SalesCount)
}

func TestPeriodSummaryUnknownPeriod(t *testing.T) {
	f := newAnalyticsFixture(time.Now())

	_, err := f.svc.PeriodSummary(context.Background(), dto.AnalyticsQuery{Period: "quarter"})

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestMonthlyStockReportReconstructsHistory(t *testing.T) {
	rice := &model.Product{Name: "Rice", Unit: "kg", Quantity: dec("12")}
	oil := &model.Product{Name: "Oil", Unit: "l", Quantity: dec("5")}
	now := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	f := newAnalyticsFixture(now, rice, oil)

	// Rice: +10 in July (before the cutoff), then +4 and -2 in August.
	// End-of-July stock must come out as 12 - (4 - 2) = 10.
	f.movements.movements = append(f.movements.movements,
		model.StockMovement{ProductID: rice.ID, ChangeAmount: dec("10"), Kind: model.MovementIn,
			CreatedAt: time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC)},
		model.StockMovement{ProductID: rice.ID, ChangeAmount: dec("4"), Kind: model.MovementIn,
			CreatedAt: time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC)},
		model.StockMovement{ProductID: rice.ID, ChangeAmount: dec("-2"), Kind: model.MovementOut,
			CreatedAt: time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)},
	)

	report, err := f.svc.MonthlyStockReport(context.Background(), 7, 2026)
	require.NoError(t, err)
	require.Len(t, report, 2)

	byName := make(map[string]dto.StockReportItem, len(report))
	for _, item := range report {
		byName[item.Name] = item
	}
	assert.True(t, byName["Rice"].HistoricalQuantity.Equal(dec("10")))
	// No movements after the cutoff: history equals the live quantity.
	assert.True(t, byName["Oil"].HistoricalQuantity.Equal(dec("5")))
}

func TestMonthlyStockReportInvalidMonth(t *testing.T) {
	f := newAnalyticsFixture(time.Now())

	_, err := f.svc.MonthlyStockReport(context.Background(), 13, 2026)

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestProductSalesSummary(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	f := newAnalyticsFixture(now)

	riceID := uuid.New()
	f.sales.sales = append(f.sales.sales,
		model.Sale{
			ID:          uuid.New(),
			TotalAmount: dec("9.00"),
			CreatedAt:   now.Add(-time.Hour),
			Items: []model.SaleItem{
				{ProductID: riceID, Quantity: dec("3"), Price: dec("3.00")},
			},
		},
		model.Sale{
			ID:          uuid.New(),
			TotalAmount: dec("6.00"),
			CreatedAt:   now.Add(-2 * time.Hour),
			Items: []model.SaleItem{
				{ProductID: riceID, Quantity: dec("2"), Price: dec("3.00")},
			},
		},
	)

	items, err := f.svc.ProductSalesSummary(context.Background(), dto.SalesSummaryQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, items[0].TotalQuantity.Equal(dec("5")))
	assert.True(t, items[0].TotalRevenue.Equal(dec("15.00")))
}

func TestProductSalesSummaryRejectsBadRange(t *testing.T) {
	f := newAnalyticsFixture(time.Now())

	_, err := f.svc.ProductSalesSummary(context.Background(), dto.SalesSummaryQuery{From: "garbage"})

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
