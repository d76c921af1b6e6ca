package service

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/dto"
	"stockbook/internal/repository"

	"github.com/shopspring/decimal"
)

// AnalyticsService is read-only: it aggregates committed sales, refunds
// and expenses, and reconstructs historical stock levels by replaying the
// movement ledger backwards from the live quantities.
type AnalyticsService interface {
	PeriodSummary(ctx context.Context, q dto.AnalyticsQuery) (*dto.PeriodSummaryResponse, error)
	MonthlyStockReport(ctx context.Context, month, year int) ([]dto.StockReportItem, error)
	ProductSalesSummary(ctx context.Context, q dto.SalesSummaryQuery) ([]dto.ProductSalesSummaryItem, error)
}

type analyticsService struct {
	sales     repository.SaleRepository
	refunds   repository.RefundRepository
	expenses  repository.ExpenseRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	now       func() time.Time
}

func NewAnalyticsService(
	sales repository.SaleRepository,
	refunds repository.RefundRepository,
	expenses repository.ExpenseRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
) AnalyticsService {
	return &analyticsService{
		sales:     sales,
		refunds:   refunds,
		expenses:  expenses,
		products:  products,
		movements: movements,
		now:       time.Now,
	}
}

// resolveWindow turns the query into a concrete [start, end] window and a
// human label. An explicit month/year takes precedence over the rolling
// period names.
func (s *analyticsService) resolveWindow(q dto.AnalyticsQuery) (start, end time.Time, label string, err error) {
	now := s.now()

	if q.Month != 0 {
		year := q.Year
		if year == 0 {
			year = now.Year()
		}
		start = time.Date(year, time.Month(q.Month), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0).Add(-time.Second)
		label = fmt.Sprintf("%s %d", start.Month(), year)
		return start, end, label, nil
	}

	end = now
	switch q.Period {
	case "", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		label = "today"
	case "week":
		start = now.AddDate(0, 0, -7)
		label = "week"
	case "month":
		start = now.AddDate(0, 0, -30)
		label = "month"
	default:
		return start, end, "", invalidInput("unknown period %q", q.Period)
	}
	return start, end, label, nil
}

// PeriodSummary implements the expense-at-receipt profit model: cost of
// goods is already present as auto-generated PURCHASE expenses, so
// net profit is net revenue minus all expenses in the window.
func (s *analyticsService) PeriodSummary(ctx context.Context, q dto.AnalyticsQuery) (*dto.PeriodSummaryResponse, error) {
	start, end, label, err := s.resolveWindow(q)
	if err != nil {
		return nil, err
	}

	revenue, salesCount, err := s.sales.SumTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	refunds, err := s.refunds.SumTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.SumAmounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	netRevenue := revenue.Sub(refunds)
	return &dto.PeriodSummaryResponse{
		Period:        label,
		TotalRevenue:  revenue,
		TotalRefunds:  refunds,
		TotalExpenses: expenses,
		NetRevenue:    netRevenue,
		NetProfit:     netRevenue.Sub(expenses),
		SalesCount:    salesCount,
	}, nil
}

// MonthlyStockReport reconstructs each product's quantity as of the end of
// the given month: historical = current − Σ(deltas after the cutoff).
// Correct because the movement log is complete, append-only and immutable.
func (s *analyticsService) MonthlyStockReport(ctx context.Context, month, year int) ([]dto.StockReportItem, error) {
	if month < 1 || month > 12 {
		return nil, invalidInput("invalid month %d", month)
	}
	cutoff := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.now().Location()).
		AddDate(0, 1, 0).Add(-time.Second)

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	deltas, err := s.movements.DeltasAfter(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	deltaByProduct := make(map[string]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		deltaByProduct[d.ProductID.String()] = d.Delta
	}

	report := make([]dto.StockReportItem, 0, len(products))
	for _, p := range products {
		historical := p.Quantity.Sub(deltaByProduct[p.ID.String()])
		report = append(report, dto.StockReportItem{
			ProductID:          p.ID.String(),
			Name:               p.Name,
			Unit:               p.Unit,
			HistoricalQuantity: historical,
		})
	}
	return report, nil
}

func (s *analyticsService) ProductSalesSummary(ctx context.Context, q dto.SalesSummaryQuery) ([]dto.ProductSalesSummaryItem, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := now
	if q.From != "" {
		f, err := parseDateOrTime(q.From, false)
		if err != nil {
			return nil, invalidInput("invalid from: %v", err)
		}
		start = f
	}
	if q.To != "" {
		t, err := parseDateOrTime(q.To, true)
		if err != nil {
			return nil, invalidInput("invalid to: %v", err)
		}
		end = t
	}

	rows, err := s.sales.ProductSummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductSalesSummaryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.ProductSalesSummaryItem{
			ProductID:     r.ProductID.String(),
			ProductName:   r.ProductName,
			Unit:          r.Unit,
			TotalQuantity: r.TotalQuantity,
			TotalRevenue:  r.TotalRevenue,
		})
	}
	return items, nil
}
