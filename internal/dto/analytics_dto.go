package dto

import "github.com/shopspring/decimal"

// ─── Query params ────────────────────────────────────────────────────────────

// AnalyticsQuery selects either a named rolling period or an explicit
// calendar month. Month takes precedence when set.
type AnalyticsQuery struct {
	Period string `form:"period,default=today" validate:"omitempty,oneof=today week month"`
	Month  int    `form:"month"                validate:"omitempty,min=1,max=12"`
	Year   int    `form:"year"                 validate:"omitempty,min=2000,max=2100"`
}

type StockReportQuery struct {
	Month int `form:"month" validate:"required,min=1,max=12"`
	Year  int `form:"year"  validate:"required,min=2000,max=2100"`
}

type SalesSummaryQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PeriodSummaryResponse is the expense-at-receipt aggregate: cost of goods
// is already inside expenses as auto-generated PURCHASE rows, so profit is
// simply net revenue minus expenses.
type PeriodSummaryResponse struct {
	Period        string          `json:"period"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	SalesCount    int64           `json:"sales_count"`
}

type StockReportItem struct {
	ProductID          string          `json:"product_id"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	HistoricalQuantity decimal.Decimal `json:"historical_quantity"`
}

type ProductSalesSummaryItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}
