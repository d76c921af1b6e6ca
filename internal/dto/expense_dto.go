package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Category    string          `json:"category"    validate:"required,oneof=salary rent utilities taxes purchase other"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
}

type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"    validate:"omitempty,oneof=salary rent utilities taxes purchase other"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
}

type ExpenseFilter struct {
	From string `form:"from"` // RFC 3339 or YYYY-MM-DD
	To   string `form:"to"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ExpenseResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	PerformedBy string          `json:"performed_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
}
