package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProcessMovementRequest is bound from POST /v1/stock/movements.
// ChangeAmount must be positive for in/out; adjustment accepts a raw signed
// delta (stock-take correction).
type ProcessMovementRequest struct {
	ProductID    string          `json:"product_id"    validate:"required,uuid"`
	ChangeAmount decimal.Decimal `json:"change_amount" validate:"required"`
	Kind         string          `json:"kind"          validate:"required,oneof=in out adjustment"`
	Comment      *string         `json:"comment"       validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockMovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
	Kind         string          `json:"kind"`
	Comment      *string         `json:"comment,omitempty"`
	PerformedBy  string          `json:"performed_by,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
