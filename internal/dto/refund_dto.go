package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RefundItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
}

type CreateRefundRequest struct {
	Items  []RefundItemRequest `json:"items"  validate:"required,min=1,dive"`
	Reason *string             `json:"reason" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RefundItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	RefundPrice decimal.Decimal `json:"refund_price"`
}

type RefundResponse struct {
	ID                string               `json:"id"`
	SaleID            string               `json:"sale_id"`
	TotalRefundAmount decimal.Decimal      `json:"total_refund_amount"`
	Reason            *string              `json:"reason,omitempty"`
	Items             []RefundItemResponse `json:"items"`
	CreatedAt         string               `json:"created_at"`
}

type RefundListResponse struct {
	Data  []RefundResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
