package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone"     validate:"required,min=5,max=20"`
}

type UpdateClientRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone    *string `json:"phone"     validate:"omitempty,min=5,max=20"`
}

type RecordPaymentRequest struct {
	ClientID    string          `json:"client_id"   validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ClientFilter struct {
	Search      string `form:"search"`
	Active      string `form:"active"` // "" (active) | false | all
	DebtorsOnly bool   `form:"debtors_only"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=50"  validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClientResponse struct {
	ID        string          `json:"id"`
	FullName  string          `json:"full_name"`
	Phone     string          `json:"phone"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"created_at"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type PaymentResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	PerformedBy string          `json:"performed_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
	// RemainingDebt is the client's debt after the payment was applied
	RemainingDebt decimal.Decimal `json:"remaining_debt"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
