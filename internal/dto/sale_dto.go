package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	// SoldPrice is the negotiated unit price. The engine never overrides it
	// with the catalog price; it is snapshotted into the sale line as-is.
	SoldPrice decimal.Decimal `json:"sold_price" validate:"required"`
}

type CreateSaleRequest struct {
	ClientID   *string           `json:"client_id"   validate:"omitempty,uuid"`
	PaidAmount decimal.Decimal   `json:"paid_amount"`
	Items      []SaleItemRequest `json:"items"       validate:"required,min=1,dive"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type SaleFilter struct {
	ClientIDRaw string `form:"client_id"`
	FromRaw     string `form:"from"` // RFC 3339 or YYYY-MM-DD
	ToRaw       string `form:"to"`
	DebtOnly    bool   `form:"debt_only"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`

	// Parsed by the handler; repos consume these.
	ClientID *uuid.UUID `form:"-"`
	From     *time.Time `form:"-"`
	To       *time.Time `form:"-"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID          string             `json:"id"`
	ClientID    *string            `json:"client_id,omitempty"`
	ClientName  *string            `json:"client_name,omitempty"`
	SellerID    string             `json:"seller_id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	PaidAmount  decimal.Decimal    `json:"paid_amount"`
	IsDebt      bool               `json:"is_debt"`
	Items       []SaleItemResponse `json:"items"`
	CreatedAt   string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type ProductSaleHistoryItem struct {
	SaleID     string          `json:"sale_id"`
	SaleDate   string          `json:"sale_date"`
	ClientName string          `json:"client_name"`
	SellerName string          `json:"seller_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
}
