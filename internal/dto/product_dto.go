package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name             string           `json:"name"              validate:"required,min=2,max=120"`
	Description      *string          `json:"description"`
	Unit             string           `json:"unit"              validate:"required"`
	ItemsPerPack     int              `json:"items_per_pack"    validate:"omitempty,min=1"`
	BuyPrice         decimal.Decimal  `json:"buy_price"         validate:"required"`
	RecommendedPrice *decimal.Decimal `json:"recommended_price"`
	MinStockLevel    *decimal.Decimal `json:"min_stock_level"`
}

type UpdateProductRequest struct {
	Name             *string          `json:"name"              validate:"omitempty,min=2,max=120"`
	Description      *string          `json:"description"`
	Unit             *string          `json:"unit"`
	ItemsPerPack     *int             `json:"items_per_pack"    validate:"omitempty,min=1"`
	BuyPrice         *decimal.Decimal `json:"buy_price"`
	RecommendedPrice *decimal.Decimal `json:"recommended_price"`
	MinStockLevel    *decimal.Decimal `json:"min_stock_level"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name   string `form:"name"`
	Active string `form:"active"` // "" (active) | false | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductResponse is the role-scoped product view. BuyPrice is only set for
// admins; RecommendedPrice for managers and admins. Workers see neither.
type ProductResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      *string          `json:"description,omitempty"`
	Unit             string           `json:"unit"`
	ItemsPerPack     int              `json:"items_per_pack"`
	Quantity         decimal.Decimal  `json:"quantity"`
	MinStockLevel    decimal.Decimal  `json:"min_stock_level"`
	Active           bool             `json:"active"`
	RecommendedPrice *decimal.Decimal `json:"recommended_price,omitempty"`
	BuyPrice         *decimal.Decimal `json:"buy_price,omitempty"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
