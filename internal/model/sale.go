package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a committed business event. Created once, never mutated —
// corrections happen through refunds, not edits.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID    *uuid.UUID      `gorm:"type:uuid;index"`
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// IsDebt marks a credit sale: paid < total, remainder on the client's debt
	IsDebt    bool `gorm:"not null;default:false"`
	CreatedAt time.Time

	Client *Client    `gorm:"foreignKey:ClientID"`
	Seller *User      `gorm:"foreignKey:SellerID"`
	Items  []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem holds a quantity and the price snapshot captured at sale time.
// Price is intentionally decoupled from later catalog price changes.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
