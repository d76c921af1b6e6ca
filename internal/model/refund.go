package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Refund reverses part or all of a prior sale. The original Sale row is
// never touched; the refund carries its own items and total.
type Refund struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalRefundAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason            *string
	ActorID           uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt         time.Time

	Sale  *Sale        `gorm:"foreignKey:SaleID"`
	Actor *User        `gorm:"foreignKey:ActorID"`
	Items []RefundItem `gorm:"foreignKey:RefundID"`
}

// RefundItem's RefundPrice is copied from the matching SaleItem.Price,
// not from the current catalog price.
type RefundItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RefundID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	RefundPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
