package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry plus its running stock quantity.
// Quantity is only ever written through the stock ledger (movements);
// every change leaves a StockMovement row behind.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Unit        string `gorm:"not null;default:'pcs'"` // kg, pcs, l, ...
	// ItemsPerPack: how many sellable units arrive in one pack
	ItemsPerPack int `gorm:"not null;default:1"`
	// BuyPrice is visible to admins only (see dto role split)
	BuyPrice         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	RecommendedPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Quantity         decimal.Decimal  `gorm:"type:decimal(14,3);not null;default:0"`
	MinStockLevel    decimal.Decimal  `gorm:"type:decimal(14,3);not null;default:10"`
	Active           bool             `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Movements []StockMovement `gorm:"foreignKey:ProductID"`
}
