package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind discriminates stock movement rows. New kinds must be added
// here and handled in every switch — the compiler and the exhaustive
// switches in service/stock_service.go are the guard rail.
type MovementKind string

const (
	MovementIn         MovementKind = "in"
	MovementOut        MovementKind = "out"
	MovementAdjustment MovementKind = "adjustment"
)

// Valid reports whether k is one of the declared kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is the append-only stock ledger. Rows are never updated or
// deleted; product.quantity must always equal its initial quantity plus the
// sum of all committed ChangeAmount values for that product.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ChangeAmount is the signed delta: positive for in, negative for out.
	ChangeAmount decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Kind         MovementKind    `gorm:"type:varchar(20);not null"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null"`
	Comment      *string
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Actor   *User    `gorm:"foreignKey:ActorID"`
}
