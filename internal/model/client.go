package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a known buyer who may carry debt from credit sales.
// TotalDebt is clamped at zero: overpayments beyond the outstanding debt
// are absorbed, not tracked as client credit.
type Client struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName  string          `gorm:"index;not null"`
	Phone     string          `gorm:"uniqueIndex;not null"`
	TotalDebt decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Payments []Payment `gorm:"foreignKey:ClientID"`
}

// Payment is append-only. The row always records the full requested amount,
// even when the debt effect was clamped at zero — payment totals and the
// debt balance are allowed to diverge.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
	Description *string
	CreatedAt   time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
	Actor  *User   `gorm:"foreignKey:ActorID"`
}
