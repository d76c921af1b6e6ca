package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory is a closed set; PURCHASE rows are auto-generated by
// stock receipts (cost of goods is booked at receipt time).
type ExpenseCategory string

const (
	ExpenseSalary    ExpenseCategory = "salary"
	ExpenseRent      ExpenseCategory = "rent"
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseTaxes     ExpenseCategory = "taxes"
	ExpensePurchase  ExpenseCategory = "purchase"
	ExpenseOther     ExpenseCategory = "other"
)

// Valid reports whether c is one of the declared categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseSalary, ExpenseRent, ExpenseUtilities, ExpenseTaxes, ExpensePurchase, ExpenseOther:
		return true
	}
	return false
}

// Expense is the one mutable ledger row: operators may edit amount,
// category and description post-hoc. Edits never cascade back into the
// stock movement that generated a PURCHASE expense.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category    ExpenseCategory `gorm:"type:varchar(20);not null;index"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Actor *User `gorm:"foreignKey:ActorID"`
}
