package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Domain errors crossing the service boundary. Handlers map these to HTTP
// statuses with errors.Is / errors.As; raw storage errors never leak out.

// ErrCreditRequiresClient: a sale with paid < total needs a client to carry
// the remainder as debt.
var ErrCreditRequiresClient = errors.New("client must be specified when paying less than the total amount")

// ErrDuplicatePhone: client phone numbers are unique.
var ErrDuplicatePhone = errors.New("client with this phone already exists")

// InvalidInputError flags caller mistakes the storage layer never sees:
// bad uuids, non-positive quantities, unknown enum values.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func invalidInput(format string, args ...interface{}) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies a missing entity by name and id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFound builds a NotFoundError for a uuid-keyed entity.
func NewNotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// InsufficientStockError carries the product name and both sides of the
// failed comparison so the caller can render a useful message.
type InsufficientStockError struct {
	Product   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %s, available %s",
		e.Product, e.Requested, e.Available)
}

// OverRefundError: a refund asked for more than the original sale line held.
type OverRefundError struct {
	Product   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *OverRefundError) Error() string {
	return fmt.Sprintf("cannot refund %s of product %q: only %s sold",
		e.Requested, e.Product, e.Available)
}

// ProductNotInSaleError: the refunded product has no matching line item in
// the original sale.
type ProductNotInSaleError struct {
	ProductID uuid.UUID
}

func (e *ProductNotInSaleError) Error() string {
	return fmt.Sprintf("product %s is not part of this sale", e.ProductID)
}

// ReferentialIntegrityError: a delete was blocked by dependent ledger rows.
type ReferentialIntegrityError struct {
	Entity string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s cannot be deleted while dependent records exist", e.Entity)
}

// Postgres error codes we translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateNotFound converts gorm's record-not-found into the domain error.
func translateNotFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound(entity, id)
	}
	return err
}

// translateConstraint converts constraint violations raised by the storage
// layer into the matching domain error and passes everything else through.
func translateConstraint(err error, entity string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &ReferentialIntegrityError{Entity: entity}
		case pgUniqueViolation:
			if entity == "client" {
				return ErrDuplicatePhone
			}
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && entity == "client" {
		return ErrDuplicatePhone
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &ReferentialIntegrityError{Entity: entity}
	}
	return err
}
