package service

import (
	"context"
	"fmt"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"
	"stockbook/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockService is the stock ledger: the only writer of product.quantity.
// Every quantity change — operator movement, sale deduction, refund
// restock — goes through here and leaves an immutable StockMovement row.
type StockService interface {
	ProcessMovement(ctx context.Context, req dto.ProcessMovementRequest, actorID uuid.UUID) (*dto.StockMovementResponse, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)

	// Tx-scoped entry points for the sale and refund engines. They run
	// inside the caller's transaction and never book a PURCHASE expense:
	// cost of goods was already booked when the stock was received.
	DeductTx(tx *gorm.DB, productID uuid.UUID, qty decimal.Decimal, actorID uuid.UUID, comment string) (*model.Product, error)
	RestockTx(tx *gorm.DB, productID uuid.UUID, qty decimal.Decimal, actorID uuid.UUID, comment string) error
}

type stockService struct {
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	expenses   repository.ExpenseRepository
	dispatcher *worker.Dispatcher
	cache      ProductCache
}

func NewStockService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	expenses repository.ExpenseRepository,
	dispatcher *worker.Dispatcher,
	cache ProductCache,
) StockService {
	return &stockService{
		products:   products,
		movements:  movements,
		expenses:   expenses,
		dispatcher: dispatcher,
		cache:      cache,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── ProcessMovement ──────────────────────────────────────────────────────────
// One atomic transaction: lock product row, mutate quantity, append the
// movement. A receipt (in) additionally books the purchase expense in the
// same transaction — all or nothing.

func (s *stockService) ProcessMovement(ctx context.Context, req dto.ProcessMovementRequest, actorID uuid.UUID) (*dto.StockMovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, invalidInput("invalid product_id: %v", err)
	}
	kind := model.MovementKind(req.Kind)
	if !kind.Valid() {
		return nil, invalidInput("unknown movement kind %q", req.Kind)
	}
	if kind != model.MovementAdjustment && !req.ChangeAmount.IsPositive() {
		return nil, invalidInput("change_amount must be positive for in/out movements")
	}

	var movement model.StockMovement
	var lowStock *model.Product

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		// Exclusive row lock, held until commit/rollback. Serializes all
		// concurrent movements against the same product.
		product, err := s.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return translateNotFound(err, "product", productID)
		}

		var delta decimal.Decimal
		switch kind {
		case model.MovementOut:
			if product.Quantity.LessThan(req.ChangeAmount) {
				return &InsufficientStockError{
					Product:   product.Name,
					Requested: req.ChangeAmount,
					Available: product.Quantity,
				}
			}
			delta = req.ChangeAmount.Neg()
		case model.MovementIn:
			delta = req.ChangeAmount
		case model.MovementAdjustment:
			// Administrative override: raw signed delta, no sufficiency check.
			delta = req.ChangeAmount
		}

		if err := s.products.AddQuantityTx(tx, productID, delta); err != nil {
			return err
		}

		movement = model.StockMovement{
			ProductID:    productID,
			ChangeAmount: delta,
			Kind:         kind,
			ActorID:      actorID,
			Comment:      req.Comment,
		}
		if err := s.movements.CreateTx(tx, &movement); err != nil {
			return err
		}

		// Cost of goods is booked at receipt time, not at sale time.
		if kind == model.MovementIn {
			cost := req.ChangeAmount.Mul(product.BuyPrice)
			desc := fmt.Sprintf("Stock receipt: %s %s of %s", req.ChangeAmount, product.Unit, product.Name)
			expense := model.Expense{
				Amount:      cost,
				Category:    model.ExpensePurchase,
				ActorID:     actorID,
				Description: &desc,
			}
			if err := s.expenses.CreateTx(tx, &expense); err != nil {
				return err
			}
		}

		newQty := product.Quantity.Add(delta)
		if newQty.LessThanOrEqual(product.MinStockLevel) {
			snapshot := *product
			snapshot.Quantity = newQty
			lowStock = &snapshot
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// The cached product now carries a stale quantity; drop it so the next
	// read observes the committed state.
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}

	// Best-effort alert after commit — never inside the ledger transaction.
	if lowStock != nil && s.dispatcher != nil {
		_ = s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlert{
			ProductID:     lowStock.ID.String(),
			ProductName:   lowStock.Name,
			Quantity:      lowStock.Quantity.String(),
			MinStockLevel: lowStock.MinStockLevel.String(),
		})
	}

	resp := movementToResponse(&movement)
	return &resp, nil
}

// ── Tx-scoped ledger writes ──────────────────────────────────────────────────

// DeductTx locks the product row, validates sufficiency and applies an out
// movement. Returns the product with its post-deduction quantity so the
// caller can react (e.g. low-stock alerts) after its transaction commits.
func (s *stockService) DeductTx(tx *gorm.DB, productID uuid.UUID, qty decimal.Decimal, actorID uuid.UUID, comment string) (*model.Product, error) {
	product, err := s.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return nil, translateNotFound(err, "product", productID)
	}
	if product.Quantity.LessThan(qty) {
		return nil, &InsufficientStockError{
			Product:   product.Name,
			Requested: qty,
			Available: product.Quantity,
		}
	}
	if err := s.products.AddQuantityTx(tx, productID, qty.Neg()); err != nil {
		return nil, err
	}
	movement := model.StockMovement{
		ProductID:    productID,
		ChangeAmount: qty.Neg(),
		Kind:         model.MovementOut,
		ActorID:      actorID,
		Comment:      &comment,
	}
	if err := s.movements.CreateTx(tx, &movement); err != nil {
		return nil, err
	}
	product.Quantity = product.Quantity.Sub(qty)
	return product, nil
}

// RestockTx applies an in movement for a refund. Deliberately asymmetric
// with ProcessMovement: no PURCHASE expense, the goods were already paid for.
func (s *stockService) RestockTx(tx *gorm.DB, productID uuid.UUID, qty decimal.Decimal, actorID uuid.UUID, comment string) error {
	if _, err := s.products.FindByIDForUpdateTx(tx, productID); err != nil {
		return translateNotFound(err, "product", productID)
	}
	if err := s.products.AddQuantityTx(tx, productID, qty); err != nil {
		return err
	}
	movement := model.StockMovement{
		ProductID:    productID,
		ChangeAmount: qty,
		Kind:         model.MovementIn,
		ActorID:      actorID,
		Comment:      &comment,
	}
	return s.movements.CreateTx(tx, &movement)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *stockService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, movementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	performedBy := ""
	if m.Actor != nil {
		performedBy = m.Actor.Username
	}
	return dto.StockMovementResponse{
		ID:           m.ID.String(),
		ProductID:    m.ProductID.String(),
		ChangeAmount: m.ChangeAmount,
		Kind:         string(m.Kind),
		Comment:      m.Comment,
		PerformedBy:  performedBy,
		CreatedAt:    m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
