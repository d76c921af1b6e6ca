package repository

import (
	"context"
	"time"

	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementFilter defines filters for listing stock movements.
type StockMovementFilter struct {
	ProductID *uuid.UUID
	Kind      model.MovementKind
	Page      int
	Limit     int
}

// ProductDelta is one row of the grouped movement-sum query used by the
// historical stock report.
type ProductDelta struct {
	ProductID uuid.UUID
	Delta     decimal.Decimal
}

// StockMovementRepository handles the append-only movement ledger.
// There is deliberately no Update or Delete: movements are immutable.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
	// DeltasAfter sums signed change amounts per product for movements
	// created strictly after the cutoff. Reversing these sums against the
	// live quantity reconstructs the stock as of the cutoff.
	DeltasAfter(ctx context.Context, cutoff time.Time) ([]ProductDelta, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Preload("Actor")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) DeltasAfter(ctx context.Context, cutoff time.Time) ([]ProductDelta, error) {
	var deltas []ProductDelta
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("product_id, SUM(change_amount) AS delta").
		Where("created_at > ?", cutoff).
		Group("product_id").
		Scan(&deltas).Error
	return deltas, err
}
