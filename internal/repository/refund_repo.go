package repository

import (
	"context"
	"time"

	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundRepository interface {
	CreateTx(tx *gorm.DB, rf *model.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error)
	List(ctx context.Context, page, limit int) ([]model.Refund, int64, error)
	// SumRefundedQuantity totals quantity already refunded for a sale line
	// across prior refunds on the same sale.
	SumRefundedQuantity(ctx context.Context, saleID, productID uuid.UUID) (decimal.Decimal, error)
	SumTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type refundRepo struct{ db *gorm.DB }

func NewRefundRepository(db *gorm.DB) RefundRepository { return &refundRepo{db: db} }

func (r *refundRepo) CreateTx(tx *gorm.DB, rf *model.Refund) error {
	return tx.Create(rf).Error
}

func (r *refundRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error) {
	var rf model.Refund
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&rf, id).Error
	return &rf, err
}

func (r *refundRepo) List(ctx context.Context, page, limit int) ([]model.Refund, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var total int64
	if err := r.db.Model(&model.Refund{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refunds []model.Refund
	err := r.db.Preload("Items.Product").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&refunds).Error
	return refunds, total, err
}

func (r *refundRepo) SumRefundedQuantity(ctx context.Context, saleID, productID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("refund_items").
		Select("COALESCE(SUM(refund_items.quantity), 0)").
		Joins("JOIN refunds ON refunds.id = refund_items.refund_id").
		Where("refunds.sale_id = ? AND refund_items.product_id = ?", saleID, productID).
		Scan(&sum).Error
	return sum, err
}

func (r *refundRepo) SumTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Refund{}).
		Select("COALESCE(SUM(total_refund_amount), 0)").
		Where("created_at BETWEEN ? AND ?", from, to).
		Scan(&sum).Error
	return sum, err
}
