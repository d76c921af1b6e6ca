package repository

import (
	"context"
	"time"

	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	// CreateTx inserts an expense within an enclosing stock transaction —
	// used for the auto-generated PURCHASE expense on stock receipt.
	CreateTx(tx *gorm.DB, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, from, to *time.Time) ([]model.Expense, error)
	Update(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumAmounts(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) CreateTx(tx *gorm.DB, e *model.Expense) error {
	return tx.Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *expenseRepo) List(ctx context.Context, from, to *time.Time) ([]model.Expense, error) {
	q := r.db.WithContext(ctx).Model(&model.Expense{}).Preload("Actor")
	if from != nil && to != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *from, *to)
	}
	var expenses []model.Expense
	err := q.Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Update(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Expense{}, id).Error
}

func (r *expenseRepo) SumAmounts(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("created_at BETWEEN ? AND ?", from, to).
		Scan(&sum).Error
	return sum, err
}
