package repository

import (
	"context"

	"stockbook/internal/dto"
	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
	List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error)
	Update(ctx context.Context, c *model.Client) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	// Delete hard-deletes; blocked by dependent sales/payments via FK.
	Delete(ctx context.Context, id uuid.UUID) error

	// Debt mutations run inside the sale/refund/payment transaction with
	// the client row exclusively locked.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Client, error)
	SetDebtTx(tx *gorm.DB, id uuid.UUID, debt decimal.Decimal) error

	CreatePaymentTx(tx *gorm.DB, p *model.Payment) error
	ListPayments(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.Payment, int64, error)

	DB() *gorm.DB
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) DB() *gorm.DB { return r.db }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error
	return &c, err
}

func (r *clientRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Client{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.Search != "" {
		q = q.Where("full_name ILIKE ? OR phone LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.DebtorsOnly {
		q = q.Where("total_debt > 0")
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

	var clients []model.Client
	err := q.Order("full_name ASC").Offset((page - 1) * limit).Limit(limit).Find(&clients).Error
	return clients, total, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("active", false).Error
}

func (r *clientRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("active", true).Error
}

func (r *clientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Client{}, id).Error
}

func (r *clientRepo) SetDebtTx(tx *gorm.DB, id uuid.UUID, debt decimal.Decimal) error {
	return tx.Model(&model.Client{}).Where("id = ?", id).Update("total_debt", debt).Error
}

func (r *clientRepo) CreatePaymentTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *clientRepo) ListPayments(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Model(&model.Payment{}).Where("client_id = ?", clientID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := q.Preload("Actor").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payments).Error
	return payments, total, err
}
