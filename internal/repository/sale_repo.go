package repository

import (
	"context"
	"time"

	"stockbook/internal/dto"
	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSalesRow is one row of the per-product sales aggregation.
type ProductSalesRow struct {
	ProductID     uuid.UUID
	ProductName   string
	Unit          string
	TotalQuantity decimal.Decimal
	TotalRevenue  decimal.Decimal
}

// SaleHistoryRow joins a sale line with its sale, client and seller for the
// per-product sales history view.
type SaleHistoryRow struct {
	SaleID     uuid.UUID
	SaleDate   time.Time
	ClientName *string
	SellerName string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]SaleHistoryRow, error)

	// Aggregations for the analytics reconstructor.
	SumTotals(ctx context.Context, from, to time.Time) (total decimal.Decimal, count int64, err error)
	ProductSummary(ctx context.Context, from, to time.Time) ([]ProductSalesRow, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	// Items are persisted through the association in the same insert batch.
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("Client").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.DebtOnly {
		q = q.Where("is_debt = true")
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
		limit = 50
	}

	var sales []model.Sale
	err := q.Preload("Items.Product").Preload("Client").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]SaleHistoryRow, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var rows []SaleHistoryRow
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select(`sales.id AS sale_id, sales.created_at AS sale_date,
			clients.full_name AS client_name, users.username AS seller_name,
			sale_items.quantity, sale_items.price AS unit_price`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("LEFT JOIN clients ON clients.id = sales.client_id").
		Joins("JOIN users ON users.id = sales.seller_id").
		Where("sale_items.product_id = ?", productID).
		Order("sales.created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) SumTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Scan(&result).Error
	return result.Total, result.Count, err
}

func (r *saleRepo) ProductSummary(ctx context.Context, from, to time.Time) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select(`sale_items.product_id, products.name AS product_name, products.unit,
			SUM(sale_items.quantity) AS total_quantity,
			SUM(sale_items.quantity * sale_items.price) AS total_revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.created_at BETWEEN ? AND ?", from, to).
		Group("sale_items.product_id, products.name, products.unit").
		Order("total_quantity DESC").
		Scan(&rows).Error
	return rows, err
}
