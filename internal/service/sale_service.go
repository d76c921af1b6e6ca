package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"
	"stockbook/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest, sellerID uuid.UUID) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]dto.ProductSaleHistoryItem, error)
}

type saleService struct {
	sales      repository.SaleRepository
	clients    repository.ClientRepository
	stock      StockService
	dispatcher *worker.Dispatcher
	cache      ProductCache
}

func NewSaleService(
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	stock StockService,
	dispatcher *worker.Dispatcher,
	cache ProductCache,
) SaleService {
	return &saleService{
		sales:      sales,
		clients:    clients,
		stock:      stock,
		dispatcher: dispatcher,
		cache:      cache,
	}
}

// ── CreateSale ───────────────────────────────────────────────────────────────
// One ACID transaction per sale:
//  1. Lock every product row in canonical order, validate stock.
//  2. Totals from caller-supplied prices (never recomputed from catalog).
//  3. paid < total requires a client; remainder goes on their debt.
//  4. Persist sale + items, deduct stock (out movement per line).
//  5. Lock client, apply debt delta clamped at zero.
// Any failure rolls back every mutation performed so far.

func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest, sellerID uuid.UUID) (*dto.SaleResponse, error) {
	type saleLine struct {
		productID uuid.UUID
		quantity  decimal.Decimal
		price     decimal.Decimal
	}

	lines := make([]saleLine, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, invalidInput("invalid product_id: %v", err)
		}
		if !item.Quantity.IsPositive() {
			return nil, invalidInput("quantity must be positive for product %s", item.ProductID)
		}
		if item.SoldPrice.IsNegative() {
			return nil, invalidInput("sold_price must not be negative for product %s", item.ProductID)
		}
		lines = append(lines, saleLine{productID: pid, quantity: item.Quantity, price: item.SoldPrice})
	}

	// Canonical lock order: ascending product id. Concurrent multi-item
	// sales over overlapping product sets always lock in the same order,
	// so they cannot deadlock each other.
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].productID[:], lines[j].productID[:]) < 0
	})

	var clientID *uuid.UUID
	if req.ClientID != nil {
		cid, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, invalidInput("invalid client_id: %v", err)
		}
		clientID = &cid
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.price.Mul(l.quantity))
	}
	if req.PaidAmount.IsNegative() {
		return nil, invalidInput("paid_amount must not be negative")
	}

	isDebt := req.PaidAmount.LessThan(total)
	if isDebt && clientID == nil {
		return nil, ErrCreditRequiresClient
	}

	var sale model.Sale
	var clientName *string
	var lowStock []*model.Product

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		sale = model.Sale{
			ClientID:    clientID,
			SellerID:    sellerID,
			TotalAmount: total,
			PaidAmount:  req.PaidAmount,
			IsDebt:      isDebt,
		}
		for _, l := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: l.productID,
				Quantity:  l.quantity,
				Price:     l.price,
			})
		}
		if err := s.sales.CreateTx(tx, &sale); err != nil {
			return err
		}

		// Deduct stock per line. DeductTx locks the product row (held to
		// commit), validates sufficiency and appends the out movement.
		comment := fmt.Sprintf("Sale %s", sale.ID)
		for _, l := range lines {
			product, err := s.stock.DeductTx(tx, l.productID, l.quantity, sellerID, comment)
			if err != nil {
				return err
			}
			if product.Quantity.LessThanOrEqual(product.MinStockLevel) {
				lowStock = append(lowStock, product)
			}
		}

		if clientID != nil {
			client, err := s.clients.FindByIDForUpdateTx(tx, *clientID)
			if err != nil {
				return translateNotFound(err, "client", *clientID)
			}
			clientName = &client.FullName

			// Negative when overpaid; the floor absorbs overpayment
			// beyond the outstanding debt instead of tracking credit.
			debt := client.TotalDebt.Add(total.Sub(req.PaidAmount))
			if debt.IsNegative() {
				debt = decimal.Zero
			}
			if err := s.clients.SetDebtTx(tx, *clientID, debt); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Every sold product's cached quantity is now stale.
	if s.cache != nil {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.productID)
		}
		s.cache.Invalidate(ctx, ids...)
	}

	// Fire-and-forget, strictly after commit.
	if s.dispatcher != nil {
		for _, p := range lowStock {
			_ = s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlert{
				ProductID:     p.ID.String(),
				ProductName:   p.Name,
				Quantity:      p.Quantity.String(),
				MinStockLevel: p.MinStockLevel.String(),
			})
		}
	}

	resp := saleToResponse(&sale)
	resp.ClientName = clientName
	return resp, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "sale", id)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *saleService) ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]dto.ProductSaleHistoryItem, error) {
	rows, err := s.sales.ProductHistory(ctx, productID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductSaleHistoryItem, 0, len(rows))
	for _, r := range rows {
		clientName := "Anonymous"
		if r.ClientName != nil {
			clientName = *r.ClientName
		}
		items = append(items, dto.ProductSaleHistoryItem{
			SaleID:     r.SaleID.String(),
			SaleDate:   r.SaleDate.Format("2006-01-02T15:04:05Z"),
			ClientName: clientName,
			SellerName: r.SellerName,
			Quantity:   r.Quantity,
			UnitPrice:  r.UnitPrice,
			Total:      r.Quantity.Mul(r.UnitPrice),
		})
	}
	return items, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   item.Price.Mul(item.Quantity),
		})
	}
	var clientID *string
	var clientName *string
	if sale.ClientID != nil {
		id := sale.ClientID.String()
		clientID = &id
	}
	if sale.Client != nil {
		clientName = &sale.Client.FullName
	}
	return &dto.SaleResponse{
		ID:          sale.ID.String(),
		ClientID:    clientID,
		ClientName:  clientName,
		SellerID:    sale.SellerID.String(),
		TotalAmount: sale.TotalAmount,
		PaidAmount:  sale.PaidAmount,
		IsDebt:      sale.IsDebt,
		Items:       items,
		CreatedAt:   sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
