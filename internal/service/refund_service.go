package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundService interface {
	CreateRefund(ctx context.Context, saleID uuid.UUID, req dto.CreateRefundRequest, actorID uuid.UUID) (*dto.RefundResponse, error)
	ListRefunds(ctx context.Context, page, limit int) (*dto.RefundListResponse, error)
}

type refundService struct {
	refunds repository.RefundRepository
	sales   repository.SaleRepository
	clients repository.ClientRepository
	stock   StockService
	cache   ProductCache
}

func NewRefundService(
	refunds repository.RefundRepository,
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	stock StockService,
	cache ProductCache,
) RefundService {
	return &refundService{
		refunds: refunds,
		sales:   sales,
		clients: clients,
		stock:   stock,
		cache:   cache,
	}
}

// ── CreateRefund ─────────────────────────────────────────────────────────────
// One ACID transaction per refund:
//  1. Resolve the sale and each requested line against the original items.
//  2. Refund price = snapshot of the original sale line price.
//  3. Persist refund + items, restock (in movement per line, no expense).
//  4. Sale has a client: lock client, debt -= total, floored at zero.
// The original Sale row is never modified.

func (s *refundService) CreateRefund(ctx context.Context, saleID uuid.UUID, req dto.CreateRefundRequest, actorID uuid.UUID) (*dto.RefundResponse, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, translateNotFound(err, "sale", saleID)
	}

	type refundLine struct {
		productID   uuid.UUID
		productName string
		quantity    decimal.Decimal
		price       decimal.Decimal
	}

	originals := make(map[uuid.UUID]*model.SaleItem, len(sale.Items))
	for i := range sale.Items {
		originals[sale.Items[i].ProductID] = &sale.Items[i]
	}

	lines := make([]refundLine, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, invalidInput("invalid product_id: %v", err)
		}
		if !item.Quantity.IsPositive() {
			return nil, invalidInput("quantity must be positive for product %s", item.ProductID)
		}

		original, ok := originals[pid]
		if !ok {
			return nil, &ProductNotInSaleError{ProductID: pid}
		}

		name := ""
		if original.Product != nil {
			name = original.Product.Name
		}

		// Validated against the original sale quantity only, not net of
		// prior refunds on the same sale — carried-over business rule.
		// Surfaced in the log until the rule is confirmed either way.
		if item.Quantity.GreaterThan(original.Quantity) {
			return nil, &OverRefundError{
				Product:   name,
				Requested: item.Quantity,
				Available: original.Quantity,
			}
		}
		if refunded, err := s.refunds.SumRefundedQuantity(ctx, saleID, pid); err == nil {
			if refunded.Add(item.Quantity).GreaterThan(original.Quantity) {
				log.Warn().
					Str("sale_id", saleID.String()).
					Str("product_id", pid.String()).
					Str("already_refunded", refunded.String()).
					Str("requested", item.Quantity.String()).
					Msg("cumulative refund exceeds original sale quantity")
			}
		}

		lines = append(lines, refundLine{
			productID:   pid,
			productName: name,
			quantity:    item.Quantity,
			price:       original.Price,
		})
		total = total.Add(original.Price.Mul(item.Quantity))
	}

	// Same canonical lock order as sales, so a refund and a sale touching
	// overlapping products cannot deadlock.
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].productID[:], lines[j].productID[:]) < 0
	})

	var refund model.Refund
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		refund = model.Refund{
			SaleID:            saleID,
			TotalRefundAmount: total,
			Reason:            req.Reason,
			ActorID:           actorID,
		}
		for _, l := range lines {
			refund.Items = append(refund.Items, model.RefundItem{
				ProductID:   l.productID,
				Quantity:    l.quantity,
				RefundPrice: l.price,
			})
		}
		if err := s.refunds.CreateTx(tx, &refund); err != nil {
			return err
		}

		comment := fmt.Sprintf("Refund for sale %s", saleID)
		for _, l := range lines {
			if err := s.stock.RestockTx(tx, l.productID, l.quantity, actorID, comment); err != nil {
				return err
			}
		}

		if sale.ClientID != nil {
			client, err := s.clients.FindByIDForUpdateTx(tx, *sale.ClientID)
			if err != nil {
				return translateNotFound(err, "client", *sale.ClientID)
			}
			debt := client.TotalDebt.Sub(total)
			if debt.IsNegative() {
				debt = decimal.Zero
			}
			if err := s.clients.SetDebtTx(tx, *sale.ClientID, debt); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Restocked products have stale cached quantities.
	if s.cache != nil {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.productID)
		}
		s.cache.Invalidate(ctx, ids...)
	}

	resp := refundToResponse(&refund)
	for i, l := range lines {
		resp.Items[i].ProductName = l.productName
	}
	return resp, nil
}

func (s *refundService) ListRefunds(ctx context.Context, page, limit int) (*dto.RefundListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	refunds, total, err := s.refunds.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RefundResponse, 0, len(refunds))
	for i := range refunds {
		items = append(items, *refundToResponse(&refunds[i]))
	}
	return &dto.RefundListResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func refundToResponse(r *model.Refund) *dto.RefundResponse {
	items := make([]dto.RefundItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.RefundItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: name,
			Quantity:    item.Quantity,
			RefundPrice: item.RefundPrice,
		})
	}
	return &dto.RefundResponse{
		ID:                r.ID.String(),
		SaleID:            r.SaleID.String(),
		TotalRefundAmount: r.TotalRefundAmount,
		Reason:            r.Reason,
		Items:             items,
		CreatedAt:         r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
