package service

import (
	"context"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientService owns clients and the debt ledger. Debt is only ever
// mutated under an exclusive row lock: here (payments) and inside the
// sale/refund transactions.
type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	ListClients(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	DeactivateClient(ctx context.Context, id uuid.UUID) error
	ReactivateClient(ctx context.Context, id uuid.UUID) error
	DeleteClient(ctx context.Context, id uuid.UUID) error

	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actorID uuid.UUID) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, clientID uuid.UUID, page, limit int) (*dto.PaymentListResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	// Pre-flight check for a friendlier error; the unique index is the
	// real guard against races.
	if _, err := s.repo.FindByPhone(ctx, req.Phone); err == nil {
		return nil, ErrDuplicatePhone
	}

	client := model.Client{
		FullName:  req.FullName,
		Phone:     req.Phone,
		TotalDebt: decimal.Zero,
		Active:    true,
	}
	if err := s.repo.Create(ctx, &client); err != nil {
		return nil, translateConstraint(err, "client")
	}
	resp := clientToResponse(&client)
	return &resp, nil
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "client", id)
	}
	resp := clientToResponse(client)
	return &resp, nil
}

func (s *clientService) ListClients(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, clientToResponse(&clients[i]))
	}
	return &dto.ClientListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "client", id)
	}
	if req.FullName != nil {
		client.FullName = *req.FullName
	}
	if req.Phone != nil && *req.Phone != client.Phone {
		if _, err := s.repo.FindByPhone(ctx, *req.Phone); err == nil {
			return nil, ErrDuplicatePhone
		}
		client.Phone = *req.Phone
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, translateConstraint(err, "client")
	}
	resp := clientToResponse(client)
	return &resp, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *clientService) ReactivateClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, id)
}

// DeleteClient hard-deletes. Clients with sales or payments on record
// are protected by RESTRICT foreign keys; the violation comes back as a
// ReferentialIntegrityError instead of a raw storage error.
func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateNotFound(err, "client", id)
	}
	return translateConstraint(s.repo.Delete(ctx, id), "client")
}

// ── Payments ─────────────────────────────────────────────────────────────────

// RecordPayment locks the client row, reduces debt floored at zero, and
// always inserts the Payment row with the full requested amount. Ledger
// totals and the debt balance are therefore allowed to diverge when a
// payment overshoots the outstanding debt.
func (s *clientService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actorID uuid.UUID) (*dto.PaymentResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, invalidInput("invalid client_id")
	}
	if !req.Amount.IsPositive() {
		return nil, invalidInput("payment amount must be positive")
	}

	var payment model.Payment
	var remaining decimal.Decimal

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		client, err := s.repo.FindByIDForUpdateTx(tx, clientID)
		if err != nil {
			return translateNotFound(err, "client", clientID)
		}

		remaining = client.TotalDebt.Sub(req.Amount)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if err := s.repo.SetDebtTx(tx, clientID, remaining); err != nil {
			return err
		}

		payment = model.Payment{
			ClientID:    clientID,
			Amount:      req.Amount,
			ActorID:     actorID,
			Description: req.Description,
		}
		return s.repo.CreatePaymentTx(tx, &payment)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := paymentToResponse(&payment)
	resp.RemainingDebt = remaining
	return &resp, nil
}

func (s *clientService) ListPayments(ctx context.Context, clientID uuid.UUID, page, limit int) (*dto.PaymentListResponse, error) {
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		return nil, translateNotFound(err, "client", clientID)
	}
	payments, total, err := s.repo.ListPayments(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, paymentToResponse(&payments[i]))
	}
	return &dto.PaymentListResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func clientToResponse(c *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID.String(),
		FullName:  c.FullName,
		Phone:     c.Phone,
		TotalDebt: c.TotalDebt,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	performedBy := ""
	if p.Actor != nil {
		performedBy = p.Actor.Username
	}
	return dto.PaymentResponse{
		ID:          p.ID.String(),
		ClientID:    p.ClientID.String(),
		Amount:      p.Amount,
		Description: p.Description,
		PerformedBy: performedBy,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
