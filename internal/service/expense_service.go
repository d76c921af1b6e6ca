package service

import (
	"context"
	"time"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"

	"github.com/google/uuid"
)

// ExpenseService owns the expense ledger. PURCHASE rows are also written
// by the stock ledger on receipt; edits and deletes here never cascade
// back into the originating stock movement.
type ExpenseService interface {
	RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, actorID uuid.UUID) (*dto.ExpenseResponse, error)
	ListExpenses(ctx context.Context, filter dto.ExpenseFilter) ([]dto.ExpenseResponse, error)
	UpdateExpense(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

type expenseService struct {
	repo repository.ExpenseRepository
}

func NewExpenseService(repo repository.ExpenseRepository) ExpenseService {
	return &expenseService{repo: repo}
}

func (s *expenseService) RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, actorID uuid.UUID) (*dto.ExpenseResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, invalidInput("expense amount must be positive")
	}
	category := model.ExpenseCategory(req.Category)
	if !category.Valid() {
		return nil, invalidInput("unknown expense category %q", req.Category)
	}

	expense := model.Expense{
		Amount:      req.Amount,
		Category:    category,
		ActorID:     actorID,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, &expense); err != nil {
		return nil, err
	}
	resp := expenseToResponse(&expense)
	return &resp, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter dto.ExpenseFilter) ([]dto.ExpenseResponse, error) {
	var from, to *time.Time
	if filter.From != "" && filter.To != "" {
		f, err := parseDateOrTime(filter.From, false)
		if err != nil {
			return nil, invalidInput("invalid from: %v", err)
		}
		t, err := parseDateOrTime(filter.To, true)
		if err != nil {
			return nil, invalidInput("invalid to: %v", err)
		}
		from, to = &f, &t
	}

	expenses, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, expenseToResponse(&expenses[i]))
	}
	return items, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "expense", id)
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, invalidInput("expense amount must be positive")
		}
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		category := model.ExpenseCategory(*req.Category)
		if !category.Valid() {
			return nil, invalidInput("unknown expense category %q", *req.Category)
		}
		expense.Category = category
	}
	if req.Description != nil {
		expense.Description = req.Description
	}
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	resp := expenseToResponse(expense)
	return &resp, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateNotFound(err, "expense", id)
	}
	return s.repo.Delete(ctx, id)
}

// parseDateOrTime accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
// endOfDay pushes a bare date to 23:59:59 so BETWEEN filters are inclusive.
func parseDateOrTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func expenseToResponse(e *model.Expense) dto.ExpenseResponse {
	performedBy := ""
	if e.Actor != nil {
		performedBy = e.Actor.Username
	}
	return dto.ExpenseResponse{
		ID:          e.ID.String(),
		Amount:      e.Amount,
		Category:    string(e.Category),
		Description: e.Description,
		PerformedBy: performedBy,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
