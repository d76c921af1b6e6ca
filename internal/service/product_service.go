package service

import (
	"context"

	"stockbook/internal/dto"
	"stockbook/internal/model"
	"stockbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService handles catalog CRUD. Stock quantity is read-only here;
// it changes only through the stock service.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, role string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter, role string) (*dto.ProductListResponse, error)
	LowStock(ctx context.Context, role string) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache ProductCache
}

func NewProductService(repo repository.ProductRepository, cache ProductCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

// productToResponse applies the role split: buy price is admin-only,
// recommended price is hidden from workers.
func productToResponse(p *model.Product, role string) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Unit:          p.Unit,
		ItemsPerPack:  p.ItemsPerPack,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		Active:        p.Active,
	}
	switch role {
	case model.RoleAdmin:
		bp := p.BuyPrice
		resp.BuyPrice = &bp
		resp.RecommendedPrice = p.RecommendedPrice
	case model.RoleManager:
		resp.RecommendedPrice = p.RecommendedPrice
	}
	return resp
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:             req.Name,
		Description:      req.Description,
		Unit:             req.Unit,
		ItemsPerPack:     1,
		BuyPrice:         req.BuyPrice,
		RecommendedPrice: req.RecommendedPrice,
		Quantity:         decimal.Zero,
		MinStockLevel:    decimal.NewFromInt(10),
		Active:           true,
	}
	if req.ItemsPerPack > 0 {
		p.ItemsPerPack = req.ItemsPerPack
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, translateConstraint(err, "product")
	}
	resp := productToResponse(p, model.RoleAdmin)
	return &resp, nil
}

// GetByID is read-through cached. The cache holds the full model; the role
// split is applied after the fetch so a single entry serves every role.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID, role string) (*dto.ProductResponse, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			resp := productToResponse(p, role)
			return &resp, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "product", id)
	}
	if s.cache != nil {
		s.cache.Set(ctx, p)
	}

	resp := productToResponse(p, role)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter, role string) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i], role))
	}
	return &dto.ProductListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) LowStock(ctx context.Context, role string) ([]dto.ProductResponse, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i], role))
	}
	return data, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "product", id)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.ItemsPerPack != nil {
		p.ItemsPerPack = *req.ItemsPerPack
	}
	if req.BuyPrice != nil {
		p.BuyPrice = *req.BuyPrice
	}
	if req.RecommendedPrice != nil {
		p.RecommendedPrice = req.RecommendedPrice
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, translateConstraint(err, "product")
	}
	s.invalidate(ctx, id)

	resp := productToResponse(p, model.RoleAdmin)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateNotFound(err, "product", id)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateNotFound(err, "product", id)
	}
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the row outright. Products referenced by sale lines or
// movements are protected by RESTRICT foreign keys.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateNotFound(err, "product", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateConstraint(err, "product")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
