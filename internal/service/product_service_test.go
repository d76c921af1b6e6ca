package service

import (
	"context"
	"testing"

	"stockbook/internal/dto"
	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductDefaults(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "Rice",
		Unit:     "kg",
		BuyPrice: dec("2.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ItemsPerPack)
	assert.True(t, resp.Quantity.IsZero())
	assert.True(t, resp.MinStockLevel.Equal(dec("10")))
	assert.True(t, resp.Active)
}

func TestGetProductRoleSplit(t *testing.T) {
	product := &model.Product{
		Name:             "Rice",
		Unit:             "kg",
		BuyPrice:         dec("2.50"),
		RecommendedPrice: ptrDec("4.00"),
		Quantity:         dec("10"),
		Active:           true,
	}
	svc := NewProductService(newStubProductRepo(product), nil)
	ctx := context.Background()

	admin, err := svc.GetByID(ctx, product.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, admin.BuyPrice)
	assert.True(t, admin.BuyPrice.Equal(dec("2.50")))
	require.NotNil(t, admin.RecommendedPrice)

	manager, err := svc.GetByID(ctx, product.ID, model.RoleManager)
	require.NoError(t, err)
	assert.Nil(t, manager.BuyPrice)
	require.NotNil(t, manager.RecommendedPrice)

	worker, err := svc.GetByID(ctx, product.ID, model.RoleWorker)
	require.NoError(t, err)
	assert.Nil(t, worker.BuyPrice)
	assert.Nil(t, worker.RecommendedPrice)
	// Quantity and stock threshold are visible to everyone.
	assert.True(t, worker.Quantity.Equal(dec("10")))
}

func TestGetProductNotFound(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), nil)

	_, err := svc.GetByID(context.Background(), uuid.New(), model.RoleAdmin)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "product", notFound.Entity)
}

func TestUpdateProduct(t *testing.T) {
	product := &model.Product{Name: "Rice", Unit: "kg", BuyPrice: dec("2.50"), Active: true}
	repo := newStubProductRepo(product)
	svc := NewProductService(repo, nil)

	newName := "Basmati Rice"
	newBuy := dec("3.00")
	resp, err := svc.Update(context.Background(), product.ID, dto.UpdateProductRequest{
		Name:     &newName,
		BuyPrice: &newBuy,
	})
	require.NoError(t, err)

	assert.Equal(t, "Basmati Rice", resp.Name)
	require.NotNil(t, resp.BuyPrice)
	assert.True(t, resp.BuyPrice.Equal(dec("3.00")))
	assert.Equal(t, "Basmati Rice", repo.products[product.ID].Name)
}

func TestDeactivateReactivateProduct(t *testing.T) {
	product := &model.Product{Name: "Rice", Active: true}
	repo := newStubProductRepo(product)
	svc := NewProductService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Deactivate(ctx, product.ID))
	assert.False(t, repo.products[product.ID].Active)

	require.NoError(t, svc.Reactivate(ctx, product.ID))
	assert.True(t, repo.products[product.ID].Active)
}

func TestGetProductReadThroughCache(t *testing.T) {
	product := &model.Product{Name: "Rice", Quantity: dec("10"), Active: true}
	repo := newStubProductRepo(product)
	cache := newStubProductCache()
	svc := NewProductService(repo, cache)
	ctx := context.Background()

	// First read misses and populates the cache.
	first, err := svc.GetByID(ctx, product.ID, model.RoleWorker)
	require.NoError(t, err)
	assert.True(t, first.Quantity.Equal(dec("10")))
	_, cached := cache.Get(ctx, product.ID)
	require.True(t, cached)

	// Mutate the store behind the cache's back: the hit still serves the
	// cached quantity.
	repo.products[product.ID].Quantity = dec("7")
	stale, err := svc.GetByID(ctx, product.ID, model.RoleWorker)
	require.NoError(t, err)
	assert.True(t, stale.Quantity.Equal(dec("10")))

	// After invalidation the next read is fresh and re-populates.
	cache.Invalidate(ctx, product.ID)
	fresh, err := svc.GetByID(ctx, product.ID, model.RoleWorker)
	require.NoError(t, err)
	assert.True(t, fresh.Quantity.Equal(dec("7")))
}

func TestCatalogWritesInvalidateCache(t *testing.T) {
	product := &model.Product{Name: "Rice", Active: true}
	repo := newStubProductRepo(product)
	cache := newStubProductCache()
	svc := NewProductService(repo, cache)
	ctx := context.Background()
	cache.Set(ctx, product)

	newName := "Basmati Rice"
	_, err := svc.Update(ctx, product.ID, dto.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)

	_, cached := cache.Get(ctx, product.ID)
	assert.False(t, cached)
}
