package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/domain"
)

func TestCategoryService_Lifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	category, err := env.categories.CreateCategory(ctx, " Electronics ", "Gadgets")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", category.Name)

	_, err = env.categories.CreateCategory(ctx, "Electronics", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.categories.CreateCategory(ctx, "TV", "")
	assert.Equal(t, "Category name must be at least 3 characters long", domain.Message(err))

	name := "Consumer Electronics"
	updated, err := env.categories.UpdateCategory(ctx, category.ID, domain.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Gadgets", updated.Description)

	list, err := env.categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.categories.DeleteCategory(ctx, category.ID))
	_, err = env.categories.GetCategory(ctx, category.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCategory_BlockedByProducts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	category := env.seedCategory(t, "Electronics")
	env.seedProduct(t, category.ID, "Smartphone", "699.99", 50)

	err := env.categories.DeleteCategory(ctx, category.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Cannot delete category with existing products", domain.Message(err))
}

func TestProductService_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	category := env.seedCategory(t, "Electronics")
	env.seedProduct(t, category.ID, "Smartphone", "699.99", 50)

	tests := []struct {
		name    string
		input   NewProduct
		message string
	}{
		{"zero price", NewProduct{Name: "Tablet", Price: decimal.Zero, CategoryID: category.ID}, "Price must be greater than 0"},
		{"price too high", NewProduct{Name: "Tablet", Price: decimal.NewFromInt(1000001), CategoryID: category.ID}, "Price must not exceed 1000000"},
		{"price just over the limit", NewProduct{Name: "Tablet", Price: decimal.RequireFromString("1000000.004"), CategoryID: category.ID}, "Price must not exceed 1000000"},
		{"fractional cents", NewProduct{Name: "Tablet", Price: decimal.RequireFromString("12.345"), CategoryID: category.ID}, "Price must have at most 2 decimal places"},
		{"negative stock", NewProduct{Name: "Tablet", Price: decimal.NewFromInt(1), Stock: -1, CategoryID: category.ID}, "Stock cannot be negative"},
		{"stock too high", NewProduct{Name: "Tablet", Price: decimal.NewFromInt(1), Stock: 10001, CategoryID: category.ID}, "Stock must not exceed 10000"},
		{"short name", NewProduct{Name: "TV", Price: decimal.NewFromInt(1), CategoryID: category.ID}, "Product name must be at least 3 characters long"},
		{"missing category", NewProduct{Name: "Tablet", Price: decimal.NewFromInt(1), CategoryID: 999}, "Category not found"},
		{"duplicate in category", NewProduct{Name: "Smartphone", Price: decimal.NewFromInt(1), CategoryID: category.ID}, "Product with this name already exists in this category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.products.CreateProduct(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.message, domain.Message(err))
		})
	}
}

func TestProductService_NameUniquePerCategoryOnly(t *testing.T) {
	env := newTestEnv()
	electronics := env.seedCategory(t, "Electronics")
	phones := env.seedCategory(t, "Phones")

	env.seedProduct(t, electronics.ID, "Smartphone", "699.99", 50)
	env.seedProduct(t, phones.ID, "Smartphone", "649.99", 10)
}

func TestUpdateProduct_PatchesOnlyGivenFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	category := env.seedCategory(t, "Electronics")
	product := env.seedProduct(t, category.ID, "Smartphone", "699.99", 50)

	stock := 10
	updated, err := env.products.UpdateProduct(ctx, product.ID, domain.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, "Smartphone", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("699.99")))

	price := decimal.RequireFromString("-1")
	_, err = env.products.UpdateProduct(ctx, product.ID, domain.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 10, env.stock(t, product.ID))

	price = decimal.RequireFromString("699.999")
	_, err = env.products.UpdateProduct(ctx, product.ID, domain.ProductPatch{Price: &price})
	assert.Equal(t, "Price must have at most 2 decimal places", domain.Message(err))

	missing := int64(999)
	_, err = env.products.UpdateProduct(ctx, product.ID, domain.ProductPatch{CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProduct_BlockedByOrderItems(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.seedUser(t, "alice")
	category := env.seedCategory(t, "Electronics")
	ordered := env.seedProduct(t, category.ID, "Smartphone", "699.99", 50)
	carted := env.seedProduct(t, category.ID, "Headphones", "99.99", 50)

	_, err := env.orders.CreateOrder(ctx, user.ID, []domain.OrderLine{{ProductID: ordered.ID, Quantity: 1}})
	require.NoError(t, err)

	err = env.products.DeleteProduct(ctx, ordered.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = env.cart.AddItem(ctx, user.ID, carted.ID, 1, false)
	require.NoError(t, err)
	require.NoError(t, env.products.DeleteProduct(ctx, carted.ID))

	cart, err := env.cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
