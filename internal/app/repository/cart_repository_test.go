package repository

import (
	"testing"
	"time"

	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)

	// Create test user
	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	// Create test product
	product := &model.Product{
		Name:          "Test Product",
		Description:   "A product for tests",
		Price:         decimal.NewFromFloat(19.99),
		StockQuantity: 10,
	}
	testDB.Create(product)

	return testDB, repo, user, product
}

func TestCartRepository_GetOrCreate(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, err := repo.GetOrCreate(user.ID)
	require.NoError(t, err)
	assert.NotZero(t, cart.ID)
	assert.Equal(t, user.ID, cart.UserID)

	// Second call returns the same cart
	again, err := repo.GetOrCreate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartRepository_FindByUserID_NotFound(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	// No cart exists until GetOrCreate is called
	_, err := repo.FindByUserID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_CreateItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, err := repo.GetOrCreate(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  2,
	}

	err = repo.CreateItem(item)
	assert.NoError(t, err)
	assert.NotZero(t, item.ID)
}

func TestCartRepository_CreateItem_NoMerge(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)

	// Adding the same product twice produces two distinct lines
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 3}))

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartRepository_FindItems(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2})

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.Name, items[0].Product.Name)
	assert.True(t, items[0].Product.Price.Equal(decimal.NewFromFloat(19.99)))
}

func TestCartRepository_FindItemByID(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 3}
	repo.CreateItem(item)

	found, err := repo.FindItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, 3, found.Quantity)
	assert.Equal(t, user.ID, found.Cart.UserID)
}

func TestCartRepository_UpdateItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	repo.CreateItem(item)

	item.Quantity = 5
	err := repo.UpdateItem(item)
	assert.NoError(t, err)

	updated, _ := repo.FindItemByID(item.ID)
	assert.Equal(t, 5, updated.Quantity)
}

func TestCartRepository_DeleteItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	repo.CreateItem(item)

	err := repo.DeleteItem(item.ID)
	assert.NoError(t, err)

	_, err = repo.FindItemByID(item.ID)
	assert.Error(t, err)
}

func TestCartRepository_DeleteItemsByCartID(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1})
	repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2})

	err := repo.DeleteItemsByCartID(cart.ID)
	assert.NoError(t, err)

	// Cart row survives, items are gone
	items, _ := repo.FindItems(cart.ID)
	assert.Len(t, items, 0)

	kept, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, kept.ID)
}

func TestCartRepository_DeleteItemsBefore(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart, _ := repo.GetOrCreate(user.ID)
	stale := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	fresh := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	repo.CreateItem(stale)
	repo.CreateItem(fresh)

	// Age one item past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	testDB.Model(stale).Update("updated_at", old)

	count, err := repo.DeleteItemsBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	items, _ := repo.FindItems(cart.ID)
	require.Len(t, items, 1)
	assert.Equal(t, fresh.ID, items[0].ID)
}
