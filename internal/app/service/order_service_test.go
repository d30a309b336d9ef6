package service

import (
	"testing"
	"time"

	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	orderService := NewOrderService(orderRepo)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	return orderService, testDB, user
}

func createOrder(t *testing.T, testDB *gorm.DB, userID uint, total string) *model.Order {
	t.Helper()

	product := &model.Product{
		Name:  "Test Product",
		Price: decimal.RequireFromString(total),
	}
	require.NoError(t, testDB.Create(product).Error)

	order := &model.Order{
		UserID:     userID,
		TotalPrice: decimal.RequireFromString(total),
		Status:     model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString(total)},
		},
	}
	require.NoError(t, testDB.Create(order).Error)
	return order
}

func TestOrderService_GetUserOrders(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	first := createOrder(t, testDB, user.ID, "10.00")
	second := createOrder(t, testDB, user.ID, "20.00")
	testDB.Model(second).Update("created_at", time.Now().Add(time.Minute))

	orders, err := orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestOrderService_GetUserOrders_Empty(t *testing.T) {
	orderService, _, user := setupOrderServiceTest(t)

	orders, err := orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 0)
}

func TestOrderService_GetOrderByID(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	order := createOrder(t, testDB, user.ID, "15.00")

	found, err := orderService.GetOrderByID(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.True(t, found.TotalPrice.Equal(decimal.RequireFromString("15.00")))
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, "Test Product", found.OrderItems[0].Product.Name)
}

func TestOrderService_GetOrderByID_NotFound(t *testing.T) {
	orderService, _, user := setupOrderServiceTest(t)

	_, err := orderService.GetOrderByID(user.ID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetOrderByID_OwnershipMismatch(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	other := &model.User{
		Username:     "other",
		Email:        "other@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	order := createOrder(t, testDB, other.ID, "10.00")

	// Someone else's order looks like it does not exist
	_, err := orderService.GetOrderByID(user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
