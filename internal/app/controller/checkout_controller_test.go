package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/internal/app/service"
	"github.com/hkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCheckoutControllerTest(t *testing.T) (*CheckoutController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	checkoutService := service.NewCheckoutService(orderRepo, cartRepo, testDB)
	checkoutController := NewCheckoutController(checkoutService)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Test Product",
		Description:   "test product",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: 10,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return checkoutController, router, testDB, user, product
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func TestCheckoutController_Checkout_Success(t *testing.T) {
	controller, router, testDB, user, product := setupCheckoutControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	cart, err := cartRepo.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.NoError(t, cartRepo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}))

	router.POST("/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Order placed successfully", response["message"])

	order, ok := response["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "20", order["total_price"])

	items, ok := order["order_items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestCheckoutController_Checkout_NoCart(t *testing.T) {
	controller, router, _, user, _ := setupCheckoutControllerTest(t)

	router.POST("/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "No cart found", response["error"])
}

func TestCheckoutController_Checkout_EmptyCart(t *testing.T) {
	controller, router, testDB, user, _ := setupCheckoutControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	_, err := cartRepo.GetOrCreate(user.ID)
	require.NoError(t, err)

	router.POST("/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Cart is empty", response["error"])
}

func TestCheckoutController_Checkout_Unauthorized(t *testing.T) {
	controller, router, _, _, _ := setupCheckoutControllerTest(t)

	router.POST("/checkout", controller.Checkout)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
