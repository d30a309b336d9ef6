package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hkim/storefront-backend/internal/app/service"
	apperrors "github.com/hkim/storefront-backend/internal/errors"
	"github.com/hkim/storefront-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// Checkout converts the caller's cart into an order
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized checkout attempt", nil)
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	log.Debug("Processing checkout", map[string]interface{}{
		"user_id": userID,
	})

	order, err := ctrl.checkoutService.Checkout(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoCart) {
			log.Warn("Checkout failed: no cart", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No cart found",
			})
			return
		}
		if errors.Is(err, service.ErrEmptyCart) {
			log.Warn("Checkout failed: empty cart", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Checkout failed: product no longer exists", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A product in your cart is no longer available",
			})
			return
		}
		log.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to complete checkout",
		})
		return
	}

	log.Info("Checkout completed", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": order.TotalPrice.String(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}
