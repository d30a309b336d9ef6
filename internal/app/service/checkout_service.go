package service

import (
	"errors"
	"fmt"

	"github.com/hkim/storefront-backend/internal/app/model"
	"github.com/hkim/storefront-backend/internal/app/repository"
	"github.com/hkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoCart    = errors.New("no cart found")
	ErrEmptyCart = errors.New("cart is empty")
)

type CheckoutService interface {
	Checkout(userID uint) (*model.Order, error)
}

type checkoutService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// Checkout converts the user's cart into an order. The whole conversion
// runs in one transaction: either the order exists with every line priced
// at checkout time and the cart emptied, or nothing changed at all.
//
// Cart items are read under row locks inside the transaction, so two
// concurrent checkouts for the same user produce exactly one order; the
// loser finds the cart already emptied and gets ErrEmptyCart.
func (s *checkoutService) Checkout(userID uint) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
	})

	// Checkout never creates a cart. A user who has never added an item
	// has no cart row and cannot check out.
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Checkout rejected: user has no cart", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrNoCart
		}
		logger.Error("Failed to fetch cart for checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var cartItems []model.CartItem
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cart.ID).
		Find(&cartItems).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to fetch cart items for checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if len(cartItems) == 0 {
		tx.Rollback()
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, ErrEmptyCart
	}

	var (
		totalPrice = decimal.Zero
		orderItems []model.OrderItem
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product vanished during checkout", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during checkout", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		// Snapshot the price as it stands now. Later catalog edits must
		// not change what this order says the customer paid.
		orderItems = append(orderItems, model.OrderItem{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			UnitPrice: product.Price,
		})
		totalPrice = totalPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(cartItem.Quantity))))
	}

	order := &model.Order{
		UserID:     userID,
		TotalPrice: totalPrice,
		Status:     model.OrderStatusPending,
		OrderItems: orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order during checkout", err, map[string]interface{}{
			"user_id":     userID,
			"total_price": totalPrice.String(),
		})
		return nil, err
	}

	// Empty the cart but keep the cart row; the container outlives checkout.
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart during checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Checkout completed successfully", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": totalPrice.String(),
		"item_count":  len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}
