package scheduler

import (
	"github.com/hkim/storefront-backend/config"
	"github.com/hkim/storefront-backend/internal/app/service"
	"github.com/hkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartCleanupScheduler periodically purges cart items nobody touched
// for longer than the configured max age.
type CartCleanupScheduler struct {
	cron        *cron.Cron
	cartService service.CartService
	config      config.SchedulerConfig
}

func NewCartCleanupScheduler(cartService service.CartService, cfg config.SchedulerConfig) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:        cron.New(),
		cartService: cartService,
		config:      cfg,
	}
}

func (s *CartCleanupScheduler) Start() error {
	if s.config.CartCleanupSpec == "" {
		logger.Info("Cart cleanup scheduler disabled", nil)
		return nil
	}

	_, err := s.cron.AddFunc(s.config.CartCleanupSpec, func() {
		logger.Info("Starting scheduled cart cleanup", map[string]interface{}{
			"max_age": s.config.CartItemMaxAge.String(),
		})

		purged, err := s.cartService.PurgeStaleItems(s.config.CartItemMaxAge)
		if err != nil {
			logger.Error("Failed to purge stale cart items", err)
			return
		}

		logger.Info("Cart cleanup finished", map[string]interface{}{
			"purged_items": purged,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"spec": s.config.CartCleanupSpec,
	})

	return nil
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart cleanup scheduler stopped", nil)
}
