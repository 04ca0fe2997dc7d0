// Package routes wires repositories, services and handlers together and
// mounts them on the Fiber app.
package routes

import (
	"context"
	"fmt"
	"time"

	"merchantportal/internal/config"
	"merchantportal/internal/handlers"
	"merchantportal/internal/middleware"
	"merchantportal/internal/repositories"
	"merchantportal/internal/repositories/cache"
	"merchantportal/internal/services/auth"
	"merchantportal/internal/services/identity"
	"merchantportal/internal/services/media"
	"merchantportal/internal/services/menu"
	"merchantportal/internal/services/merchant"
	"merchantportal/internal/services/notification"
	"merchantportal/internal/services/onboarding"
	"merchantportal/internal/services/order"
	"merchantportal/internal/services/otp"
	"merchantportal/internal/services/payment"
	"merchantportal/internal/services/session"
	"merchantportal/internal/services/store"
	"merchantportal/internal/services/ticket"
	"merchantportal/internal/utils"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes builds every service from cfg and mounts the API on app.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, cacheSvc *cache.CacheService, log *zap.Logger) error {
	// Repositories
	merchantRepo := repositories.NewMerchantRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	deviceRepo := repositories.NewDeviceSessionRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	bankCipher, err := utils.NewBankCipher(cfg.Crypto.BankAccountKey)
	if err != nil {
		return fmt.Errorf("bank cipher: %w", err)
	}

	// Services
	reconciler := onboarding.NewReconciler(merchantRepo, progressRepo, onboarding.Config{
		FinalStep:        cfg.Onboarding.FinalStep,
		SweepConcurrency: cfg.Onboarding.SweepConcurrency,
	}, log.Named("onboarding"))
	merchantService := merchant.NewService(merchantRepo, reconciler, reconciler.FinalStep(), log.Named("merchant"))

	idp := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, cfg.Timeouts.Upstream, log.Named("identity"))
	sessions := session.NewManager(session.Options{
		Environment:    cfg.App.Environment,
		Production:     config.IsProduction(),
		Domain:         cfg.Session.CookieDomain,
		AbsoluteMaxAge: cfg.Session.AbsoluteMaxAge,
		IdleMaxAge:     cfg.Session.IdleMaxAge,
	})
	authService := auth.NewService(idp, merchantService, merchantRepo, sessions, deviceRepo, auth.Options{
		AbsoluteMaxAge: cfg.Session.AbsoluteMaxAge,
		IdleMaxAge:     cfg.Session.IdleMaxAge,
	}, log.Named("auth"))

	smsService := notification.NewSMSService(notification.SMSConfig{
		BaseURL:  cfg.SMS.BaseURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.Timeouts.Upstream,
	}, log.Named("sms"))
	otpService := otp.NewService(cacheSvc, smsService, cfg.SMS.OTPTTL, log.Named("otp"))

	storeService := store.NewService(merchantRepo, bankCipher, log.Named("store"))
	orderService := order.NewService(merchantService, orderRepo, log.Named("order"))
	menuService := menu.NewService(merchantService, menuRepo, offerRepo, log.Named("menu"))
	ticketService := ticket.NewService(merchantService, ticketRepo, log.Named("ticket"))
	mediaService := media.NewService(media.Config{
		BaseURL:    cfg.Storage.BaseURL,
		ServiceKey: cfg.Storage.ServiceKey,
		Bucket:     cfg.Storage.Bucket,
		Validity:   cfg.Storage.SignedURLValid,
		Timeout:    cfg.Timeouts.Upstream,
	}, cacheSvc, log.Named("media"))
	paymentService := payment.NewService(payment.NewStripeGateway(cfg.Payment.SecretKey), merchantService, paymentRepo, payment.Config{
		PublishableKey:     cfg.Payment.PublishableKey,
		WebhookSecret:      cfg.Payment.WebhookSecret,
		DefaultAmountPaise: cfg.Payment.DefaultAmountPaise,
		Currency:           cfg.Payment.Currency,
		Timeout:            cfg.Timeouts.Upstream,
	}, log.Named("payment"))

	// Handlers
	h := handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, merchantService),
		Registration: handlers.NewRegistrationHandler(otpService, merchantService, reconciler),
		Store:        handlers.NewStoreHandler(merchantService, storeService),
		Order:        handlers.NewOrderHandler(orderService),
		Menu:         handlers.NewMenuHandler(menuService),
		Ticket:       handlers.NewTicketHandler(ticketService),
		Media:        handlers.NewMediaHandler(mediaService),
		Payment:      handlers.NewPaymentHandler(paymentService),
		Hook:         handlers.NewHookHandler(smsService),
		Cron:         handlers.NewCronHandler(menuService, reconciler),
		Health: handlers.HealthCheck(map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": handlers.PingFunc(cacheSvc.HealthCheck),
		}),
	}

	g := handlers.Guards{
		Session:      middleware.NewAuthMiddleware(authService).Handler,
		Cron:         middleware.CronAuth(cfg.Secrets.CronSecret),
		Hook:         middleware.HookSecret(cfg.Secrets.HookSecret),
		LoginLimiter: rateLimit(10, time.Minute),
		OTPLimiter:   rateLimit(5, time.Minute),
	}

	handlers.SetupRoutes(app, h, g)
	return nil
}

func rateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	})
}
