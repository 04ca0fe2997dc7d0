package handlers

import (
	"merchantportal/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every route handler the portal serves.
type Handlers struct {
	Auth         *AuthHandler
	Registration *RegistrationHandler
	Store        *StoreHandler
	Order        *OrderHandler
	Menu         *MenuHandler
	Ticket       *TicketHandler
	Media        *MediaHandler
	Payment      *PaymentHandler
	Hook         *HookHandler
	Cron         *CronHandler
	Health       fiber.Handler
}

// Guards are the middleware placed in front of route groups.
type Guards struct {
	Session      fiber.Handler
	Cron         fiber.Handler
	Hook         fiber.Handler
	LoginLimiter fiber.Handler
	OTPLimiter   fiber.Handler
}

func SetupRoutes(app *fiber.App, h Handlers, g Guards) {
	app.Get("/health", h.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// The session group is mounted last: its middleware applies to every
	// /api route registered after it.
	setupPublicRoutes(api, h, g)
	setupMachineRoutes(api, h, g)
	setupMerchantRoutes(api.Group("", g.Session), h)
}

func setupPublicRoutes(api fiber.Router, h Handlers, g Guards) {
	authGroup := api.Group("/auth")
	authGroup.Post("/login", g.LoginLimiter, h.Auth.Login)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Get("/session", h.Auth.Session)

	register := api.Group("/register")
	register.Post("/otp/send", g.OTPLimiter, h.Registration.SendOTP)
	register.Post("/otp/verify", g.OTPLimiter, h.Registration.VerifyOTP)
	register.Get("/lookup", h.Registration.Lookup)
	register.Post("/parent", h.Registration.CreateParent)
	register.Post("/progress", h.Registration.SaveProgress)
	register.Post("/store", h.Registration.CreateStore)
	register.Patch("/stores/:storeId/step", h.Registration.AdvanceStep)

	api.Post("/onboarding/create-order", h.Payment.CreateOnboardingOrder)
}

func setupMerchantRoutes(router fiber.Router, h Handlers) {
	router.Get("/auth/me", h.Auth.Me)
	router.Get("/onboarding/draft", h.Registration.Draft)
	router.Get("/media/signed-url", h.Media.SignedURL)

	stores := router.Group("/stores")
	stores.Get("/", h.Store.List)
	stores.Get("/:storeId", h.Store.Get)
	stores.Patch("/:storeId/settings", h.Store.UpdateSettings)
	stores.Get("/:storeId/bank", h.Store.GetBankDetails)
	stores.Put("/:storeId/bank", h.Store.SetBankDetails)

	stores.Get("/:storeId/orders", h.Order.List)
	stores.Get("/:storeId/orders/:orderId", h.Order.Get)
	stores.Patch("/:storeId/orders/:orderId/status", h.Order.UpdateStatus)

	stores.Get("/:storeId/menu", h.Menu.ListItems)
	stores.Post("/:storeId/menu", h.Menu.CreateItem)
	stores.Patch("/:storeId/menu/:itemId", h.Menu.UpdateItem)
	stores.Patch("/:storeId/menu/:itemId/availability", h.Menu.SetAvailability)
	stores.Delete("/:storeId/menu/:itemId", h.Menu.DeleteItem)

	stores.Get("/:storeId/offers", h.Menu.ListOffers)
	stores.Post("/:storeId/offers", h.Menu.CreateOffer)
	stores.Delete("/:storeId/offers/:offerId", h.Menu.DeleteOffer)

	tickets := router.Group("/tickets")
	tickets.Get("/", h.Ticket.List)
	tickets.Post("/", h.Ticket.Create)
	tickets.Get("/:ticketNumber", h.Ticket.Get)
	tickets.Post("/:ticketNumber/replies", h.Ticket.Reply)
	tickets.Post("/:ticketNumber/close", h.Ticket.Close)
}

// setupMachineRoutes are called by the gateway, the identity provider and the
// scheduler, never by a browser.
func setupMachineRoutes(api fiber.Router, h Handlers, g Guards) {
	api.Post("/webhooks/payment", h.Payment.Webhook)
	api.Post("/hooks/send-sms", g.Hook, h.Hook.SendSMS)

	cron := api.Group("/cron", g.Cron)
	cron.Post("/reset-limits", h.Cron.ResetLimits)
	cron.Post("/onboarding-sweep", h.Cron.OnboardingSweep)
}
