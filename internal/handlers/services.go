package handlers

import (
	"context"

	"merchantportal/internal/models"
	"merchantportal/internal/services/auth"
	"merchantportal/internal/services/menu"
	"merchantportal/internal/services/merchant"
	"merchantportal/internal/services/onboarding"
	"merchantportal/internal/services/order"
	"merchantportal/internal/services/payment"
	"merchantportal/internal/services/session"
	"merchantportal/internal/services/store"
	"merchantportal/internal/services/ticket"
	"merchantportal/internal/utils/pagination"
)

// The interfaces below are the slices of each service the handlers call.

type AuthService interface {
	Login(ctx context.Context, jar session.Jar, in auth.LoginInput, client auth.Client) (*auth.LoginResult, error)
	Logout(ctx context.Context, jar session.Jar)
	Status(jar session.Jar) auth.Status
}

type MerchantService interface {
	ResolveParentByPhone(ctx context.Context, phone string) (*merchant.ParentLookup, error)
	GetParent(ctx context.Context, parentID uint) (*models.MerchantParent, error)
	CreateParent(ctx context.Context, in merchant.CreateParentInput) (*models.MerchantParent, error)
	ListStores(ctx context.Context, parentID uint) ([]models.MerchantStore, error)
	GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error)
	CreateStore(ctx context.Context, parentID uint, in merchant.CreateStoreInput) (*models.MerchantStore, error)
	AdvanceStep(ctx context.Context, parentID uint, storeID string, step int) (*models.MerchantStore, error)
}

type OTPService interface {
	Send(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) error
	RequireVerified(ctx context.Context, phone string) error
	ConsumeVerified(ctx context.Context, phone string)
}

type OnboardingService interface {
	FinalStep() int
	OpenDraft(ctx context.Context, parentID uint) (*models.RegistrationProgress, error)
	SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error)
	Sweep(ctx context.Context) (onboarding.SweepResult, error)
}

type StoreService interface {
	UpdateSettings(ctx context.Context, parentID uint, storeID string, in store.SettingsInput) (*models.MerchantStore, error)
	SetBankDetails(ctx context.Context, parentID uint, storeID string, in store.BankInput) (*store.BankDetails, error)
	GetBankDetails(ctx context.Context, parentID uint, storeID string) (*store.BankDetails, error)
}

type OrderService interface {
	List(ctx context.Context, parentID uint, storeID, status string, page pagination.Params) ([]models.Order, int64, error)
	Get(ctx context.Context, parentID uint, storeID, orderID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, parentID uint, storeID, orderID string, in order.UpdateStatusInput) (*models.Order, error)
}

type MenuService interface {
	ListItems(ctx context.Context, parentID uint, storeID, category string) ([]models.MenuItem, error)
	CreateItem(ctx context.Context, parentID uint, storeID string, in menu.ItemInput) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, parentID uint, storeID, itemID string, in menu.ItemUpdate) (*models.MenuItem, error)
	SetAvailability(ctx context.Context, parentID uint, storeID, itemID string, available bool) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, parentID uint, storeID, itemID string) error
	ListOffers(ctx context.Context, parentID uint, storeID string) ([]models.Offer, error)
	CreateOffer(ctx context.Context, parentID uint, storeID string, in menu.OfferInput) (*models.Offer, error)
	DeleteOffer(ctx context.Context, parentID uint, storeID, offerID string) error
	ResetDailyLimits(ctx context.Context) (int64, error)
}

type TicketService interface {
	Create(ctx context.Context, parentID uint, in ticket.CreateInput) (*models.Ticket, error)
	List(ctx context.Context, parentID uint, status string) ([]models.Ticket, error)
	Get(ctx context.Context, parentID uint, number string) (*models.Ticket, error)
	Reply(ctx context.Context, parentID uint, number string, in ticket.ReplyInput) (*models.Ticket, error)
	Close(ctx context.Context, parentID uint, number string) (*models.Ticket, error)
}

type MediaService interface {
	SignedURL(ctx context.Context, keyOrURL string) (string, error)
}

type PaymentService interface {
	CreateOnboardingOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.Order, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*models.Payment, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
}
