// Package store manages a merchant's operational store settings and payout
// bank details.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

var ErrStoreNotFound = apperrors.New(apperrors.KindNotFound, "STORE_NOT_FOUND", "Store not found")

// Cipher seals bank account numbers at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) string
}

type SettingsInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=120"`
	AddressLine     *string `json:"address_line" validate:"omitempty,max=500"`
	City            *string `json:"city" validate:"omitempty,max=120"`
	Pincode         *string `json:"pincode" validate:"omitempty,pincode"`
	OpeningTime     *string `json:"opening_time" validate:"omitempty,datetime=15:04"`
	ClosingTime     *string `json:"closing_time" validate:"omitempty,datetime=15:04"`
	AcceptingOrders *bool   `json:"accepting_orders"`
	LogoKey         *string `json:"logo_key" validate:"omitempty,max=500"`
	BannerKey       *string `json:"banner_key" validate:"omitempty,max=500"`
}

type BankInput struct {
	AccountHolder string `json:"account_holder" validate:"required,max=120"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=18"`
	IFSC          string `json:"ifsc" validate:"required,ifsc"`
}

// BankDetails is the view returned to clients; the number is always masked.
type BankDetails struct {
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

type Service struct {
	repo   repositories.MerchantRepository
	cipher Cipher
	log    *zap.Logger
}

func NewService(repo repositories.MerchantRepository, cipher Cipher, log *zap.Logger) *Service {
	return &Service{repo: repo, cipher: cipher, log: log}
}

func (s *Service) get(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	store, err := s.repo.GetStore(ctx, parentID, storeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return store, nil
}

func (s *Service) UpdateSettings(ctx context.Context, parentID uint, storeID string, in SettingsInput) (*models.MerchantStore, error) {
	store, err := s.get(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	set := func(column string, v *string, dst *string) {
		if v != nil {
			trimmed := strings.TrimSpace(*v)
			fields[column] = trimmed
			*dst = trimmed
		}
	}
	set("name", in.Name, &store.Name)
	set("address_line", in.AddressLine, &store.AddressLine)
	set("city", in.City, &store.City)
	set("pincode", in.Pincode, &store.Pincode)
	set("opening_time", in.OpeningTime, &store.OpeningTime)
	set("closing_time", in.ClosingTime, &store.ClosingTime)
	set("logo_key", in.LogoKey, &store.LogoKey)
	set("banner_key", in.BannerKey, &store.BannerKey)
	if in.AcceptingOrders != nil {
		fields["accepting_orders"] = *in.AcceptingOrders
		store.AcceptingOrders = *in.AcceptingOrders
	}

	if len(fields) == 0 {
		return nil, apperrors.Validation("no settings to update")
	}
	if err := s.repo.UpdateStore(ctx, store, fields); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update store settings: %w", err))
	}
	return store, nil
}

func (s *Service) SetBankDetails(ctx context.Context, parentID uint, storeID string, in BankInput) (*BankDetails, error) {
	store, err := s.get(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(in.AccountNumber)
	sealed, err := s.cipher.Encrypt(number)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("encrypt bank account: %w", err))
	}

	ifsc := strings.ToUpper(strings.TrimSpace(in.IFSC))
	fields := map[string]interface{}{
		"bank_account_holder":    strings.TrimSpace(in.AccountHolder),
		"bank_account_encrypted": sealed,
		"bank_account_last4":     last4(number),
		"bank_ifsc":              ifsc,
	}
	if err := s.repo.UpdateStore(ctx, store, fields); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update bank details: %w", err))
	}

	s.log.Info("Store bank details updated", zap.String("store_id", storeID))
	return &BankDetails{
		AccountHolder: strings.TrimSpace(in.AccountHolder),
		AccountNumber: utils.MaskAccountNumber(number),
		IFSC:          ifsc,
	}, nil
}

// GetBankDetails returns nil when no bank account is on file. A number that
// no longer decrypts is shown from its stored last four digits.
func (s *Service) GetBankDetails(ctx context.Context, parentID uint, storeID string) (*BankDetails, error) {
	store, err := s.get(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	if store.BankAccountEncrypted == "" {
		return nil, nil
	}

	number := s.cipher.Decrypt(store.BankAccountEncrypted)
	masked := utils.MaskAccountNumber(number)
	if number == "" {
		s.log.Warn("Stored bank account failed to decrypt", zap.String("store_id", storeID))
		masked = "XXXXXXXX" + store.BankAccountLast4
	}
	return &BankDetails{
		AccountHolder: store.BankAccountHolder,
		AccountNumber: masked,
		IFSC:          store.BankIFSC,
	}, nil
}

func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
