package service

import (
	"errors"
	"strings"

	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/checkout"
	"github.com/gsaan/gsaan-backend/internal/pricing"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

// SettingsService exposes the storefront settings and the policy values
// checkout reads from them.
type SettingsService interface {
	Get() (*model.SiteSettings, error)
	Update(settings *model.SiteSettings) (*model.SiteSettings, error)
	Policy() pricing.Policy
	WhatsAppNumber() string
}

type settingsService struct {
	repo repository.SettingsRepository
	shop config.ShopConfig
}

func NewSettingsService(repo repository.SettingsRepository, shop config.ShopConfig) SettingsService {
	return &settingsService{repo: repo, shop: shop}
}

func (s *settingsService) defaults() *model.SiteSettings {
	return &model.SiteSettings{
		ID: model.SettingsID,
		Business: model.BusinessSettings{
			Name:           s.shop.Name,
			Tagline:        "Pure Pooja Essentials from Salem",
			WhatsAppNumber: s.shop.WhatsAppNumber,
		},
		Delivery: model.DeliverySettings{
			FreeDeliveryThreshold: s.shop.FreeDeliveryThreshold,
			DefaultDeliveryCharge: s.shop.DeliveryCharge,
			ServiceablePincodes:   model.StringList{},
		},
	}
}

// Get returns the saved settings, or the configured defaults before an
// admin has saved any.
func (s *settingsService) Get() (*model.SiteSettings, error) {
	settings, err := s.repo.Get()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.defaults(), nil
	}
	if err != nil {
		logger.Error("Failed to load site settings", err)
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) Update(settings *model.SiteSettings) (*model.SiteSettings, error) {
	if errs := validateSettings(settings); errs != nil {
		logger.Warn("Settings update rejected", map[string]interface{}{
			"fields": errs.Error(),
		})
		return nil, errs
	}

	settings.Business.WhatsAppNumber = digitsOnly(settings.Business.WhatsAppNumber)
	if settings.Delivery.ServiceablePincodes == nil {
		settings.Delivery.ServiceablePincodes = model.StringList{}
	}

	if err := s.repo.Save(settings); err != nil {
		return nil, err
	}

	logger.Info("Site settings updated", map[string]interface{}{
		"free_delivery_threshold": settings.Delivery.FreeDeliveryThreshold,
		"delivery_charge":         settings.Delivery.DefaultDeliveryCharge,
	})
	return settings, nil
}

func validateSettings(settings *model.SiteSettings) FormErrors {
	errs := FormErrors{}
	if strings.TrimSpace(settings.Business.Name) == "" {
		errs["business.name"] = "Business name is required"
	}
	if n := digitsOnly(settings.Business.WhatsAppNumber); len(n) < 10 || len(n) > 15 {
		errs["business.whatsapp_number"] = "Enter the WhatsApp number with country code"
	}
	if settings.Delivery.FreeDeliveryThreshold < 0 {
		errs["delivery.free_delivery_threshold"] = "Threshold cannot be negative"
	}
	if settings.Delivery.DefaultDeliveryCharge < 0 {
		errs["delivery.default_delivery_charge"] = "Delivery charge cannot be negative"
	}
	for _, pin := range settings.Delivery.ServiceablePincodes {
		if !checkout.ValidPincode(pin) {
			errs["delivery.serviceable_pincodes"] = "Every pincode must be 6 digits"
			break
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *settingsService) Policy() pricing.Policy {
	settings, err := s.Get()
	if err != nil {
		return pricing.Policy{
			FreeDeliveryThreshold: s.shop.FreeDeliveryThreshold,
			DeliveryCharge:        s.shop.DeliveryCharge,
		}
	}
	return pricing.Policy{
		FreeDeliveryThreshold: settings.Delivery.FreeDeliveryThreshold,
		DeliveryCharge:        settings.Delivery.DefaultDeliveryCharge,
	}
}

func (s *settingsService) WhatsAppNumber() string {
	settings, err := s.Get()
	if err != nil || settings.Business.WhatsAppNumber == "" {
		return s.shop.WhatsAppNumber
	}
	return settings.Business.WhatsAppNumber
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
