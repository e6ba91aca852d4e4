package domain

import (
	"strings"
	"time"
)

const DefaultWhatsappNumber = "917822832788"

type SiteSettings struct {
	IsEcommerceActive bool       `json:"is_ecommerce_active"`
	WhatsappNumber    string     `json:"whatsapp_number"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		IsEcommerceActive: false,
		WhatsappNumber:    DefaultWhatsappNumber,
	}
}

// SettingsUpdate is a partial update: nil fields are left alone and a blank
// whatsapp number is ignored.
type SettingsUpdate struct {
	IsEcommerceActive *bool
	WhatsappNumber    *string
}

func (u SettingsUpdate) Normalize() SettingsUpdate {
	if u.WhatsappNumber != nil {
		trimmed := strings.TrimSpace(*u.WhatsappNumber)
		if trimmed == "" {
			u.WhatsappNumber = nil
		} else {
			u.WhatsappNumber = &trimmed
		}
	}

	return u
}

func (u SettingsUpdate) Empty() bool {
	return u.IsEcommerceActive == nil && u.WhatsappNumber == nil
}
