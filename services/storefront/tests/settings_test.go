package tests

import (
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
)

func (s *IntegrationTestSuite) TestSettings_DefaultsWithoutRow() {
	settings, err := s.SettingsService.Get(s.Ctx)
	s.Require().NoError(err)
	s.Require().False(settings.IsEcommerceActive)
	s.Require().Equal(domain.DefaultWhatsappNumber, settings.WhatsappNumber)
}

func (s *IntegrationTestSuite) TestSettings_UpdateInvalidatesCache() {
	_, err := s.SettingsService.Get(s.Ctx)
	s.Require().NoError(err)

	cached, err := s.Redis.Exists(s.Ctx, service.SettingsCacheKey).Result()
	s.Require().NoError(err)
	s.Require().EqualValues(1, cached)

	active := true
	updated, err := s.SettingsService.Update(s.Ctx, domain.SettingsUpdate{IsEcommerceActive: &active})
	s.Require().NoError(err)
	s.Require().True(updated.IsEcommerceActive)
	s.Require().Equal(domain.DefaultWhatsappNumber, updated.WhatsappNumber)

	cached, err = s.Redis.Exists(s.Ctx, service.SettingsCacheKey).Result()
	s.Require().NoError(err)
	s.Require().Zero(cached)

	settings, err := s.SettingsService.Get(s.Ctx)
	s.Require().NoError(err)
	s.Require().True(settings.IsEcommerceActive)
}

func (s *IntegrationTestSuite) TestSettings_PartialUpdatesKeepOtherFields() {
	number := " 919999999999 "
	_, err := s.SettingsService.Update(s.Ctx, domain.SettingsUpdate{WhatsappNumber: &number})
	s.Require().NoError(err)

	active := true
	blank := "   "
	updated, err := s.SettingsService.Update(s.Ctx, domain.SettingsUpdate{
		IsEcommerceActive: &active,
		WhatsappNumber:    &blank,
	})
	s.Require().NoError(err)
	s.Require().True(updated.IsEcommerceActive)
	s.Require().Equal("919999999999", updated.WhatsappNumber)
	s.Require().Equal(1, s.countRows(`SELECT COUNT(*) FROM site_settings`))
}
