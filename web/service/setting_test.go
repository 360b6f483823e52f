package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alnoor-academy/school-cms/web/entity"
)

func TestSettingServiceDefaults(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	settings, err := service.GetAll()
	assert.NoError(t, err)

	// Names never written come back as their defaults.
	assert.Equal(t, "Al Noor Academy", settings["heroTitle"])
	assert.Equal(t, "8080", settings["webPort"])
	assert.Equal(t, []entity.FacilityCard{}, settings["facilityCards"])
	assert.Equal(t, entity.SocialLinks{}, settings["socialLinks"])
	assert.Equal(t, entity.GradientConfig{}, settings["heroGradient"])

	// Protected names never leave the process.
	for _, name := range []string{"secret", "twoFactorToken", "tgBotToken", "tgBotChatId", "webCertFile", "webKeyFile"} {
		_, ok := settings[name]
		assert.False(t, ok, name)
	}
}

func TestSettingServiceSetMany(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	cards := []entity.FacilityCard{
		{Title: "Library", Description: "Ten thousand titles", Icon: "book"},
		{Title: "Science Lab", Description: "Physics and chemistry", Icon: "flask"},
	}
	err := service.SetMany(map[string]any{
		"heroTitle":     "Madrasah Al Noor",
		"heroSubtitle":  "Learning for life",
		"facilityCards": cards,
		"socialLinks":   entity.SocialLinks{"instagram": "https://instagram.com/alnoor"},
		"heroGradient":  entity.GradientConfig{From: "#0f172a", To: "#1e3a8a", Direction: "to-br"},
	})
	assert.NoError(t, err)

	settings, err := service.GetAll()
	assert.NoError(t, err)
	assert.Equal(t, "Madrasah Al Noor", settings["heroTitle"])
	assert.Equal(t, "Learning for life", settings["heroSubtitle"])
	assert.Equal(t, cards, settings["facilityCards"])
	assert.Equal(t, entity.SocialLinks{"instagram": "https://instagram.com/alnoor"}, settings["socialLinks"])
	assert.Equal(t, entity.GradientConfig{From: "#0f172a", To: "#1e3a8a", Direction: "to-br"}, settings["heroGradient"])

	// A second write replaces the stored value.
	err = service.SetMany(map[string]any{"heroTitle": "Al Noor Academy"})
	assert.NoError(t, err)
	title, err := service.getString("heroTitle")
	assert.NoError(t, err)
	assert.Equal(t, "Al Noor Academy", title)
}

func TestSettingServiceSetManyRollsBack(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	assert.NoError(t, service.SetMany(map[string]any{"address": "Jl. Merdeka 1"}))

	// One unencodable value fails the whole batch.
	err := service.SetMany(map[string]any{
		"address": "Jl. Merdeka 2",
		"phone":   make(chan int),
	})
	assert.ErrorIs(t, err, ErrValidation)

	address, err := service.getString("address")
	assert.NoError(t, err)
	assert.Equal(t, "Jl. Merdeka 1", address)
}

func TestSettingServiceMalformedJSON(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	assert.NoError(t, service.saveSetting("facilityCards", "{not json"))
	assert.NoError(t, service.saveSetting("heroGradient", "[broken"))

	// Malformed stored documents degrade to the empty default instead of
	// failing the whole read.
	settings, err := service.GetAll()
	assert.NoError(t, err)
	assert.Equal(t, []entity.FacilityCard{}, settings["facilityCards"])
	assert.Equal(t, entity.GradientConfig{}, settings["heroGradient"])
}

func TestSettingServiceSecretPersists(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	first, err := service.GetSecret()
	assert.NoError(t, err)
	assert.Len(t, first, 32)

	// The generated default is written back on first use.
	stored, err := service.getSetting("secret")
	assert.NoError(t, err)
	assert.Equal(t, string(first), stored.Value)

	second, err := service.GetSecret()
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSettingServiceBasePath(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	basePath, err := service.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/", basePath)

	// Stored values are normalized to have both slashes.
	assert.NoError(t, service.setString("webBasePath", "admin"))
	basePath, err = service.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/admin/", basePath)
}

func TestSettingServiceCounters(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	count, err := service.GetVisitCount()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.NoError(t, service.AddVisitCount(3))
	assert.NoError(t, service.AddVisitCount(2))
	count, err = service.GetVisitCount()
	assert.NoError(t, err)
	assert.Equal(t, 5, count)

	assert.NoError(t, service.AddContactCount(1))
	contacts, err := service.GetContactCount()
	assert.NoError(t, err)
	assert.Equal(t, 1, contacts)
}

func TestSettingServiceReset(t *testing.T) {
	service := NewSettingService(newTestDB(t))

	assert.NoError(t, service.SetMany(map[string]any{"heroTitle": "Changed"}))
	assert.NoError(t, service.ResetSettings())

	settings, err := service.GetAll()
	assert.NoError(t, err)
	assert.Equal(t, "Al Noor Academy", settings["heroTitle"])
}
