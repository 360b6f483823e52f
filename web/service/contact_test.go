package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alnoor-academy/school-cms/mailer"
	"github.com/alnoor-academy/school-cms/web/entity"
)

type failingMailer struct{}

func (failingMailer) Send(*mailer.Message) error { return errors.New("smtp 550") }

func testForm() *entity.ContactForm {
	return &entity.ContactForm{
		Name:    "Budi Santoso",
		Email:   "budi@example.com",
		Subject: "Enrollment",
		Message: "When does registration open?",
	}
}

func TestContactServiceWhatsapp(t *testing.T) {
	t.Setenv("SCHOOLCMS_CONTACT_ACTION", "")
	t.Setenv("SCHOOLCMS_WHATSAPP_NUMBER", "")

	settingService := NewSettingService(newTestDB(t))
	service := NewContactService(settingService, nil, nil, nil)

	// Whatsapp is the hard default, but it needs a number.
	_, err := service.Dispatch(testForm())
	assert.ErrorIs(t, err, ErrConfig)

	assert.NoError(t, settingService.setString("whatsappNumber", "+62 812-3456-7890"))

	result, err := service.Dispatch(testForm())
	assert.NoError(t, err)
	assert.Equal(t, "whatsapp", result.Action)
	assert.True(t, strings.HasPrefix(result.URL, "https://wa.me/6281234567890?text="), result.URL)

	// Spaces are %20, never '+', whatsapp renders '+' literally.
	assert.Contains(t, result.URL, "Budi%20Santoso")
	assert.NotContains(t, result.URL, "+")
	assert.Contains(t, result.URL, "registration%20open%3F")
}

func TestContactServiceEmail(t *testing.T) {
	t.Setenv("SCHOOLCMS_CONTACT_RECIPIENT", "")

	settingService := NewSettingService(newTestDB(t))
	recorder := mailer.NewRecordingMailer()
	service := NewContactService(settingService, nil, nil, recorder)

	assert.NoError(t, settingService.setString("contactFormAction", "email"))

	// No recipient configured anywhere.
	_, err := service.Dispatch(testForm())
	assert.ErrorIs(t, err, ErrConfig)
	assert.Len(t, recorder.Sent(), 0)

	assert.NoError(t, settingService.setString("contactRecipient", "office@alnoor.sch.id"))

	result, err := service.Dispatch(testForm())
	assert.NoError(t, err)
	assert.Equal(t, "email", result.Action)
	assert.Empty(t, result.URL)

	sent := recorder.Sent()
	assert.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "office@alnoor.sch.id", msg.To.Address)
	assert.Equal(t, "Contact form: Enrollment", msg.Subject)
	if assert.NotNil(t, msg.ReplyTo) {
		assert.Equal(t, "budi@example.com", msg.ReplyTo.Address)
		assert.Equal(t, "Budi Santoso", msg.ReplyTo.Name)
	}
	assert.Contains(t, msg.Text, "Name: Budi Santoso")
	assert.Contains(t, msg.Text, "When does registration open?")
}

func TestContactServiceEmailWithoutMailer(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewContactService(settingService, nil, nil, nil)

	assert.NoError(t, settingService.setString("contactFormAction", "email"))
	assert.NoError(t, settingService.setString("contactRecipient", "office@alnoor.sch.id"))

	_, err := service.Dispatch(testForm())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestContactServiceEmailFailure(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewContactService(settingService, nil, nil, failingMailer{})

	assert.NoError(t, settingService.setString("contactFormAction", "email"))
	assert.NoError(t, settingService.setString("contactRecipient", "office@alnoor.sch.id"))

	_, err := service.Dispatch(testForm())
	assert.ErrorIs(t, err, ErrEmailDelivery)
}

func TestContactServiceActionResolution(t *testing.T) {
	t.Setenv("SCHOOLCMS_CONTACT_ACTION", "email")
	t.Setenv("SCHOOLCMS_CONTACT_RECIPIENT", "office@alnoor.sch.id")

	settingService := NewSettingService(newTestDB(t))
	recorder := mailer.NewRecordingMailer()
	service := NewContactService(settingService, nil, nil, recorder)

	// The environment fallback applies while no setting is stored.
	result, err := service.Dispatch(testForm())
	assert.NoError(t, err)
	assert.Equal(t, "email", result.Action)
	assert.Len(t, recorder.Sent(), 1)

	// The stored setting wins over the environment.
	assert.NoError(t, settingService.setString("contactFormAction", "Whatsapp"))
	assert.NoError(t, settingService.setString("whatsappNumber", "0812 3456 789"))
	result, err = service.Dispatch(testForm())
	assert.NoError(t, err)
	assert.Equal(t, "whatsapp", result.Action)
	assert.Len(t, recorder.Sent(), 1)
}

func TestContactServiceUnknownAction(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewContactService(settingService, nil, nil, nil)

	assert.NoError(t, settingService.setString("contactFormAction", "carrier-pigeon"))

	_, err := service.Dispatch(testForm())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestContactServiceCountsDispatches(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	serverService := NewServerService(settingService)
	service := NewContactService(settingService, serverService, nil, nil)

	assert.NoError(t, settingService.setString("whatsappNumber", "628123456789"))

	_, err := service.Dispatch(testForm())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), serverService.contacts.Load())
}

func TestContactServiceWhatsappQR(t *testing.T) {
	t.Setenv("SCHOOLCMS_WHATSAPP_NUMBER", "")

	settingService := NewSettingService(newTestDB(t))
	service := NewContactService(settingService, nil, nil, nil)

	_, err := service.WhatsappQR(256)
	assert.ErrorIs(t, err, ErrConfig)

	assert.NoError(t, settingService.setString("whatsappNumber", "+62 812-3456-7890"))

	png, err := service.WhatsappQR(256)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
