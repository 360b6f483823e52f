package service

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/alnoor-academy/school-cms/config"
	"github.com/alnoor-academy/school-cms/mailer"
	"github.com/alnoor-academy/school-cms/util/common"
	"github.com/alnoor-academy/school-cms/web/entity"

	"github.com/skip2/go-qrcode"
)

const (
	actionWhatsapp = "whatsapp"
	actionEmail    = "email"
)

var nonDigits = regexp.MustCompile(`\D+`)

// ContactService routes public contact form submissions to the configured
// channel. The whatsapp action hands a prefilled wa.me link back to the
// client, the email action delivers the message through the mailer.
type ContactService struct {
	settingService *SettingService
	serverService  *ServerService
	tgbot          *Tgbot
	mailer         mailer.Mailer
}

func NewContactService(settingService *SettingService, serverService *ServerService, tgbot *Tgbot, m mailer.Mailer) *ContactService {
	return &ContactService{
		settingService: settingService,
		serverService:  serverService,
		tgbot:          tgbot,
		mailer:         m,
	}
}

// Dispatch handles one contact form submission. The action is taken from the
// contactFormAction setting, then the SCHOOLCMS_CONTACT_ACTION environment
// fallback, then defaults to whatsapp.
func (s *ContactService) Dispatch(form *entity.ContactForm) (*entity.ContactResult, error) {
	action, err := s.resolveAction()
	if err != nil {
		return nil, err
	}

	var result *entity.ContactResult
	switch action {
	case actionWhatsapp:
		result, err = s.dispatchWhatsapp(form)
	case actionEmail:
		result, err = s.dispatchEmail(form)
	default:
		return nil, fmt.Errorf("%w: unknown contact form action %q", ErrConfig, action)
	}
	if err != nil {
		return nil, err
	}

	s.afterDispatch(form)
	return result, nil
}

// WhatsappQR renders the school's WhatsApp contact link as a PNG so the
// public site can show it as a scannable code.
func (s *ContactService) WhatsappQR(size int) ([]byte, error) {
	digits, err := s.whatsappNumber()
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode("https://wa.me/"+digits, qrcode.Medium, size)
	if err != nil {
		return nil, common.NewErrorf("failed to encode the qr code: %v", err)
	}
	return png, nil
}

func (s *ContactService) resolveAction() (string, error) {
	action, err := s.settingService.GetContactFormAction()
	if err != nil {
		return "", err
	}
	if action == "" {
		action = config.GetContactAction()
	}
	if action == "" {
		action = actionWhatsapp
	}
	return strings.ToLower(strings.TrimSpace(action)), nil
}

func (s *ContactService) whatsappNumber() (string, error) {
	number, err := s.settingService.GetWhatsappNumber()
	if err != nil {
		return "", err
	}
	if number == "" {
		number = config.GetWhatsappNumber()
	}
	digits := nonDigits.ReplaceAllString(number, "")
	if digits == "" {
		return "", fmt.Errorf("%w: no whatsapp number is configured", ErrConfig)
	}
	return digits, nil
}

func (s *ContactService) contactRecipient() (string, error) {
	recipient, err := s.settingService.GetContactRecipient()
	if err != nil {
		return "", err
	}
	if recipient == "" {
		recipient = config.GetContactRecipient()
	}
	if recipient == "" {
		return "", fmt.Errorf("%w: no contact recipient is configured", ErrConfig)
	}
	return recipient, nil
}

func (s *ContactService) dispatchWhatsapp(form *entity.ContactForm) (*entity.ContactResult, error) {
	digits, err := s.whatsappNumber()
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("https://wa.me/%s?text=%s", digits, encodeText(formText(form)))
	return &entity.ContactResult{Action: actionWhatsapp, URL: link}, nil
}

func (s *ContactService) dispatchEmail(form *entity.ContactForm) (*entity.ContactResult, error) {
	recipient, err := s.contactRecipient()
	if err != nil {
		return nil, err
	}
	if s.mailer == nil {
		return nil, fmt.Errorf("%w: the email action needs a configured mailer", ErrConfig)
	}

	msg := &mailer.Message{
		To:      mail.Address{Address: recipient},
		ReplyTo: &mail.Address{Name: form.Name, Address: form.Email},
		Subject: "Contact form: " + form.Subject,
		Text:    formText(form),
	}
	if err := s.mailer.Send(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return &entity.ContactResult{Action: actionEmail}, nil
}

// afterDispatch bumps the contact counter and notifies the Telegram admins.
// Both are best effort, a failure never turns a delivered submission into an
// error response.
func (s *ContactService) afterDispatch(form *entity.ContactForm) {
	if s.serverService != nil {
		s.serverService.AddContact()
	}
	if s.tgbot != nil {
		go s.tgbot.ContactNotify(form)
	}
}

func formText(form *entity.ContactForm) string {
	var sb strings.Builder
	sb.WriteString("Name: " + form.Name + "\n")
	sb.WriteString("Email: " + form.Email + "\n")
	sb.WriteString("Subject: " + form.Subject + "\n\n")
	sb.WriteString(form.Message)
	return sb.String()
}

// encodeText percent-encodes msg for the wa.me text parameter. QueryEscape
// uses '+' for spaces, which WhatsApp shows literally.
func encodeText(msg string) string {
	return strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}
