// Package mailer delivers outbound mail for the contact form. The SendGrid
// backend is used when an API key is configured; the console backend prints
// messages for development.
package mailer

import "net/mail"

// Message is one outbound email. Text-only; the contact form never sends HTML.
type Message struct {
	To      mail.Address
	ReplyTo *mail.Address
	Subject string
	Text    string
}

// Mailer sends a single message synchronously and reports transport failure.
type Mailer interface {
	Send(msg *Message) error
}
