package mailer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alnoor-academy/school-cms/logger"
)

// ConsoleMailer logs messages instead of delivering them and records them for
// inspection. Used in debug mode and in tests.
type ConsoleMailer struct {
	mu   sync.Mutex
	sent []*Message

	from          string
	disableOutput bool
}

var _ Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(from string) *ConsoleMailer {
	return &ConsoleMailer{from: from}
}

// NewRecordingMailer is a silent console mailer for tests.
func NewRecordingMailer() *ConsoleMailer {
	return &ConsoleMailer{from: "noreply@localhost", disableOutput: true}
}

func (m *ConsoleMailer) Send(msg *Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.disableOutput {
		return nil
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", m.from)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(body, "To: %s\r\n", msg.To.String())
	if msg.ReplyTo != nil {
		fmt.Fprintf(body, "Reply-To: %s\r\n", msg.ReplyTo.String())
	}
	fmt.Fprintf(body, "\r\n%s\r\n", msg.Text)

	logger.Info(body.String())
	return nil
}

// Sent returns the messages handed to Send so far.
func (m *ConsoleMailer) Sent() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Message, len(m.sent))
	copy(out, m.sent)
	return out
}
