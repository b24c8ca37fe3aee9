package mailer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Message is a single transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendgridMailer sends through the SendGrid v3 mail API.
func NewSendgridMailer(key, appName, fromEmail string) Mailer {
	return &sendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *sendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	html := msg.HTML
	if html == "" {
		html = "<p>" + strings.ReplaceAll(msg.Text, "\n", "<br>") + "</p>"
	}
	to := sgmail.NewEmail(msg.ToName, msg.To)
	return sgmail.NewSingleEmail(m.from, m.subjPrefix+msg.Subject, to, msg.Text, html)
}

func (m *sendgridMailer) Send(_ context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected email with status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

type consoleMailer struct {
	subjPrefix string
}

// NewConsoleMailer writes messages to the log instead of sending them.
// Meant for local development.
func NewConsoleMailer(appName string) Mailer {
	return &consoleMailer{subjPrefix: "[" + appName + "] "}
}

func (m *consoleMailer) Send(_ context.Context, msg Message) error {
	log.Printf("📧 To: %s\nSubject: %s%s\n\n%s", msg.To, m.subjPrefix, msg.Subject, msg.Text)
	return nil
}

// Config selects the mailer.
type Config struct {
	SendgridAPIKey string
	AppName        string
	FromEmail      string
	// AllowConsole falls back to the console mailer when no API key is set.
	AllowConsole bool
}

// New returns the SendGrid mailer when a key is configured, the console
// mailer when allowed, and nil otherwise.
func New(cfg Config) Mailer {
	switch {
	case cfg.SendgridAPIKey != "":
		return NewSendgridMailer(cfg.SendgridAPIKey, cfg.AppName, cfg.FromEmail)
	case cfg.AllowConsole:
		return NewConsoleMailer(cfg.AppName)
	default:
		return nil
	}
}
