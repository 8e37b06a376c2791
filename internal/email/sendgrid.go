package email

import (
	"fmt"
	"log"
	"strings"

	"github.com/sayantan/task-manager-api/internal/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends transactional account emails. When no API key is
// configured the mailer logs and drops the message so local setups work
// without a SendGrid account.
type SendGridMailer struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridMailer(cfg *config.Config) *SendGridMailer {
	return &SendGridMailer{
		apiKey:   cfg.SendGridAPIKey,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
	}
}

func (m *SendGridMailer) SendWelcome(email, name string) error {
	first := firstName(name)
	body := fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", first)
	return m.send(email, "Thanks for joining in!", body)
}

func (m *SendGridMailer) SendGoodbye(email, name string) error {
	first := firstName(name)
	body := fmt.Sprintf("Goodbye, %s. We are sorry for any inconvenience caused. We wish you wouldn't leave us.", first)
	return m.send(email, "Goodbye", body)
}

func (m *SendGridMailer) send(to, subject, body string) error {
	if m.apiKey == "" {
		log.Printf("email not configured, dropping %q to %s", subject, to)
		return nil
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}
	return nil
}

func firstName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}
	return parts[0]
}
