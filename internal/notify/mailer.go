package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/omart/marketplace/internal/models"
)

type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer tells sellers about moderation decisions on their listings.
type Mailer struct {
	from   string
	dialer sender
}

func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{from: from, dialer: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass)}, nil
}

var decisionTmpl = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
    <h2 style="color: #333;">{{.Heading}}</h2>
    <p>Hello {{.Name}},</p>
    <p>Your listing <strong>{{.Title}}</strong> {{.Verdict}}</p>
    {{if .Reason}}<p style="background-color: #fff7ed; padding: 12px; border-radius: 8px;">Reason: {{.Reason}}</p>{{end}}
    <p style="color: #666; font-size: 12px;">This is an automated email from O Mart. Please do not reply.</p>
  </div>
</body>
</html>`))

type decision struct {
	Heading string
	Name    string
	Title   string
	Verdict string
	Reason  string
}

func (m *Mailer) ProductApproved(ctx context.Context, to models.Contact, title string) error {
	return m.send(ctx, to, "Your listing is live on O Mart", decision{
		Heading: "Listing approved",
		Name:    to.Name,
		Title:   title,
		Verdict: "has been approved and is now visible to buyers.",
	})
}

func (m *Mailer) ProductRejected(ctx context.Context, to models.Contact, title, reason string) error {
	return m.send(ctx, to, "Your listing was not approved", decision{
		Heading: "Listing rejected",
		Name:    to.Name,
		Title:   title,
		Verdict: "was not approved by our moderators.",
		Reason:  reason,
	})
}

func (m *Mailer) send(ctx context.Context, to models.Contact, subject string, d decision) error {
	if to.Email == "" {
		return fmt.Errorf("notify: recipient has no email")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := decisionTmpl.Execute(&body, d); err != nil {
		return fmt.Errorf("notify: render: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: send to %s: %w", to.Email, err)
	}
	return nil
}
