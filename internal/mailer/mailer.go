// Package mailer sends transactional account emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config carries the SMTP endpoint, the sender identity and the public
// frontend URL used to build links inside emails.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FrontendURL string
}

// Sender delivers user-facing account emails. Callers decide whether a
// delivery failure aborts the surrounding operation.
type Sender interface {
	Welcome(ctx context.Context, to, name string) error
	ProfileUpdated(ctx context.Context, to, name string, changed []string) error
	PasswordReset(ctx context.Context, to, token string) error
	PasswordResetDone(ctx context.Context, to string) error
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	cfg    Config
	client *mail.Client
	tmpl   *template.Template
}

func New(cfg Config) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Mailer{cfg: cfg, client: client, tmpl: tmpl}, nil
}

func (m *Mailer) Welcome(ctx context.Context, to, name string) error {
	return m.send(ctx, to, "Добро пожаловать в RotaZap", "welcome.html", map[string]any{
		"Name":        name,
		"FrontendURL": m.cfg.FrontendURL,
	})
}

func (m *Mailer) ProfileUpdated(ctx context.Context, to, name string, changed []string) error {
	return m.send(ctx, to, "Ваш профиль обновлён", "profile_updated.html", map[string]any{
		"Name":    name,
		"Changed": changed,
	})
}

func (m *Mailer) PasswordReset(ctx context.Context, to, token string) error {
	return m.send(ctx, to, "Восстановление пароля", "password_reset.html", map[string]any{
		"ResetURL": fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token),
	})
}

func (m *Mailer) PasswordResetDone(ctx context.Context, to string) error {
	return m.send(ctx, to, "Пароль изменён", "password_reset_done.html", map[string]any{
		"FrontendURL": m.cfg.FrontendURL,
	})
}

func (m *Mailer) send(ctx context.Context, to, subject, tmplName string, data map[string]any) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, tmplName, data); err != nil {
		return fmt.Errorf("render %s: %w", tmplName, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", tmplName, to, err)
	}
	return nil
}
