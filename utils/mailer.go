package utils

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"businessboard/backend/models"
)

const WelcomeSubject = "Welcome to Business Board!"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Welcome to Business Board</title>
</head>
<body>
    <h2>Welcome, {{.Name}}!</h2>
    <p>We're excited to have you on board at our <strong>Business Board</strong>.</p>
    <p>You can now start adding your businesses and managing your deals effortlessly. Our platform provides all the tools you need to track, organize, and optimize your sales process.</p>
    <p>We look forward to seeing your businesses thrive!</p>
    <p>Best regards,<br>
    <strong>Business Board Team</strong></p>
</body>
</html>
`))

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends mail through an SMTP relay, upgrading to TLS when offered.
type Mailer struct {
	cfg MailConfig
	now func() time.Time
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg, now: time.Now}
}

// RenderWelcome returns the HTML body of the welcome mail.
func RenderWelcome(u models.User) (string, error) {
	var b bytes.Buffer
	if err := welcomeTmpl.Execute(&b, u); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SendWelcome implements domain.Notifier.
func (m *Mailer) SendWelcome(ctx context.Context, u models.User) error {
	body, err := RenderWelcome(u)
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	return m.Send(ctx, u.Email, WelcomeSubject, body)
}

// Send delivers one HTML message. The context deadline bounds the whole
// SMTP conversation.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", to, err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(m.message(to, subject, html)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) message(to, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(html, "\n", "\r\n"))
	return []byte(b.String())
}
