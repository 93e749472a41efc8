package report

import (
	"fmt"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"github.com/AI2HU/geolens/internal/config"
	"github.com/AI2HU/geolens/internal/logger"
)

// Mailer delivers rendered reports over SMTP with STARTTLS.
type Mailer struct {
	cfg config.SMTPConfig

	// send is swappable in tests; defaults to smtp.SendMail
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a mailer from SMTP settings.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Send delivers the report to the recipient as a multipart/alternative
// message carrying both text and HTML bodies.
func (m *Mailer) Send(recipient string, rep *Report) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	port := m.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg, err := buildMessage(m.cfg.From, recipient, rep)
	if err != nil {
		return err
	}

	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	logger.Info("Report %q sent to %s", rep.Subject, recipient)
	return nil
}

func buildMessage(from, to string, rep *Report) ([]byte, error) {
	const boundary = "geolens-report-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", rep.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", rep.Text},
		{"text/html; charset=utf-8", rep.HTML},
	} {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		b.WriteString("\r\n")

		encoded, err := encodeQuotedPrintable(part.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode email body: %w", err)
		}
		b.WriteString(encoded)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}

func encodeQuotedPrintable(s string) (string, error) {
	var buf strings.Builder
	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
