package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// TLSMode selects how the SMTP session is secured.
type TLSMode string

const (
	// TLSImplicit opens a TLS connection directly (typically port 465).
	TLSImplicit TLSMode = "implicit"
	// TLSStartTLS connects in the clear and upgrades via STARTTLS
	// (typically port 587).
	TLSStartTLS TLSMode = "starttls"
)

// DefaultTLSMode picks the conventional mode for an SMTP port.
func DefaultTLSMode(port int) TLSMode {
	if port == 465 {
		return TLSImplicit
	}
	return TLSStartTLS
}

// SMTPMailer sends notifications through an authenticated SMTP server.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Mode     TLSMode
}

// Configured reports whether every setting needed for a network send is
// present. An unconfigured mailer should not be offered to Deliver at all;
// the caller passes nil and the notification goes straight to the fallback
// channel.
func (m *SMTPMailer) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != "" && m.From != "" && len(m.To) > 0
}

// Send delivers one plain-text message to all recipients.
func (m *SMTPMailer) Send(subject, body string) error {
	msg := email.NewEmail()
	msg.From = m.From
	msg.To = m.To
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	tlsConfig := &tls.Config{ServerName: m.Host}

	switch m.Mode {
	case TLSImplicit:
		return msg.SendWithTLS(addr, auth, tlsConfig)
	default:
		return msg.SendWithStartTLS(addr, auth, tlsConfig)
	}
}

// ParseRecipients splits a comma-, semicolon-, or whitespace-separated
// recipient list, de-duplicating while preserving order.
func ParseRecipients(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})

	var out []string
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		out = append(out, p)
		seen[p] = true
	}
	return out
}
