// Package mailer sends the notification emails the site's forms trigger:
// one to the company inbox for every contact submission and every document
// download request.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/aoideee/dronesite/internal/data"
)

//go:embed "templates"
var templateFS embed.FS

// Message is a rendered email ready to send.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string

	// Attempts is the total number of tries; RetryInterval separates them.
	Attempts      int
	RetryInterval time.Duration

	// send defaults to smtp.SendMail; tests replace it.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP returns an SMTPMailer for host:port.
func NewSMTP(host string, port int, username, password, sender string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Sender:   sender,

		Attempts:      3,
		RetryInterval: 500 * time.Millisecond,
		send:          smtp.SendMail,
	}
}

// Send tries m.Attempts times, m.RetryInterval apart, and does not wait after
// the last failure. When ctx ends first the last SMTP error is kept.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	raw := m.encode(msg)

	retries := uint64(0)
	if m.Attempts > 1 {
		retries = uint64(m.Attempts - 1)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.RetryInterval), retries),
		ctx,
	)

	var lastErr error
	err := backoff.Retry(func() error {
		lastErr = m.send(addr, auth, m.Sender, msg.To, raw)
		return lastErr
	}, policy)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && lastErr != nil && !errors.Is(lastErr, ctxErr) {
		err = errors.Join(lastErr, ctxErr)
	}
	return fmt.Errorf("send %q: %w", msg.Subject, err)
}

func (m *SMTPMailer) encode(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return b.Bytes()
}

// LogMailer logs messages instead of sending them. Used in development.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Info("email not sent (log mailer)",
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.HTMLBody)),
	)
	return nil
}

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

// plainText strips every tag from visitor input and keeps line breaks.
func plainText(s string) template.HTML {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	cleaned := strictPolicy.Sanitize(strings.TrimSpace(s))
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(cleaned, "\n", "<br>\n"))
}

func render(name string, to []string, payload any) (Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return Message{}, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", payload); err != nil {
		return Message{}, err
	}
	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "htmlBody", payload); err != nil {
		return Message{}, err
	}

	return Message{
		To:       to,
		Subject:  strings.TrimSpace(subject.String()),
		HTMLBody: body.String(),
	}, nil
}

// ContactNotification renders the inbox email for a contact submission.
func ContactNotification(to []string, c *data.Contact) (Message, error) {
	return render("contact.tmpl", to, map[string]any{
		"Contact": c,
		"Message": plainText(c.Message),
	})
}

// DownloadNotification renders the inbox email for a download request.
func DownloadNotification(to []string, req *data.DownloadRequest, doc *data.Document) (Message, error) {
	return render("download.tmpl", to, map[string]any{
		"Request":  req,
		"Document": doc,
	})
}
