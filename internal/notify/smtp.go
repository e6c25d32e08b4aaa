package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds SMTP connection details.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string

	// Timeout bounds a single send. Zero means 30s.
	Timeout time.Duration
}

// Enabled reports whether enough is configured to attempt delivery.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends mail with net/smtp using PLAIN auth. The server must
// offer STARTTLS for auth to succeed on non-localhost hosts.
type SMTPNotifier struct {
	cfg      SMTPConfig
	logger   *slog.Logger
	sendMail sendMailFunc
}

// NewSMTPNotifier creates an SMTPNotifier from config.
func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// New returns an SMTPNotifier when cfg is usable and a Disabled notifier
// otherwise.
func New(cfg SMTPConfig, logger *slog.Logger) Notifier {
	if !cfg.Enabled() {
		return &Disabled{Logger: logger}
	}
	return NewSMTPNotifier(cfg, logger)
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.ErrorContext(ctx, "email send panicked", "to", to, "panic", r)
			sent = false
		}
	}()

	if to == "" || strings.ContainsAny(to, "\r\n") {
		n.logger.WarnContext(ctx, "refusing to send email to invalid recipient", "to", to)
		return false
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := buildMessage(n.cfg.From, to, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	// SendMail blocks without a context; run it aside so ctx still bounds us.
	done := make(chan error, 1)
	go func() {
		done <- n.sendMail(addr, auth, n.cfg.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			n.logger.WarnContext(ctx, "email send failed", "to", to, "subject", subject, "error", err)
			return false
		}
		n.logger.InfoContext(ctx, "email sent", "to", to, "subject", subject)
		return true
	case <-ctx.Done():
		n.logger.WarnContext(ctx, "email send timed out", "to", to, "error", ctx.Err())
		return false
	}
}

func buildMessage(from, to, subject, body string) []byte {
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, to, subject, strings.ReplaceAll(body, "\n", "\r\n"),
	)
	return []byte(msg)
}
