package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// SMTPConfig holds the mail transport settings
type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	AdminEmail string
}

// SMTPMailer implements domain.Notifier over plain SMTP. When no host is
// configured the mailer logs the would-be delivery and reports success, so
// development environments run without a mail server.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

// TransactionPending notifies the user and alerts the admin that a new
// transaction awaits approval
func (m *SMTPMailer) TransactionPending(ctx context.Context, t *domain.Transaction) error {
	label := transactionLabel(t.Type)

	userBody := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s of %s placed on %s is pending approval. We will notify you once it has been reviewed.</p>",
		t.User.Name, label, t.Amount.StringFixed(2), t.Date.Format("Jan 2, 2006 15:04 MST"),
	)
	if err := m.send(t.User.Email, fmt.Sprintf("Your %s is pending approval", label), userBody); err != nil {
		return err
	}

	if m.cfg.AdminEmail == "" {
		return nil
	}
	adminBody := fmt.Sprintf(
		"<p>New %s awaiting approval.</p><p>User: %s<br>Amount: %s<br>Date: %s</p>",
		label, t.User.Email, t.Amount.StringFixed(2), t.Date.Format("Jan 2, 2006 15:04 MST"),
	)
	return m.send(m.cfg.AdminEmail, fmt.Sprintf("New pending %s", label), adminBody)
}

// TransactionSettled notifies the user of a terminal status
func (m *SMTPMailer) TransactionSettled(ctx context.Context, t *domain.Transaction, user *domain.User) error {
	if t.User.Email == "" {
		// trade settlements carry no user snapshot; nothing to mail
		return nil
	}

	label := transactionLabel(t.Type)
	name := t.User.Name
	if user != nil {
		name = user.FullName
	}

	var subject, body string
	if t.Status == domain.StatusSuccess {
		subject = fmt.Sprintf("Your %s has been approved", label)
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your %s of %s from %s has been approved and applied to your account.</p>",
			name, label, t.Amount.StringFixed(2), t.Date.Format("Jan 2, 2006"),
		)
	} else {
		subject = fmt.Sprintf("Your %s was not approved", label)
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Unfortunately your %s of %s from %s was rejected. Please contact support for details.</p>",
			name, label, t.Amount.StringFixed(2), t.Date.Format("Jan 2, 2006"),
		)
	}

	return m.send(t.User.Email, subject, body)
}

// StalePending alerts the admin about transactions pending for too long
func (m *SMTPMailer) StalePending(ctx context.Context, ts []*domain.Transaction) error {
	if m.cfg.AdminEmail == "" || len(ts) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("<p>The following transactions have been pending for too long:</p><ul>")
	for _, t := range ts {
		fmt.Fprintf(&b, "<li>%s %s of %s for %s (since %s)</li>",
			t.ID, t.Type, t.Amount.StringFixed(2), t.User.Email, t.Date.Format("Jan 2, 2006 15:04 MST"))
	}
	b.WriteString("</ul>")

	return m.send(m.cfg.AdminEmail, fmt.Sprintf("%d transactions awaiting review", len(ts)), b.String())
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.Port == "" {
		m.logger.Info("SMTP not configured, skipping email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	message := fmt.Sprintf("To: %s\r\n"+
		"From: Mirrorcaps <%s>\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, m.cfg.From, subject, htmlBody)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func transactionLabel(t domain.TransactionType) string {
	switch t {
	case domain.TypeDeposit:
		return "deposit"
	case domain.TypeWithdrawal:
		return "withdrawal"
	default:
		return "trade"
	}
}
