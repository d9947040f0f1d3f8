// Package mailer delivers the service's transactional emails over plain
// SMTP. Delivery is asynchronous and best-effort; a failed send is logged
// and never fails the request that triggered it.
package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/hivemark/hivemark-back/internal/config"
)

type Mailer interface {
	SendVerification(to, username, token string)
	SendVerificationSuccess(to, username string)
	SendPasswordReset(to, username, token string)
	SendPasswordResetSuccess(to, username string)
	SendAccountDeleted(to, username string)
	SendCollaboratorInvitation(to, inviterUsername, categoryName, shareToken string)
}

type SMTP struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
	enabled  bool
	logger   *zap.SugaredLogger
}

func NewSMTP(cfg *config.Config, logger *zap.SugaredLogger) *SMTP {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" &&
		cfg.SMTPPassword != "" && cfg.SMTPFrom != ""
	if !enabled {
		logger.Warn("mailer disabled: missing SMTP configuration")
	}

	return &SMTP{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		baseURL:  cfg.BaseURL,
		enabled:  enabled,
		logger:   logger,
	}
}

func (m *SMTP) SendVerification(to, username, token string) {
	body := fmt.Sprintf(`Hello %s,

Welcome! To complete your registration and activate your account, please
open the link below:

%s/auth/verify/%s

If you did not sign up for this account, you can safely ignore this email.`,
		username, m.baseURL, token)
	m.sendAsync(to, "Please verify your email", body)
}

func (m *SMTP) SendVerificationSuccess(to, username string) {
	body := fmt.Sprintf(`Hello %s,

Your email address has been verified. You can now log in and start saving
bookmarks.`, username)
	m.sendAsync(to, "Your account is now verified", body)
}

func (m *SMTP) SendPasswordReset(to, username, token string) {
	body := fmt.Sprintf(`Hello %s,

A request has been received to reset the password for your account.

Open the link below to set a new password:

%s/auth/password-reset/%s

This link expires in 1 hour.

If you did not make this request, please ignore this email and your
password will remain unchanged.`, username, m.baseURL, token)
	m.sendAsync(to, "Password reset request", body)
}

func (m *SMTP) SendPasswordResetSuccess(to, username string) {
	body := fmt.Sprintf(`Hello %s,

The password for your account has just been changed.

If you did not make this change, please secure your account immediately.`,
		username)
	m.sendAsync(to, "Your password has been changed", body)
}

func (m *SMTP) SendAccountDeleted(to, username string) {
	body := fmt.Sprintf(`Hello %s,

Your account has been deleted and all of your data has been removed.

You are welcome back anytime.`, username)
	m.sendAsync(to, "Your account has been deleted", body)
}

func (m *SMTP) SendCollaboratorInvitation(to, inviterUsername, categoryName, shareToken string) {
	body := fmt.Sprintf(`Hello,

%s has invited you to collaborate on the bookmark category %q.

You can view and add bookmarks to this category after logging in.

For a read-only preview, open:

%s/categories/shared/%s`, inviterUsername, categoryName, m.baseURL, shareToken)
	m.sendAsync(to, fmt.Sprintf("You've been invited to collaborate on %q", categoryName), body)
}

func (m *SMTP) sendAsync(to, subject, body string) {
	if !m.enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		addr := m.host + ":" + m.port

		msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s",
			to, m.from, subject, body))

		if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
			m.logger.Errorw("send email", "to", to, "subject", subject, "error", err)
			return
		}
		m.logger.Infow("email sent", "to", to, "subject", subject)
	}()
}
