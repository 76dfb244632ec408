package email

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"civicreport/internal/config"
)

// Service sends notification emails. Every send sits on the best-effort
// path: callers log failures and move on.
type Service struct {
	config *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{config: cfg}
}

// SendWelcomeEmail greets a freshly registered citizen.
func (s *Service) SendWelcomeEmail(to, name string) error {
	subject := "Welcome to the city reporting service"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2d6a4f;">Welcome, %s!</h2>
        <p>Your account has been created. You can now report issues in your
        neighbourhood and follow their progress.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, name)
	return s.sendEmail(to, subject, body)
}

// SendStatusChangeEmail tells a citizen that a report they follow moved to a
// new state. The reason line only appears for declines and suspensions.
func (s *Service) SendStatusChangeEmail(to, reportTitle, newState, reason string) error {
	subject := fmt.Sprintf("Report update: %s", reportTitle)
	reasonBlock := ""
	if reason != "" {
		reasonBlock = fmt.Sprintf(`<p><strong>Reason:</strong> %s</p>`, reason)
	}
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2d6a4f;">Your report has been updated</h2>
        <p>The report <strong>%s</strong> is now <strong>%s</strong>.</p>
        %s
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, reportTitle, newState, reasonBlock)
	return s.sendEmail(to, subject, body)
}

// SendUnreadDigestEmail reminds a citizen of unread notifications.
func (s *Service) SendUnreadDigestEmail(to string, unreadCount int) error {
	subject := "You have unread report notifications"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2d6a4f;">You have %d unread notification(s)</h2>
        <p>Reports you follow have changed since your last visit. Sign in to
        see what happened.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, unreadCount)
	return s.sendEmail(to, subject, body)
}

func (s *Service) sendEmail(to, subject, body string) error {
	if !s.config.Enabled {
		slog.Debug("Email disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	headers := map[string]string{
		"From":         s.config.SMTPFrom,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message bytes.Buffer
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		if err := client.Close(); err != nil {
			slog.Error("Failed to close SMTP client", "error", err)
		}
	}(client)

	// local relays like Mailpit accept mail without authentication
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		if err := wc.Close(); err != nil {
			slog.Error("Failed to close data writer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent", "to", to, "subject", subject)
	return nil
}
