package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/judiguard/judi_guard_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendOtp sends the account-verification code.
func (s *Service) SendOtp(to, username, code string) error {
	subject := "Verification code - Judi Guard"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Verify your account</h2>
    <p>Hi %s,</p>
    <p>Your Judi Guard verification code is:</p>
    <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
      %s
    </div>
    <p>The code expires in 10 minutes.</p>
    <p>If you did not create a Judi Guard account, you can ignore this email.</p>
  </div>
</body>
</html>
`, username, code)

	return s.send(to, subject, body)
}

// SendPasswordReset sends a password-reset link.
func (s *Service) SendPasswordReset(to, username, resetLink string) error {
	subject := "Password reset - Judi Guard"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Reset your password</h2>
    <p>Hi %s,</p>
    <p>We received a request to reset your Judi Guard password. Click the link below to choose a new one:</p>
    <p style="text-align: center; margin: 20px 0;">
      <a href="%s" style="background-color: #2563eb; color: #fff; padding: 12px 32px; text-decoration: none; border-radius: 6px;">Reset password</a>
    </p>
    <p>The link is valid for 30 minutes. If you did not request this, ignore this email.</p>
  </div>
</body>
</html>
`, username, resetLink)

	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, htmlBody string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("email service is disabled")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
