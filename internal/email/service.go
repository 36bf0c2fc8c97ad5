package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/redmonkez12/fitness-api/internal/logging"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #16A34A; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
        .code { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; margin: 20px 0; }
        .button { display: inline-block; background-color: #16A34A; color: white !important; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="header"><h1>{{.Title}}</h1></div>
    <div class="content">{{template "body" .}}</div>
    <div class="footer"><p>{{.Expiry}}</p></div>
</body>
</html>`

var (
	otpTemplate = template.Must(template.Must(template.New("otp").Parse(layout)).Parse(`{{define "body"}}
        <p>Use the code below to finish creating your account.</p>
        <div class="code">{{.Code}}</div>
        <p>If you didn't request this code, you can safely ignore this email.</p>
{{end}}`))

	resetTemplate = template.Must(template.Must(template.New("reset").Parse(layout)).Parse(`{{define "body"}}
        <p>You requested to reset your password. Click the button below to choose a new one.</p>
        <a href="{{.Link}}" class="button" style="color: white !important;">Reset Password</a>
        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all;">{{.Link}}</p>
{{end}}`))
)

type templateData struct {
	Title  string
	Expiry string
	Code   string
	Link   string
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string

	send sendFunc
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
		send:         smtp.SendMail,
	}
}

// SendOTPEmail mails a signup verification code. Delivery is synchronous so
// callers can report failures to the client.
func (s *Service) SendOTPEmail(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(otpTemplate, templateData{
		Title:  "Your verification code",
		Expiry: fmt.Sprintf("This code expires in %d minutes.", int(ttl.Minutes())),
		Code:   code,
	})
	if err != nil {
		return err
	}

	if err := s.sendEmail(toEmail, "Your OTP Code", body); err != nil {
		logger.Error("failed to send otp email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("otp email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail mails a link to the frontend reset page
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(resetTemplate, templateData{
		Title:  "Password Reset Request",
		Expiry: "If you didn't request a password reset, your password will remain unchanged.",
		Link:   s.ResetLink(token),
	})
	if err != nil {
		return err
	}

	if err := s.sendEmail(toEmail, "Password Reset Request", body); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
