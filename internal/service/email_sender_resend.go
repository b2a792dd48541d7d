package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dacsanviet/internal/entity"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers OTP and welcome mail through the Resend API.
// No retries here: a failed OTP send aborts the issuing flow.
type ResendEmailSender struct {
	client  *resend.Client
	from    string
	appName string
}

func NewResendEmailSender(apiKey string, from string, appName string) *ResendEmailSender {
	if strings.TrimSpace(appName) == "" {
		appName = "DacSanViet"
	}
	return &ResendEmailSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		appName: appName,
	}
}

func (s *ResendEmailSender) SendOTP(ctx context.Context, to string, code string, fullName string, purpose entity.OTPPurpose, payload map[string]string) error {
	subject, intro := s.otpCopy(purpose, payload)

	greeting := ""
	if strings.TrimSpace(fullName) != "" {
		greeting = fmt.Sprintf("<p>Hello <strong>%s</strong>,</p>", fullName)
	}
	html := fmt.Sprintf(
		"<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\">"+
			"<h2>%s</h2>%s<p>%s</p>"+
			"<div style=\"border: 2px dashed #2c5aa0; padding: 16px; text-align: center;\">"+
			"<h1 style=\"letter-spacing: 5px; margin: 0;\">%s</h1></div>"+
			"<p>The code is valid for a short time. Never share it with anyone.</p></div>",
		s.appName, greeting, intro, code)
	text := fmt.Sprintf("%s\n\nYour verification code: %s", intro, code)

	return s.send(ctx, to, subject, html, text)
}

func (s *ResendEmailSender) SendWelcome(ctx context.Context, to string, fullName string, username string) error {
	subject := fmt.Sprintf("Welcome to %s", s.appName)
	html := fmt.Sprintf(
		"<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\">"+
			"<h2>Welcome to %s</h2><p>Hello <strong>%s</strong>,</p>"+
			"<p>Your account <strong>%s</strong> is ready. Enjoy!</p></div>",
		s.appName, fullName, username)
	text := fmt.Sprintf("Welcome to %s! Your account %s is ready.", s.appName, username)
	return s.send(ctx, to, subject, html, text)
}

func (s *ResendEmailSender) otpCopy(purpose entity.OTPPurpose, payload map[string]string) (string, string) {
	switch purpose {
	case entity.PurposeRegistration:
		return fmt.Sprintf("Your %s registration code", s.appName),
			"Use the code below to finish creating your account."
	case entity.PurposePasswordReset:
		return fmt.Sprintf("Your %s password reset code", s.appName),
			"Use the code below to reset your password. If this wasn't you, ignore this email."
	case entity.PurposeEmailUpdate:
		return fmt.Sprintf("Confirm your new %s email", s.appName),
			"Use the code below to confirm this address as your new account email."
	case entity.PurposePhoneUpdate:
		intro := "Use the code below to confirm your new phone number."
		if phone := payload["new_phone"]; phone != "" {
			intro = fmt.Sprintf("Use the code below to confirm your new phone number %s.", phone)
		}
		return fmt.Sprintf("Confirm your %s phone update", s.appName), intro
	case entity.PurposePasswordChange:
		return fmt.Sprintf("Your %s password change code", s.appName),
			"Use the code below to confirm your password change."
	}
	return fmt.Sprintf("Your %s verification code", s.appName),
		"Use the code below to continue."
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string, text string) error {
	if s.client == nil || strings.TrimSpace(s.from) == "" {
		return errors.New("email sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	request := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if _, err := s.client.Emails.Send(request); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
