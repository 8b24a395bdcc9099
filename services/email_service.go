package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EmailService sends admin notification emails via SMTP. When SMTP is
// not configured every send degrades to a log line; notification is
// best-effort and never blocks the triggering action.
type EmailService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	adminEmail string
	appURL     string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:       getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:       port,
		username:   os.Getenv("SMTP_USERNAME"),
		password:   os.Getenv("SMTP_PASSWORD"),
		from:       getEnvOrDefault("SMTP_FROM", "noreply@cityforge.app"),
		adminEmail: os.Getenv("ADMIN_EMAIL"),
		appURL:     getEnvOrDefault("APP_URL", "http://localhost:3000"),
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != "" && e.adminEmail != ""
}

// NotifySubmission emails admins about a new business submission
func (e *EmailService) NotifySubmission(businessName, submitterEmail string) error {
	subject := "New business submission - CityForge"
	body := e.buildNotificationBody(
		"New Business Submission",
		fmt.Sprintf("<p><strong>%s</strong> was submitted by %s and is awaiting review.</p>", businessName, submitterEmail),
		fmt.Sprintf("%s/admin/submissions", e.appURL),
		"Review submission",
	)
	return e.sendToAdmin(subject, body)
}

// NotifyModification emails admins about a suggested edit
func (e *EmailService) NotifyModification(businessName, submitterEmail string) error {
	subject := "Business edit suggested - CityForge"
	body := e.buildNotificationBody(
		"Suggested Edit",
		fmt.Sprintf("<p>An edit to <strong>%s</strong> was suggested by %s.</p>", businessName, submitterEmail),
		fmt.Sprintf("%s/admin/modifications", e.appURL),
		"Review edit",
	)
	return e.sendToAdmin(subject, body)
}

// NotifyReport emails admins about reported forum content
func (e *EmailService) NotifyReport(target, reason string) error {
	subject := "Content reported - CityForge"
	body := e.buildNotificationBody(
		"Content Report",
		fmt.Sprintf("<p>%s was reported. Reason: %s.</p>", target, reason),
		fmt.Sprintf("%s/admin/reports", e.appURL),
		"Review report",
	)
	return e.sendToAdmin(subject, body)
}

func (e *EmailService) sendToAdmin(subject, body string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured, skipping admin email: %s", subject)
		return nil
	}
	return e.sendEmail(e.adminEmail, subject, body)
}

// buildNotificationBody assembles the shared HTML email template
func (e *EmailService) buildNotificationBody(heading, content, link, linkText string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s - CityForge</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #ffffff; border-radius: 8px; padding: 32px; border: 1px solid #e0e0e0;">
        <h1 style="color: #1a3a5c; font-size: 24px; margin-top: 0;">CityForge</h1>
        <h2 style="color: #1a3a5c;">%s</h2>
        %s
        <p style="margin-top: 24px;">
            <a href="%s" style="display: inline-block; background-color: #1a3a5c; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">%s</a>
        </p>
    </div>
</body>
</html>`, heading, heading, content, link, linkText)
}

// sendEmail sends an HTML email over STARTTLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	headers := []string{
		fmt.Sprintf("From: %s", e.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	authMech := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := client.Auth(authMech); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(e.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
