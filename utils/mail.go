package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// MailConfig holds the SMTP account used for shop notifications.
type MailConfig struct {
	From     string
	Password string
	Host     string
	Address  string
}

func (c MailConfig) Enabled() bool {
	return c.From != "" && c.Address != ""
}

type OrderEmailData struct {
	OrderRef      string
	BuyerName     string
	Phone         string
	DessertName   string
	Quantity      int
	TotalAmount   int
	TransactionID string
}

func RenderEmail(templatePath string, data any) (string, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func SendEmail(cfg MailConfig, emailTo, emailSubject string, data any, templatePath string) error {
	body, err := RenderEmail(templatePath, data)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		cfg.From,
		emailTo,
		emailSubject,
		body,
	)

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)
	if err := smtp.SendMail(cfg.Address, auth, cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
