package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	BookingConfirmationData
}

type leadWelcomeEmailData struct {
	baseEmailData
	LeadName   string
	ResortName string
}

type staffAlertEmailData struct {
	baseEmailData
	Body string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatCurrencyZAR renders an amount in cents as rands for email bodies.
func FormatCurrencyZAR(cents int64) string {
	return fmt.Sprintf("R%.2f", float64(cents)/100)
}
