// Package email renders and delivers transactional email for the resort.
// The Sender interface keeps callers independent of the delivery mechanism;
// SMTPSender is the production implementation.
package email

import (
	"context"

	"resort_crm_backend/platform/config"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// BookingConfirmationData carries the fields rendered into the guest
// confirmation email.
type BookingConfirmationData struct {
	GuestName        string
	BookingReference string
	UnitName         string
	CheckIn          string
	CheckOut         string
	Nights           int
	TotalFormatted   string
	DepositFormatted string
	BalanceFormatted string
	ResortName       string
}

// Sender delivers resort emails.
type Sender interface {
	// SendBookingConfirmationEmail sends the guest confirmation with a
	// check-in QR code attached.
	SendBookingConfirmationEmail(ctx context.Context, toEmail string, data BookingConfirmationData) error
	SendLeadWelcomeEmail(ctx context.Context, toEmail, leadName, resortName string) error
	SendStaffAlertEmail(ctx context.Context, toEmail, subject, heading, body string) error
	SendCampaignEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NewSender returns the SMTP sender, or a no-op sender when email delivery
// is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender is used when email delivery is disabled. All sends succeed
// without doing anything.
type NoopSender struct{}

func (NoopSender) SendBookingConfirmationEmail(ctx context.Context, toEmail string, data BookingConfirmationData) error {
	return nil
}

func (NoopSender) SendLeadWelcomeEmail(ctx context.Context, toEmail, leadName, resortName string) error {
	return nil
}

func (NoopSender) SendStaffAlertEmail(ctx context.Context, toEmail, subject, heading, body string) error {
	return nil
}

func (NoopSender) SendCampaignEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
