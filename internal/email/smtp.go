package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/skip2/go-qrcode"
	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendBookingConfirmationEmail(ctx context.Context, toEmail string, data BookingConfirmationData) error {
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:      "Booking confirmed",
			Heading:    "Your booking is confirmed",
			Subheading: data.ResortName,
		},
		BookingConfirmationData: data,
	})
	if err != nil {
		return err
	}

	qr, err := checkInQRCode(data.BookingReference)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectBookingConfirmationFmt, data.BookingReference)
	return s.send(ctx, toEmail, subject, content, qr)
}

func (s *SMTPSender) SendLeadWelcomeEmail(ctx context.Context, toEmail, leadName, resortName string) error {
	content, err := renderEmailTemplate("lead_welcome.html", leadWelcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Thank you for your enquiry",
			Heading: "We received your enquiry",
		},
		LeadName:   leadName,
		ResortName: resortName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadWelcomeFmt, resortName), content)
}

func (s *SMTPSender) SendStaffAlertEmail(ctx context.Context, toEmail, subject, heading, body string) error {
	content, err := renderEmailTemplate("staff_alert.html", staffAlertEmailData{
		baseEmailData: baseEmailData{Title: subject, Heading: heading},
		Body:          body,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCampaignEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}

// checkInQRCode encodes the booking reference as a PNG attachment scanned at
// reception.
func checkInQRCode(reference string) (Attachment, error) {
	png, err := qrcode.Encode(reference, qrcode.Medium, 256)
	if err != nil {
		return Attachment{}, fmt.Errorf("encode check-in qr: %w", err)
	}
	return Attachment{FileName: "check-in-" + reference + ".png", Content: png}, nil
}
