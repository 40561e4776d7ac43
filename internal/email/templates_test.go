package email

import (
	"strings"
	"testing"
)

func TestRenderBookingConfirmationTemplate(t *testing.T) {
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking confirmed",
			Heading: "Your stay is confirmed",
		},
		BookingConfirmationData: BookingConfirmationData{
			GuestName:        "Thandi Nkosi",
			BookingReference: "BK-2026-0042",
			UnitName:         "Riverside Chalet 3",
			CheckIn:          "2026-12-18",
			CheckOut:         "2026-12-22",
			Nights:           4,
			TotalFormatted:   "R8400.00",
			DepositFormatted: "R2520.00",
			BalanceFormatted: "R5880.00",
			ResortName:       "Kruger River Resort",
		},
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate: %v", err)
	}

	for _, want := range []string{"Thandi Nkosi", "BK-2026-0042", "Riverside Chalet 3", "R8400.00"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderLeadWelcomeTemplate(t *testing.T) {
	content, err := renderEmailTemplate("lead_welcome.html", leadWelcomeEmailData{
		baseEmailData: baseEmailData{Title: "Thank you", Heading: "Thank you for your enquiry"},
		LeadName:      "Pieter",
		ResortName:    "Kruger River Resort",
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate: %v", err)
	}
	if !strings.Contains(content, "Pieter") || !strings.Contains(content, "Kruger River Resort") {
		t.Errorf("rendered email missing lead or resort name: %s", content)
	}
}

func TestFormatCurrencyZAR(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R0.00"},
		{150000, "R1500.00"},
		{99, "R0.99"},
		{123456, "R1234.56"},
	}
	for _, tc := range cases {
		if got := FormatCurrencyZAR(tc.cents); got != tc.want {
			t.Errorf("FormatCurrencyZAR(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
