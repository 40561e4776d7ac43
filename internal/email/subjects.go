package email

const (
	subjectBookingConfirmationFmt = "Booking confirmed - %s"
	subjectLeadWelcomeFmt         = "Thank you for your enquiry at %s"
)
