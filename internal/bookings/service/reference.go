package service

import (
	"crypto/rand"
	"fmt"
)

// referenceAlphabet omits 0/O/1/I so references survive being read over the
// phone at the front desk.
const (
	referencePrefix   = "RES-"
	referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referenceLength   = 8
)

// newBookingReference generates a reference like RES-K7MQ2XWP.
func newBookingReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate booking reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return referencePrefix + string(buf), nil
}
