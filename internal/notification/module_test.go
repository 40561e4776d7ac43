package notification

import (
	"testing"
	"time"
)

func TestOutboxRetryDelayBacksOff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{10, 60 * time.Minute},
	}
	for _, tc := range cases {
		if got := outboxRetryDelay(tc.attempt); got != tc.want {
			t.Errorf("outboxRetryDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
