package service

import (
	"testing"

	"resort_crm_backend/internal/bookings/repository"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantErr bool
	}{
		{"pending to confirmed", repository.StatusPending, repository.StatusConfirmed, false},
		{"pending to cancelled", repository.StatusPending, repository.StatusCancelled, false},
		{"pending to checked_in skips confirmation", repository.StatusPending, repository.StatusCheckedIn, true},
		{"confirmed to checked_in", repository.StatusConfirmed, repository.StatusCheckedIn, false},
		{"confirmed to no_show", repository.StatusConfirmed, repository.StatusNoShow, false},
		{"checked_in to checked_out", repository.StatusCheckedIn, repository.StatusCheckedOut, false},
		{"checked_in to cancelled", repository.StatusCheckedIn, repository.StatusCancelled, true},
		{"checked_out is terminal", repository.StatusCheckedOut, repository.StatusConfirmed, true},
		{"cancelled is terminal", repository.StatusCancelled, repository.StatusPending, true},
		{"no_show is terminal", repository.StatusNoShow, repository.StatusConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(tt.current, tt.next)
			if tt.wantErr && err == nil {
				t.Fatalf("expected transition %s -> %s to be rejected", tt.current, tt.next)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected transition %s -> %s to be allowed, got %v", tt.current, tt.next, err)
			}
		})
	}
}
