package service

import (
	"fmt"

	"resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/platform/apperr"
)

// allowedTransitions is the booking lifecycle state machine. Checked-out,
// cancelled and no-show are terminal.
var allowedTransitions = map[string][]string{
	repository.StatusPending:   {repository.StatusConfirmed, repository.StatusCancelled},
	repository.StatusConfirmed: {repository.StatusCheckedIn, repository.StatusCancelled, repository.StatusNoShow},
	repository.StatusCheckedIn: {repository.StatusCheckedOut},
}

func validateTransition(current, next string) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return apperr.Conflict(fmt.Sprintf("cannot transition booking from %s to %s", current, next))
}
