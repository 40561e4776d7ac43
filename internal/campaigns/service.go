package campaigns

import (
	"context"

	"resort_crm_backend/platform/logger"
)

// Service sends campaigns. It is shared by the HTTP handler (send now) and
// the scheduler worker (send at the scheduled time).
type Service struct {
	repo       *Repository
	recipients RecipientLister
	sender     CampaignSender
	log        *logger.Logger
}

// NewService creates a campaign send service.
func NewService(repo *Repository, recipients RecipientLister, sender CampaignSender, log *logger.Logger) *Service {
	return &Service{repo: repo, recipients: recipients, sender: sender, log: log}
}

// SendNow delivers a draft campaign to every guest with an email address and
// records how many emails went out. Delivery failures for individual
// recipients are logged and skipped rather than aborting the whole run.
func (s *Service) SendNow(ctx context.Context, campaign Campaign) (sent, failed int, err error) {
	if err := s.repo.MarkSending(ctx, campaign.ID); err != nil {
		return 0, 0, err
	}

	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		// Undo the sending state so the campaign stays retryable.
		if finishErr := s.repo.FinishSend(ctx, campaign.ID, 0); finishErr != nil {
			s.log.Error("reset campaign after recipient fetch failure", "error", finishErr)
		}
		return 0, 0, err
	}

	for _, recipient := range recipients {
		if sendErr := s.sender.SendCampaignEmail(ctx, recipient.Email, campaign.Subject, campaign.Body); sendErr != nil {
			failed++
			s.log.Error("send campaign email",
				"campaign_id", campaign.ID.String(),
				"recipient", recipient.Email,
				"error", sendErr)
			continue
		}
		sent++
	}

	if err := s.repo.FinishSend(ctx, campaign.ID, sent); err != nil {
		return sent, failed, err
	}
	s.log.Info("campaign sent",
		"campaign_id", campaign.ID.String(),
		"sent", sent,
		"failed", failed)
	return sent, failed, nil
}
