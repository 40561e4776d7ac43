package service

import (
	"context"
	"testing"
	"time"

	"resort_crm_backend/internal/events"
	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
)

func newServiceFixture(t *testing.T, clk clock.Clock) (*fakeLeadRepo, *Service) {
	t.Helper()
	repo := newFakeLeadRepo()
	log := logger.New("development")
	svc := New(repo, events.NewInMemoryBus(log), validator.New(), clk, log)
	return repo, svc
}

func seedLead(repo *fakeLeadRepo, email *string) uuid.UUID {
	leadID := uuid.New()
	repo.leads[leadID] = repository.Lead{
		ID:     leadID,
		Name:   "Sipho Dlamini",
		Email:  email,
		Source: repository.SourceWebsite,
		Status: repository.StatusNew,
	}
	return leadID
}

func TestAppendNotePrefixesTimestamp(t *testing.T) {
	instant := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	repo, svc := newServiceFixture(t, clock.Fixed{Instant: instant})
	leadID := seedLead(repo, nil)

	if err := svc.AppendNote(context.Background(), leadID, "Called guest"); err != nil {
		t.Fatalf("AppendNote returned error: %v", err)
	}
	notes := repo.leads[leadID].Notes
	if notes == nil || *notes != "[2026-09-01 10:30:00] Called guest" {
		t.Fatalf("unexpected notes %v", notes)
	}

	if err := svc.AppendNote(context.Background(), leadID, "Sent quote"); err != nil {
		t.Fatalf("AppendNote returned error: %v", err)
	}
	notes = repo.leads[leadID].Notes
	want := "[2026-09-01 10:30:00] Called guest\n[2026-09-01 10:30:00] Sent quote"
	if notes == nil || *notes != want {
		t.Fatalf("unexpected notes %v, want %q", notes, want)
	}
}

func TestAppendNoteRejectsEmpty(t *testing.T) {
	repo, svc := newServiceFixture(t, clock.System())
	leadID := seedLead(repo, nil)

	if err := svc.AppendNote(context.Background(), leadID, "   "); err == nil {
		t.Fatal("expected error for blank note")
	}
}

func TestScoringExcludesLeadFromOwnHistory(t *testing.T) {
	repo, svc := newServiceFixture(t, clock.System())
	leadID := seedLead(repo, strPtr("sipho@example.com"))

	if _, _, err := svc.Rescore(context.Background(), leadID); err != nil {
		t.Fatalf("Rescore returned error: %v", err)
	}
	if len(repo.scoredExcludes) == 0 {
		t.Fatal("expected the converted-history lookup to run")
	}
	for _, excluded := range repo.scoredExcludes {
		if excluded != leadID {
			t.Fatalf("history lookup excluded %s, want the scored lead %s", excluded, leadID)
		}
	}
}
