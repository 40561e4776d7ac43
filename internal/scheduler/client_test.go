package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type stubSchedulerConfig struct {
	redisURL string
}

func (c stubSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c stubSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c stubSchedulerConfig) GetAsynqQueueName() string { return "test" }
func (c stubSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(stubSchedulerConfig{}); err == nil {
		t.Fatal("expected error when redis url is not configured")
	}
}

func TestScheduleCampaignSendEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(stubSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer func() { _ = client.Close() }()

	runAt := time.Now().Add(time.Hour)
	if err := client.ScheduleCampaignSend(context.Background(), uuid.New(), runAt); err != nil {
		t.Fatalf("ScheduleCampaignSend: %v", err)
	}

	found := false
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "asynq:") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected asynq keys in redis, got %v", mr.Keys())
	}
}

func TestScheduleCampaignSendNilClient(t *testing.T) {
	var client *Client
	if err := client.ScheduleCampaignSend(context.Background(), uuid.New(), time.Now()); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
}
