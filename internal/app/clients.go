package app

import (
	"fmt"

	"github.com/yungbote/outloud-backend/internal/clients/gcp"
	"github.com/yungbote/outloud-backend/internal/clients/openai"
	"github.com/yungbote/outloud-backend/internal/clients/redis"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type Clients struct {
	OpenaiClient openai.Client
	GcpBucket    gcp.BucketService
	GcpSpeech    gcp.Speech
	TurnLocker   redis.TurnLocker
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	speech, err := gcp.NewSpeech(log)
	if err != nil {
		_ = bucket.Close()
		return Clients{}, fmt.Errorf("init speech client: %w", err)
	}

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		_ = speech.Close()
		_ = bucket.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Nil when REDIS_ADDR is unset; turn locking is then skipped.
	locker, err := redis.NewTurnLocker(log)
	if err != nil {
		_ = speech.Close()
		_ = bucket.Close()
		return Clients{}, fmt.Errorf("init turn locker: %w", err)
	}

	return Clients{
		OpenaiClient: openaiClient,
		GcpBucket:    bucket,
		GcpSpeech:    speech,
		TurnLocker:   locker,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.TurnLocker != nil {
		_ = c.TurnLocker.Close()
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
	}
	if c.GcpBucket != nil {
		_ = c.GcpBucket.Close()
	}
}
