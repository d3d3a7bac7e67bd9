package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"qrmenu/internal/domain"
)

type StatsRecorder interface {
	RecordEdit(ctx context.Context, event domain.MenuEvent) error
}

// StatsConsumer drains menu events off Kafka and folds them into the edit
// aggregates. Malformed messages are logged and skipped; the loop only
// exits when its context is done.
type StatsConsumer struct {
	Reader *kafka.Reader
	Stats  StatsRecorder
}

func NewStatsConsumer(reader *kafka.Reader, stats StatsRecorder) *StatsConsumer {
	return &StatsConsumer{
		Reader: reader,
		Stats:  stats,
	}
}

func (c *StatsConsumer) Start(ctx context.Context) {
	log.Println("Starting menu stats consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v", err)
			continue
		}
		c.process(ctx, message.Value)
	}
}

func (c *StatsConsumer) process(ctx context.Context, value []byte) {
	var event domain.MenuEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("Error unmarshaling menu event: %v", err)
		return
	}
	if event.RestaurantID == "" {
		log.Printf("Dropping menu event without restaurant id (type=%s)", event.Type)
		return
	}

	if err := c.Stats.RecordEdit(ctx, event); err != nil {
		log.Printf("Error recording edit for %s: %v", event.RestaurantID, err)
		return
	}
	log.Printf("Recorded %s for %s", event.Type, event.RestaurantID)
}
