package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"qrmenu/internal/domain"
)

type Publisher struct {
	Writer *kafka.Writer
}

func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{Writer: writer}
}

func (p *Publisher) PublishMenuEvent(ctx context.Context, event domain.MenuEvent) error {
	payload, _ := json.Marshal(event)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RestaurantID),
		Value: payload,
	})
}
