// Package events publishes committed image changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"gallery/internal/kafka/producer"
	"gallery/internal/models"
	"log/slog"
)

type Publisher struct {
	log      *slog.Logger
	producer producer.ProducerIface
}

func NewPublisher(log *slog.Logger, p producer.ProducerIface) *Publisher {
	return &Publisher{
		log:      log,
		producer: p,
	}
}

// Notify sends the event keyed by image id so changes to one image stay ordered.
func (p *Publisher) Notify(ctx context.Context, event models.ImageEvent) error {
	const op = "events.Notify"

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = p.producer.SendMessage(ctx, []byte(event.ImageID.String()), message); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("image event published",
		slog.String("type", string(event.Type)),
		slog.String("image_id", event.ImageID.String()),
	)

	return nil
}
