package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/stream"
)

// Sender delivers one message to one target over a single channel. The
// scheduler treats implementations as opaque fire-and-forget-with-result
// collaborators.
type Sender interface {
	Send(ctx context.Context, target, title, body string) error
}

// SenderRegistry maps each notification channel to its sender. Channels
// without a sender fail each attempt with an error instead of crashing the
// batch.
type SenderRegistry map[models.NotificationChannel]Sender

// ConsoleSender writes messages to stdout. Useful for local runs and tests.
type ConsoleSender struct{}

func (c *ConsoleSender) Send(ctx context.Context, target, title, body string) error {
	output := fmt.Sprintf("[notify] to=%s title=%q body=%q\n", target, title, body)
	if _, err := os.Stdout.Write([]byte(output)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// KafkaSender publishes delivery requests to a topic consumed by the real
// channel gateways.
type KafkaSender struct {
	producer *stream.Producer
	topic    string
}

func NewKafkaSender(producer *stream.Producer, topic string) *KafkaSender {
	return &KafkaSender{producer: producer, topic: topic}
}

func (k *KafkaSender) Send(ctx context.Context, target, title, body string) error {
	msg, err := json.Marshal(map[string]string{
		"target":    target,
		"title":     title,
		"body":      body,
		"queued_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return k.producer.Publish(k.topic, msg)
}
