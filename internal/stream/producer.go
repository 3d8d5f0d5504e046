package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/foodautomat/internal/models"
)

const (
	TopicTaskExecutions       = "automation_task_executions"
	TopicNotificationAttempts = "notification_attempts"
	TopicNotificationOutbox   = "notification_outbox"
)

// Producer mirrors automation events onto Kafka for downstream consumers.
// A nil Producer is valid and drops every message, so callers never need
// to branch on whether streaming is enabled.
type Producer struct {
	producer sarama.SyncProducer
}

func NewProducer(config *models.Config) (*Producer, error) {
	if !config.KafkaEnabled {
		return nil, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	if config.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second
	}

	brokerList := strings.Split(config.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("Sarama producer created successfully with brokers %v", brokerList)
	return &Producer{producer: producer}, nil
}

func (p *Producer) Publish(topic string, msg []byte) error {
	if p == nil || p.producer == nil {
		return nil
	}
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		log.Printf("Failed to send message to topic %s: %v", topic, err)
		return err
	}
	return nil
}

// PublishJSON marshals v and publishes it to topic.
func (p *Producer) PublishJSON(topic string, v interface{}) error {
	if p == nil || p.producer == nil {
		return nil
	}
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(topic, msg)
}

func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
