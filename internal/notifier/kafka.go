package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/elioaoun07/homeagenda/internal/logger"
	"github.com/elioaoun07/homeagenda/internal/models"
)

const assignmentEvent = "item.assigned"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes assignment notices to a topic, keyed by the new responsible user so
// one user's notices stay ordered on a partition.
type Kafka struct {
	writer messageWriter
	topic  string
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka notifier requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka notifier requires a topic")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	if cfg.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
		}
	}

	logger.Debug("Kafka notifier initialized", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &Kafka{writer: w, topic: cfg.Topic}, nil
}

func (k *Kafka) NotifyAssignment(ctx context.Context, notice models.AssignmentNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(notice.NewResponsibleUserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(assignmentEvent)},
			{Key: "item_id", Value: []byte(notice.ItemID)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish assignment to %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
