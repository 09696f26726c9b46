package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/user-management/internal/application/service"
	"github.com/khoahotran/user-management/internal/config"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducerClient publishes user lifecycle events keyed by user id, so
// events for one user keep their order within a partition.
type KafkaProducerClient struct {
	UserEventsWriter messageWriter
	topic            string
	logger           logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	userWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producer successfully.", zap.String("topic", cfg.Kafka.Topic))

	return &KafkaProducerClient{
		UserEventsWriter: userWriter,
		topic:            cfg.Kafka.Topic,
		logger:           log,
	}, nil
}

func EncodeUserEvent(ev user.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal user event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: value,
	}, nil
}

func DecodeUserEvent(msg kafka.Message) (user.Event, error) {
	var ev user.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return user.Event{}, fmt.Errorf("unmarshal user event: %w", err)
	}
	if ev.Type == "" || ev.UserID == 0 {
		return user.Event{}, fmt.Errorf("incomplete user event: %s", string(msg.Value))
	}
	return ev, nil
}

func (c *KafkaProducerClient) PublishUserEvent(ctx context.Context, ev user.Event) error {
	msg, err := EncodeUserEvent(ev)
	if err != nil {
		return err
	}
	if err := c.UserEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write user event to %s: %w", c.topic, err)
	}
	c.logger.Debug("Published user event",
		zap.String("event_type", string(ev.Type)), zap.Int64("user_id", ev.UserID))
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.UserEventsWriter != nil {
		if err := c.UserEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close Kafka producer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producer")
}
