package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Kafka message headers set on every forwarded event
const (
	HeaderEventType     = "event_type"
	HeaderEventID       = "event_id"
	HeaderTenantID      = "tenant_id"
	HeaderAggregateType = "aggregate_type"
)

// ErrSinkUnavailable is returned while the circuit breaker is open
var ErrSinkUnavailable = errors.New("kafka sink unavailable")

// NewKafkaProducer builds an idempotent SyncProducer that waits for all
// in-sync replicas
func NewKafkaProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.Idempotent = true
	sc.Producer.Timeout = cfg.Timeout
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Net.MaxOpenRequests = 1
	sc.Net.DialTimeout = cfg.Timeout

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// BreakerSettings tunes the circuit breaker in front of the producer
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial send
	OpenTimeout time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive failures and retries after 30s
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// KafkaSink forwards every domain event to one topic, keyed by aggregate id
// so events of the same order stay ordered within a partition
type KafkaSink struct {
	producer   sarama.SyncProducer
	topic      string
	serializer *EventSerializer
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewKafkaSink wraps producer
func NewKafkaSink(producer sarama.SyncProducer, topic string, settings BreakerSettings, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("kafka_sink")
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerSettings().ConsecutiveFailures
	}

	return &KafkaSink{
		producer:   producer,
		topic:      topic,
		serializer: NewEventSerializer(),
		logger:     logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "kafka:" + topic,
			Timeout: settings.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// EventTypes subscribes the sink to every event
func (s *KafkaSink) EventTypes() []string {
	return nil
}

// Handle sends ev and waits for the broker acknowledgement
func (s *KafkaSink) Handle(ctx context.Context, ev shared.DomainEvent) error {
	msg, err := s.message(ev)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = s.breaker.Execute(func() (any, error) {
		partition, offset, err := s.producer.SendMessage(msg)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Event forwarded",
			zap.String("event_type", ev.EventType()),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", ev.EventType(), s.topic, err)
	}
	return nil
}

func (s *KafkaSink) message(ev shared.DomainEvent) (*sarama.ProducerMessage, error) {
	payload, err := s.serializer.Serialize(ev)
	if err != nil {
		return nil, err
	}
	return &sarama.ProducerMessage{
		Topic:     s.topic,
		Key:       sarama.StringEncoder(ev.AggregateID().String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: ev.OccurredAt(),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(ev.EventType())},
			{Key: []byte(HeaderEventID), Value: []byte(ev.EventID().String())},
			{Key: []byte(HeaderTenantID), Value: []byte(ev.TenantID().String())},
			{Key: []byte(HeaderAggregateType), Value: []byte(ev.AggregateType())},
		},
	}, nil
}

// State returns the breaker state
func (s *KafkaSink) State() gobreaker.State {
	return s.breaker.State()
}

// Close flushes and closes the producer
func (s *KafkaSink) Close() error {
	if err := s.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var _ shared.EventHandler = (*KafkaSink)(nil)
