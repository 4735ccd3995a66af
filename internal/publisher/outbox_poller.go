package publisher

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	r "github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const (
	Topic     = "storefront-orders"
	batchSize = 100
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller relays order events written alongside orders to Kafka.
// Events are marked processed only after the broker accepted them.
type OutboxPoller struct {
	eventTick time.Duration
	repo      r.OutboxRepository
	writer    MessageWriter
	breaker   *gobreaker.CircuitBreaker[any]
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
}

func NewOutboxPoller(repo r.OutboxRepository, writer MessageWriter, breaker *gobreaker.CircuitBreaker[any], log *logger.Logger, m *metrics.Metrics) *OutboxPoller {
	return &OutboxPoller{
		eventTick: time.Second,
		repo:      repo,
		writer:    writer,
		breaker:   breaker,
		log:       log.With("component", "OutboxPoller"),
		metrics:   m,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.metrics.OutboxEvents.WithLabelValues("publish_failed").Inc()
			p.log.Warn("failed to publish event", "event_id", event.ID, "error", err)
			// keep ordering per batch, retry on next tick
			return
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.metrics.OutboxEvents.WithLabelValues("mark_failed").Inc()
			p.log.Error("failed to mark event as processed", "event_id", event.ID, "error", err)
			continue
		}
		p.metrics.OutboxEvents.WithLabelValues("published").Inc()
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *r.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	return err
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}
