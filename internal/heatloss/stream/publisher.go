// Package stream mirrors heat-loss domain events onto a Kafka topic so
// downstream systems (quoting, installer planning) can react to surveys
// becoming ready without polling.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"heatsurvey_backend/internal/events"
	"heatsurvey_backend/platform/logger"
)

const (
	writeTimeout = 5 * time.Second
	batchTimeout = 10 * time.Millisecond
)

var errNoBrokers = errors.New("at least one kafka broker is required")

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value written for every event.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher writes heat-loss events to Kafka keyed by survey id, so every
// event for one survey lands on the same partition. Bus handlers run
// concurrently, so write order is not guaranteed; consumers order by
// occurredAt.
type Publisher struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

// New builds a publisher backed by a synchronous kafka.Writer.
func New(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("events topic must not be empty")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
	}
	return newWithWriter(w, topic, log), nil
}

func newWithWriter(w messageWriter, topic string, log *logger.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, log: log}
}

// EventNames lists the events the publisher subscribes to.
func EventNames() []string {
	return []string{
		events.HeatLossEvaluated{}.EventName(),
		events.ValidationStateChanged{}.EventName(),
	}
}

// Subscribe registers the publisher for every mirrored event.
func (p *Publisher) Subscribe(bus events.Bus) {
	for _, name := range EventNames() {
		bus.Subscribe(name, p)
	}
}

// Handle implements events.Handler.
func (p *Publisher) Handle(ctx context.Context, event events.Event) error {
	msg, ok, err := toMessage(event)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithContext(ctx).Error("heat-loss event not published",
			"event", event.EventName(), "topic", p.topic, "error", err)
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

// Close flushes pending writes and closes broker connections.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(event events.Event) (kafka.Message, bool, error) {
	var key string
	switch e := event.(type) {
	case events.HeatLossEvaluated:
		key = e.SurveyID.String()
	case events.ValidationStateChanged:
		key = e.SurveyID.String()
	default:
		return kafka.Message{}, false, nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, false, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	value, err := json.Marshal(Envelope{
		Type:       event.EventName(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return kafka.Message{}, false, fmt.Errorf("encode envelope: %w", err)
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventName())},
		},
	}, true, nil
}
