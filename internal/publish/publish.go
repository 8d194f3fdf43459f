// Package publish announces computed year summaries to downstream
// consumers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// EventType is the event_type header of summary events
const EventType = "year_summary.computed"

// Publisher announces a computed summary
type Publisher interface {
	Publish(ctx context.Context, s *summary.YearSummary) error
	Close() error
}

// Event is the JSON payload of a summary event
type Event struct {
	Type             string                  `json:"type"`
	Year             int                     `json:"year"`
	CatalogueVersion string                  `json:"catalogue_version"`
	ComputedAt       time.Time               `json:"computed_at"`
	Totals           summary.Totals          `json:"totals"`
	Personality      summary.ArchetypeResult `json:"personality"`
	Achievements     []string                `json:"achievements"`
	Diagnostics      int                     `json:"diagnostics"`
}

// NewEvent builds the event for s
func NewEvent(s *summary.YearSummary, at time.Time) Event {
	ids := make([]string, 0, len(s.Achievements))
	for _, a := range s.Achievements {
		ids = append(ids, a.ID)
	}
	return Event{
		Type:             EventType,
		Year:             s.Year,
		CatalogueVersion: s.CatalogueVersion,
		ComputedAt:       at.UTC(),
		Totals:           s.Totals,
		Personality:      s.Personality,
		Achievements:     ids,
		Diagnostics:      len(s.Diagnostics),
	}
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, *summary.YearSummary) error { return nil }

// Close implements Publisher
func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes summary events to a Kafka topic keyed by year
type KafkaPublisher struct {
	producer messageWriter
	topic    string
	now      func() time.Time
}

// NewKafkaPublisher creates a publisher for brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(NewKafkaProducer(brokers), topic)
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: w, topic: topic, now: time.Now}
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, s *summary.YearSummary) error {
	payload, err := json.Marshal(NewEvent(s, p.now()))
	if err != nil {
		return fmt.Errorf("encoding summary event: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(strconv.Itoa(s.Year)),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventType)}},
	}
	if err := p.producer.WriteMessages(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("publishing summary for %d: %w", s.Year, err)
	}
	return nil
}

// Close releases the underlying writers
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// KafkaProducer lazily manages writers per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes messages to topic, creating its writer on first use.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
