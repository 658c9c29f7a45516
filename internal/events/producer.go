package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrders = "marketplace.orders"

	envelopeVersion = 1
	inboxSize       = 256
	writeTimeout    = 5 * time.Second
)

// Envelope is the wire format for every published event. Payload carries
// the domain object as-is; consumers dispatch on EventType.
type Envelope struct {
	EventID      string `json:"eventId"`
	EventType    string `json:"eventType"`
	EventVersion int    `json:"eventVersion"`
	OccurredAt   string `json:"occurredAt"`
	Producer     string `json:"producer"`
	Payload      any    `json:"payload"`
}

// Producer publishes order lifecycle events to Kafka. Publish is
// non-blocking: events go through a buffered inbox and a single writer
// goroutine, so a slow or unreachable broker never stalls a request.
// When the inbox is full the event is dropped with a log line.
type Producer struct {
	writer  *kafka.Writer
	service string
	inbox   chan Envelope
	done    chan struct{}
}

func NewProducer(brokers []string, service string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicOrders,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		service: service,
		inbox:   make(chan Envelope, inboxSize),
		done:    make(chan struct{}),
	}
}

// Start launches the writer goroutine. It drains the inbox until ctx is
// cancelled and the inbox is closed via Close.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case env, ok := <-p.inbox:
				if !ok {
					return
				}
				p.write(env)
			case <-ctx.Done():
				// Drain what is already buffered, then stop.
				for {
					select {
					case env, ok := <-p.inbox:
						if !ok {
							return
						}
						p.write(env)
					default:
						return
					}
				}
			}
		}
	}()
}

// Publish enqueues one event. Safe to call from request handlers.
func (p *Producer) Publish(eventType string, payload any) {
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: envelopeVersion,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
		Producer:     p.service,
		Payload:      payload,
	}
	select {
	case p.inbox <- env:
	default:
		log.Printf("events: inbox full, dropping %s %s", env.EventType, env.EventID)
	}
}

func (p *Producer) write(env Envelope) {
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: marshal %s: %v", env.EventType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.EventType),
		Value: value,
	})
	if err != nil {
		log.Printf("events: publish %s %s: %v", env.EventType, env.EventID, err)
	}
}

// Close stops accepting events, waits for the writer goroutine to finish
// and closes the underlying Kafka writer.
func (p *Producer) Close() error {
	close(p.inbox)
	<-p.done
	return p.writer.Close()
}
