// Package kafka forwards audit events to a Kafka topic so downstream
// consumers (billing, abuse monitoring) can tail the trail without
// touching the service's database.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"voicegate/internal/audit"
)

// message is the wire shape of an audit event. Field names are part of
// the topic contract; do not rename.
type message struct {
	Category          string    `json:"category"`
	Timestamp         time.Time `json:"timestamp"`
	UserID            string    `json:"user_id,omitempty"`
	AgentID           string    `json:"agent_id,omitempty"`
	Action            string    `json:"action"`
	Decision          string    `json:"decision,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	DeviceName        string    `json:"device_name,omitempty"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	RequestID         string    `json:"request_id,omitempty"`
	ActorID           string    `json:"actor_id,omitempty"`
}

// Sink produces audit events to a single Kafka topic, keyed by user ID
// so per-user history stays ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers, ensures the topic exists, and returns a
// ready sink.
func New(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("voicegate"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka brokers: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Sink{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", topic, resp.Err)
	}
	return nil
}

// Publish produces one event and waits for the broker ack. Callers
// treat failures as best-effort; nothing here retries.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	msg := message{
		Category:          string(event.Category),
		Timestamp:         event.Timestamp,
		AgentID:           event.AgentID,
		Action:            event.Action,
		Decision:          event.Decision,
		Reason:            event.Reason,
		DeviceName:        event.DeviceName,
		DeviceFingerprint: event.DeviceFingerprint,
		RequestID:         event.RequestID,
		ActorID:           event.ActorID,
	}
	if !event.UserID.IsNil() {
		msg.UserID = event.UserID.String()
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(msg.UserID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Health pings the brokers for the readiness probe.
func (s *Sink) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases the underlying client. Publish must not be called
// afterwards.
func (s *Sink) Close() {
	s.client.Close()
}
