//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"voicegate/internal/audit"
	"voicegate/internal/audit/sink/kafka"
	id "voicegate/pkg/domain"
	"voicegate/pkg/testutil/containers"
)

func TestSinkPublishesToTopic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mgr := containers.GetManager()
	redpanda := mgr.GetRedpanda(t)

	const topic = "voicegate.audit.test"

	sink, err := kafka.New(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)
	defer sink.Close()

	userID := id.UserID(uuid.New())
	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		AgentID:   "agent-support",
		Action:    string(audit.EventTrialConsumed),
		Decision:  "granted",
		Reason:    "free_trial",
	}
	require.NoError(t, sink.Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, userID.String(), string(record.Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &payload))
	require.Equal(t, string(audit.EventTrialConsumed), payload["action"])
	require.Equal(t, string(audit.CategoryCompliance), payload["category"])
	require.Equal(t, userID.String(), payload["user_id"])
	require.Equal(t, "granted", payload["decision"])
}

func TestSinkCreatesTopicOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mgr := containers.GetManager()
	redpanda := mgr.GetRedpanda(t)

	const topic = "voicegate.audit.idempotent"

	first, err := kafka.New(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)
	first.Close()

	// A second sink against the existing topic must not fail.
	second, err := kafka.New(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)
	second.Close()
}
