package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/internal/audit"
	id "voicegate/pkg/domain"
)

func TestAppendAndList(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	err := store.Append(ctx, audit.Event{
		UserID:    userID,
		Action:    string(audit.EventVoiceSessionGranted),
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	events, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventVoiceSessionGranted), events[0].Action)

	other, err := store.ListByUser(ctx, id.UserID(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	require.NoError(t, store.Append(ctx, audit.Event{UserID: userID, Action: "a"}))

	events, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	events[0].Action = "mutated"

	fresh, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "a", fresh[0].Action)
}

func TestListRecentOrdersAndLimits(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, audit.Event{
			UserID:    id.UserID(uuid.New()),
			Action:    string(audit.EventVoiceSessionGranted),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	events, err := store.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, base.Add(4*time.Second), events[0].Timestamp)
	assert.Equal(t, base.Add(2*time.Second), events[2].Timestamp)
}

func TestConcurrentAppends(t *testing.T) {
	store := New()
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, audit.Event{UserID: userID, Action: "concurrent"})
		}()
	}
	wg.Wait()

	events, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, events, 50)
}
