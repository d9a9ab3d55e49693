// Package redis persists accounts as Redis hashes. HINCRBY gives the
// atomic counter increment for distributed deployments.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"voicegate/internal/account/models"
	id "voicegate/pkg/domain"
	"voicegate/pkg/platform/sentinel"
)

const accountKeyPrefix = "account:"

const (
	fieldCount     = "voice_conversation_count"
	fieldOverride  = "trial_limit_override"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Store is a Redis-backed account store. The client lifecycle is managed
// externally.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func accountKey(userID id.UserID) string {
	return accountKeyPrefix + userID.String()
}

func (s *Store) Get(ctx context.Context, userID id.UserID) (*models.Account, error) {
	fields, err := s.client.HGetAll(ctx, accountKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	// HGETALL returns an empty map, not redis.Nil, for a missing key.
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return parseAccount(userID, fields)
}

// Create claims the created_at field with HSETNX so exactly one concurrent
// creator wins, then fills in the remaining fields.
func (s *Store) Create(ctx context.Context, account *models.Account) error {
	key := accountKey(account.UserID)

	claimed, err := s.client.HSetNX(ctx, key, fieldCreatedAt, account.CreatedAt.Format(time.RFC3339Nano)).Result()
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if !claimed {
		return sentinel.ErrConflict
	}

	fields := map[string]any{
		fieldCount:     account.VoiceConversationCount,
		fieldUpdatedAt: account.UpdatedAt.Format(time.RFC3339Nano),
	}
	if account.TrialLimitOverride != nil {
		fields[fieldOverride] = *account.TrialLimitOverride
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("create account fields: %w", err)
	}
	return nil
}

// IncrementVoiceConversations is atomic via HINCRBY. The existence check
// is separate, which is fine because accounts are never deleted; the race
// that matters is concurrent increments, and those serialize in Redis.
func (s *Store) IncrementVoiceConversations(ctx context.Context, userID id.UserID) (int, error) {
	key := accountKey(userID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("check account exists: %w", err)
	}
	if exists == 0 {
		return 0, sentinel.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, fieldCount, 1)
	pipe.HSet(ctx, key, fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment voice conversations: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *Store) SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int) error {
	key := accountKey(userID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check account exists: %w", err)
	}
	if exists == 0 {
		return sentinel.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	if limit != nil {
		pipe.HSet(ctx, key, fieldOverride, *limit)
	} else {
		pipe.HDel(ctx, key, fieldOverride)
	}
	pipe.HSet(ctx, key, fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set trial limit override: %w", err)
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func parseAccount(userID id.UserID, fields map[string]string) (*models.Account, error) {
	acct := &models.Account{UserID: userID}

	if raw, ok := fields[fieldCount]; ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse conversation count %q: %w", raw, err)
		}
		acct.VoiceConversationCount = count
	}
	if raw, ok := fields[fieldOverride]; ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trial limit override %q: %w", raw, err)
		}
		acct.TrialLimitOverride = &limit
	}
	if raw, ok := fields[fieldCreatedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", raw, err)
		}
		acct.CreatedAt = t
	}
	if raw, ok := fields[fieldUpdatedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at %q: %w", raw, err)
		}
		acct.UpdatedAt = t
	}

	return acct, nil
}
