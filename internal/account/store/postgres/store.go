// Package postgres persists accounts in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"voicegate/internal/account/models"
	id "voicegate/pkg/domain"
	"voicegate/pkg/platform/sentinel"
)

// Store is pure I/O. Trial policy (limits, eligibility) belongs in the
// callers; the one piece of logic living here is the atomic counter
// increment, which must be a single statement to stay race-free.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed account store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, userID id.UserID) (*models.Account, error) {
	query := `
		SELECT user_id, voice_conversation_count, trial_limit_override, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	acct, err := scanAccount(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

func (s *Store) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, voice_conversation_count, trial_limit_override, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.UserID),
		account.VoiceConversationCount,
		account.TrialLimitOverride,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// IncrementVoiceConversations bumps the counter in a single atomic
// UPDATE...RETURNING. Concurrent grants serialize on the row, so no
// increment is ever lost.
func (s *Store) IncrementVoiceConversations(ctx context.Context, userID id.UserID) (int, error) {
	query := `
		UPDATE accounts
		SET voice_conversation_count = voice_conversation_count + 1,
		    updated_at = now()
		WHERE user_id = $1
		RETURNING voice_conversation_count
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment voice conversations: %w", err)
	}
	return count, nil
}

func (s *Store) SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int) error {
	query := `
		UPDATE accounts
		SET trial_limit_override = $2,
		    updated_at = now()
		WHERE user_id = $1
	`
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(userID), limit)
	if err != nil {
		return fmt.Errorf("set trial limit override: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set trial limit override rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type accountRow interface {
	Scan(dest ...any) error
}

func scanAccount(row accountRow) (*models.Account, error) {
	var (
		acct     models.Account
		userID   uuid.UUID
		override sql.NullInt64
	)
	if err := row.Scan(&userID, &acct.VoiceConversationCount, &override, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return nil, err
	}
	acct.UserID = id.UserID(userID)
	if override.Valid {
		v := int(override.Int64)
		acct.TrialLimitOverride = &v
	}
	return &acct, nil
}
