// Package memory is the in-process account store used for local runs and
// tests.
package memory

import (
	"context"
	"sync"
	"time"

	"voicegate/internal/account/models"
	id "voicegate/pkg/domain"
	"voicegate/pkg/platform/sentinel"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*models.Account
}

func New() *Store {
	return &Store{accounts: make(map[id.UserID]*models.Account)}
}

// Get returns a copy so callers cannot mutate stored state.
func (s *Store) Get(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (s *Store) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.UserID]; exists {
		return sentinel.ErrConflict
	}
	cp := *account
	s.accounts[account.UserID] = &cp
	return nil
}

func (s *Store) IncrementVoiceConversations(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	acct.VoiceConversationCount++
	acct.UpdatedAt = time.Now()
	return acct.VoiceConversationCount, nil
}

func (s *Store) SetTrialLimitOverride(_ context.Context, userID id.UserID, limit *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	acct.ApplyTrialLimitOverride(limit, time.Now())
	return nil
}

func (s *Store) Health(context.Context) error {
	return nil
}

// Clear removes all accounts. Test helper.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[id.UserID]*models.Account)
}
