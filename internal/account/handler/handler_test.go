package handler

//go:generate mockgen -source=handler.go -destination=mocks/account-mocks.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voicegate/internal/account/handler/mocks"
	"voicegate/internal/account/models"
	"voicegate/internal/account/service"
	"voicegate/internal/audit"
	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
)

// Handler tests validate HTTP concerns: path parsing, body validation,
// actor attribution, and response mapping. Requests go through a chi
// router so URL params resolve the same way they do in production.
type AccountHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler

	userID id.UserID
}

func TestAccountHandlerSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerSuite))
}

func (s *AccountHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(s.mockService, logger)
	r := chi.NewRouter()
	handler.Register(r)
	s.router = r

	s.userID = id.UserID(uuid.New())
}

func (s *AccountHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AccountHandlerSuite) usage(count int, override *int) *service.Usage {
	now := time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)
	account := &models.Account{
		UserID:                 s.userID,
		VoiceConversationCount: count,
		TrialLimitOverride:     override,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	return &service.Usage{
		Account:         account,
		TrialLimit:      account.TrialLimit(3),
		TrialsRemaining: account.TrialsRemaining(3),
		RecentEvents: []audit.Event{
			{
				Timestamp: now,
				UserID:    s.userID,
				AgentID:   "agent-support",
				Action:    string(audit.EventVoiceSessionGranted),
				Decision:  "granted",
			},
		},
	}
}

func (s *AccountHandlerSuite) getJSON(rec *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Usage Report Tests
// =============================================================================

func (s *AccountHandlerSuite) TestGetUsage_OK() {
	s.mockService.EXPECT().GetUsage(gomock.Any(), s.userID).Return(s.usage(2, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+s.userID.String()+"/usage", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	resp := s.getJSON(rec)
	assert.Equal(s.T(), s.userID.String(), resp["user_id"])
	assert.Equal(s.T(), float64(2), resp["voice_conversation_count"])
	assert.Equal(s.T(), float64(3), resp["trial_limit"])
	assert.Equal(s.T(), float64(1), resp["trials_remaining"])
	_, present := resp["trial_limit_override"]
	assert.False(s.T(), present, "no override should omit the field")

	events, ok := resp["recent_events"].([]any)
	require.True(s.T(), ok)
	require.Len(s.T(), events, 1)
	event := events[0].(map[string]any)
	assert.Equal(s.T(), string(audit.EventVoiceSessionGranted), event["action"])
	assert.Equal(s.T(), "granted", event["decision"])
	assert.Equal(s.T(), "agent-support", event["agent_id"])
}

func (s *AccountHandlerSuite) TestGetUsage_OverrideVisible() {
	override := 10
	s.mockService.EXPECT().GetUsage(gomock.Any(), s.userID).Return(s.usage(4, &override), nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+s.userID.String()+"/usage", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	resp := s.getJSON(rec)
	assert.Equal(s.T(), float64(10), resp["trial_limit"])
	assert.Equal(s.T(), float64(10), resp["trial_limit_override"])
	assert.Equal(s.T(), float64(6), resp["trials_remaining"])
}

func (s *AccountHandlerSuite) TestGetUsage_EmptyTrailStaysAnArray() {
	usage := s.usage(0, nil)
	usage.RecentEvents = nil
	s.mockService.EXPECT().GetUsage(gomock.Any(), s.userID).Return(usage, nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+s.userID.String()+"/usage", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	resp := s.getJSON(rec)
	events, ok := resp["recent_events"].([]any)
	require.True(s.T(), ok, "recent_events must serialize as an array, not null")
	assert.Empty(s.T(), events)
}

func (s *AccountHandlerSuite) TestGetUsage_UnknownAccount() {
	s.mockService.EXPECT().GetUsage(gomock.Any(), s.userID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "account not found"))

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+s.userID.String()+"/usage", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
	resp := s.getJSON(rec)
	assert.Equal(s.T(), "not_found", resp["error"])
	assert.Equal(s.T(), "account not found", resp["error_description"])
}

func (s *AccountHandlerSuite) TestGetUsage_MalformedUserID() {
	req := httptest.NewRequest(http.MethodGet, "/accounts/not-a-uuid/usage", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Trial Limit Override Tests
// =============================================================================

func (s *AccountHandlerSuite) putTrialLimit(body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut,
		"/accounts/"+s.userID.String()+"/trial-limit", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AccountHandlerSuite) TestSetTrialLimit_SetsLimit() {
	s.mockService.EXPECT().
		SetTrialLimitOverride(gomock.Any(), s.userID, gomock.Any(), "ops@example.com").
		DoAndReturn(func(_ context.Context, _ id.UserID, limit *int, _ string) error {
			require.NotNil(s.T(), limit)
			assert.Equal(s.T(), 5, *limit)
			return nil
		})

	rec := s.putTrialLimit(`{"limit":5}`, map[string]string{HeaderAdminActor: "ops@example.com"})

	assert.Equal(s.T(), http.StatusNoContent, rec.Code)
	assert.Empty(s.T(), rec.Body.Bytes())
}

func (s *AccountHandlerSuite) TestSetTrialLimit_NullClearsOverride() {
	s.mockService.EXPECT().
		SetTrialLimitOverride(gomock.Any(), s.userID, gomock.Nil(), "ops@example.com").
		Return(nil)

	rec := s.putTrialLimit(`{"limit":null}`, map[string]string{HeaderAdminActor: "ops@example.com"})

	assert.Equal(s.T(), http.StatusNoContent, rec.Code)
}

func (s *AccountHandlerSuite) TestSetTrialLimit_MissingActorRecordsAdmin() {
	s.mockService.EXPECT().
		SetTrialLimitOverride(gomock.Any(), s.userID, gomock.Any(), "admin").
		Return(nil)

	rec := s.putTrialLimit(`{"limit":5}`, nil)

	assert.Equal(s.T(), http.StatusNoContent, rec.Code)
}

func (s *AccountHandlerSuite) TestSetTrialLimit_NegativeRejected() {
	rec := s.putTrialLimit(`{"limit":-2}`, nil)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	resp := s.getJSON(rec)
	assert.Equal(s.T(), "validation_error", resp["error"])
}

func (s *AccountHandlerSuite) TestSetTrialLimit_InvalidJSON() {
	rec := s.putTrialLimit(`not valid json`, nil)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *AccountHandlerSuite) TestSetTrialLimit_UnknownAccount() {
	s.mockService.EXPECT().
		SetTrialLimitOverride(gomock.Any(), s.userID, gomock.Any(), "admin").
		Return(dErrors.New(dErrors.CodeNotFound, "account not found"))

	rec := s.putTrialLimit(`{"limit":5}`, nil)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *AccountHandlerSuite) TestSetTrialLimit_InternalHidesDetail() {
	s.mockService.EXPECT().
		SetTrialLimitOverride(gomock.Any(), s.userID, gomock.Any(), "admin").
		Return(dErrors.New(dErrors.CodeInternal, "pg connection pool exhausted"))

	rec := s.putTrialLimit(`{"limit":5}`, nil)

	assert.Equal(s.T(), http.StatusInternalServerError, rec.Code)
	resp := s.getJSON(rec)
	assert.Equal(s.T(), "internal_error", resp["error"])
	_, present := resp["error_description"]
	assert.False(s.T(), present, "internal detail must not leak")
}
