package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/wellness-platform/internal/accounts"
	"github.com/mindhaven/wellness-platform/internal/ai"
	"github.com/mindhaven/wellness-platform/internal/checkins"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

type fakeScorer struct {
	result ai.ScoreResult
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, _ ai.ScoreRequest) (ai.ScoreResult, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ai.ScoreResult{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.result, f.err
}

type fakeDispatcher struct {
	result  *escalation.Result
	err     error
	gotAcct *accounts.Account
	gotRes  risk.Result
	calls   int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, acct *accounts.Account, _ string, res risk.Result) (*escalation.Result, error) {
	f.calls++
	f.gotAcct = acct
	f.gotRes = res
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &escalation.Result{Stage: escalation.StageDone}, nil
}

func newTestService(t *testing.T, scorer ai.CrisisScorer, disp *fakeDispatcher) (*Service, *checkins.InMemoryStore, *accounts.InMemoryStore) {
	t.Helper()
	checkinStore := checkins.NewInMemoryStore()
	accountStore := accounts.NewInMemoryStore()
	svc := NewService(ServiceConfig{
		Scorer:     scorer,
		Accounts:   accountStore,
		Checkins:   checkinStore,
		Store:      NewInMemoryStore(),
		Dispatcher: disp,
		AITimeout:  100 * time.Millisecond,
		Logger:     logging.New("error"),
	})
	return svc, checkinStore, accountStore
}

func TestAssessBenignCheckinScoresNone(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, _, _ := newTestService(t, nil, disp)

	out, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "had a really nice walk today",
		Mood:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(0), out.Assessment.Score)
	assert.Equal(t, risk.TierNone, out.Assessment.Tier)
	assert.False(t, out.Assessment.AIUsed)
	assert.Equal(t, escalation.UrgencyNone, out.Recommendation.Urgency)
	assert.Equal(t, 1, disp.calls)
}

func TestAssessCriticalKeywordsAndMoodOne(t *testing.T) {
	disp := &fakeDispatcher{result: &escalation.Result{
		Stage:       escalation.StageDone,
		Event:       &escalation.Event{ID: "evt-1"},
		AlertQueued: true,
	}}
	svc, _, _ := newTestService(t, nil, disp)

	out, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "I want to die",
		Mood:   1,
	})
	require.NoError(t, err)

	// keyword 5 + mood 5 (double-counted floor rating) = 10.
	assert.Equal(t, float64(10), out.Assessment.Score)
	assert.Equal(t, risk.TierCritical, out.Assessment.Tier)
	assert.Equal(t, escalation.UrgencyImmediate, out.Recommendation.Urgency)
	require.NotEmpty(t, out.Recommendation.EmergencyContacts)
	assert.Equal(t, "988", out.Recommendation.EmergencyContacts[0].Phone)
}

func TestAssessAIContributionRaisesTier(t *testing.T) {
	scorer := &fakeScorer{result: ai.ScoreResult{CrisisScore: 10, Sentiment: "negative"}}
	disp := &fakeDispatcher{}
	svc, _, _ := newTestService(t, scorer, disp)

	out, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "another day",
		Mood:   3,
	})
	require.NoError(t, err)

	// round(10 * 0.7) = 7 from the AI signal alone.
	assert.Equal(t, float64(7), out.Assessment.Score)
	assert.Equal(t, risk.TierHigh, out.Assessment.Tier)
	assert.True(t, out.Assessment.AIUsed)
	assert.Equal(t, "negative", out.Assessment.Sentiment)
	assert.Equal(t, 1, scorer.calls)
}

func TestAssessAIFailureDegradesToZero(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("gemini unavailable")}
	disp := &fakeDispatcher{}
	svc, _, _ := newTestService(t, scorer, disp)

	out, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "another day",
		Mood:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), out.Assessment.Score)
	assert.False(t, out.Assessment.AIUsed)
}

func TestAssessAITimeoutDegradesToZero(t *testing.T) {
	scorer := &fakeScorer{
		result: ai.ScoreResult{CrisisScore: 10, Sentiment: "negative"},
		delay:  time.Second,
	}
	disp := &fakeDispatcher{}
	svc, _, _ := newTestService(t, scorer, disp)

	started := time.Now()
	out, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "another day",
		Mood:   3,
	})
	require.NoError(t, err)
	assert.False(t, out.Assessment.AIUsed)
	assert.Less(t, time.Since(started), time.Second)
}

func TestAssessLoadsHistoryWhenAbsent(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, checkinStore, _ := newTestService(t, nil, disp)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := checkinStore.Create(ctx, &checkins.CreateCheckinRequest{UserID: "user-1", Mood: 1})
		require.NoError(t, err)
	}

	out, err := svc.Assess(ctx, &AssessRequest{
		UserID: "user-1",
		Text:   "another day",
		Mood:   3,
	})
	require.NoError(t, err)

	// Three consecutive low-mood check-ins contribute the capped history score.
	assert.Equal(t, float64(3), out.Assessment.Score)
	assert.Equal(t, risk.TierLow, out.Assessment.Tier)
}

func TestAssessExplicitHistoryWins(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, checkinStore, _ := newTestService(t, nil, disp)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := checkinStore.Create(ctx, &checkins.CreateCheckinRequest{UserID: "user-1", Mood: 1})
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	out, err := svc.Assess(ctx, &AssessRequest{
		UserID: "user-1",
		Text:   "another day",
		Mood:   3,
		History: []risk.Checkin{
			{Mood: 4, Timestamp: now},
			{Mood: 4, Timestamp: now.Add(-24 * time.Hour)},
			{Mood: 4, Timestamp: now.Add(-48 * time.Hour)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), out.Assessment.Score)
}

func TestAssessWritesScoreBackToCheckin(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, checkinStore, _ := newTestService(t, nil, disp)

	ctx := context.Background()
	c, err := checkinStore.Create(ctx, &checkins.CreateCheckinRequest{UserID: "user-1", Mood: 1})
	require.NoError(t, err)

	_, err = svc.Assess(ctx, &AssessRequest{
		UserID:    "user-1",
		Text:      "feeling hopeless",
		Mood:      1,
		CheckinID: c.ID,
	})
	require.NoError(t, err)

	recent, err := checkinStore.Recent(ctx, "user-1", 1)
	require.NoError(t, err)
	require.NotNil(t, recent[0].CrisisScore)
	// keyword 3 + mood 5 = 8.
	assert.Equal(t, float64(8), *recent[0].CrisisScore)
}

func TestAssessPassesAccountToDispatcher(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, _, accountStore := newTestService(t, nil, disp)

	accountStore.Put(&accounts.Account{
		ID:                  "user-1",
		AccountType:         accounts.TypeMinor,
		EmergencyPreference: accounts.PreferGuardian,
		GuardianPhone:       "+15550001111",
	})

	_, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "fine",
		Mood:   3,
	})
	require.NoError(t, err)
	require.NotNil(t, disp.gotAcct)
	assert.Equal(t, accounts.TypeMinor, disp.gotAcct.AccountType)
}

func TestAssessUnknownAccountDispatchesWithNil(t *testing.T) {
	disp := &fakeDispatcher{}
	svc, _, _ := newTestService(t, nil, disp)

	_, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "stranger",
		Text:   "fine",
		Mood:   3,
	})
	require.NoError(t, err)
	assert.Nil(t, disp.gotAcct)
	assert.Equal(t, 1, disp.calls)
}

func TestAssessDispatchFailureIsHardError(t *testing.T) {
	disp := &fakeDispatcher{err: errors.New("event log unavailable")}
	svc, _, _ := newTestService(t, nil, disp)

	_, err := svc.Assess(context.Background(), &AssessRequest{
		UserID: "user-1",
		Text:   "I want to die",
		Mood:   1,
	})
	require.Error(t, err)
}

func TestAssessValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil, &fakeDispatcher{})

	_, err := svc.Assess(context.Background(), &AssessRequest{Text: "x", Mood: 3})
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.Assess(context.Background(), &AssessRequest{UserID: "u", Mood: 0})
	assert.ErrorIs(t, err, ErrInvalidMood)
}
