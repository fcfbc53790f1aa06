package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindhaven/wellness-platform/internal/accounts"
	"github.com/mindhaven/wellness-platform/internal/ai"
	"github.com/mindhaven/wellness-platform/internal/checkins"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

const historyLookback = 5

// AccountSource loads the account context used for channel resolution.
type AccountSource interface {
	GetByUserID(ctx context.Context, userID string) (*accounts.Account, error)
}

// EscalationDispatcher runs the intervention protocol for an assessed tier.
type EscalationDispatcher interface {
	Dispatch(ctx context.Context, acct *accounts.Account, userID string, res risk.Result) (*escalation.Result, error)
}

// Metrics observes assessment and escalation outcomes.
type Metrics interface {
	ObserveAssessment(tier string, seconds float64)
	ObserveEscalation(tier string)
}

// Outcome bundles everything one assessment produced.
type Outcome struct {
	Assessment     *Assessment               `json:"assessment"`
	Recommendation escalation.Recommendation `json:"recommendation"`
	Escalation     *escalation.Result        `json:"escalation,omitempty"`
}

// Service runs the full assessment pipeline.
type Service struct {
	scorer     ai.CrisisScorer
	accounts   AccountSource
	checkins   checkins.Store
	store      Store
	dispatcher EscalationDispatcher
	metrics    Metrics
	aiTimeout  time.Duration
	logger     *logging.Logger
	tracer     trace.Tracer
}

// ServiceConfig wires a Service. Scorer, accounts, and metrics are optional;
// the pipeline degrades without them.
type ServiceConfig struct {
	Scorer     ai.CrisisScorer
	Accounts   AccountSource
	Checkins   checkins.Store
	Store      Store
	Dispatcher EscalationDispatcher
	Metrics    Metrics
	AITimeout  time.Duration
	Logger     *logging.Logger
}

// NewService creates the assessment orchestrator.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Store == nil {
		panic("assessment: store required")
	}
	if cfg.Dispatcher == nil {
		panic("assessment: dispatcher required")
	}
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		scorer:     cfg.Scorer,
		accounts:   cfg.Accounts,
		checkins:   cfg.Checkins,
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		aiTimeout:  timeout,
		logger:     logger,
		tracer:     otel.Tracer("mindhaven.internal.assessment"),
	}
}

// Assess runs the full pipeline for one submission. The only hard failure is
// the escalation write-ahead log; AI scoring, history loading, and assessment
// persistence all degrade with a logged error.
func (s *Service) Assess(ctx context.Context, req *AssessRequest) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "assessment.assess")
	defer span.End()
	started := time.Now()

	aiScore := s.scoreWithAI(ctx, req)

	history := req.History
	if len(history) == 0 {
		history = s.loadHistory(ctx, req.UserID)
	}

	res := risk.Evaluate(ctx, risk.Input{
		Text:    req.Text,
		Mood:    req.Mood,
		AIScore: aiScore,
		Voice:   req.Voice,
		History: history,
	})

	a := &Assessment{
		UserID:    req.UserID,
		CheckinID: req.CheckinID,
		Score:     res.Score,
		Tier:      res.Tier,
		Signals:   res.Signals,
		AIUsed:    aiScore != nil,
	}
	if aiScore != nil {
		a.Sentiment = aiScore.Sentiment
	}
	if err := s.store.Insert(ctx, a); err != nil {
		// The escalation event store is the audit record of intent; losing
		// the assessment row is reported but never blocks the protocol.
		s.logger.Error("failed to persist assessment", "error", err, "user_id", req.UserID)
	}

	acct := s.loadAccount(ctx, req.UserID)

	dispRes, err := s.dispatcher.Dispatch(ctx, acct, req.UserID, res)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("assessment: dispatch escalation: %w", err)
	}

	if req.CheckinID != "" && s.checkins != nil {
		if err := s.checkins.SetCrisisScore(ctx, req.CheckinID, res.Score); err != nil {
			s.logger.Warn("failed to store crisis score on check-in", "error", err, "checkin_id", req.CheckinID)
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveAssessment(string(res.Tier), time.Since(started).Seconds())
		if dispRes != nil && dispRes.Event != nil {
			s.metrics.ObserveEscalation(string(res.Tier))
		}
	}

	span.SetAttributes(
		attribute.Float64("assessment.score", res.Score),
		attribute.String("assessment.tier", string(res.Tier)),
		attribute.Bool("assessment.ai_used", a.AIUsed),
	)
	s.logger.Info("assessment completed",
		"user_id", req.UserID,
		"score", res.Score,
		"tier", res.Tier,
		"ai_used", a.AIUsed,
		"stage", dispRes.Stage,
	)

	return &Outcome{
		Assessment:     a,
		Recommendation: escalation.BuildRecommendation(res.Tier),
		Escalation:     dispRes,
	}, nil
}

// scoreWithAI calls the scorer under its own deadline. Provider failures and
// timeouts degrade to a zero AI contribution.
func (s *Service) scoreWithAI(ctx context.Context, req *AssessRequest) *risk.AIScore {
	if s.scorer == nil {
		return nil
	}

	scoreCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	result, err := s.scorer.Score(scoreCtx, ai.ScoreRequest{
		Message: req.Text,
		Context: req.Context,
	})
	if err != nil {
		s.logger.Warn("AI scoring degraded", "error", err, "user_id", req.UserID)
		return nil
	}
	return &risk.AIScore{Score: result.CrisisScore, Sentiment: result.Sentiment}
}

func (s *Service) loadHistory(ctx context.Context, userID string) []risk.Checkin {
	if s.checkins == nil {
		return nil
	}
	recent, err := s.checkins.Recent(ctx, userID, historyLookback)
	if err != nil {
		s.logger.Warn("failed to load check-in history", "error", err, "user_id", userID)
		return nil
	}
	history := make([]risk.Checkin, 0, len(recent))
	for _, c := range recent {
		history = append(history, risk.Checkin{
			Mood:        c.Mood,
			Timestamp:   c.CreatedAt,
			CrisisScore: c.CrisisScore,
		})
	}
	return history
}

func (s *Service) loadAccount(ctx context.Context, userID string) *accounts.Account {
	if s.accounts == nil {
		return nil
	}
	acct, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, accounts.ErrAccountNotFound) {
			s.logger.Error("failed to load account for escalation routing", "error", err, "user_id", userID)
		}
		return nil
	}
	return acct
}
