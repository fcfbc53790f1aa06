// Package counselors tracks the on-duty counselor roster used to fan out
// escalation notices.
package counselors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const rosterKey = "counselors:on_duty"

var (
	// ErrNameRequired is returned when a counselor checks in without a name.
	ErrNameRequired = errors.New("counselors: counselor name required")
	// ErrContactRequired is returned when a counselor has no reachable contact.
	ErrContactRequired = errors.New("counselors: counselor needs an email or phone")
)

// Counselor is one on-duty crisis counselor.
type Counselor struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	OnDutyAt time.Time `json:"on_duty_at"`
}

// RosterStore keeps the on-duty roster in Redis so every API and worker
// instance sees the same shift state. Entries expire with the roster TTL;
// a shift that forgets to check out falls off on its own.
type RosterStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRosterStore(redisClient *redis.Client, ttl time.Duration) *RosterStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RosterStore{
		redis:  redisClient,
		tracer: otel.Tracer("mindhaven.internal.counselors.roster"),
		ttl:    ttl,
	}
}

// CheckIn adds or refreshes a counselor on the roster.
func (s *RosterStore) CheckIn(ctx context.Context, c Counselor) (Counselor, error) {
	if s == nil || s.redis == nil {
		return Counselor{}, errors.New("counselors: roster store not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Name == "" {
		return Counselor{}, ErrNameRequired
	}
	if c.Email == "" && c.Phone == "" {
		return Counselor{}, ErrContactRequired
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.OnDutyAt.IsZero() {
		c.OnDutyAt = time.Now().UTC()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return Counselor{}, fmt.Errorf("counselors: marshal counselor: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "counselors.roster.check_in")
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, rosterKey, c.ID, data)
	pipe.Expire(ctx, rosterKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return Counselor{}, fmt.Errorf("counselors: check in: %w", err)
	}
	return c, nil
}

// CheckOut removes a counselor from the roster.
func (s *RosterStore) CheckOut(ctx context.Context, counselorID string) error {
	if s == nil || s.redis == nil {
		return errors.New("counselors: roster store not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if counselorID == "" {
		return errors.New("counselors: counselor id required")
	}

	ctx, span := s.tracer.Start(ctx, "counselors.roster.check_out")
	defer span.End()

	if err := s.redis.HDel(ctx, rosterKey, counselorID).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("counselors: check out: %w", err)
	}
	return nil
}

// OnDuty lists the current roster, oldest shift first.
func (s *RosterStore) OnDuty(ctx context.Context) ([]Counselor, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := s.tracer.Start(ctx, "counselors.roster.on_duty")
	defer span.End()

	raw, err := s.redis.HGetAll(ctx, rosterKey).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []Counselor{}, nil
		}
		return nil, fmt.Errorf("counselors: list roster: %w", err)
	}

	out := make([]Counselor, 0, len(raw))
	for _, item := range raw {
		var c Counselor
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OnDutyAt.Before(out[j].OnDutyAt) })
	return out, nil
}
