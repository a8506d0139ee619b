package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/metrics"
)

// Finalization reasons recorded on completed interviews.
const (
	ReasonClientEnd  = "client_end"
	ReasonInactivity = "inactivity"
	ReasonShutdown   = "shutdown"
)

// Notifier delivers out-of-band alerts about finished interviews.
type Notifier interface {
	SessionFinalized(ctx context.Context, sessionID uuid.UUID, agentName, reason string, score int) error
}

// Finalizer tears down a live interview: it removes the in-memory state,
// marks the stored session completed, evaluates the transcript, and persists
// the summary and per-metric scores.
type Finalizer struct {
	registry  *Registry
	cache     *ContextCache
	evaluator *Evaluator
	sessions  domain.SessionRepository
	summaries domain.SummaryRepository
	scores    domain.ScoreRepository
	pub       Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
}

// NewFinalizer creates a Finalizer. pub and notifier may be nil; delivery of
// events and notifications is best-effort either way.
func NewFinalizer(
	registry *Registry,
	cache *ContextCache,
	evaluator *Evaluator,
	sessions domain.SessionRepository,
	summaries domain.SummaryRepository,
	scores domain.ScoreRepository,
	pub Publisher,
	notifier Notifier,
	m *metrics.Metrics,
) *Finalizer {
	return &Finalizer{
		registry:  registry,
		cache:     cache,
		evaluator: evaluator,
		sessions:  sessions,
		summaries: summaries,
		scores:    scores,
		pub:       pub,
		notifier:  notifier,
		metrics:   m,
	}
}

// Finalize completes a live interview. Calling it again for the same session
// is a no-op: the registry removal gates concurrent callers in-process, and
// the stored summary gates re-evaluation across restarts.
func (f *Finalizer) Finalize(ctx context.Context, sessionID uuid.UUID, reason string) {
	state, ok := f.registry.Remove(sessionID)
	if !ok {
		log.Debug().Str("session_id", sessionID.String()).Msg("live.Finalizer.Finalize: session already finalized")
		return
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("reason", reason).
		Int("turns", state.TurnCount()).
		Msg("live.Finalizer.Finalize: finalizing session")

	now := time.Now()
	durationSeconds := int(state.Age(now).Seconds())

	if err := f.sessions.MarkCompleted(ctx, sessionID, now, durationSeconds); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("live.Finalizer.Finalize: failed to mark session completed")
	}

	overall := f.evaluateAndPersist(ctx, state)

	f.cache.Remove(sessionID)

	publishEvent(f.pub, sessionID, Event{
		Type:      EventSessionFinalized,
		SessionID: sessionID.String(),
		Reason:    reason,
		Score:     overall,
	})

	if f.notifier != nil {
		if err := f.notifier.SessionFinalized(ctx, sessionID, state.Agent().Name, reason, overall); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("live.Finalizer.Finalize: notification failed")
		}
	}

	f.metrics.RecordSessionEnd(reason)
}

// evaluateAndPersist scores the transcript and stores the results, returning
// the overall score. A session with no turns gets no summary. The stored
// summary row is the durable idempotence guard: when one already exists the
// evaluation is skipped entirely.
func (f *Finalizer) evaluateAndPersist(ctx context.Context, state *Session) int {
	transcript := state.Transcript()
	if len(transcript) == 0 {
		f.metrics.RecordSummary("skipped")
		return 0
	}

	exists, err := f.summaries.ExistsForSession(ctx, state.ID())
	if err != nil {
		log.Error().Err(err).Str("session_id", state.ID().String()).Msg("live.Finalizer.evaluateAndPersist: summary lookup failed")
		f.metrics.RecordSummary("failed")
		return 0
	}

	if exists {
		log.Debug().Str("session_id", state.ID().String()).Msg("live.Finalizer.evaluateAndPersist: summary already stored")
		f.metrics.RecordSummary("skipped")
		return 0
	}

	parsed, metricScores := f.evaluator.Evaluate(ctx, state.Agent(), transcript)

	summary := &domain.Summary{
		ID:              uuid.New(),
		SessionID:       state.ID(),
		Narrative:       parsed.Narrative,
		Strengths:       parsed.Strengths,
		Weaknesses:      parsed.Weaknesses,
		Recommendations: parsed.Recommendations,
		OverallScore:    parsed.OverallScore,
		CreatedAt:       time.Now(),
	}

	if err := f.createSummaryWithRetry(ctx, summary); err != nil {
		log.Error().Err(err).Str("session_id", state.ID().String()).Msg("live.Finalizer.evaluateAndPersist: failed to store summary")
		f.metrics.RecordSummary("failed")

		return parsed.OverallScore
	}

	for _, ms := range metricScores {
		score := &domain.Score{
			ID:        uuid.New(),
			SessionID: state.ID(),
			Metric:    ms.Metric,
			Value:     ms.Value,
			Weight:    ms.Weight,
			CreatedAt: time.Now(),
		}
		if err := f.scores.Create(ctx, score); err != nil {
			log.Error().Err(err).Str("session_id", state.ID().String()).Str("metric", ms.Metric).Msg("live.Finalizer.evaluateAndPersist: failed to store score")
		}
	}

	f.metrics.RecordSummary("generated")

	return parsed.OverallScore
}

// createSummaryWithRetry makes a second attempt on a failed insert before
// giving up. Evaluation output exists only in memory at this point; a lost
// insert cannot be regenerated after the session state is released.
func (f *Finalizer) createSummaryWithRetry(ctx context.Context, s *domain.Summary) error {
	err := f.summaries.Create(ctx, s)
	if err == nil {
		return nil
	}

	log.Warn().Err(err).Str("session_id", s.SessionID.String()).Msg("live.Finalizer.createSummaryWithRetry: retrying summary insert")

	return f.summaries.Create(ctx, s)
}
