package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/domain"
)

// Registry owns the authoritative map of live sessions. Components never
// hold long-lived references into it; every access goes through a locked
// accessor, so a finalize racing a read cannot observe a half-destroyed
// session. Lock order is registry lock then session lock, never the reverse.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Register creates live state for a session, idempotently: re-registering
// an existing id refreshes its last-activity and returns the existing state
// with created=false. The created flag tells callers whether this insertion
// is the one that owns start-of-life side effects; Remove is the matching
// end-of-life gate.
func (r *Registry) Register(sessionID, userID uuid.UUID, agent domain.InterviewAgent) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.touch(time.Now())
		return s, false
	}

	now := time.Now()
	s := &Session{
		id:           sessionID,
		userID:       userID,
		agent:        agent,
		createdAt:    now,
		chunks:       NewChunkBuffer(),
		lastActivity: now,
		nextSeq:      1,
	}
	r.sessions[sessionID] = s

	return s, true
}

func (r *Registry) Get(sessionID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// Touch refreshes a session's last-activity. Returns false if the session
// is gone.
func (r *Registry) Touch(sessionID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	s.touch(time.Now())

	return true
}

// AppendTurn assigns the next sequence number and appends under the session
// lock. A turn arriving after finalization is dropped with a log, not queued.
func (r *Registry) AppendTurn(sessionID uuid.UUID, speaker domain.Speaker, content string) (domain.Turn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		log.Warn().Str("session_id", sessionID.String()).Msg("live.Registry.AppendTurn: session gone, turn dropped")
		return domain.Turn{}, false
	}

	return s.append(speaker, content), true
}

// Remove deletes the session and returns its last known state; finalization
// needs the transcript even though the session is gone from the live map.
func (r *Registry) Remove(sessionID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sessionID)

	return s, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IdleSessions snapshots the ids of sessions idle for at least idleFor.
// Callers finalize outside this lock; finalization does I/O.
func (r *Registry) IdleSessions(now time.Time, idleFor time.Duration) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []uuid.UUID
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity()) >= idleFor {
			idle = append(idle, id)
		}
	}

	return idle
}
