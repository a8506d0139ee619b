package live

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parleylabs/parley/internal/domain"
)

// Session is the in-memory state of one live interview. The identity fields
// are immutable after Register; everything that changes per message sits
// behind the session's own mutex so unrelated sessions never contend. The
// chunk buffer carries its own lock (high-frequency writes during uploads).
type Session struct {
	id        uuid.UUID
	userID    uuid.UUID
	agent     domain.InterviewAgent
	createdAt time.Time
	chunks    *ChunkBuffer

	mu           sync.Mutex
	lastActivity time.Time
	transcript   []domain.Turn
	nextSeq      int
	emptyReplies int
}

func (s *Session) ID() uuid.UUID                 { return s.id }
func (s *Session) UserID() uuid.UUID             { return s.userID }
func (s *Session) Agent() domain.InterviewAgent  { return s.agent }
func (s *Session) CreatedAt() time.Time          { return s.createdAt }
func (s *Session) Chunks() *ChunkBuffer          { return s.chunks }

// Age reports how long the interview has been running.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.createdAt)
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
}

// append assigns the next sequence number and records the turn. Sequence
// numbers start at 1 and are gapless; assignment happens here, under the
// session lock, never by the caller.
func (s *Session) append(speaker domain.Speaker, content string) domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := domain.Turn{
		ID:        uuid.New(),
		SessionID: s.id,
		Speaker:   speaker,
		Content:   content,
		Seq:       s.nextSeq,
		CreatedAt: now,
	}
	s.nextSeq++
	s.transcript = append(s.transcript, t)
	s.lastActivity = now

	return t
}

// Transcript returns a copy of all turns so far, in sequence order.
func (s *Session) Transcript() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// RecentTurns returns a copy of at most the last n turns.
func (s *Session) RecentTurns(n int) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.transcript) {
		n = len(s.transcript)
	}
	out := make([]domain.Turn, n)
	copy(out, s.transcript[len(s.transcript)-n:])
	return out
}

func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// NoteEmptyReply counts a blank model reply and returns the running total.
func (s *Session) NoteEmptyReply() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyReplies++
	return s.emptyReplies
}

func (s *Session) ResetEmptyReplies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyReplies = 0
}

func (s *Session) EmptyReplies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emptyReplies
}
