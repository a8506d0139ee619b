package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/domain"
)

// ErrEmptyCondensation is returned when the condensation model produced a
// blank summary; the previous summary stays in force.
var ErrEmptyCondensation = errors.New("live: empty condensation result") //nolint:gochecknoglobals // sentinel error

// ContextEntry is one session's rolling conversation context. The persona is
// immutable for the entry's lifetime; summary and exchange count change
// under the entry's own mutex. The summary, once set, is only ever replaced
// by a newer non-empty one, never cleared.
type ContextEntry struct {
	sessionID uuid.UUID
	persona   domain.InterviewAgent

	mu           sync.Mutex
	summary      string
	exchanges    int
	lastActivity time.Time
}

func (e *ContextEntry) Persona() domain.InterviewAgent { return e.persona }

func (e *ContextEntry) Summary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

func (e *ContextEntry) Exchanges() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exchanges
}

// Context is the bounded material handed to a generation call: the running
// summary (when non-empty) plus at most the configured number of raw turns.
// Its size is independent of total conversation length.
type Context struct {
	Summary string
	Turns   []domain.Turn
}

// ContextCache holds per-session conversation context. Entries may outlive a
// quick disconnect and reconnect, so eviction runs on its own TTL sweep,
// separate from the session inactivity monitor.
type ContextCache struct {
	generator      ai.Generator
	summarizeAfter int
	recentTurns    int
	entryTTL       time.Duration
	sweepInterval  time.Duration

	mu      sync.RWMutex
	entries map[uuid.UUID]*ContextEntry
}

func NewContextCache(generator ai.Generator, summarizeAfter, recentTurns int, entryTTL, sweepInterval time.Duration) *ContextCache {
	return &ContextCache{
		generator:      generator,
		summarizeAfter: summarizeAfter,
		recentTurns:    recentTurns,
		entryTTL:       entryTTL,
		sweepInterval:  sweepInterval,
		entries:        make(map[uuid.UUID]*ContextEntry),
	}
}

// GetOrCreate returns the session's entry, creating one seeded with the
// persona and a zero exchange count on first use.
func (c *ContextCache) GetOrCreate(sessionID uuid.UUID, agent domain.InterviewAgent) *ContextEntry {
	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if ok {
		e.touch(time.Now())
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[sessionID]; ok {
		e.touch(time.Now())
		return e
	}

	e = &ContextEntry{
		sessionID:    sessionID,
		persona:      agent,
		lastActivity: time.Now(),
	}
	c.entries[sessionID] = e

	return e
}

// ShouldSummarize reports whether enough exchanges accumulated since the
// last condensation.
func (c *ContextCache) ShouldSummarize(e *ContextEntry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exchanges >= c.summarizeAfter
}

// Summarize condenses the transcript into a replacement summary and resets
// the exchange count. On provider failure the summary and count are left
// untouched: the caller logs and proceeds on the stale-but-valid context
// rather than blocking the interview on a failed compaction.
func (c *ContextCache) Summarize(ctx context.Context, e *ContextEntry, transcript []domain.Turn) error {
	// Provider call happens outside the entry lock; it is a blocking I/O
	// boundary and must not serialize readers.
	condensed, err := c.generator.Condense(ctx, FormatTranscript(transcript))
	if err != nil {
		return fmt.Errorf("live.ContextCache.Summarize: %w", err)
	}
	if condensed == "" {
		return fmt.Errorf("live.ContextCache.Summarize: %w", ErrEmptyCondensation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.summary = condensed
	e.exchanges = 0
	e.lastActivity = time.Now()

	return nil
}

// NoteExchange counts one completed user/agent exchange. The router calls
// this only after a successful generation.
func (c *ContextCache) NoteExchange(e *ContextEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exchanges++
	e.lastActivity = time.Now()
}

// BuildContext assembles the prompt material for the next generation call.
func (c *ContextCache) BuildContext(e *ContextEntry, recent []domain.Turn) Context {
	if len(recent) > c.recentTurns {
		recent = recent[len(recent)-c.recentTurns:]
	}

	turns := make([]domain.Turn, len(recent))
	copy(turns, recent)

	e.mu.Lock()
	defer e.mu.Unlock()

	return Context{Summary: e.summary, Turns: turns}
}

func (c *ContextCache) Remove(sessionID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

func (c *ContextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep evicts entries idle past the TTL and returns how many went.
func (c *ContextCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, e := range c.entries {
		if now.Sub(e.idleSince()) > c.entryTTL {
			delete(c.entries, id)
			evicted++
		}
	}

	return evicted
}

// Run ticks the TTL sweep until the context is cancelled.
func (c *ContextCache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(time.Now()); n > 0 {
				log.Debug().Int("evicted", n).Msg("live.ContextCache.Run: swept stale entries")
			}
		}
	}
}

func (e *ContextEntry) touch(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = now
}

func (e *ContextEntry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActivity
}
