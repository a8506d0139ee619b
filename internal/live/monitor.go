package live

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Monitor finalizes interviews whose last activity is older than the silence
// threshold. Candidates are collected under the registry read lock; the
// finalization itself runs outside any lock.
type Monitor struct {
	registry  *Registry
	finalizer *Finalizer
	threshold time.Duration
	interval  time.Duration
}

// NewMonitor creates a Monitor sweeping every interval for sessions idle
// longer than threshold.
func NewMonitor(registry *Registry, finalizer *Finalizer, threshold, interval time.Duration) *Monitor {
	return &Monitor{
		registry:  registry,
		finalizer: finalizer,
		threshold: threshold,
		interval:  interval,
	}
}

// Run sweeps on every tick until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", m.interval).
		Dur("threshold", m.threshold).
		Msg("live.Monitor.Run: silence monitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("live.Monitor.Run: silence monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep finalizes every session idle past the threshold.
func (m *Monitor) Sweep(ctx context.Context) {
	for _, sessionID := range m.registry.IdleSessions(time.Now(), m.threshold) {
		log.Info().Str("session_id", sessionID.String()).Msg("live.Monitor.Sweep: finalizing idle session")
		m.finalizer.Finalize(ctx, sessionID, ReasonInactivity)
	}
}
