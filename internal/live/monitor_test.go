package live_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/live"
)

func TestMonitor_Sweep(t *testing.T) {
	t.Parallel()

	fx := newFinalizerFixture()
	sessionID := uuid.New()
	fx.registry.Register(sessionID, uuid.New(), testAgent())
	fx.registry.AppendTurn(sessionID, domain.SpeakerUser, "hello")

	monitor := live.NewMonitor(fx.registry, fx.finalizer, 20*time.Millisecond, 10*time.Millisecond)

	monitor.Sweep(t.Context())
	assert.Equal(t, 1, fx.registry.Len(), "fresh session survives the sweep")

	time.Sleep(30 * time.Millisecond)

	monitor.Sweep(t.Context())
	assert.Zero(t, fx.registry.Len(), "idle session is finalized")
	assert.Len(t, fx.summaries.created, 1)
}

func TestMonitor_Run(t *testing.T) {
	t.Parallel()

	t.Run("finalizes a session idle past the threshold", func(t *testing.T) {
		t.Parallel()

		fx := newFinalizerFixture()
		sessionID := uuid.New()
		fx.registry.Register(sessionID, uuid.New(), testAgent())
		fx.registry.AppendTurn(sessionID, domain.SpeakerUser, "hello")

		// Scaled-down silence window; the sweep must catch the session
		// within one tick of it going idle.
		monitor := live.NewMonitor(fx.registry, fx.finalizer, 15*time.Millisecond, 10*time.Millisecond)

		ctx, cancel := context.WithTimeout(t.Context(), 80*time.Millisecond)
		defer cancel()

		monitor.Run(ctx)

		assert.Zero(t, fx.registry.Len())
		require.Len(t, fx.summaries.created, 1)
		require.Len(t, fx.notifier.calls, 1)
		assert.Equal(t, live.ReasonInactivity, fx.notifier.calls[0].reason)

		_, ok := fx.registry.AppendTurn(sessionID, domain.SpeakerUser, "too late")
		assert.False(t, ok, "finalized session accepts no further turns")
	})

	t.Run("active session survives", func(t *testing.T) {
		t.Parallel()

		fx := newFinalizerFixture()
		sessionID := uuid.New()
		fx.registry.Register(sessionID, uuid.New(), testAgent())

		monitor := live.NewMonitor(fx.registry, fx.finalizer, 10*time.Second, 10*time.Millisecond)

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		monitor.Run(ctx)

		assert.Equal(t, 1, fx.registry.Len())
		assert.Empty(t, fx.summaries.created)
	})
}
