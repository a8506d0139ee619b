package live_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleylabs/parley/internal/live"
)

func TestChunkBuffer_AnyArrivalOrder(t *testing.T) {
	t.Parallel()

	parts := [][]byte{[]byte("first "), []byte("second "), []byte("third")}
	want := []byte("first second third")

	orders := [][]int{
		{0, 1, 2},
		{0, 2, 1},
		{1, 0, 2},
		{1, 2, 0},
		{2, 0, 1},
		{2, 1, 0},
	}

	for _, order := range orders {
		buf := live.NewChunkBuffer()

		for _, idx := range order {
			require.NoError(t, buf.Add(parts[idx], idx, len(parts)))
		}

		got, err := buf.Reconstruct()

		require.NoError(t, err)
		assert.Equal(t, want, got, "arrival order %v", order)
		assert.Zero(t, buf.Len(), "buffer must be empty after reconstruction")
	}
}

func TestChunkBuffer_FirstChunkNotIndexZero(t *testing.T) {
	t.Parallel()

	// Index 1 arrives first and records the declared total; index 0 is not
	// guaranteed to lead.
	buf := live.NewChunkBuffer()

	require.NoError(t, buf.Add([]byte("b"), 1, 3))
	require.NoError(t, buf.Add([]byte("a"), 0, 3))
	require.NoError(t, buf.Add([]byte("c"), 2, 3))

	got, err := buf.Reconstruct()

	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestChunkBuffer_SingleChunk(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	require.NoError(t, buf.Add([]byte("whole payload"), 0, 1))

	got, err := buf.Reconstruct()

	require.NoError(t, err)
	assert.Equal(t, []byte("whole payload"), got)
	assert.Zero(t, buf.Len())
}

func TestChunkBuffer_DuplicateIndexOverwrites(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	require.NoError(t, buf.Add([]byte("stale"), 0, 2))
	require.NoError(t, buf.Add([]byte("fresh"), 0, 2))
	require.NoError(t, buf.Add([]byte(" tail"), 1, 2))

	got, err := buf.Reconstruct()

	require.NoError(t, err)
	assert.Equal(t, []byte("fresh tail"), got)
}

func TestChunkBuffer_MalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		index int
		total int
	}{
		{"negative index", -1, 3},
		{"zero total", 0, 0},
		{"negative total", 0, -2},
		{"index equals total", 3, 3},
		{"index beyond total", 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := live.NewChunkBuffer()

			err := buf.Add([]byte("data"), tt.index, tt.total)

			require.Error(t, err)
			assert.ErrorIs(t, err, live.ErrChunkMalformed)
			assert.Zero(t, buf.Len())
		})
	}

	t.Run("contradicting total", func(t *testing.T) {
		t.Parallel()

		buf := live.NewChunkBuffer()

		require.NoError(t, buf.Add([]byte("a"), 0, 3))

		err := buf.Add([]byte("b"), 1, 4)

		require.Error(t, err)
		assert.ErrorIs(t, err, live.ErrChunkMalformed)
		assert.Equal(t, 1, buf.Len(), "recorded chunk survives the rejected one")
	})
}

func TestChunkBuffer_IncompleteReconstruct(t *testing.T) {
	t.Parallel()

	t.Run("missing parts", func(t *testing.T) {
		t.Parallel()

		buf := live.NewChunkBuffer()

		require.NoError(t, buf.Add([]byte("a"), 0, 3))
		require.NoError(t, buf.Add([]byte("c"), 2, 3))

		got, err := buf.Reconstruct()

		require.Error(t, err)
		assert.ErrorIs(t, err, live.ErrChunksIncomplete)
		assert.Nil(t, got)
		assert.Equal(t, 2, buf.Len(), "partial upload must survive a failed reconstruction")
	})

	t.Run("nothing buffered", func(t *testing.T) {
		t.Parallel()

		buf := live.NewChunkBuffer()

		_, err := buf.Reconstruct()

		require.Error(t, err)
		assert.ErrorIs(t, err, live.ErrChunksIncomplete)
	})

	t.Run("cleared after success", func(t *testing.T) {
		t.Parallel()

		buf := live.NewChunkBuffer()

		require.NoError(t, buf.Add([]byte("only"), 0, 1))

		_, err := buf.Reconstruct()
		require.NoError(t, err)

		_, err = buf.Reconstruct()
		require.Error(t, err)
		assert.ErrorIs(t, err, live.ErrChunksIncomplete)
	})
}

func TestChunkBuffer_ReusableAcrossPayloads(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	require.NoError(t, buf.Add([]byte("one"), 0, 1))

	first, err := buf.Reconstruct()
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), first)

	// A new payload may declare a different total once the buffer is clear.
	require.NoError(t, buf.Add([]byte("two "), 0, 2))
	require.NoError(t, buf.Add([]byte("halves"), 1, 2))

	second, err := buf.Reconstruct()
	require.NoError(t, err)
	assert.Equal(t, []byte("two halves"), second)
}

func TestChunkBuffer_CopiesChunkData(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	frame := []byte("original")
	require.NoError(t, buf.Add(frame, 0, 1))

	copy(frame, "REWRIT")

	got, err := buf.Reconstruct()

	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "buffer must not alias the caller's read buffer")
}

func TestChunkBuffer_LastSeenSurvivesUntilReconstruct(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	assert.False(t, buf.LastSeen())

	// The final frame lands before a gap-filler.
	require.NoError(t, buf.Add([]byte("c"), 2, 3))
	buf.MarkLast()
	assert.True(t, buf.LastSeen())

	_, err := buf.Reconstruct()
	require.ErrorIs(t, err, live.ErrChunksIncomplete)
	assert.True(t, buf.LastSeen(), "a failed reconstruction keeps the marker so stragglers retry")

	require.NoError(t, buf.Add([]byte("a"), 0, 3))
	require.NoError(t, buf.Add([]byte("b"), 1, 3))

	got, err := buf.Reconstruct()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.False(t, buf.LastSeen(), "a fresh payload starts without the marker")
}

func TestChunkBuffer_Reset(t *testing.T) {
	t.Parallel()

	buf := live.NewChunkBuffer()

	require.NoError(t, buf.Add([]byte("a"), 0, 2))
	buf.MarkLast()
	require.Equal(t, 1, buf.Len())

	buf.Reset()

	assert.Zero(t, buf.Len())
	assert.False(t, buf.LastSeen())

	// The declared total is forgotten too.
	require.NoError(t, buf.Add([]byte("x"), 0, 1))

	got, err := buf.Reconstruct()
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
