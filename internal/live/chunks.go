package live

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChunkMalformed marks chunk input the buffer can never assemble:
// negative or out-of-range indices, a non-positive total, or a total that
// contradicts the one already recorded.
var ErrChunkMalformed = errors.New("live: malformed audio chunk") //nolint:gochecknoglobals // sentinel error

// ErrChunksIncomplete means reconstruction was attempted before every index
// arrived. It signals "keep waiting", not a failure.
var ErrChunksIncomplete = errors.New("live: audio chunks incomplete") //nolint:gochecknoglobals // sentinel error

// ChunkBuffer reassembles one multi-part audio payload. The expected part
// count is recorded from the first chunk seen, which need not be index 0;
// arrival order is not guaranteed. Duplicate indices overwrite, so client
// retries are safe.
type ChunkBuffer struct {
	mu       sync.Mutex
	parts    map[int][]byte
	total    int
	lastSeen bool
}

func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{parts: make(map[int][]byte)}
}

// Add stores a copy of data at index. The copy matters: callers reuse read
// buffers between frames.
func (b *ChunkBuffer) Add(data []byte, index, total int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || total <= 0 || index >= total {
		return fmt.Errorf("live.ChunkBuffer.Add: index %d of total %d: %w", index, total, ErrChunkMalformed)
	}
	if b.total != 0 && total != b.total {
		return fmt.Errorf("live.ChunkBuffer.Add: total %d contradicts recorded %d: %w", total, b.total, ErrChunkMalformed)
	}
	b.total = total

	buf := make([]byte, len(data))
	copy(buf, data)
	b.parts[index] = buf

	return nil
}

// MarkLast records that the frame flagged as final was observed. Because
// arrival order is not guaranteed, the final frame can land before a
// gap-filling index; callers check LastSeen after every Add so reconstruction
// is retried once the stragglers arrive.
func (b *ChunkBuffer) MarkLast() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSeen = true
}

// LastSeen reports whether the final frame of the current payload arrived.
func (b *ChunkBuffer) LastSeen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// Reconstruct returns the concatenated payload in index order, but only once
// every declared part is present; until then it returns ErrChunksIncomplete.
// The buffer is cleared on success so the next payload starts fresh.
func (b *ChunkBuffer) Reconstruct() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.total == 0 || len(b.parts) != b.total {
		return nil, fmt.Errorf("live.ChunkBuffer.Reconstruct: have %d of %d: %w", len(b.parts), b.total, ErrChunksIncomplete)
	}

	size := 0
	for _, p := range b.parts {
		size += len(p)
	}

	out := make([]byte, 0, size)
	for i := 0; i < b.total; i++ {
		out = append(out, b.parts[i]...)
	}

	b.parts = make(map[int][]byte)
	b.total = 0
	b.lastSeen = false

	return out, nil
}

// Len reports how many distinct indices are buffered.
func (b *ChunkBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.parts)
}

// Reset discards any partial upload.
func (b *ChunkBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parts = make(map[int][]byte)
	b.total = 0
	b.lastSeen = false
}
