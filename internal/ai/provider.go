package ai

import (
	"context"
	"errors"
)

// ErrNoAudio is returned when a speech request produced no audio payload.
var ErrNoAudio = errors.New("ai: no audio in response") //nolint:gochecknoglobals // sentinel error

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn as presented to a model.
type Message struct {
	Role    Role
	Content string
}

// Generator produces interviewer replies and condenses transcripts. Callers
// bound each call with context.WithTimeout; implementations return provider
// errors unmodified apart from wrapping.
type Generator interface {
	Generate(ctx context.Context, system string, msgs []Message) (string, error)
	Condense(ctx context.Context, transcript string) (string, error)
}

// Transcriber turns candidate audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime string) (string, error)
}

// Synthesizer turns interviewer text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}
