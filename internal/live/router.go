package live

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/metrics"
)

// Provider labels used on router metrics.
const (
	providerLLM    = "llm"
	providerSpeech = "speech"
)

// defaultAudioMIME is assumed for client audio; browsers recording with
// MediaRecorder produce WebM/Opus.
const defaultAudioMIME = "audio/webm"

// Timeouts bounds each provider call made by the router. A timed-out call is
// treated like any other provider failure.
type Timeouts struct {
	Generate   time.Duration
	Transcribe time.Duration
	Speech     time.Duration
}

// Router is the entry point for live interview traffic. The transport feeds
// it one decoded frame at a time per connection, so work for a single session
// is sequential; separate sessions run in parallel over the shared registry
// and cache.
type Router struct {
	registry    *Registry
	cache       *ContextCache
	finalizer   *Finalizer
	turns       domain.TurnRepository
	generator   ai.Generator
	transcriber ai.Transcriber
	synthesizer ai.Synthesizer
	pub         Publisher
	metrics     *metrics.Metrics
	timeouts    Timeouts
}

func NewRouter(
	registry *Registry,
	cache *ContextCache,
	finalizer *Finalizer,
	turns domain.TurnRepository,
	generator ai.Generator,
	transcriber ai.Transcriber,
	synthesizer ai.Synthesizer,
	pub Publisher,
	m *metrics.Metrics,
	timeouts Timeouts,
) *Router {
	return &Router{
		registry:    registry,
		cache:       cache,
		finalizer:   finalizer,
		turns:       turns,
		generator:   generator,
		transcriber: transcriber,
		synthesizer: synthesizer,
		pub:         pub,
		metrics:     m,
		timeouts:    timeouts,
	}
}

// Handle dispatches one inbound frame and returns the frames to send back.
// A nil result means nothing is owed to the client for this frame.
func (r *Router) Handle(ctx context.Context, sessionID uuid.UUID, msg Inbound) []Outbound {
	switch msg.Type {
	case MessageText:
		return r.handleText(ctx, sessionID, msg.Text)
	case MessageCode:
		return r.handleCode(ctx, sessionID, msg.Text)
	case MessageAudio:
		return r.handleAudio(ctx, sessionID, msg.Audio)
	case MessageAudioChunk:
		return r.handleChunk(ctx, sessionID, msg.Chunk)
	case MessageEndSession:
		return r.handleEndSession(ctx, sessionID)
	default:
		log.Warn().Str("session_id", sessionID.String()).Str("type", msg.Type).Msg("live.Router.Handle: unknown message type")
		return []Outbound{errorOutbound("unsupported message type")}
	}
}

// handleText runs the conversational pipeline: persist the user turn, build
// the bounded context, generate a reply, persist it, synthesize speech. Side
// effects stay in that order; a failed generation leaves the cache counters
// where they were.
func (r *Router) handleText(ctx context.Context, sessionID uuid.UUID, content string) []Outbound {
	state, ok := r.registry.Get(sessionID)
	if !ok {
		return []Outbound{errorOutbound("session is not active")}
	}

	userTurn, ok := r.registry.AppendTurn(sessionID, domain.SpeakerUser, content)
	if !ok {
		return []Outbound{errorOutbound("session is not active")}
	}

	r.persistTurn(ctx, userTurn)
	r.metrics.RecordTurn(string(domain.SpeakerUser))
	r.publishTurn(sessionID, userTurn)

	entry := r.cache.GetOrCreate(sessionID, state.Agent())
	if r.cache.ShouldSummarize(entry) {
		if err := r.cache.Summarize(ctx, entry, state.Transcript()); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("live.Router.handleText: condensation failed, continuing on stale context")
		}
	}

	promptCtx := r.cache.BuildContext(entry, state.Transcript())

	reply, err := r.generate(ctx, SystemPrompt(state.Agent()), PromptMessages(promptCtx))
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("live.Router.handleText: generation failed")
		return []Outbound{errorOutbound("the interviewer is unavailable, please try again")}
	}

	reply = r.fillEmptyReply(state, reply)

	return r.respond(ctx, state, entry, reply)
}

// handleCode reviews a code submission as a one-shot request with a fixed
// reviewer persona. It bypasses the conversation cache entirely; the turns
// still land in the transcript and storage.
func (r *Router) handleCode(ctx context.Context, sessionID uuid.UUID, code string) []Outbound {
	state, ok := r.registry.Get(sessionID)
	if !ok {
		return []Outbound{errorOutbound("session is not active")}
	}

	userTurn, ok := r.registry.AppendTurn(sessionID, domain.SpeakerUser, code)
	if !ok {
		return []Outbound{errorOutbound("session is not active")}
	}

	r.persistTurn(ctx, userTurn)
	r.metrics.RecordTurn(string(domain.SpeakerUser))
	r.publishTurn(sessionID, userTurn)

	reply, err := r.generate(ctx, codeReviewSystem, []ai.Message{{Role: ai.RoleUser, Content: code}})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("live.Router.handleCode: generation failed")
		return []Outbound{errorOutbound("the reviewer is unavailable, please try again")}
	}

	reply = r.fillEmptyReply(state, reply)

	return r.respond(ctx, state, nil, reply)
}

// handleAudio transcribes a complete audio payload and continues on the text
// pipeline with the transcript.
func (r *Router) handleAudio(ctx context.Context, sessionID uuid.UUID, audio []byte) []Outbound {
	if _, ok := r.registry.Get(sessionID); !ok {
		return []Outbound{errorOutbound("session is not active")}
	}

	if len(audio) == 0 {
		return []Outbound{errorOutbound("empty audio payload")}
	}

	transcript, err := r.transcribe(ctx, audio)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("live.Router.handleAudio: transcription failed")
		return []Outbound{errorOutbound("could not transcribe audio")}
	}

	return r.handleText(ctx, sessionID, transcript)
}

// handleChunk buffers one audio fragment. Only a complete reassembly enters
// the audio pipeline. A fragment for a finished session is logged and
// dropped, never surfaced to the client.
func (r *Router) handleChunk(ctx context.Context, sessionID uuid.UUID, chunk *AudioChunk) []Outbound {
	if chunk == nil {
		return []Outbound{errorOutbound("missing chunk payload")}
	}

	state, ok := r.registry.Get(sessionID)
	if !ok {
		log.Warn().Str("session_id", sessionID.String()).Int("index", chunk.Index).Msg("live.Router.handleChunk: chunk for inactive session dropped")
		r.metrics.RecordChunk("dropped")

		return nil
	}

	r.registry.Touch(sessionID)

	if err := state.Chunks().Add(chunk.Data, chunk.Index, chunk.Total); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Int("index", chunk.Index).Int("total", chunk.Total).Msg("live.Router.handleChunk: rejected chunk")
		r.metrics.RecordChunk("malformed")

		return []Outbound{errorOutbound("malformed audio chunk")}
	}

	r.metrics.RecordChunk("accepted")

	buf := state.Chunks()
	if chunk.Last {
		buf.MarkLast()
	}

	// Arrival order is not guaranteed: the final frame can land before a
	// gap-filling index, so once it has been seen every arrival retries the
	// reconstruction.
	if !buf.LastSeen() {
		return nil
	}

	audio, err := buf.Reconstruct()
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID.String()).Msg("live.Router.handleChunk: payload incomplete")
		return nil
	}

	r.metrics.RecordChunk("reconstructed")

	return r.handleAudio(ctx, sessionID, audio)
}

// handleEndSession finalizes and acknowledges. The ack goes out even when a
// sweep already finalized the session; a late end signal is a graceful no-op.
func (r *Router) handleEndSession(ctx context.Context, sessionID uuid.UUID) []Outbound {
	r.finalizer.Finalize(ctx, sessionID, ReasonClientEnd)
	return []Outbound{{Type: MessageEndSession}}
}

// fillEmptyReply substitutes the canned follow-up when the model returns a
// blank reply, tracking repeats on the session.
func (r *Router) fillEmptyReply(state *Session, reply string) string {
	if strings.TrimSpace(reply) != "" {
		state.ResetEmptyReplies()
		return reply
	}

	n := state.NoteEmptyReply()
	log.Warn().Str("session_id", state.ID().String()).Int("count", n).Msg("live.Router.fillEmptyReply: blank model reply")

	return emptyReplyFallback
}

// respond appends and persists the agent turn, advances the cache when entry
// is non-nil, and synthesizes speech with a text-only fallback.
func (r *Router) respond(ctx context.Context, state *Session, entry *ContextEntry, reply string) []Outbound {
	agentTurn, ok := r.registry.AppendTurn(state.ID(), domain.SpeakerAgent, reply)
	if ok {
		r.persistTurn(ctx, agentTurn)
		r.metrics.RecordTurn(string(domain.SpeakerAgent))
		r.publishTurn(state.ID(), agentTurn)

		if entry != nil {
			r.cache.NoteExchange(entry)
		}
	} else {
		log.Warn().Str("session_id", state.ID().String()).Msg("live.Router.respond: session finalized mid-reply, delivering without recording")
	}

	audio, err := r.synthesize(ctx, reply, state.Agent().Voice)
	if err != nil {
		log.Warn().Err(err).Str("session_id", state.ID().String()).Msg("live.Router.respond: synthesis failed, delivering text only")
		return []Outbound{{Type: MessageText, Text: reply}}
	}

	return []Outbound{{Type: MessageAudio, Text: reply, Audio: audio}}
}

// persistTurn stores a turn. Storage failures are logged; the in-memory
// conversation continues regardless.
func (r *Router) persistTurn(ctx context.Context, t domain.Turn) {
	if err := r.turns.Create(ctx, &t); err != nil {
		log.Error().Err(err).Str("session_id", t.SessionID.String()).Int("seq", t.Seq).Msg("live.Router.persistTurn: failed to store turn")
	}
}

func (r *Router) publishTurn(sessionID uuid.UUID, t domain.Turn) {
	publishEvent(r.pub, sessionID, Event{
		Type:      EventTurn,
		SessionID: sessionID.String(),
		Speaker:   string(t.Speaker),
		Seq:       t.Seq,
		Text:      t.Content,
	})
}

func (r *Router) generate(ctx context.Context, system string, msgs []ai.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Generate)
	defer cancel()

	start := time.Now()
	reply, err := r.generator.Generate(ctx, system, msgs)
	r.metrics.RecordProviderRequest(providerLLM, "generate", statusLabel(err), time.Since(start))

	return reply, err
}

func (r *Router) transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Transcribe)
	defer cancel()

	start := time.Now()
	text, err := r.transcriber.Transcribe(ctx, audio, defaultAudioMIME)
	r.metrics.RecordProviderRequest(providerSpeech, "transcribe", statusLabel(err), time.Since(start))

	return text, err
}

func (r *Router) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Speech)
	defer cancel()

	start := time.Now()
	audio, err := r.synthesizer.Synthesize(ctx, text, voice)
	r.metrics.RecordProviderRequest(providerSpeech, "synthesize", statusLabel(err), time.Since(start))

	return audio, err
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
