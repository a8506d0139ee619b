package live

// Message types accepted from and emitted to live interview clients. These
// five inbound kinds and four outbound kinds are the entire wire contract of
// the session pipeline.
const (
	MessageText       = "text"
	MessageCode       = "code"
	MessageAudio      = "audio"
	MessageAudioChunk = "audio_chunk"
	MessageEndSession = "end_session"
	MessageError      = "error"
)

// Inbound is one decoded client frame. Exactly one of Text, Audio, or Chunk
// carries the payload, selected by Type.
type Inbound struct {
	Type  string      `json:"type"`
	Text  string      `json:"text,omitempty"`
	Audio []byte      `json:"audio,omitempty"`
	Chunk *AudioChunk `json:"chunk,omitempty"`
}

// AudioChunk is one fragment of a larger audio payload. Total is the declared
// fragment count for the whole payload; Last marks the sender's final frame.
type AudioChunk struct {
	Data  []byte `json:"data"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Last  bool   `json:"last"`
}

// Outbound is one frame for the client. Audio frames carry the spoken text
// alongside the synthesized bytes.
type Outbound struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Audio []byte `json:"audio,omitempty"`
	Error string `json:"error,omitempty"`
}

func errorOutbound(reason string) Outbound {
	return Outbound{Type: MessageError, Error: reason}
}
