package live

import (
	"strings"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/domain"
)

// codeReviewSystem is the fixed persona for code submissions. Code review is
// a one-shot analysis: it bypasses the conversation cache entirely.
const codeReviewSystem = `You are a senior engineer reviewing code a candidate just submitted during a live interview. Comment on correctness, clarity, and edge cases. Point out one concrete improvement. Keep it under 120 words and speak directly to the candidate.`

// emptyReplyFallback is spoken when the model returns a blank reply; the
// interview must keep moving.
const emptyReplyFallback = "Let's keep going. Could you walk me through your thinking on that in a bit more detail?"

// SystemPrompt renders the interviewer instruction for an agent persona.
func SystemPrompt(agent domain.InterviewAgent) string {
	var b strings.Builder

	b.WriteString("You are ")
	if agent.Name != "" {
		b.WriteString(agent.Name)
	} else {
		b.WriteString("an interviewer")
	}
	b.WriteString(", conducting a live job interview over voice.")

	if agent.Industry != "" {
		b.WriteString(" The role is in ")
		b.WriteString(agent.Industry)
		b.WriteString(".")
	}
	if agent.Level != "" {
		b.WriteString(" The candidate is interviewing at the ")
		b.WriteString(agent.Level)
		b.WriteString(" level.")
	}
	if agent.Personality != "" {
		b.WriteString(" Your interviewing style: ")
		b.WriteString(agent.Personality)
		b.WriteString(".")
	}

	b.WriteString(" Ask one question at a time, follow up on weak or vague answers, and keep every reply under 80 words of natural spoken language. Never mention that you are an AI or that this is a simulation.")

	if agent.SystemNotes != "" {
		b.WriteString("\n\n")
		b.WriteString(agent.SystemNotes)
	}

	return b.String()
}

// FormatTranscript renders turns as labeled lines for condensation and
// evaluation prompts.
func FormatTranscript(turns []domain.Turn) string {
	var b strings.Builder

	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch t.Speaker {
		case domain.SpeakerAgent:
			b.WriteString("Interviewer: ")
		default:
			b.WriteString("Candidate: ")
		}
		b.WriteString(t.Content)
	}

	return b.String()
}

// PromptMessages converts bounded context into provider messages, prefixing
// the condensed history as a framed user message when present.
func PromptMessages(c Context) []ai.Message {
	msgs := make([]ai.Message, 0, len(c.Turns)+1)

	if c.Summary != "" {
		msgs = append(msgs, ai.Message{
			Role:    ai.RoleUser,
			Content: "Summary of the interview so far:\n" + c.Summary,
		})
	}

	for _, t := range c.Turns {
		role := ai.RoleUser
		if t.Speaker == domain.SpeakerAgent {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: t.Content})
	}

	return msgs
}
