package live

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/domain"
)

// defaultScore is substituted when the model's reply carries no parseable
// score. Mid-range: an unparseable evaluation is not evidence either way.
const defaultScore = 50

const defaultNarrative = "The evaluation could not be fully generated for this interview. The transcript has been preserved for manual review."

// PersonaProfile is the scoring disposition derived from an agent's
// free-text personality. classifyPersona isolates the substring heuristic so
// it can later be swapped for a structured field without touching the
// evaluation pipeline.
type PersonaProfile struct {
	Strictness string // "strict", "balanced", or "lenient"
	Tone       string
}

func classifyPersona(personality string) PersonaProfile {
	p := strings.ToLower(personality)

	switch {
	case strings.Contains(p, "strict") || strings.Contains(p, "demanding") || strings.Contains(p, "tough"):
		return PersonaProfile{Strictness: "strict", Tone: "direct and unsparing"}
	case strings.Contains(p, "friendly") || strings.Contains(p, "supportive") || strings.Contains(p, "warm"):
		return PersonaProfile{Strictness: "lenient", Tone: "encouraging and constructive"}
	default:
		return PersonaProfile{Strictness: "balanced", Tone: "professional and even-handed"}
	}
}

// ParsedSummary is the structured evaluation extracted from the model reply.
// Written once per session at finalization.
type ParsedSummary struct {
	Narrative       string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
	OverallScore    int
}

// MetricScore is one weighted sub-metric derived from the overall score.
type MetricScore struct {
	Metric string
	Value  int
	Weight float64
}

// Evaluator produces the post-interview assessment from a full transcript.
type Evaluator struct {
	generator ai.Generator
}

func NewEvaluator(generator ai.Generator) *Evaluator {
	return &Evaluator{generator: generator}
}

// Evaluate asks the model for a structured assessment and degrades to a
// mid-range default instead of failing: finalization must never be blocked
// on a bad evaluation reply.
func (ev *Evaluator) Evaluate(ctx context.Context, agent domain.InterviewAgent, turns []domain.Turn) (ParsedSummary, []MetricScore) {
	system := evaluationSystem(agent)
	transcript := FormatTranscript(turns)

	reply, err := ev.generator.Generate(ctx, system, []ai.Message{{Role: ai.RoleUser, Content: transcript}})
	if err != nil {
		log.Error().Err(err).Str("agent", agent.Name).Msg("live.Evaluator.Evaluate: generation failed, using default evaluation")
		reply = ""
	}

	summary := parseEvaluation(reply)

	return summary, deriveMetrics(summary.OverallScore)
}

// evaluationSystem conditions the scoring prompt on the agent's persona and
// the role's stated industry and level.
func evaluationSystem(agent domain.InterviewAgent) string {
	profile := classifyPersona(agent.Personality)

	var b strings.Builder
	b.WriteString("You are evaluating a completed job interview. Your scoring disposition is ")
	b.WriteString(profile.Strictness)
	b.WriteString("; your written feedback is ")
	b.WriteString(profile.Tone)
	b.WriteString(".")

	if agent.Industry != "" {
		b.WriteString(" Weigh domain knowledge relevant to ")
		b.WriteString(agent.Industry)
		b.WriteString(".")
	}
	if agent.Level != "" {
		b.WriteString(" Calibrate expectations to a ")
		b.WriteString(agent.Level)
		b.WriteString(" candidate.")
	}

	b.WriteString(` Reply in exactly this format:
SCORE: <integer 0-100>
NARRATIVE: <2-4 sentence assessment>
STRENGTHS:
- <strength>
WEAKNESSES:
- <weakness>
RECOMMENDATIONS:
- <recommendation>`)

	return b.String()
}

// parseEvaluation extracts the structured sections. It is deliberately
// tolerant: headers match case-insensitively, bullets accept "-" or "*",
// and anything unparseable falls back to defaults.
func parseEvaluation(reply string) ParsedSummary {
	out := ParsedSummary{OverallScore: defaultScore}

	section := ""
	var narrative []string

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "SCORE:"):
			section = ""
			if n, ok := parseScore(line[len("SCORE:"):]); ok {
				out.OverallScore = clamp(n)
			}
			continue
		case strings.HasPrefix(upper, "NARRATIVE:"):
			section = "narrative"
			if rest := strings.TrimSpace(line[len("NARRATIVE:"):]); rest != "" {
				narrative = append(narrative, rest)
			}
			continue
		case strings.HasPrefix(upper, "STRENGTHS:"):
			section = "strengths"
			continue
		case strings.HasPrefix(upper, "WEAKNESSES:"):
			section = "weaknesses"
			continue
		case strings.HasPrefix(upper, "RECOMMENDATIONS:"):
			section = "recommendations"
			continue
		}

		switch section {
		case "narrative":
			narrative = append(narrative, line)
		case "strengths":
			if item, ok := bulletItem(line); ok {
				out.Strengths = append(out.Strengths, item)
			}
		case "weaknesses":
			if item, ok := bulletItem(line); ok {
				out.Weaknesses = append(out.Weaknesses, item)
			}
		case "recommendations":
			if item, ok := bulletItem(line); ok {
				out.Recommendations = append(out.Recommendations, item)
			}
		}
	}

	out.Narrative = strings.Join(narrative, " ")
	if out.Narrative == "" {
		out.Narrative = defaultNarrative
	}

	return out
}

func parseScore(s string) (int, bool) {
	s = strings.TrimSpace(s)
	// Tolerate trailing junk like "85/100" or "85 out of 100".
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func bulletItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* "} {
		if strings.HasPrefix(line, prefix) {
			item := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			return item, item != ""
		}
	}
	return "", false
}

// deriveMetrics produces the four weighted sub-metrics as bounded
// perturbations of the overall score.
func deriveMetrics(overall int) []MetricScore {
	return []MetricScore{
		{Metric: "technical_depth", Value: clamp(overall + 4), Weight: 0.35},
		{Metric: "communication", Value: clamp(overall - 3), Weight: 0.25},
		{Metric: "problem_solving", Value: clamp(overall + 2), Weight: 0.25},
		{Metric: "role_fit", Value: clamp(overall - 5), Weight: 0.15},
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
