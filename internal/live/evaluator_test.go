package live

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/domain"
)

// --- mock generator for evaluation tests ---

type mockEvalGenerator struct {
	reply     string
	err       error
	gotSystem string
	gotMsgs   []ai.Message
}

func (m *mockEvalGenerator) Generate(_ context.Context, system string, msgs []ai.Message) (string, error) {
	m.gotSystem = system
	m.gotMsgs = msgs
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockEvalGenerator) Condense(context.Context, string) (string, error) {
	return "", errors.New("unexpected Condense call")
}

func TestClassifyPersona(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		personality string
		strictness  string
	}{
		{"strict keyword", "strict but fair", "strict"},
		{"demanding keyword mixed case", "a Demanding taskmaster", "strict"},
		{"tough keyword", "tough on fundamentals", "strict"},
		{"friendly keyword", "friendly and curious", "lenient"},
		{"supportive keyword mixed case", "very Supportive mentor", "lenient"},
		{"warm keyword", "warm, patient", "lenient"},
		{"no keyword", "analytical and methodical", "balanced"},
		{"empty personality", "", "balanced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profile := classifyPersona(tt.personality)

			assert.Equal(t, tt.strictness, profile.Strictness)
			assert.NotEmpty(t, profile.Tone)
		})
	}
}

func TestParseScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{"plain integer", "85", 85, true},
		{"surrounding whitespace", " 92 ", 92, true},
		{"slash suffix", "85/100", 85, true},
		{"prose suffix", "85 out of 100", 85, true},
		{"upper bound", "100", 100, true},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, false},
		{"non-numeric", "abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseScore(tt.in)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	t.Run("well-formed reply", func(t *testing.T) {
		t.Parallel()

		reply := `SCORE: 78
NARRATIVE: Solid grasp of distributed systems.
Communication was occasionally rushed.
STRENGTHS:
- clear system decomposition
- honest about unknowns
WEAKNESSES:
* rushed explanations
RECOMMENDATIONS:
- practice narrating tradeoffs`

		got := parseEvaluation(reply)

		assert.Equal(t, 78, got.OverallScore)
		assert.Equal(t, "Solid grasp of distributed systems. Communication was occasionally rushed.", got.Narrative)
		assert.Equal(t, []string{"clear system decomposition", "honest about unknowns"}, got.Strengths)
		assert.Equal(t, []string{"rushed explanations"}, got.Weaknesses)
		assert.Equal(t, []string{"practice narrating tradeoffs"}, got.Recommendations)
	})

	t.Run("case-insensitive headers", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("score: 61\nnarrative: Adequate.\nstrengths:\n- persistence")

		assert.Equal(t, 61, got.OverallScore)
		assert.Equal(t, "Adequate.", got.Narrative)
		assert.Equal(t, []string{"persistence"}, got.Strengths)
	})

	t.Run("score with trailing junk", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("SCORE: 85/100\nNARRATIVE: Fine.")

		assert.Equal(t, 85, got.OverallScore)
	})

	t.Run("out-of-range score is clamped", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("SCORE: 150\nNARRATIVE: Generous model.")

		assert.Equal(t, 100, got.OverallScore)
	})

	t.Run("negative score is unparseable and defaults", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("SCORE: -5\nNARRATIVE: Harsh model.")

		assert.Equal(t, defaultScore, got.OverallScore)
	})

	t.Run("garbage degrades to defaults", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("I'm sorry, I can't evaluate this.")

		assert.Equal(t, defaultScore, got.OverallScore)
		assert.Equal(t, defaultNarrative, got.Narrative)
		assert.Empty(t, got.Strengths)
		assert.Empty(t, got.Weaknesses)
		assert.Empty(t, got.Recommendations)
	})

	t.Run("empty reply degrades to defaults", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("")

		assert.Equal(t, defaultScore, got.OverallScore)
		assert.Equal(t, defaultNarrative, got.Narrative)
	})

	t.Run("non-bullet lines in list sections are ignored", func(t *testing.T) {
		t.Parallel()

		got := parseEvaluation("SCORE: 70\nSTRENGTHS:\nsome prose the model added\n- the actual strength")

		assert.Equal(t, []string{"the actual strength"}, got.Strengths)
	})
}

func TestDeriveMetrics(t *testing.T) {
	t.Parallel()

	t.Run("mid-range overall", func(t *testing.T) {
		t.Parallel()

		got := deriveMetrics(50)

		require.Len(t, got, 4)
		assert.Equal(t, MetricScore{Metric: "technical_depth", Value: 54, Weight: 0.35}, got[0])
		assert.Equal(t, MetricScore{Metric: "communication", Value: 47, Weight: 0.25}, got[1])
		assert.Equal(t, MetricScore{Metric: "problem_solving", Value: 52, Weight: 0.25}, got[2])
		assert.Equal(t, MetricScore{Metric: "role_fit", Value: 45, Weight: 0.15}, got[3])

		sum := 0.0
		for _, m := range got {
			sum += m.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("boundary overall scores stay within range", func(t *testing.T) {
		t.Parallel()

		for _, overall := range []int{0, 100} {
			for _, m := range deriveMetrics(overall) {
				assert.GreaterOrEqual(t, m.Value, 0, "metric %s for overall %d", m.Metric, overall)
				assert.LessOrEqual(t, m.Value, 100, "metric %s for overall %d", m.Metric, overall)
			}
		}
	})
}

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, clamp(-1))
	assert.Equal(t, 0, clamp(0))
	assert.Equal(t, 55, clamp(55))
	assert.Equal(t, 100, clamp(100))
	assert.Equal(t, 100, clamp(101))
}

func TestEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	turns := []domain.Turn{
		{ID: uuid.New(), Speaker: domain.SpeakerAgent, Content: "Walk me through a system you built.", Seq: 1},
		{ID: uuid.New(), Speaker: domain.SpeakerUser, Content: "I built a settlement pipeline.", Seq: 2},
	}

	t.Run("structured reply is parsed and metrics derived", func(t *testing.T) {
		t.Parallel()

		gen := &mockEvalGenerator{reply: "SCORE: 80\nNARRATIVE: Strong showing.\nSTRENGTHS:\n- depth"}
		ev := NewEvaluator(gen)

		summary, scores := ev.Evaluate(t.Context(), domain.InterviewAgent{Name: "Dana", Personality: "strict", Industry: "fintech", Level: "senior"}, turns)

		assert.Equal(t, 80, summary.OverallScore)
		assert.Equal(t, "Strong showing.", summary.Narrative)
		require.Len(t, scores, 4)
		assert.Equal(t, 84, scores[0].Value)

		assert.Contains(t, gen.gotSystem, "strict")
		assert.Contains(t, gen.gotSystem, "fintech")
		assert.Contains(t, gen.gotSystem, "senior")
		require.Len(t, gen.gotMsgs, 1)
		assert.Contains(t, gen.gotMsgs[0].Content, "Interviewer: Walk me through a system you built.")
		assert.Contains(t, gen.gotMsgs[0].Content, "Candidate: I built a settlement pipeline.")
	})

	t.Run("provider failure degrades to the default evaluation", func(t *testing.T) {
		t.Parallel()

		gen := &mockEvalGenerator{err: errors.New("model timeout")}
		ev := NewEvaluator(gen)

		summary, scores := ev.Evaluate(t.Context(), domain.InterviewAgent{}, turns)

		assert.Equal(t, defaultScore, summary.OverallScore)
		assert.Equal(t, defaultNarrative, summary.Narrative)
		require.Len(t, scores, 4)
		assert.Equal(t, 54, scores[0].Value)
	})
}
