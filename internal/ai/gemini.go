package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const transcribeInstruction = "Transcribe this audio recording of an interview answer. Output only the spoken words, with punctuation, and nothing else."

// GeminiClient covers the audio edges of the pipeline: speech-to-text on a
// multimodal model and text-to-speech on a TTS model.
type GeminiClient struct {
	client          *genai.Client
	transcribeModel string
	speechModel     string
}

func NewGeminiClient(ctx context.Context, apiKey, transcribeModel, speechModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai.NewGeminiClient: %w", err)
	}

	return &GeminiClient{
		client:          client,
		transcribeModel: transcribeModel,
		speechModel:     speechModel,
	}, nil
}

func (c *GeminiClient) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribeInstruction),
			genai.NewPartFromBytes(audio, mime),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.transcribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("geminiClient.Transcribe: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

func (c *GeminiClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.speechModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("geminiClient.Synthesize: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("geminiClient.Synthesize: %w", ErrNoAudio)
}
