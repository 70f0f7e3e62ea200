package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

// GeminiConfig は Vertex AI 接続設定。
type GeminiConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// GeminiSummarizer wraps the Vertex AI Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ application.Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer は Vertex AI クライアントを生成する。プロジェクト未設定なら ErrSummarizerUnavailable。
func NewGeminiSummarizer(ctx context.Context, cfg GeminiConfig) (*GeminiSummarizer, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set: %w", application.ErrSummarizerUnavailable)
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, location)
	if err != nil {
		return nil, fmt.Errorf("create vertex ai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}

	return &GeminiSummarizer{client: client, model: model}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, candidate domain.CandidateContext) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(candidate)))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

// responseText は先頭候補のテキストパートを連結する。
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	return builder.String(), nil
}

func (g *GeminiSummarizer) Close() error {
	return g.client.Close()
}
