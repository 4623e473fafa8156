package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"persona-chat/internal/models"
)

// GeminiService is the Provider backed by the Gemini API.
type GeminiService struct {
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiService, error) {
	return newGeminiService(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, logger)
}

func newGeminiService(ctx context.Context, cfg *genai.ClientConfig, logger *zap.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiService{client: client, logger: logger}, nil
}

// Generate issues one generateContent call carrying the whole conversation
// exactly as given. An empty conversation is sent with no contents.
func (s *GeminiService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}

	resp, err := s.client.Models.GenerateContent(ctx, req.Model, toGenaiContents(req.Contents), config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonStop {
			s.logger.Warn("Gemini candidate did not stop cleanly",
				zap.Int("candidate", i),
				zap.String("finish_reason", string(cand.FinishReason)),
				zap.Int32("token_count", cand.TokenCount),
			)
		}
	}

	return extractText(resp), nil
}

func toGenaiContents(contents []models.Content) []*genai.Content {
	out := make([]*genai.Content, len(contents))
	for i, c := range contents {
		parts := make([]*genai.Part, len(c.Parts))
		for j, p := range c.Parts {
			parts[j] = &genai.Part{Text: p.Text}
		}
		out[i] = &genai.Content{Role: c.Role, Parts: parts}
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	return text.String()
}
