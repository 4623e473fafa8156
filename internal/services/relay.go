package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"persona-chat/internal/models"
)

// GenerateRequest is a single-shot content generation call.
type GenerateRequest struct {
	Model             string
	Contents          []models.Content
	Temperature       float32
	SystemInstruction string
}

// Provider generates model text from a conversation.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// InstructionReader returns the instruction in effect at the time of the call.
type InstructionReader interface {
	Get() string
}

type RelayConfig struct {
	Model       string
	Temperature float32
	History     HistoryPolicy
}

// ChatRelay forwards client transcripts plus the current instruction to the provider.
type ChatRelay struct {
	provider     Provider
	instructions InstructionReader
	model        string
	temperature  float32
	history      HistoryPolicy
	logger       *zap.Logger
}

func NewChatRelay(provider Provider, instructions InstructionReader, cfg RelayConfig, logger *zap.Logger) (*ChatRelay, error) {
	if provider == nil {
		return nil, errors.New("services: provider must not be nil")
	}
	if instructions == nil {
		return nil, errors.New("services: instruction reader must not be nil")
	}
	if cfg.History == nil {
		cfg.History = FullHistory{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatRelay{
		provider:     provider,
		instructions: instructions,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		history:      cfg.History,
		logger:       logger,
	}, nil
}

// DecodeConversation parses a raw conversation payload. Anything but a JSON
// array, including a missing or null value, is rejected.
func DecodeConversation(raw json.RawMessage) ([]models.Turn, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &InvalidInputError{Message: "Messages must be an array"}
	}

	var conversation []models.Turn
	if err := json.Unmarshal(trimmed, &conversation); err != nil {
		return nil, &InvalidInputError{Message: fmt.Sprintf("Invalid conversation: %v", err)}
	}
	if conversation == nil {
		conversation = []models.Turn{}
	}
	return conversation, nil
}

// RelayJSON decodes raw and relays it. The provider is not called when decoding fails.
func (r *ChatRelay) RelayJSON(ctx context.Context, raw json.RawMessage) (string, error) {
	conversation, err := DecodeConversation(raw)
	if err != nil {
		return "", err
	}
	return r.Relay(ctx, conversation)
}

// Relay sends the conversation to the provider and returns the generated text.
// The instruction is read once, right before the provider call.
func (r *ChatRelay) Relay(ctx context.Context, conversation []models.Turn) (string, error) {
	contents := ToContents(r.history.Apply(conversation))

	req := GenerateRequest{
		Model:             r.model,
		Contents:          contents,
		Temperature:       r.temperature,
		SystemInstruction: r.instructions.Get(),
	}

	r.logger.Debug("relaying conversation",
		zap.Int("turns", len(conversation)),
		zap.Int("sent_turns", len(contents)),
		zap.String("model", r.model),
	)

	text, err := r.provider.Generate(ctx, req)
	if err != nil {
		r.logger.Error("provider call failed", zap.Error(err), zap.Int("turns", len(contents)))
		return "", &ProviderError{Err: err}
	}
	return text, nil
}

// ToContents maps turns to provider contents one-to-one, keeping order and roles.
func ToContents(conversation []models.Turn) []models.Content {
	contents := make([]models.Content, len(conversation))
	for i, turn := range conversation {
		contents[i] = models.Content{
			Role:  turn.Role,
			Parts: []models.Part{{Text: turn.Text}},
		}
	}
	return contents
}
