package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"persona-chat/internal/models"
	"persona-chat/internal/services"
)

type instructionStore interface {
	Get() string
	Set(v string) string
}

// InstructionNotifier is told about every accepted instruction write.
type InstructionNotifier interface {
	PublishInstruction(ctx context.Context, instruction string)
}

type InstructionHandler struct {
	store    instructionStore
	notifier InstructionNotifier
	logger   *zap.Logger
}

func NewInstructionHandler(store instructionStore, notifier InstructionNotifier, logger *zap.Logger) *InstructionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructionHandler{store: store, notifier: notifier, logger: logger}
}

func (h *InstructionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.InstructionResponse{Instruction: h.store.Get()})
}

func (h *InstructionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction json.RawMessage `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, err)
		return
	}

	instruction, err := parseInstruction(req.Instruction)
	if err != nil {
		h.reject(w, err)
		return
	}

	updated := h.store.Set(instruction)
	h.logger.Info("instruction updated", zap.Int("length", len(updated)))

	if h.notifier != nil {
		h.notifier.PublishInstruction(r.Context(), updated)
	}

	writeJSON(w, http.StatusOK, models.InstructionUpdatedResponse{
		Message:     "Instruction updated",
		Instruction: updated,
	})
}

func (h *InstructionHandler) reject(w http.ResponseWriter, err error) {
	h.logger.Debug("rejected instruction update", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorResp("Invalid instruction format"))
}

// parseInstruction accepts only a JSON string; null, numbers, objects and a
// missing field are rejected.
func parseInstruction(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", &services.InvalidInputError{Message: "instruction must be a string"}
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", &services.InvalidInputError{Message: err.Error()}
	}
	return s, nil
}
