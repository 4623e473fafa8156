package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"persona-chat/internal/middleware"
	"persona-chat/internal/models"
	"persona-chat/internal/services"
)

type chatRelay interface {
	RelayJSON(ctx context.Context, raw json.RawMessage) (string, error)
}

type ChatHandler struct {
	relay  chatRelay
	logger *zap.Logger
}

func NewChatHandler(relay chatRelay, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{relay: relay, logger: logger}
}

// Chat relays the posted conversation. Every failure, including a
// conversation that is not an array, is answered with 500 and the failure's message.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Conversation json.RawMessage `json:"conversation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, &services.InvalidInputError{Message: "Invalid request body"})
		return
	}

	result, err := h.relay.RelayJSON(r.Context(), req.Conversation)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Result: result})
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	// provider failures are already logged by the relay
	var invalid *services.InvalidInputError
	if errors.As(err, &invalid) {
		h.logger.Warn("chat request rejected",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	writeJSON(w, http.StatusInternalServerError, errorResp(err.Error()))
}
