package services

import "persona-chat/internal/models"

// HistoryPolicy decides which part of a client transcript is forwarded to the
// provider. Clients always resend the full transcript; the policy is the single
// place where truncation or summarisation can be introduced.
type HistoryPolicy interface {
	Apply(conversation []models.Turn) []models.Turn
}

// FullHistory forwards every turn unchanged.
type FullHistory struct{}

func (FullHistory) Apply(conversation []models.Turn) []models.Turn {
	return conversation
}

// WindowHistory forwards only the newest Size turns, oldest first.
type WindowHistory struct {
	Size int
}

func (w WindowHistory) Apply(conversation []models.Turn) []models.Turn {
	if w.Size <= 0 || len(conversation) <= w.Size {
		return conversation
	}
	return conversation[len(conversation)-w.Size:]
}

// NewHistoryPolicy returns FullHistory for window <= 0 and a WindowHistory otherwise.
func NewHistoryPolicy(window int) HistoryPolicy {
	if window <= 0 {
		return FullHistory{}
	}
	return WindowHistory{Size: window}
}
