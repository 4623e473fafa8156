package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"persona-chat/internal/models"
)

const (
	NoResponseMessage     = "Sorry, no response received or an error occurred."
	TransportErrorMessage = "Failed to get response from server."
)

// ErrEmptyMessage is returned by Submit for blank input; nothing is sent.
var ErrEmptyMessage = errors.New("client: empty message")

// Relayer sends a full transcript to the server.
type Relayer interface {
	Chat(ctx context.Context, conversation []models.Turn) (string, error)
}

// Renderer displays turns. It is a presentation collaborator only; nothing it
// shows feeds back into the transcript.
type Renderer interface {
	RenderUser(text string)
	RenderModel(text string)
	// ShowPending displays a placeholder and returns a func that removes it.
	ShowPending() (clear func())
	RenderFailure(text string)
}

// Conversation is the client-owned, ordered transcript. The whole transcript
// is resent on every submission; that is the only context the model gets.
type Conversation struct {
	relay    Relayer
	renderer Renderer

	// submitMu keeps one chat request in flight per conversation.
	submitMu sync.Mutex

	mu    sync.Mutex
	turns []models.Turn
}

func NewConversation(relay Relayer, renderer Renderer) *Conversation {
	return &Conversation{relay: relay, renderer: renderer}
}

// AppendUserTurn records and renders a user turn.
func (c *Conversation) AppendUserTurn(text string) {
	c.append(models.Turn{Role: models.RoleUser, Text: text})
	c.renderer.RenderUser(text)
}

// AppendModelTurn records and renders a model turn.
func (c *Conversation) AppendModelTurn(text string) {
	c.append(models.Turn{Role: models.RoleModel, Text: text})
	c.renderer.RenderModel(text)
}

func (c *Conversation) append(t models.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, t)
}

// Turns returns a copy of the transcript.
func (c *Conversation) Turns() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Submit appends the user's message, sends the whole transcript and appends
// the reply. On failure the user turn stays in the transcript so the next
// submission still carries it.
func (c *Conversation) Submit(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.AppendUserTurn(text)
	clearPending := c.renderer.ShowPending()

	reply, err := c.relay.Chat(ctx, c.Turns())
	clearPending()

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.renderer.RenderFailure(NoResponseMessage)
		} else {
			c.renderer.RenderFailure(TransportErrorMessage)
		}
		return "", err
	}
	if reply == "" {
		c.renderer.RenderFailure(NoResponseMessage)
		return "", nil
	}

	c.AppendModelTurn(reply)
	return reply, nil
}
