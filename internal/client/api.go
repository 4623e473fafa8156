// Package client talks to the chat server and keeps the client-side transcript.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"persona-chat/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// API is a typed client for the chat server's JSON endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (a *API) GetInstruction(ctx context.Context) (string, error) {
	var out models.InstructionResponse
	if err := a.do(ctx, http.MethodGet, "/api/instruction", nil, &out); err != nil {
		return "", err
	}
	return out.Instruction, nil
}

func (a *API) SetInstruction(ctx context.Context, instruction string) (string, error) {
	var out models.InstructionUpdatedResponse
	body := map[string]string{"instruction": instruction}
	if err := a.do(ctx, http.MethodPost, "/api/instruction", body, &out); err != nil {
		return "", err
	}
	return out.Instruction, nil
}

// Chat posts the full conversation and returns the model's reply.
func (a *API) Chat(ctx context.Context, conversation []models.Turn) (string, error) {
	if conversation == nil {
		conversation = []models.Turn{}
	}
	var out models.ChatResponse
	body := map[string][]models.Turn{"conversation": conversation}
	if err := a.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
