package models

// Roles used by the chat client. The relay does not enforce them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Part is one text segment of provider content.
type Part struct {
	Text string `json:"text"`
}

// Content is the provider-facing shape of a turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// ChatResponse is the success envelope of POST /api/chat.
type ChatResponse struct {
	Result string `json:"result"`
}
