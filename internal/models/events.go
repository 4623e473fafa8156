package models

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const WSInstructionUpdated = "instruction_updated"

// InstructionUpdate is published whenever the instruction changes. Origin
// identifies the server process that accepted the write.
type InstructionUpdate struct {
	Instruction string `json:"instruction"`
	Origin      string `json:"origin"`
}

// ErrorResponse is the JSON error envelope for every API failure.
type ErrorResponse struct {
	Message string `json:"message"`
}
