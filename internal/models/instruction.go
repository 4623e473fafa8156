package models

// InstructionResponse is returned by GET /api/instruction.
type InstructionResponse struct {
	Instruction string `json:"instruction"`
}

// InstructionUpdatedResponse is returned by a successful POST /api/instruction.
type InstructionUpdatedResponse struct {
	Message     string `json:"message"`
	Instruction string `json:"instruction"`
}
