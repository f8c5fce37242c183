package dto

type TokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type BatchRollbackResponse struct {
	Succeeded []string            `json:"succeeded"`
	Failed    []FailedEntryResult `json:"failed"`
	Missing   []string            `json:"missing,omitempty"`
}

type FailedEntryResult struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
