// Package llm provides the model-facing types of wanderwise: Ollama-compatible
// wire types, rendered prompts and the Generator implementations that turn a
// prompt into model text.
package llm

// ErrorResponse is the JSON error body shared by the LLM API and the
// wanderwise HTTP API.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
