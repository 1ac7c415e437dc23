package llm

// Options contains model inference parameters.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	NumPredict  *int     `json:"num_predict,omitempty"` // Max tokens to generate
}
