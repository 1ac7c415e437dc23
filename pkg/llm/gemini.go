package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai Models service used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator sends prompts to Google's Gemini API.
type GeminiGenerator struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGeminiGenerator creates a Gemini client for the given model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		models: client.Models,
		model:  model,
		logger: logger,
	}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate runs a single content generation call.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt *Prompt) (string, error) {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, msg := range prompt.History {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt.Text, genai.RoleUser))

	config := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if len(prompt.Output) > 0 {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = outputSchema(prompt.Output)
	}
	if opts := prompt.Options; opts != nil {
		if opts.Temperature != nil {
			config.Temperature = genai.Ptr(float32(*opts.Temperature))
		}
		if opts.NumPredict != nil {
			config.MaxOutputTokens = int32(*opts.NumPredict)
		}
	}

	g.logger.Debug("sending prompt to gemini",
		zap.String("model", g.model),
		zap.String("prompt", prompt.Name),
		zap.Int("history", len(prompt.History)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("GenAI returned no text for prompt %s", prompt.Name)
	}

	return text, nil
}

func outputSchema(fields []Field) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
		Required:   make([]string, 0, len(fields)),
	}

	for _, f := range fields {
		prop := &genai.Schema{Type: genai.TypeString, Description: f.Description}
		if f.List {
			prop = &genai.Schema{
				Type:        genai.TypeArray,
				Description: f.Description,
				Items:       &genai.Schema{Type: genai.TypeString},
			}
		}
		schema.Properties[f.Name] = prop
		schema.Required = append(schema.Required, f.Name)
	}

	return schema
}
