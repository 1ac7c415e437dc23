package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Field describes one key of a structured model output.
type Field struct {
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`

	// List marks the field as an array of strings instead of a string.
	List bool `toml:"list" json:"list,omitempty"`
}

// Prompt is a fully rendered prompt ready to be sent to a Generator.
type Prompt struct {
	// Name identifies the template the prompt was rendered from.
	Name string

	// System is the system instruction, may be empty.
	System string

	// Text is the user turn.
	Text string

	// History holds earlier turns of the conversation, oldest first.
	History []Message

	// Output requests a JSON object with these fields. Empty means free text.
	Output []Field

	// Options tune sampling. Nil leaves the model defaults.
	Options *Options
}

// Messages flattens the prompt into chat messages.
func (p *Prompt) Messages() []Message {
	messages := make([]Message, 0, len(p.History)+2)

	system := p.System
	if len(p.Output) > 0 {
		system = strings.TrimSpace(system + "\n\n" + p.outputInstruction())
	}
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}

	messages = append(messages, p.History...)
	messages = append(messages, Message{Role: RoleUser, Content: p.Text})

	return messages
}

func (p *Prompt) outputInstruction() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object with these keys:\n")
	for _, f := range p.Output {
		kind := "string"
		if f.List {
			kind = "array of strings"
		}
		fmt.Fprintf(&b, "- %q (%s): %s\n", f.Name, kind, f.Description)
	}
	return b.String()
}

// Generator turns a prompt into model text. When the prompt requests an
// output schema the returned text is a JSON object with those fields.
type Generator interface {
	Generate(ctx context.Context, prompt *Prompt) (string, error)

	// Model names the model answering prompts, for logs and the journal.
	Model() string
}

// DecodeOutput unmarshals structured model text into out. Models sometimes
// wrap JSON in a markdown code fence, which is stripped first.
func DecodeOutput(text string, out any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
