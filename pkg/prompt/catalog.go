// Package prompt holds the named prompt templates the flows render into model
// prompts. Templates live in TOML so they can be tuned without a rebuild.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"
	"text/template"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/wanderwise/pkg/llm"
)

//go:embed prompts.toml
var defaultPrompts string

// ErrUnknownTemplate is returned when rendering a name the catalog lacks.
type ErrUnknownTemplate struct {
	Name string
}

func (e ErrUnknownTemplate) Error() string {
	return "unknown prompt template: " + e.Name
}

// Template is a single prompt definition.
type Template struct {
	Name   string      `toml:"name"`
	System string      `toml:"system"`
	Text   string      `toml:"text"`
	Output []llm.Field `toml:"output"`

	Temperature *float64 `toml:"temperature"`
	MaxTokens   *int     `toml:"max_tokens"`

	text *template.Template
}

type catalogFile struct {
	Prompts []Template `toml:"prompt"`
}

// Catalog is a concurrency safe set of templates.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCatalog returns the embedded default catalog.
func NewCatalog() (*Catalog, error) {
	templates, err := parse(defaultPrompts)
	if err != nil {
		return nil, fmt.Errorf("parse embedded prompts: %w", err)
	}
	return &Catalog{templates: templates}, nil
}

// LoadFile parses path and replaces the templates it defines. Templates the
// file does not mention keep their current definition. On error the catalog
// is left unchanged.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prompts %s: %w", path, err)
	}

	templates, err := parse(string(data))
	if err != nil {
		return fmt.Errorf("parse prompts %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make(map[string]*Template, len(c.templates))
	for name, t := range c.templates {
		merged[name] = t
	}
	for name, t := range templates {
		merged[name] = t
	}
	c.templates = merged

	return nil
}

// Names lists the template names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the named template against data.
func (c *Catalog) Render(name string, data any) (*llm.Prompt, error) {
	c.mu.RLock()
	t, ok := c.templates[name]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrUnknownTemplate{Name: name}
	}

	var buf bytes.Buffer
	if err := t.text.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render prompt %s: %w", name, err)
	}

	p := &llm.Prompt{
		Name:   name,
		System: t.System,
		Text:   buf.String(),
		Output: t.Output,
	}
	if t.Temperature != nil || t.MaxTokens != nil {
		p.Options = &llm.Options{Temperature: t.Temperature, NumPredict: t.MaxTokens}
	}
	return p, nil
}

func parse(data string) (map[string]*Template, error) {
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, err
	}

	templates := make(map[string]*Template, len(file.Prompts))
	for i := range file.Prompts {
		t := file.Prompts[i]
		if t.Name == "" {
			return nil, fmt.Errorf("prompt %d has no name", i)
		}
		if _, dup := templates[t.Name]; dup {
			return nil, fmt.Errorf("prompt %s defined twice", t.Name)
		}

		compiled, err := template.New(t.Name).Option("missingkey=error").Parse(t.Text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", t.Name, err)
		}
		t.text = compiled
		templates[t.Name] = &t
	}

	return templates, nil
}
