// Package flow implements the wanderwise flows: each validates its input,
// renders a prompt (or builds a backend request), awaits one model or API
// call and returns the result. Every run is written to the journal.
package flow

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
	"github.com/papercomputeco/wanderwise/pkg/prompt"
)

// Itinerary sources.
const (
	SourceBackend = "backend"
	SourceModel   = "model"
)

// Backend generates itineraries outside the model.
type Backend interface {
	Generate(ctx context.Context, req itinerary.Request) (*itinerary.Plan, error)
	Name() string
}

// Config tunes flow behaviour.
type Config struct {
	// ItinerarySource is SourceBackend or SourceModel.
	ItinerarySource string

	// DefaultSource is the departure sent to the backend when none is given.
	DefaultSource string
}

// Service runs flows.
type Service struct {
	generator llm.Generator
	prompts   *prompt.Catalog
	backend   Backend
	journal   *Journal
	validate  *validator.Validate
	config    Config
	logger    *zap.Logger
}

// New creates a flow service. backend may be nil when itineraries come from
// the model.
func New(generator llm.Generator, prompts *prompt.Catalog, backend Backend, storer merkle.Storer, config Config, logger *zap.Logger) *Service {
	if config.ItinerarySource == "" {
		config.ItinerarySource = SourceBackend
	}
	if backend == nil {
		config.ItinerarySource = SourceModel
	}

	return &Service{
		generator: generator,
		prompts:   prompts,
		backend:   backend,
		journal:   NewJournal(storer, logger),
		validate:  newValidator(),
		config:    config,
		logger:    logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Whitespace-only input is as good as none.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

func (s *Service) validateInput(flow string, input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if rule == "notblank" {
			rule = "required"
		}
		fields[fe.Field()] = rule
	}
	return &ValidationError{Flow: flow, Fields: fields}
}

// runPrompt renders the flow's prompt from input, asks the model and decodes
// the structured reply into out.
func (s *Service) runPrompt(ctx context.Context, flow string, input any, history []llm.Message, out any) error {
	p, err := s.prompts.Render(flow, input)
	if err != nil {
		return err
	}
	p.History = history

	start := time.Now()
	text, err := s.generator.Generate(ctx, p)
	if err != nil {
		s.logger.Error("model call failed", zap.String("flow", flow), zap.Error(err))
		return &UpstreamError{Flow: flow, Err: err}
	}

	if err := llm.DecodeOutput(text, out); err != nil {
		s.logger.Error("model returned malformed output",
			zap.String("flow", flow),
			zap.String("output", truncate(text, 200)),
			zap.Error(err),
		)
		return &UpstreamError{Flow: flow, Err: err}
	}

	s.logger.Debug("flow completed",
		zap.String("flow", flow),
		zap.String("model", s.generator.Model()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
