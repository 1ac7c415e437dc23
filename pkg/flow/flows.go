package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

// simulatedModel marks journal entries answered without a model call.
const simulatedModel = "simulated"

// simulatedUpdates answers flight and weather requests with canned replies;
// no live status provider is wired in.
var simulatedUpdates = []struct {
	keyword  string
	response string
}{
	{"flight", "Flight AA123 is on time and scheduled to depart at 10:00 AM."},
	{"weather", "The weather in Paris is currently 18°C and sunny."},
}

// AnswerTravelQuestion answers a travel question. When input.Conversation
// names an earlier answer, that conversation is replayed to the model.
func (s *Service) AnswerTravelQuestion(ctx context.Context, input QuestionInput) (*QuestionOutput, error) {
	if err := s.validateInput(AnswerQuestion, input); err != nil {
		return nil, err
	}

	var history []llm.Message
	if input.Conversation != "" {
		messages, err := s.journal.History(ctx, input.Conversation)
		if err != nil {
			var notFound merkle.ErrNotFound
			if errors.As(err, &notFound) {
				return nil, &ValidationError{Flow: AnswerQuestion, Fields: map[string]string{"conversation": "unknown"}}
			}
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		history = messages
	}

	var out QuestionOutput
	if err := s.runPrompt(ctx, AnswerQuestion, input, history, &out); err != nil {
		return nil, err
	}

	out.Journal = s.journal.Record(ctx, AnswerQuestion, input.Conversation,
		entry{Text: input.Question, Payload: input},
		entry{Text: out.Answer, Payload: out, Model: s.generator.Model()},
	)
	return &out, nil
}

// GetDynamicUpdates answers requests for live trip updates such as flight
// status or weather.
func (s *Service) GetDynamicUpdates(ctx context.Context, input RequestInput) (*RequestOutput, error) {
	if err := s.validateInput(DynamicUpdates, input); err != nil {
		return nil, err
	}

	lower := strings.ToLower(input.Request)
	for _, u := range simulatedUpdates {
		if strings.Contains(lower, u.keyword) {
			out := RequestOutput{Response: u.response}
			out.Journal = s.journal.Record(ctx, DynamicUpdates, "",
				entry{Text: input.Request, Payload: input},
				entry{Text: out.Response, Payload: out, Model: simulatedModel},
			)
			return &out, nil
		}
	}

	return s.request(ctx, DynamicUpdates, input)
}

// GetLanguageAssistance provides translations and etiquette tips.
func (s *Service) GetLanguageAssistance(ctx context.Context, input RequestInput) (*RequestOutput, error) {
	if err := s.validateInput(LanguageAssistance, input); err != nil {
		return nil, err
	}
	return s.request(ctx, LanguageAssistance, input)
}

// GetTravelSafetyInfo provides safety information and alerts.
func (s *Service) GetTravelSafetyInfo(ctx context.Context, input RequestInput) (*RequestOutput, error) {
	if err := s.validateInput(TravelSafety, input); err != nil {
		return nil, err
	}
	return s.request(ctx, TravelSafety, input)
}

func (s *Service) request(ctx context.Context, flow string, input RequestInput) (*RequestOutput, error) {
	var out RequestOutput
	if err := s.runPrompt(ctx, flow, input, nil, &out); err != nil {
		return nil, err
	}

	out.Journal = s.journal.Record(ctx, flow, "",
		entry{Text: input.Request, Payload: input},
		entry{Text: out.Response, Payload: out, Model: s.generator.Model()},
	)
	return &out, nil
}

// GetPackingListSuggestions suggests what to pack for an itinerary.
func (s *Service) GetPackingListSuggestions(ctx context.Context, input PackingListInput) (*PackingListOutput, error) {
	if err := s.validateInput(PackingList, input); err != nil {
		return nil, err
	}

	var out PackingListOutput
	if err := s.runPrompt(ctx, PackingList, input, nil, &out); err != nil {
		return nil, err
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}

	out.Journal = s.journal.Record(ctx, PackingList, "",
		entry{Text: input.Itinerary, Payload: input},
		entry{Text: strings.Join(out.Suggestions, "\n"), Payload: out, Model: s.generator.Model()},
	)
	return &out, nil
}

// ImproveItineraryWithFeedback reworks an itinerary according to feedback.
func (s *Service) ImproveItineraryWithFeedback(ctx context.Context, input ImproveItineraryInput) (*ImproveItineraryOutput, error) {
	if err := s.validateInput(ImproveItinerary, input); err != nil {
		return nil, err
	}

	var out ImproveItineraryOutput
	if err := s.runPrompt(ctx, ImproveItinerary, input, nil, &out); err != nil {
		return nil, err
	}
	out.Sections = itinerary.Parse(out.ImprovedItinerary)

	out.Journal = s.journal.Record(ctx, ImproveItinerary, "",
		entry{Text: input.Feedback, Payload: input},
		entry{Text: out.ImprovedItinerary, Model: s.generator.Model()},
	)
	return &out, nil
}

// GeneratePersonalizedItinerary builds an itinerary from planner preferences,
// using the itinerary backend or the model depending on configuration.
func (s *Service) GeneratePersonalizedItinerary(ctx context.Context, input ItineraryInput) (*ItineraryOutput, error) {
	if err := s.validateInput(GenerateItinerary, input); err != nil {
		return nil, err
	}

	var (
		out   ItineraryOutput
		model string
	)

	if s.config.ItinerarySource == SourceModel {
		if err := s.runPrompt(ctx, GenerateItinerary, input, nil, &out); err != nil {
			return nil, err
		}
		out.Sections = itinerary.Parse(out.Itinerary)
		model = s.generator.Model()
	} else {
		source := strings.TrimSpace(input.Source)
		if source == "" {
			source = s.config.DefaultSource
		}

		req := itinerary.NewRequest(source, input.Destination, input.Duration, input.TripType)
		plan, err := s.backend.Generate(ctx, req)
		if err != nil {
			s.logger.Error("itinerary backend call failed",
				zap.String("destination", req.Destination),
				zap.Error(err),
			)
			return nil, &UpstreamError{Flow: GenerateItinerary, Err: err}
		}

		out.Itinerary = itinerary.Format(plan)
		out.Sections = itinerary.Sections(plan)
		model = s.backend.Name()
	}

	out.Journal = s.journal.Record(ctx, GenerateItinerary, "",
		entry{Text: input.Destination, Payload: input},
		entry{Text: out.Itinerary, Model: model},
	)
	return &out, nil
}
