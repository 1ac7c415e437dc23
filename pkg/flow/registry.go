package flow

import (
	"context"
	"encoding/json"
)

// invoker runs a flow from its JSON input.
type invoker func(ctx context.Context, s *Service, raw []byte) (any, error)

var registry = map[string]invoker{
	AnswerQuestion:     bind(AnswerQuestion, (*Service).AnswerTravelQuestion),
	DynamicUpdates:     bind(DynamicUpdates, (*Service).GetDynamicUpdates),
	LanguageAssistance: bind(LanguageAssistance, (*Service).GetLanguageAssistance),
	TravelSafety:       bind(TravelSafety, (*Service).GetTravelSafetyInfo),
	PackingList:        bind(PackingList, (*Service).GetPackingListSuggestions),
	ImproveItinerary:   bind(ImproveItinerary, (*Service).ImproveItineraryWithFeedback),
	GenerateItinerary:  bind(GenerateItinerary, (*Service).GeneratePersonalizedItinerary),
}

func bind[I, O any](name string, run func(*Service, context.Context, I) (*O, error)) invoker {
	return func(ctx context.Context, s *Service, raw []byte) (any, error) {
		var input I
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, &ValidationError{Flow: name, Fields: map[string]string{"body": "invalid JSON"}}
		}
		return run(s, ctx, input)
	}
}

// Invoke runs the named flow with a JSON encoded input and returns its output.
func (s *Service) Invoke(ctx context.Context, name string, raw []byte) (any, error) {
	run, ok := registry[name]
	if !ok {
		return nil, ErrUnknownFlow{Name: name}
	}
	return run(ctx, s, raw)
}
