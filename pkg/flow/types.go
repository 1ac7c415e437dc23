package flow

import "github.com/papercomputeco/wanderwise/pkg/itinerary"

// Flow names, shared by the HTTP routes, the MCP tools and the prompt catalog.
const (
	AnswerQuestion     = "answer-question"
	DynamicUpdates     = "dynamic-updates"
	LanguageAssistance = "language-assistance"
	TravelSafety       = "travel-safety"
	PackingList        = "packing-list"
	ImproveItinerary   = "improve-itinerary"
	GenerateItinerary  = "generate-itinerary"
)

// Names lists every flow.
var Names = []string{
	AnswerQuestion,
	DynamicUpdates,
	LanguageAssistance,
	TravelSafety,
	PackingList,
	ImproveItinerary,
	GenerateItinerary,
}

// QuestionInput is a travel question, optionally continuing a conversation.
type QuestionInput struct {
	Question string `json:"question" validate:"notblank" jsonschema:"the travel-related question to answer"`

	// Conversation is the journal hash of the previous answer.
	Conversation string `json:"conversation,omitempty" jsonschema:"journal hash of the previous answer to continue a conversation"`
}

// QuestionOutput answers a QuestionInput.
type QuestionOutput struct {
	Answer  string `json:"answer" jsonschema:"the answer to the travel-related question"`
	Journal string `json:"journal,omitempty" jsonschema:"journal hash of this answer"`
}

// RequestInput is a free text request for updates, language help or safety information.
type RequestInput struct {
	Request string `json:"request" validate:"notblank" jsonschema:"the user's request"`
}

// RequestOutput answers a RequestInput.
type RequestOutput struct {
	Response string `json:"response" jsonschema:"the response to the request"`
	Journal  string `json:"journal,omitempty" jsonschema:"journal hash of this response"`
}

// PackingListInput asks for packing suggestions for an itinerary.
type PackingListInput struct {
	Itinerary   string `json:"itinerary" validate:"notblank" jsonschema:"the travel itinerary"`
	Preferences string `json:"preferences,omitempty" jsonschema:"packing preferences such as lightweight travel or photography gear"`
}

// PackingListOutput holds packing suggestions.
type PackingListOutput struct {
	Suggestions []string `json:"suggestions" jsonschema:"a list of packing suggestions"`
	Journal     string   `json:"journal,omitempty" jsonschema:"journal hash of these suggestions"`
}

// ImproveItineraryInput pairs an itinerary with the traveller's feedback.
type ImproveItineraryInput struct {
	Itinerary string `json:"itinerary" validate:"notblank" jsonschema:"the current itinerary"`
	Feedback  string `json:"feedback" validate:"notblank" jsonschema:"the feedback provided by the user"`
}

// ImproveItineraryOutput holds the reworked itinerary.
type ImproveItineraryOutput struct {
	ImprovedItinerary string              `json:"improvedItinerary" jsonschema:"the improved itinerary"`
	Sections          []itinerary.Section `json:"sections" jsonschema:"the improved itinerary split into days"`
	Journal           string              `json:"journal,omitempty" jsonschema:"journal hash of this itinerary"`
}

// ItineraryInput holds the planner form preferences.
type ItineraryInput struct {
	Destination     string `json:"destination" validate:"notblank" jsonschema:"the destination for the trip"`
	Source          string `json:"source,omitempty" jsonschema:"where the traveller departs from"`
	TripType        string `json:"tripType,omitempty" jsonschema:"comma separated trip types (Leisure, Adventure, Business, Family, Romance)"`
	FlightOptions   string `json:"flightOptions,omitempty" jsonschema:"flight preferences (Non-stop, 1 stop ok, Economy, Premium, Business)"`
	Description     string `json:"description,omitempty" jsonschema:"a description of the desired trip"`
	Budget          string `json:"budget,omitempty" jsonschema:"the budget for the trip"`
	Duration        string `json:"duration,omitempty" jsonschema:"the duration of the trip in days, e.g. 5d"`
	FoodPreferences string `json:"foodPreferences,omitempty" jsonschema:"food preferences and dietary restrictions"`
	Interests       string `json:"interests,omitempty" jsonschema:"interests and activities desired during the trip"`
	Language        string `json:"language,omitempty" jsonschema:"preferred language for communication"`
}

// ItineraryOutput is a generated itinerary as text and as day sections.
type ItineraryOutput struct {
	Itinerary string              `json:"itinerary" jsonschema:"a day-by-day itinerary"`
	Sections  []itinerary.Section `json:"sections" jsonschema:"the itinerary split into days"`
	Journal   string              `json:"journal,omitempty" jsonschema:"journal hash of this itinerary"`
}
