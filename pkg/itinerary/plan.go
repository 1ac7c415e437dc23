package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the body sent to the itinerary backend.
type Request struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Budget      string `json:"budget"`
}

// Plan is the itinerary backend response.
type Plan struct {
	Destination string   `json:"destination" validate:"required"`
	Days        int      `json:"days" validate:"gte=1"`
	Source      string   `json:"source"`
	Itinerary   Schedule `json:"itinerary" validate:"min=1,dive"`
}

// Day is one labelled day of a Plan.
type Day struct {
	Label      string   `validate:"required"`
	Activities []string `validate:"min=1,dive,required"`
}

// Schedule is the backend's day-label to activities mapping. It is a JSON
// object on the wire; document order is kept.
type Schedule []Day

// UnmarshalJSON decodes the object key by key so day order survives.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("itinerary must be an object, got %v", tok)
	}

	var days Schedule
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected itinerary key %v", keyTok)
		}

		var activities []string
		if err := dec.Decode(&activities); err != nil {
			return fmt.Errorf("day %q: %w", label, err)
		}
		days = append(days, Day{Label: label, Activities: activities})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = days
	return nil
}

// MarshalJSON writes the schedule back as an ordered object.
func (s Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(day.Label)
		if err != nil {
			return nil, err
		}
		activities, err := json.Marshal(day.Activities)
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(activities)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
