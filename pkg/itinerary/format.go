package itinerary

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultDays is used when the requested duration has no leading number.
const DefaultDays = 3

// Format renders a plan as prose, one block per day.
func Format(plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip to %s for %d days.\n\n", plan.Destination, plan.Days)

	for _, day := range plan.Itinerary {
		fmt.Fprintf(&b, "%s:\n", day.Label)
		for _, activity := range day.Activities {
			fmt.Fprintf(&b, "- %s\n", activity)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// NewRequest builds a backend request from planner form values. The budget
// tier is the first selected trip type; duration "5d" means five days.
func NewRequest(source, destination, duration, tripType string) Request {
	return Request{
		Source:      source,
		Destination: destination,
		Days:        ParseDays(duration),
		Budget:      strings.ToLower(strings.TrimSpace(strings.Split(tripType, ",")[0])),
	}
}

// ParseDays reads the leading integer of a duration such as "5d" or
// "7 days". Anything without a positive leading number yields DefaultDays.
func ParseDays(duration string) int {
	duration = strings.TrimLeftFunc(duration, unicode.IsSpace)

	end := 0
	for end < len(duration) && duration[end] >= '0' && duration[end] <= '9' {
		end++
	}

	days, err := strconv.Atoi(duration[:end])
	if err != nil || days < 1 {
		return DefaultDays
	}
	return days
}

// Sections converts a plan to one section per day. Backend day labels carry
// no title, so they do not survive a Format and Parse round trip.
func Sections(plan *Plan) []Section {
	sections := make([]Section, 0, len(plan.Itinerary))
	for _, day := range plan.Itinerary {
		lines := make([]string, len(day.Activities))
		for i, activity := range day.Activities {
			lines[i] = "- " + activity
		}
		sections = append(sections, Section{Title: day.Label, Content: strings.Join(lines, "\n")})
	}
	return sections
}
