package flow

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports flow input that failed schema validation. Fields
// maps JSON field names to the failed rule.
type ValidationError struct {
	Flow   string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("invalid %s input: %s", e.Flow, strings.Join(parts, ", "))
}

// UpstreamError wraps a failed model or backend call.
type UpstreamError struct {
	Flow string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream call failed: %v", e.Flow, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Message is the text shown to callers; the wrapped error stays in the logs.
func (e *UpstreamError) Message() string {
	return fmt.Sprintf("We couldn't complete %s. Please try again.", e.Flow)
}

// ErrUnknownFlow is returned by Invoke for names not in Names.
type ErrUnknownFlow struct {
	Name string
}

func (e ErrUnknownFlow) Error() string {
	return "unknown flow: " + e.Name
}
