// Package intent turns free-text requests into a response body and
// structured report-field suggestions.
package intent

import "context"

// Result is the outcome of classifying one user message.
type Result struct {
	// Rule names the matched keyword rule, or the fallback.
	Rule         string  `json:"rule"`
	ResponseText string  `json:"responseText"`
	Fields       Fields  `json:"extractedFields"`
	Confidence   float64 `json:"confidence"`
	// FieldConfidence applies to every suggested field.
	FieldConfidence float64 `json:"-"`
}

// SuggestedFields expands Fields using FieldConfidence.
func (r Result) SuggestedFields() []SuggestedField {
	return r.Fields.Suggestions(r.FieldConfidence)
}

// Classifier derives a response and field suggestions from user text.
// Implementations must handle any string and be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (Result, error)

// Classify calls f(ctx, text).
func (f ClassifierFunc) Classify(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}
