package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when a report id does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrIllegalTransition is matched by every *TransitionError.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrVersionConflict is returned when an expected version is stale.
	ErrVersionConflict = errors.New("report version conflict")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("report validation failed")
)

// ValidationError lists every violated field, not only the first one found.
type ValidationError struct {
	Missing []string          // required fields that are empty
	Invalid map[string]string // field -> reason
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		invalid := make([]string, 0, len(e.Invalid))
		for _, field := range sortedKeys(e.Invalid) {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", field, e.Invalid[field]))
		}
		parts = append(parts, "invalid fields: "+strings.Join(invalid, ", "))
	}
	if len(parts) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns every violated field name, missing ones first.
func (e *ValidationError) Fields() []string {
	out := append([]string(nil), e.Missing...)
	return append(out, sortedKeys(e.Invalid)...)
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// TransitionError identifies the current and requested status of a rejected
// status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

// Is lets errors.Is(err, ErrIllegalTransition) match.
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// VersionConflictError reports the version a caller expected and the one stored.
type VersionConflictError struct {
	Expected int
	Current  int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("report version conflict: expected %d, current %d", e.Expected, e.Current)
}

// Is lets errors.Is(err, ErrVersionConflict) match.
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
