package reporttemplate

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a template id does not exist.
var ErrNotFound = errors.New("template not found")

// ErrVersionConflict is returned when an expected version is stale.
var ErrVersionConflict = errors.New("template version conflict")

// VersionConflictError reports the version a caller expected and the one stored.
type VersionConflictError struct {
	Expected int
	Current  int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("template version conflict: expected %d, current %d", e.Expected, e.Current)
}

// Is lets errors.Is(err, ErrVersionConflict) match.
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
