package report

// Status represents the lifecycle status of a justification report.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived" // terminal
)

// ValidTransitions defines allowed status transitions. Every non-archived
// status may additionally move to StatusArchived; see CanTransitionTo.
var ValidTransitions = map[Status][]Status{
	StatusDraft:     {StatusInReview},
	StatusInReview:  {StatusApproved, StatusRejected},
	StatusRejected:  {StatusInReview}, // resubmission
	StatusApproved:  {StatusPublished},
	StatusPublished: {},
	StatusArchived:  {},
}

// AllStatuses lists every known status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusInReview, StatusApproved, StatusRejected, StatusPublished, StatusArchived}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := ValidTransitions[s]
	return ok
}

// IsTerminal returns true if no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok || !target.IsValid() {
		return false
	}
	if target == StatusArchived {
		return !s.IsTerminal()
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, &TransitionError{From: s, To: target}
	}
	return target, nil
}

// ReviewStatus marks where a report stands in the approval review.
type ReviewStatus string

const (
	ReviewStatusNone     ReviewStatus = ""
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// reviewStatusFor returns the review marker implied by entering status s,
// and false when entering s leaves the marker unchanged.
func reviewStatusFor(s Status) (ReviewStatus, bool) {
	switch s {
	case StatusInReview:
		return ReviewStatusPending, true
	case StatusApproved:
		return ReviewStatusApproved, true
	case StatusRejected:
		return ReviewStatusRejected, true
	default:
		return ReviewStatusNone, false
	}
}
