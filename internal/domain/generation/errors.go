package generation

import "errors"

var (
	// ErrInvalidInput is returned for blank submissions.
	ErrInvalidInput = errors.New("message text is empty")
	// ErrAlreadyGenerating is returned while another turn of the same
	// conversation is in flight.
	ErrAlreadyGenerating = errors.New("a response is already being generated for this conversation")
	// ErrGenerationFailed wraps classifier failures. It is logged and turned
	// into a system message, never returned by Submit.
	ErrGenerationFailed = errors.New("generation failed")
)

// FailureMessage is the system message appended when a turn fails.
const FailureMessage = "Sorry, I encountered an error while generating the response. Please try again."
