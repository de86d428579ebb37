package evaluation

import (
	"errors"
)

var (
	// ErrEvaluation matches every *EvaluationError
	ErrEvaluation = errors.New("evaluation failed")

	// ErrEvaluationInFlight is returned when a request is triggered while another is pending
	ErrEvaluationInFlight = errors.New("evaluation already in progress")
)

// Messages shown to the user when the evaluator gives nothing better
const (
	MessageNoNodes       = "No nodes to evaluate"
	MessageFailed        = "Failed to evaluate graph"
	MessageUnknownFailed = "An error occurred during evaluation"
)

// EvaluationError is a failed evaluation. Message is what the user sees.
type EvaluationError struct {
	Message    string
	StatusCode int // zero when no response was received
	Cause      error
}

func (e *EvaluationError) Error() string {
	return e.Message
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrEvaluation) match
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

// UserMessage returns the single line shown for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) && evalErr.Message != "" {
		return evalErr.Message
	}
	if errors.Is(err, ErrEvaluationInFlight) {
		return "Evaluation already in progress"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageUnknownFailed
}
