package engagement

import (
	"errors"
	"fmt"
)

var (
	ErrNotEvaluator             = errors.New("employee is not allowed to submit ratings")
	ErrSelfEvaluationNotAllowed = errors.New("employee is not allowed to rate themselves")
	ErrUnknownEmployee          = errors.New("rated employee is not on the roster")
	ErrScoreOutOfRange          = errors.New("score must be between 0 and 100")
	ErrDuplicateEvaluated       = errors.New("employee rated more than once in one submission")
	ErrNoScores                 = errors.New("no scores submitted")
)

type ValidationError struct {
	Field   string
	Value   any
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}
