package classifier

import (
	"errors"
	"fmt"
)

// Kind classifies a classification failure.
type Kind string

const (
	// KindUnavailable means the classifier could not be reached or answered
	// with an error. The caller takes the degraded path.
	KindUnavailable Kind = "unavailable"
	// KindMalformedOutput means the classifier answered with something that is
	// not a JSON object. The caller proceeds with an empty candidate.
	KindMalformedOutput Kind = "malformed_output"
)

var (
	ErrUnavailable     = errors.New("classifier unavailable")
	ErrMalformedOutput = errors.New("classifier output malformed")
)

// Error is returned by Adapter.Classify.
type Error struct {
	Kind       Kind
	StatusCode int
	Output     string
	Err        error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "classifier " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is match the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindUnavailable:
		return target == ErrUnavailable
	case KindMalformedOutput:
		return target == ErrMalformedOutput
	}
	return false
}

func unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, StatusCode: ParseStatusCode(err), Err: err}
}

func malformed(output string, err error) *Error {
	return &Error{Kind: KindMalformedOutput, Output: output, Err: err}
}
