package extract

import (
	"errors"
	"fmt"
)

// ErrNoEnvelope matches every FetchError: whatever went wrong, there is no data this run.
var ErrNoEnvelope = errors.New("no envelope available")

type FetchErrorKind string

const (
	KindRequest   FetchErrorKind = "request"
	KindTransport FetchErrorKind = "transport"
	KindStatus    FetchErrorKind = "status"
	KindMalformed FetchErrorKind = "malformed"
	KindStructure FetchErrorKind = "structure"
)

type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s failure: HTTP status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s failure", e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrNoEnvelope
}
