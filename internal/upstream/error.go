// Package upstream defines the error kind shared by clients of hosted APIs.
package upstream

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ServiceSimplification = "simplification"
	ServiceSpeech         = "speech"
)

// ErrEmptyResponse is wrapped when an API answers successfully with no content.
var ErrEmptyResponse = errors.New("empty response")

// Error reports a failed call to a remote service. It is kept distinct from
// extraction and validation errors so callers can answer with a gateway status.
type Error struct {
	Service string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as an *Error for service. A nil err stays nil and an err
// that already is an *Error is returned unchanged.
func Wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return err
	}
	return &Error{Service: service, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

var clientSafePatterns = []struct {
	pattern string
	message string
}{
	{"rate limit", "rate limit exceeded"},
	{"429", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"deadline exceeded", "request timed out"},
	{"timeout", "request timed out"},
	{"context canceled", "request cancelled"},
	{"401", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"invalid api", "authentication failed with provider"},
	{"forbidden", "access denied by provider"},
}

// ClientMessage converts an upstream failure into a message that is safe to
// show to API clients.
func ClientMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(msg, p.pattern) {
			return p.message
		}
	}
	if ue, ok := As(err); ok {
		return ue.Service + " service temporarily unavailable"
	}
	return "provider temporarily unavailable"
}
