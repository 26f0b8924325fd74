// Package apperror holds the closed set of failures that scraping and
// summarization can report to callers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed: callers can switch over it
// exhaustively.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindEmptyContent
	KindAuthentication
	KindRateLimit
	KindServer
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindEmptyContent:
		return "empty_content"
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindAPI:
		return "api"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is the single error type returned by scrapers and summarizers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidURL     = &Error{Kind: KindInvalidURL}
	ErrEmptyContent   = &Error{Kind: KindEmptyContent}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrServer         = &Error{Kind: KindServer}
	ErrAPI            = &Error{Kind: KindAPI}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps err as the cause so that errors.As can still reach it.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so wrapped errors match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Retryable reports whether a caller may reasonably retry after err.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindServer:
		return true
	default:
		return false
	}
}

// FromStatus maps a provider HTTP status to a kind. ok is false for 200.
func FromStatus(status int) (Kind, bool) {
	switch {
	case status == 200:
		return KindUnknown, false
	case status == 401:
		return KindAuthentication, true
	case status == 429:
		return KindRateLimit, true
	case status >= 500 && status <= 599:
		return KindServer, true
	default:
		return KindAPI, true
	}
}
