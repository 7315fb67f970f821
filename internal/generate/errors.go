package generate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies generation failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindRateLimit
	KindServer
	KindTimeout
	KindClient
	KindDecode
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindClient:
		return "client"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	}
	return "unknown"
}

// Retryable reports whether a failure of this kind is worth another attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindRateLimit, KindServer, KindTimeout:
		return true
	}
	return false
}

// Error is a classified generation failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("generation failed (%s, HTTP %d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// Retryable reports whether err is a classified, retryable failure.
func Retryable(err error) bool {
	return KindOf(err).Retryable()
}

func statusKind(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout:
		return KindTimeout
	case status >= 500:
		return KindServer
	}
	return KindClient
}

// transportError classifies a failure from the HTTP round trip. parent is
// the caller's context, which distinguishes cancellation from a per-attempt
// timeout.
func transportError(parent context.Context, err error) *Error {
	if parent.Err() != nil {
		return &Error{Kind: KindCanceled, Err: parent.Err()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
