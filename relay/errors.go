// Package relay talks to the Azure OpenAI chat-completions API and splits
// the model output back into method and test artifacts.
package relay

import (
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// UpstreamErrorKind classifies failures of the completion backend into the
// cases callers present differently to the user.
type UpstreamErrorKind int

const (
	KindUnknown UpstreamErrorKind = iota
	KindAuth
	KindNotFound
	KindRateLimit
	KindUnreachable
	KindTimeout
	KindEmptyResponse
)

// UpstreamError is a classified completion-backend failure. Message is safe
// to surface to API clients; the wrapped cause is for logs only.
type UpstreamError struct {
	Kind    UpstreamErrorKind
	Message string
	cause   error
}

func (e *UpstreamError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.cause }

// StatusCode maps the kind onto the HTTP status the API layer should reply
// with.
func (e *UpstreamError) StatusCode() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindUnreachable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func upstreamErr(kind UpstreamErrorKind, message string, cause error) *UpstreamError {
	return &UpstreamError{Kind: kind, Message: message, cause: cause}
}

// AsUpstream unwraps err down to an UpstreamError if one is in the chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
