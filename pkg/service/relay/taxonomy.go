package relay

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
)

// Class is the user-facing category of a relay failure.
type Class int

const (
	ClassNone Class = iota
	ClassUpstreamUnavailable
	ClassUpstreamRateLimited
	ClassUpstreamStream
	ClassTransportClosed
	ClassPersistence
)

const (
	MessageRateLimited = "I'm currently receiving too many requests. Please try again in about a minute."
	MessageStreamError = "Sorry, something went wrong while generating the response."
	MessageUnavailable = "Failed to generate response"
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassUpstreamUnavailable:
		return "upstream_unavailable"
	case ClassUpstreamRateLimited:
		return "upstream_rate_limited"
	case ClassUpstreamStream:
		return "upstream_stream_error"
	case ClassTransportClosed:
		return "transport_closed"
	case ClassPersistence:
		return "persistence_error"
	default:
		return "unknown"
	}
}

// Message returns the fixed text shown to the client. Provider details never
// appear in it.
func (c Class) Message() string {
	switch c {
	case ClassUpstreamRateLimited:
		return MessageRateLimited
	case ClassUpstreamStream:
		return MessageStreamError
	default:
		return MessageUnavailable
	}
}

// Tag returns the tag option that the HTTP layer maps to a status code.
func (c Class) Tag() goerr.Option {
	switch c {
	case ClassUpstreamRateLimited:
		return goerr.T(errs.TagRateLimit)
	case ClassUpstreamStream:
		return goerr.T(errs.TagUpstreamStream)
	case ClassTransportClosed:
		return goerr.T(errs.TagTransportClosed)
	case ClassPersistence:
		return goerr.T(errs.TagDatabase)
	default:
		return goerr.T(errs.TagExternal)
	}
}

// Classify maps an error to its class. delivered tells whether any fragment
// already reached the client.
func Classify(err error, delivered bool) Class {
	switch {
	case err == nil:
		return ClassNone
	case goerr.HasTag(err, errs.TagTransportClosed):
		return ClassTransportClosed
	case goerr.HasTag(err, errs.TagDatabase):
		return ClassPersistence
	case goerr.HasTag(err, errs.TagRateLimit):
		return ClassUpstreamRateLimited
	case delivered:
		return ClassUpstreamStream
	default:
		return ClassUpstreamUnavailable
	}
}
