// Package upstream classifies failures of the two data sources so the
// collector can tell an unreachable device (expected at night) from a broken
// response.
package upstream

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

type Kind int

const (
	// ConnectFailed means the TCP connection could not be established.
	ConnectFailed Kind = iota
	// Timeout means the request exceeded the client deadline.
	Timeout
	// ProtocolError means the server answered with an unexpected status.
	ProtocolError
	// Decode means the response body did not match the expected shape.
	Decode
)

func (k Kind) String() string {
	switch k {
	case ConnectFailed:
		return "connect failed"
	case Timeout:
		return "timeout"
	case ProtocolError:
		return "protocol error"
	case Decode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a classified failure of one source operation.
type Error struct {
	Source string // "inverter" or "weather"
	Op     string // endpoint or operation name
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Source, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unreachable reports whether err is an upstream error caused by the host
// being unreachable or unresponsive. This is the collector's signal that the
// inverter is asleep rather than misbehaving.
func Unreachable(err error) bool {
	var ue *Error
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Kind == ConnectFailed || ue.Kind == Timeout
}

// Classify wraps a transport-level error from net/http with the appropriate
// kind. Decode and protocol failures are classified at the call site where
// the response shape is known.
func Classify(source, op string, err error) *Error {
	kind := ConnectFailed

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		kind = Timeout
	} else if isTimeout(err) {
		kind = Timeout
	} else if !isConnectFailure(err) {
		// A transport error that is neither a refused/unroutable connection
		// nor a timeout: the peer spoke, but badly.
		kind = ProtocolError
	}

	return &Error{Source: source, Op: op, Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
