package browser

import (
	"context"
	"errors"
	"strings"
)

// Kind is the structured classification of a session-level failure.
// It replaces substring sniffing at the call sites: workers dispatch on the
// kind, never on error text.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindSessionFatal
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindSessionFatal:
		return "session_fatal"
	default:
		return "other"
	}
}

// fatalMarkers are the known crash/closed-session signatures surfaced by the
// devtools transport. Matching happens only here, at the resource layer.
var fatalMarkers = []string{
	"target crashed",
	"target closed",
	"session closed",
	"browser closed",
	"websocket: close",
	"websocket: bad handshake",
	"chrome failed to start",
	"transport closed",
}

// Classify maps an error from a session operation to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.Canceled) {
		return KindSessionFatal
	}
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return KindSessionFatal
		}
	}
	return KindOther
}
