package matching

import (
	"fmt"
	"strings"
)

// Mode decides whether the gateway attempts the remote backend at all.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// ParseMode accepts "online", "offline" and "demo" (an alias of offline).
// An empty value means online.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeOnline):
		return ModeOnline, nil
	case string(ModeOffline), "demo":
		return ModeOffline, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// OutcomeKind classifies a single remote attempt.
type OutcomeKind int

const (
	RemoteSuccess OutcomeKind = iota
	RemoteFailure
	OfflineSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case RemoteSuccess:
		return "remote_success"
	case RemoteFailure:
		return "remote_failure"
	case OfflineSkipped:
		return "offline_skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of a remote attempt. Value is only meaningful on
// RemoteSuccess and Reason only on RemoteFailure.
type Outcome[T any] struct {
	Kind   OutcomeKind
	Value  T
	Reason error
}

func success[T any](v T) Outcome[T] {
	return Outcome[T]{Kind: RemoteSuccess, Value: v}
}

func failure[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: RemoteFailure, Reason: err}
}

func skipped[T any]() Outcome[T] {
	return Outcome[T]{Kind: OfflineSkipped}
}
