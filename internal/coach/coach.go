// Package coach provides the AI trading coach: a thin client for any API
// exposing the OpenAI chat-completions shape, used to turn journal analytics
// into natural-language feedback.
package coach

import "context"

// Coach produces a single completion for a system/user prompt pair.
type Coach interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Noop is a Coach that always reports the feature as disabled. Wired when no
// API key is configured so handlers never need a nil check.
type Noop struct{}

// Complete implements Coach.
func (Noop) Complete(ctx context.Context, system, user string) (string, error) {
	return "", ErrDisabled
}
