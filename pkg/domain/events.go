package domain

import (
	"context"
	"time"
)

// TypesetEvent describes one attempt of a typeset request.
type TypesetEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Attempt   int           `json:"attempt"`
	Attached  bool          `json:"attached"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// TypesetHooks defines callbacks for typeset observability.
type TypesetHooks struct {
	OnTypeset func(context.Context, *TypesetEvent)
	OnResult  func(context.Context, *TypesetEvent)
	OnRetry   func(context.Context, *TypesetEvent)
}
