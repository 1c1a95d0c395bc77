// Package context carries per-run identifiers through context.Context
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	startTimeKey
)

// WithRunID adds a run ID to the context, generating one when empty
func WithRunID(parent context.Context, runID string) context.Context {
	if runID == "" {
		runID = GenerateRunID()
	}
	return context.WithValue(parent, runIDKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		return id
	}
	return ""
}

// WithStartTime adds the run start time to the context
func WithStartTime(parent context.Context, startTime time.Time) context.Context {
	return context.WithValue(parent, startTimeKey, startTime)
}

// GetStartTime retrieves the run start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startTimeKey).(time.Time)
	return t, ok
}

// GetDuration returns the time elapsed since the start time in context, or
// zero when no start time was recorded.
func GetDuration(ctx context.Context) time.Duration {
	if start, ok := GetStartTime(ctx); ok {
		return time.Since(start)
	}
	return 0
}

// GenerateRunID creates a new unique run ID
func GenerateRunID() string {
	return uuid.New().String()
}

// StartRun stamps a fresh run ID and start time unless already present
func StartRun(parent context.Context) context.Context {
	ctx := parent
	if GetRunID(ctx) == "" {
		ctx = WithRunID(ctx, "")
	}
	if _, ok := GetStartTime(ctx); !ok {
		ctx = WithStartTime(ctx, time.Now())
	}
	return ctx
}
