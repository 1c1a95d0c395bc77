package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
)

// SafeGroup wraps errgroup.Group and turns a panicking stage into an error
// so the run record and notifications still see the failure.
type SafeGroup struct {
	group  *errgroup.Group
	logger logger.Logger
}

// NewSafeGroup creates a new SafeGroup with panic recovery
func NewSafeGroup(ctx context.Context, log logger.Logger) (*SafeGroup, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	return &SafeGroup{group: g, logger: log}, ctx
}

// Go runs fn in a new goroutine. A panic is logged with its stack and
// returned from Wait as an error.
func (sg *SafeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Stage panicked",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	})
}

// Wait returns the first error of the group
func (sg *SafeGroup) Wait() error {
	return sg.group.Wait()
}
