package logger

import (
	"context"
	"time"

	pcontext "github.com/jenkinsbuilder/jenkinsbuilder/pkg/context"
)

// WithContext creates a logger that automatically includes the run id and
// elapsed time carried by ctx.
func WithContext(ctx context.Context, logger Logger) Logger {
	if ctx == nil {
		return logger
	}
	return &contextualLogger{ctx: ctx, logger: logger}
}

// contextualLogger wraps a logger with automatic context field extraction
type contextualLogger struct {
	ctx    context.Context
	logger Logger
}

// extractContextFields extracts tracing fields from context
func (cl *contextualLogger) extractContextFields(fields []Field) []Field {
	var all []Field
	if runID := pcontext.GetRunID(cl.ctx); runID != "" {
		all = append(all, WithField("run", runID))
	}
	if elapsed := pcontext.GetDuration(cl.ctx); elapsed > 0 {
		all = append(all, WithField("elapsed", elapsed.Round(time.Millisecond)))
	}
	return append(all, fields...)
}

func (cl *contextualLogger) Info(message string, fields ...Field) {
	cl.logger.Info(message, cl.extractContextFields(fields)...)
}

func (cl *contextualLogger) Error(message string, fields ...Field) {
	cl.logger.Error(message, cl.extractContextFields(fields)...)
}

func (cl *contextualLogger) Warn(message string, fields ...Field) {
	cl.logger.Warn(message, cl.extractContextFields(fields)...)
}

func (cl *contextualLogger) Debug(message string, fields ...Field) {
	cl.logger.Debug(message, cl.extractContextFields(fields)...)
}

func (cl *contextualLogger) Success(message string, fields ...Field) {
	cl.logger.Success(message, cl.extractContextFields(fields)...)
}

func (cl *contextualLogger) WithProject(project string) Logger {
	return &contextualLogger{
		ctx:    cl.ctx,
		logger: cl.logger.WithProject(project),
	}
}
