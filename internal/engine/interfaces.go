package engine

import (
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/builders"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/metrics"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/notifier"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
)

// BuilderFactory creates the builder for a project.
// Implemented by internal/builders and by test doubles.
type BuilderFactory interface {
	CreateBuilder(opts builders.Options) builders.Builder
}

// Dependencies are the collaborators of an Engine. Releases may be nil
// for commands that do not publish.
type Dependencies struct {
	BuilderFactory BuilderFactory
	Runner         process.Runner
	Waiter         builders.IdleWaiter
	Releases       publish.ReleaseService
	Notifier       *notifier.BuildNotifier
	Metrics        *metrics.Recorder
}
