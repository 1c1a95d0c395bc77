package engine

import (
	"context"

	internalbuilders "github.com/jenkinsbuilder/jenkinsbuilder/internal/builders"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/config"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/metrics"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/notifier"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// DependencyFactory creates default implementations of dependencies.
// This follows the dependency injection pattern and removes hidden
// concrete fallbacks from constructors.
type DependencyFactory struct {
	settings *config.Settings
	logger   logger.Logger
}

// NewDependencyFactory creates a new dependency factory
func NewDependencyFactory(settings *config.Settings, log logger.Logger) *DependencyFactory {
	return &DependencyFactory{settings: settings, logger: log}
}

// CreateDefaults creates the production dependencies. The release client is
// only created when a token is supplied.
func (f *DependencyFactory) CreateDefaults(ctx context.Context, token string) (Dependencies, error) {
	deps := Dependencies{
		BuilderFactory: internalbuilders.NewBuilderFactory(),
		Runner:         process.NewExecRunner(f.logger),
		Waiter:         f.createWaiter(process.GopsutilLister{}),
		Notifier:       notifier.New(notifier.Config{Enabled: f.settings.Notifications, Beep: f.settings.Notifications}, f.logger),
		Metrics:        metrics.NewRecorder(f.settings.PushGateway),
	}

	if token != "" {
		releases, err := publish.NewGitHubService(ctx, token, publish.GitHubOptions{
			BaseURL:   f.settings.GitHub.BaseURL,
			UploadURL: f.settings.GitHub.UploadURL,
		})
		if err != nil {
			return Dependencies{}, types.NewError(types.KindConfig, "create release client", err)
		}
		deps.Releases = releases
	}
	return deps, nil
}

// CreateWithOverrides creates dependencies with specific overrides.
// This is useful for testing or custom configurations. An overriding release
// service means no client is built from the token.
func (f *DependencyFactory) CreateWithOverrides(ctx context.Context, token string, overrides Dependencies, lister process.Lister) (Dependencies, error) {
	if overrides.Releases != nil {
		token = ""
	}
	deps, err := f.CreateDefaults(ctx, token)
	if err != nil {
		return Dependencies{}, err
	}

	if lister != nil {
		deps.Waiter = f.createWaiter(lister)
	}
	if overrides.BuilderFactory != nil {
		deps.BuilderFactory = overrides.BuilderFactory
	}
	if overrides.Runner != nil {
		deps.Runner = overrides.Runner
	}
	if overrides.Waiter != nil {
		deps.Waiter = overrides.Waiter
	}
	if overrides.Releases != nil {
		deps.Releases = overrides.Releases
	}
	if overrides.Notifier != nil {
		deps.Notifier = overrides.Notifier
	}
	if overrides.Metrics != nil {
		deps.Metrics = overrides.Metrics
	}
	return deps, nil
}

func (f *DependencyFactory) createWaiter(lister process.Lister) *process.Waiter {
	w := process.NewWaiter(lister, f.logger)
	if len(f.settings.Wait.Processes) > 0 {
		w.Names = f.settings.Wait.Processes
	}
	w.Interval = f.settings.Wait.Interval
	w.StallTicks = f.settings.Wait.StallTicks
	return w
}
