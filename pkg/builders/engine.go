package builders

import (
	"context"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/command"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// PluginBuilder packages an engine plugin with the automation tool
type PluginBuilder struct {
	*BaseBuilder
}

// NewPluginBuilder creates a new plugin builder
func NewPluginBuilder(opts Options) *PluginBuilder {
	return &PluginBuilder{BaseBuilder: NewBaseBuilder(opts)}
}

// Plan returns the single BuildPlugin invocation
func (b *PluginBuilder) Plan() []types.Step {
	return []types.Step{{
		Description: "Packaging plugin",
		Tool:        b.AutomationToolPath(),
		Args:        command.Expand(b.Templates.Plugin, b.Values()),
	}}
}

// Build packages the plugin
func (b *PluginBuilder) Build(ctx context.Context) error {
	return b.execute(ctx, b.Plan())
}

// ProjectBuilder compiles a full engine project, then cooks, packages and
// archives it
type ProjectBuilder struct {
	*BaseBuilder
}

// NewProjectBuilder creates a new project builder
func NewProjectBuilder(opts Options) *ProjectBuilder {
	return &ProjectBuilder{BaseBuilder: NewBaseBuilder(opts)}
}

// Plan returns the project file generation and BuildCookRun invocations. The
// cook step waits for the build tool spawned by the first step to exit.
func (b *ProjectBuilder) Plan() []types.Step {
	values := b.Values()
	return []types.Step{
		{
			Description: "Generating project files and building editor",
			Tool:        b.BuildToolPath(),
			Args:        command.Expand(b.Templates.ProjectFiles, values),
		},
		{
			Description: "Cooking, packaging and archiving project",
			Tool:        b.AutomationToolPath(),
			Args:        command.Expand(b.Templates.CookRun, values),
			WaitBefore:  true,
		},
	}
}

// Build compiles and packages the project
func (b *ProjectBuilder) Build(ctx context.Context) error {
	return b.execute(ctx, b.Plan())
}

// NoopBuilder stands in for projects that are not built with the engine
type NoopBuilder struct {
	*BaseBuilder
}

// NewNoopBuilder creates a builder that runs nothing
func NewNoopBuilder(opts Options) *NoopBuilder {
	return &NoopBuilder{BaseBuilder: NewBaseBuilder(opts)}
}

// Validate always succeeds; no engine is needed
func (b *NoopBuilder) Validate() error {
	return nil
}

// Plan is empty
func (b *NoopBuilder) Plan() []types.Step {
	return nil
}

// Build logs that there is nothing to do
func (b *NoopBuilder) Build(ctx context.Context) error {
	if b.Logger != nil {
		b.Logger.Info("Not an engine project, nothing to build",
			logger.WithField("UE", b.Project.Config.UE))
	}
	return nil
}
