package builders

import (
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/builders"
)

// BuilderFactory creates builders based on the project kind
type BuilderFactory struct{}

// NewBuilderFactory creates a new builder factory
func NewBuilderFactory() *BuilderFactory {
	return &BuilderFactory{}
}

// CreateBuilder creates the appropriate builder for a project
func (f *BuilderFactory) CreateBuilder(opts builders.Options) builders.Builder {
	switch {
	case !opts.Project.IsEngineProject():
		return builders.NewNoopBuilder(opts)

	case opts.Project.IsPlugin():
		return builders.NewPluginBuilder(opts)

	default:
		return builders.NewProjectBuilder(opts)
	}
}
