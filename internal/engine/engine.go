// Package engine sequences one invocation: build, publish, and the run
// bookkeeping around them (state file, notifications, metrics).
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/builders"
	pcontext "github.com/jenkinsbuilder/jenkinsbuilder/pkg/context"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/metrics"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/state"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/utils"
)

// Request is one dispatch of a command against a project
type Request struct {
	Project   types.Project
	Command   types.Command
	Workspace string
	// Configuration names the archive, e.g. Release
	Configuration string
}

// Result summarises a run. Publish is nil unless the command publishes and
// the publish got as far as planning a version.
type Result struct {
	Record    *types.RunRecord
	Publish   *publish.Result
	Processes int
	Duration  time.Duration
}

// Engine runs commands with a fixed engine installation and templates
type Engine struct {
	settings  types.EngineSettings
	templates types.Templates
	logger    logger.Logger
	deps      Dependencies
}

// New creates an engine. Nil notifier and metrics disable those concerns.
func New(settings types.EngineSettings, templates types.Templates, log logger.Logger, deps Dependencies) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{settings: settings, templates: templates, logger: log, deps: deps}
}

// Builder returns the builder the engine would use for req
func (e *Engine) Builder(req Request, log logger.Logger) builders.Builder {
	if log == nil {
		log = e.logger
	}
	return e.deps.BuilderFactory.CreateBuilder(builders.Options{
		Project:   req.Project,
		Workspace: req.Workspace,
		Engine:    e.settings,
		Templates: e.templates,
		Runner:    e.deps.Runner,
		Waiter:    e.deps.Waiter,
		Logger:    log,
	})
}

// Plan returns the steps a build of req would run
func (e *Engine) Plan(req Request) []types.Step {
	return e.Builder(req, nil).Plan()
}

// Run executes req. The returned result is non-nil even when err is set.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	ctx = pcontext.StartRun(ctx)
	log := logger.WithContext(ctx, e.logger).WithProject(req.Project.Name)
	result := &Result{}

	if !utils.DirectoryExists(req.Workspace) {
		return result, types.NewError(types.KindConfig, "run",
			fmt.Errorf("%w: %s", types.ErrWorkspaceMissing, req.Workspace))
	}
	if req.Command.Publishes() && e.deps.Releases == nil {
		return result, types.NewError(types.KindConfig, "run", types.ErrTokenMissing)
	}

	sm := state.NewStateManager(req.Workspace, log)
	if _, err := sm.Begin(ctx, req.Project.Name, req.Command); err != nil {
		log.Warn("Could not write state file", logger.WithField("error", err))
	}
	if e.deps.Notifier != nil {
		e.deps.Notifier.NotifyBuildStart(req.Project.Name, req.Command)
	}
	log.Info(fmt.Sprintf("Running %s", req.Command), logger.WithField("workspace", req.Workspace))

	group, gctx := NewSafeGroup(ctx, log)
	group.Go(func() error {
		return e.pipeline(gctx, req, log, result)
	})
	runErr := group.Wait()

	result.Duration = pcontext.GetDuration(ctx)
	e.finish(ctx, req, log, sm, result, runErr)
	return result, runErr
}

func (e *Engine) pipeline(ctx context.Context, req Request, log logger.Logger, result *Result) error {
	if req.Command.Builds() {
		builder := e.Builder(req, log)
		err := builder.Build(ctx)
		result.Processes = builder.ProcessCount()
		if err != nil {
			return err
		}
	}

	if req.Command.Publishes() {
		publisher := publish.NewPublisher(e.deps.Releases, log)
		res, err := publisher.Publish(ctx, publish.Request{
			Project:       req.Project,
			Workspace:     req.Workspace,
			Configuration: req.Configuration,
		})
		result.Publish = res
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) finish(ctx context.Context, req Request, log logger.Logger, sm *state.StateManager, result *Result, runErr error) {
	var version, archive string
	if result.Publish != nil {
		version = result.Publish.Version
		archive = result.Publish.Archive
	}

	record, err := sm.Finish(req.Project.Name, runErr, version, archive)
	if err != nil {
		log.Warn("Could not write state file", logger.WithField("error", err))
	}
	result.Record = record

	if n := e.deps.Notifier; n != nil {
		switch {
		case runErr != nil && errors.Is(ctx.Err(), context.Canceled):
			n.NotifyInterrupted(req.Project.Name)
		case runErr != nil:
			n.NotifyBuildFailure(req.Project.Name, runErr)
		case version != "":
			n.NotifyPublished(req.Project.Name, version)
		default:
			n.NotifyBuildSuccess(req.Project.Name, result.Duration)
		}
	}

	if m := e.deps.Metrics; m != nil && m.Enabled() {
		err := m.Push(metrics.Run{
			Project:   req.Project.Name,
			Command:   req.Command,
			Duration:  result.Duration,
			Succeeded: runErr == nil,
			Processes: result.Processes,
		})
		if err != nil {
			log.Warn("Could not push metrics", logger.WithField("error", err))
		}
	}
}
