// Package builders turns a registry project into engine tool invocations
package builders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/command"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/utils"
)

// StateDir is the per-workspace directory holding logs and run state
const StateDir = ".jenkinsbuilder"

// Builder builds one project
type Builder interface {
	Validate() error
	Plan() []types.Step
	Build(ctx context.Context) error
	ProcessCount() int
}

// IdleWaiter blocks until the engine tools are idle
type IdleWaiter interface {
	WaitForIdle(ctx context.Context) error
}

// Options carries everything a builder needs
type Options struct {
	Project   types.Project
	Workspace string
	Engine    types.EngineSettings
	Templates types.Templates
	Runner    process.Runner
	Waiter    IdleWaiter
	Logger    logger.Logger
}

// BaseBuilder provides common functionality for all builders
type BaseBuilder struct {
	Options

	processes int
	mu        sync.RWMutex
}

// NewBaseBuilder creates a new base builder
func NewBaseBuilder(opts Options) *BaseBuilder {
	if opts.Logger != nil {
		opts.Logger = opts.Logger.WithProject(opts.Project.Name)
	}
	return &BaseBuilder{Options: opts}
}

// Validate checks that the engine installation exists
func (b *BaseBuilder) Validate() error {
	root := b.Engine.Root
	if root == "" {
		return types.NewError(types.KindConfig, "validate engine", fmt.Errorf("%w: no engine path configured", types.ErrEngineNotFound))
	}
	if !utils.DirectoryExists(root) {
		return types.NewError(types.KindConfig, "validate engine", fmt.Errorf("%w: %s", types.ErrEngineNotFound, root))
	}
	return nil
}

// Values returns the template substitutions for this project
func (b *BaseBuilder) Values() command.Values {
	return command.Values{
		EnginePath:         b.Engine.Root,
		BuildTool:          b.Engine.BuildTool,
		ProjectName:        b.Project.Name,
		Workspace:          b.Workspace,
		Platforms:          b.Project.Config.TargetPlatform,
		ToolchainPrefix:    b.Engine.Toolchain.Prefix,
		ToolchainVersion:   b.Engine.Toolchain.Version,
		BuildConfiguration: b.Engine.BuildConfiguration,
	}
}

// BuildToolPath returns the absolute path of the build tool
func (b *BaseBuilder) BuildToolPath() string {
	return command.EngineRoot(b.Engine.Root) + b.Engine.BuildTool
}

// AutomationToolPath returns the absolute path of the automation tool
func (b *BaseBuilder) AutomationToolPath() string {
	return command.EngineRoot(b.Engine.Root) + b.Engine.AutomationTool
}

// ProcessCount returns the number of child processes started
func (b *BaseBuilder) ProcessCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.processes
}

// execute waits for the engine tools, validates the engine root and then
// runs steps in order. Nothing is spawned when validation fails.
func (b *BaseBuilder) execute(ctx context.Context, steps []types.Step) error {
	startTime := time.Now()

	if err := b.waitForIdle(ctx); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}

	logFile, err := PrepareLogFile(b.Workspace, b.Project.Name)
	if err != nil && b.Logger != nil {
		b.Logger.Warn(fmt.Sprintf("Failed to create log file: %v", err))
	}
	defer func() {
		if logFile != nil {
			logFile.Close()
		}
	}()

	runner := b.Runner
	if exec, ok := runner.(*process.ExecRunner); ok && logFile != nil {
		runner = exec.WithOutput(logFile)
	}

	logToFile(logFile, fmt.Sprintf("\n=== Build Started at %s ===\n", startTime.Format("2006-01-02 15:04:05")))

	for i, step := range steps {
		if step.WaitBefore {
			if err := b.waitForIdle(ctx); err != nil {
				return err
			}
		}

		if b.Logger != nil {
			b.Logger.Info(step.Description,
				logger.WithField("step", fmt.Sprintf("%d/%d", i+1, len(steps))),
				logger.WithField("tool", filepath.Base(step.Tool)))
		}
		logToFile(logFile, fmt.Sprintf("Executing: %s\n", step))

		b.mu.Lock()
		b.processes++
		b.mu.Unlock()

		if err := runner.Run(ctx, step.Tool, step.Args); err != nil {
			logToFile(logFile, fmt.Sprintf("\n=== Build FAILED after %s ===\nError: %v\n", time.Since(startTime), err))
			return err
		}
	}

	duration := time.Since(startTime)
	logToFile(logFile, fmt.Sprintf("\n=== Build SUCCEEDED after %s ===\n", duration))
	if b.Logger != nil {
		b.Logger.Success(fmt.Sprintf("Build completed in %s", duration.Round(time.Second)))
	}
	return nil
}

func (b *BaseBuilder) waitForIdle(ctx context.Context) error {
	if b.Waiter == nil {
		return nil
	}
	return b.Waiter.WaitForIdle(ctx)
}

// LogPath returns the child output log for a project
func LogPath(workspace, project string) string {
	return filepath.Join(workspace, StateDir, "logs", project+".log")
}

// PrepareLogFile creates or opens the log file for a project in append mode
func PrepareLogFile(workspace, project string) (*os.File, error) {
	logPath := LogPath(workspace, project)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logFile, nil
}

// logToFile writes a message to the log file if available
func logToFile(logFile *os.File, message string) {
	if logFile != nil {
		logFile.WriteString(message)
	}
}
