// Package types provides core types and configurations for jenkinsbuilder
package types

import (
	"fmt"
	"strings"
	"time"
)

// Command represents a top-level action requested on the command line
type Command string

const (
	CommandBuild        Command = "Build"
	CommandBuildPublish Command = "BuildPublish"
	CommandPublish      Command = "Publish"
)

// ParseCommand validates a command name. Matching is exact, as the build
// server jobs pass the names verbatim.
func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case CommandBuild, CommandBuildPublish, CommandPublish:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q (expected Build, BuildPublish or Publish)", ErrInvalidCommand, s)
}

// Builds reports whether the command runs the build orchestrator
func (c Command) Builds() bool {
	return c == CommandBuild || c == CommandBuildPublish
}

// Publishes reports whether the command uploads a release
func (c Command) Publishes() bool {
	return c == CommandBuildPublish || c == CommandPublish
}

// RunStatus represents the state of a single invocation
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// ProjectConfig is one entry of the project registry
type ProjectConfig struct {
	UE             bool     `json:"UE" yaml:"UE"`
	UEPlugin       bool     `json:"UEPlugin,omitempty" yaml:"UEPlugin,omitempty"`
	TargetPlatform []string `json:"TargetPlatform,omitempty" yaml:"TargetPlatform,omitempty"`
	PublishContent string   `json:"PublishContent,omitempty" yaml:"PublishContent,omitempty"`
	GitHubRepo     string   `json:"GitHubRepo,omitempty" yaml:"GitHubRepo,omitempty"`
}

// Project is a registry entry together with its key
type Project struct {
	Name   string
	Config ProjectConfig
}

// IsEngineProject reports whether the project is built with the engine toolchain
func (p Project) IsEngineProject() bool {
	return p.Config.UE
}

// IsPlugin reports whether the project is packaged as an engine plugin
func (p Project) IsPlugin() bool {
	return p.Config.UEPlugin
}

// Repository splits GitHubRepo into owner and repository name. A value
// without a slash names only the owner; the project name is used as the
// repository in that case.
func (p Project) Repository() (owner, repo string) {
	owner, repo, found := strings.Cut(p.Config.GitHubRepo, "/")
	if !found || repo == "" {
		repo = p.Name
	}
	return owner, repo
}

// Toolchain identifies the compiler toolchain passed to project file generation
type Toolchain struct {
	Prefix  string
	Version string
}

// Prefixed returns the toolchain in its prefixed form, e.g. VS2019
func (t Toolchain) Prefixed() string {
	return t.Prefix + t.Version
}

// EngineSettings locates the engine installation and its tools
type EngineSettings struct {
	Root               string
	BuildTool          string // relative to Root
	AutomationTool     string // relative to Root
	BuildConfiguration string
	Toolchain          Toolchain
}

// Templates holds the command line templates passed to the engine tools
type Templates struct {
	Plugin       string
	ProjectFiles string
	CookRun      string
}

// Step is one external tool invocation of a build
type Step struct {
	Description string
	Tool        string
	Args        string
	// WaitBefore makes the orchestrator wait for the engine tools to go idle
	// before running this step.
	WaitBefore bool
}

// String renders the step as it would be typed in a console
func (s Step) String() string {
	if s.Args == "" {
		return s.Tool
	}
	return fmt.Sprintf("%q %s", s.Tool, s.Args)
}

// RunRecord is the persisted outcome of the latest invocation for a project
type RunRecord struct {
	RunID      string        `json:"runId"`
	Project    string        `json:"project"`
	Command    Command       `json:"command"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Version    string        `json:"version,omitempty"`
	Archive    string        `json:"archive,omitempty"`
	LastError  string        `json:"lastError,omitempty"`
	RunCount   int           `json:"runCount"`
	Failures   int           `json:"failures"`
}
