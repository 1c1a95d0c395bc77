package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	internalbuilders "github.com/jenkinsbuilder/jenkinsbuilder/internal/builders"
	"github.com/jenkinsbuilder/jenkinsbuilder/internal/engine"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/builders"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/config"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/state"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/validation"
)

func (c *CLI) newListCmd() *cobra.Command {
	var sorted bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the projects in the registry",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(sorted)
		},
	}
	cmd.Flags().BoolVar(&sorted, "sort", false, "sort projects by name instead of file order")
	return cmd
}

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [<project> <workspace>]",
		Short: "Validate the registry and settings",
		Long: `Load and validate the registry. Given a project and workspace, also check
that the workspace holds what Build and Publish need.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return exactArgs(2, "<project> <workspace>")(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return c.runValidateWorkspace(args[0], args[1])
			}
			return c.runValidate()
		},
	}
}

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <project> <workspace>",
		Short: "Print the tool invocations a build would run",
		Long:  `Expand the command templates for a project without waiting or spawning anything.`,
		Args:  exactArgs(2, "<project> <workspace>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(args[0], args[1])
		},
	}
}

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <project> <workspace>",
		Short: "Show the outcome of the last run",
		Args:  exactArgs(2, "<project> <workspace>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(args[0], args[1])
		},
	}
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of jenkinsbuilder",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.output, "jenkinsbuilder v%s\n", c.config.Version)
		},
	}
}

// Implementation functions

func (c *CLI) runList(sorted bool) error {
	registry, err := config.NewManager().LoadRegistry(c.settings.RegistryPath)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tPLATFORMS\tPUBLISH\tREPOSITORY")
	fmt.Fprintln(w, "----\t----\t---------\t-------\t----------")

	names := registry.Names()
	if sorted {
		names = registry.SortedNames()
	}
	for _, name := range names {
		project, _ := registry.Lookup(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name,
			projectKind(project),
			orDash(strings.Join(project.Config.TargetPlatform, ",")),
			orDash(project.Config.PublishContent),
			orDash(project.Config.GitHubRepo),
		)
	}
	return w.Flush()
}

func (c *CLI) runValidate() error {
	manager := config.NewManager()
	registry, err := manager.LoadRegistry(c.settings.RegistryPath)
	if err != nil {
		return err
	}

	var warnings []string
	for _, name := range registry.Names() {
		project, _ := registry.Lookup(name)
		if err := manager.ValidatePublish(project); err != nil {
			warnings = append(warnings, err.Error()+" (Build only)")
		}
	}

	if len(warnings) > 0 {
		c.logger.Warn("Some projects cannot be published:")
		for _, warn := range warnings {
			fmt.Fprintf(c.output, "  ⚠ %s\n", warn)
		}
	}
	c.logger.Success(fmt.Sprintf("Registry is valid (%d projects)", registry.Len()))
	return nil
}

func (c *CLI) runValidateWorkspace(name, workspace string) error {
	project, err := c.lookupProject(name)
	if err != nil {
		return err
	}

	result := validation.NewProjectValidator(workspace, c.settings.Engine.Root).Validate(project)
	for _, finding := range result.Errors {
		mark := color.New(color.Faint).Sprint("·")
		switch finding.Level {
		case validation.ValidationLevelError:
			mark = color.RedString("✗")
		case validation.ValidationLevelWarning:
			mark = color.YellowString("⚠")
		}
		fmt.Fprintf(c.output, "  %s %s: %s\n", mark, finding.Field, finding.Message)
	}

	if !result.Valid {
		return types.NewError(types.KindConfig, "validate "+name,
			fmt.Errorf("workspace has %d error(s)", result.Count(validation.ValidationLevelError)))
	}
	c.logger.Success(fmt.Sprintf("%s is ready in %s", name, workspace))
	return nil
}

func (c *CLI) runPlan(name, workspace string) error {
	project, err := c.lookupProject(name)
	if err != nil {
		return err
	}

	eng := engine.New(c.settings.Engine, c.settings.Templates, c.logger, engine.Dependencies{
		BuilderFactory: internalbuilders.NewBuilderFactory(),
	})
	steps := eng.Plan(engine.Request{Project: project, Workspace: workspace})
	if len(steps) == 0 {
		c.logger.Info(fmt.Sprintf("%s is not an engine project, nothing to build", name))
		return nil
	}

	for i, step := range steps {
		header := fmt.Sprintf("%d. %s", i+1, step.Description)
		if step.WaitBefore {
			header += color.New(color.Faint).Sprint(" (after engine tools are idle)")
		}
		fmt.Fprintln(c.output, color.New(color.Bold).Sprint(header))
		fmt.Fprintf(c.output, "   %s\n", step)
	}
	fmt.Fprintf(c.output, "Log file: %s\n", builders.LogPath(workspace, name))
	return nil
}

func (c *CLI) runStatus(name, workspace string) error {
	record, err := state.NewStateManager(workspace, c.logger).Read(name)
	if err != nil {
		return types.NewError(types.KindConfig, "read state", err)
	}
	if record == nil {
		c.logger.Info(fmt.Sprintf("No runs recorded for %s", name))
		return nil
	}

	status := string(record.Status)
	switch record.Status {
	case types.RunStatusSucceeded:
		status = color.GreenString(status)
	case types.RunStatusFailed:
		status = color.RedString(status)
	case types.RunStatusRunning:
		status = color.YellowString(status)
	}

	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Project:\t%s\n", record.Project)
	fmt.Fprintf(w, "Command:\t%s\n", record.Command)
	fmt.Fprintf(w, "Status:\t%s\n", status)
	fmt.Fprintf(w, "Started:\t%s\n", record.StartedAt.Format(time.DateTime))
	if record.Duration > 0 {
		fmt.Fprintf(w, "Duration:\t%s\n", record.Duration.Round(time.Second))
	}
	if record.Version != "" {
		fmt.Fprintf(w, "Version:\t%s\n", record.Version)
	}
	if record.LastError != "" {
		fmt.Fprintf(w, "Error:\t%s\n", record.LastError)
	}
	fmt.Fprintf(w, "Runs:\t%d (%d failed)\n", record.RunCount, record.Failures)
	return w.Flush()
}

func projectKind(p types.Project) string {
	switch {
	case p.IsPlugin():
		return "plugin"
	case p.IsEngineProject():
		return "project"
	default:
		return "other"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
