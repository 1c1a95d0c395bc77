// Package cli provides the command-line interface for jenkinsbuilder
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jenkinsbuilder/jenkinsbuilder/internal/engine"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/config"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/utils"
)

// CLI holds the command tree and its settings. Nothing is global so tests
// can run several instances side by side.
type CLI struct {
	config       *Config
	rootCmd      *cobra.Command
	viper        *viper.Viper
	settings     *config.Settings
	settingsFile string
	logger       logger.Logger
	output       io.Writer
	errorOut     io.Writer
	customOutput bool

	overrides engine.Dependencies
	lister    process.Lister
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(cfg *Config, opts ...Option) *CLI {
	if cfg == nil {
		cfg = NewConfig()
	}

	c := &CLI{
		config:   cfg,
		viper:    viper.New(),
		output:   os.Stdout,
		errorOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.setupCommands()
	return c
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(cfg *Config, output, errorOut io.Writer, opts ...Option) *CLI {
	c := NewCLI(cfg, opts...)
	c.output = output
	c.errorOut = errorOut
	c.customOutput = true
	c.rootCmd.SetOut(output)
	c.rootCmd.SetErr(errorOut)
	return c
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	return c.ExecuteContext(context.Background(), args)
}

// ExecuteContext runs the CLI with context support. Errors are reported
// before they are returned.
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	err := c.rootCmd.ExecuteContext(ctx)
	if err != nil {
		c.reportError(err)
	}
	return err
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "jenkinsbuilder <project> <Build|BuildPublish|Publish> <workspace>",
		Short: "Build, package and publish engine projects from a CI job",
		Long: `jenkinsbuilder builds a project listed in the registry with the engine's
build and automation tools, and publishes the packaged output as a GitHub
release asset.

  Build         compile and package
  BuildPublish  compile, package, then publish
  Publish       publish an already packaged workspace`,

		Args:              rootArgs,
		PersistentPreRunE: c.initializeConfig,
		RunE:              c.runDispatch,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	c.rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return types.NewError(types.KindUsage, cmd.Name(), err)
	})

	c.setupFlags()

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("jenkinsbuilder v{{.Version}}\n")

	c.rootCmd.AddCommand(c.newListCmd())
	c.rootCmd.AddCommand(c.newValidateCmd())
	c.rootCmd.AddCommand(c.newPlanCmd())
	c.rootCmd.AddCommand(c.newStatusCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()

	flags.StringVar(&c.settingsFile, "settings", "", "settings file (default: jenkinsbuilder.yaml next to the executable)")
	flags.String("engine", "", "engine installation root")
	flags.String("toolchain", "", "compiler toolchain version, e.g. 2019")
	flags.String("configuration", "", "configuration named in the archive (default Release)")
	flags.String("build-configuration", "", "engine build configuration (default Development)")
	flags.String("registry", "", "project registry file (default: JenkinsBuilder.json next to the executable)")
	flags.String("token-file", "", "GitHub access token file (default: GitHubToken.txt next to the executable)")
	flags.String("log-file", "", "also append log output to this file")
	flags.StringP("verbosity", "v", "info", "log level (debug, info, warn, error)")

	config.SetDefaults(c.viper, c.config.ExeDir)
	bindings := map[string]string{
		config.KeyEnginePath:           "engine",
		config.KeyToolchainVersion:     "toolchain",
		config.KeyPublishConfiguration: "configuration",
		config.KeyEngineConfiguration:  "build-configuration",
		config.KeyRegistry:             "registry",
		config.KeyTokenFile:            "token-file",
		config.KeyLogFile:              "log-file",
		config.KeyVerbosity:            "verbosity",
	}
	for key, name := range bindings {
		// Lookup cannot fail for flags defined above
		_ = c.viper.BindPFlag(key, flags.Lookup(name))
	}
}

func (c *CLI) initializeConfig(cmd *cobra.Command, args []string) error {
	if err := config.ReadSettings(c.viper, c.settingsFile, c.config.ExeDir); err != nil {
		return err
	}
	settings, err := config.FromViper(c.viper)
	if err != nil {
		return err
	}
	c.settings = settings

	if c.customOutput {
		c.logger = logger.CreateLoggerWithOutput(settings.Verbosity, c.output)
	} else {
		c.logger = logger.CreateLogger(settings.LogFile, settings.Verbosity)
	}

	if used := c.viper.ConfigFileUsed(); used != "" {
		c.logger.Debug("Using settings file", logger.WithField("file", used))
	}
	return nil
}

func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return types.NewError(types.KindUsage, "jenkinsbuilder",
			fmt.Errorf("expected <project> <command> <workspace>, got %d argument(s)", len(args)))
	}
	return nil
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return types.NewError(types.KindUsage, cmd.Name(),
				fmt.Errorf("expected %s, got %d argument(s)", names, len(args)))
		}
		return nil
	}
}

func (c *CLI) runDispatch(cmd *cobra.Command, args []string) error {
	command, err := types.ParseCommand(args[1])
	if err != nil {
		return types.NewError(types.KindUsage, "parse command", err)
	}

	project, err := c.lookupProject(args[0])
	if err != nil {
		return err
	}
	workspace, err := resolveWorkspace(args[2])
	if err != nil {
		return err
	}

	var token string
	if command.Publishes() && c.overrides.Releases == nil {
		token, err = config.LoadToken(c.settings.TokenFile)
		if err != nil {
			return err
		}
	}

	log := c.logger.WithProject(project.Name)
	manager := process.NewManager(log)
	manager.RegisterShutdownHandler(func() {
		log.Warn("Stopping after the current tool exits")
	})
	ctx := manager.Start(cmd.Context())
	defer manager.Stop()

	deps, err := engine.NewDependencyFactory(c.settings, c.logger).
		CreateWithOverrides(ctx, token, c.overrides, c.lister)
	if err != nil {
		return err
	}

	eng := engine.New(c.settings.Engine, c.settings.Templates, c.logger, deps)
	result, err := eng.Run(ctx, engine.Request{
		Project:       project,
		Command:       command,
		Workspace:     workspace,
		Configuration: c.settings.PublishConfiguration,
	})
	if err != nil {
		return err
	}

	if result.Publish != nil {
		log.Success(fmt.Sprintf("Published %s", result.Publish.Version),
			logger.WithField("asset", result.Publish.AssetURL))
	} else {
		log.Success(fmt.Sprintf("%s done", command))
	}
	return nil
}

func (c *CLI) lookupProject(name string) (types.Project, error) {
	manager := config.NewManager()
	registry, err := manager.LoadRegistry(c.settings.RegistryPath)
	if err != nil {
		return types.Project{}, err
	}
	project, err := registry.Lookup(name)
	if err != nil {
		return types.Project{}, types.NewError(types.KindConfig, "select project", err)
	}
	return project, nil
}

func resolveWorkspace(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", types.NewError(types.KindConfig, "workspace", err)
	}
	if !utils.DirectoryExists(abs) {
		return "", types.NewError(types.KindConfig, "workspace",
			fmt.Errorf("%w: %s", types.ErrWorkspaceMissing, abs))
	}
	return abs, nil
}

func (c *CLI) reportError(err error) {
	log := c.logger
	if log == nil {
		log = logger.CreateLoggerWithOutput("info", c.errorOut)
	}
	log.Error(err.Error(), logger.WithField("kind", types.KindOf(err)))

	if types.KindOf(err) == types.KindUsage {
		fmt.Fprintln(c.errorOut, color.New(color.Faint).Sprint(c.rootCmd.UsageString()))
	}
}
