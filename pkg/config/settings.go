package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/command"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// Settings keys
const (
	KeyEnginePath           = "engine.path"
	KeyEngineBuildTool      = "engine.buildTool"
	KeyEngineAutomationTool = "engine.automationTool"
	KeyEngineConfiguration  = "engine.buildConfiguration"
	KeyToolchainVersion     = "toolchain.version"
	KeyToolchainPrefix      = "toolchain.prefix"
	KeyCommandPlugin        = "commands.plugin"
	KeyCommandProjectFiles  = "commands.projectFiles"
	KeyCommandCookRun       = "commands.cookRun"
	KeyWaitInterval         = "wait.interval"
	KeyWaitStallTicks       = "wait.stallTicks"
	KeyWaitProcesses        = "wait.processes"
	KeyRegistry             = "registry"
	KeyTokenFile            = "tokenFile"
	KeyPublishConfiguration = "publish.configuration"
	KeyGitHubBaseURL        = "github.baseURL"
	KeyGitHubUploadURL      = "github.uploadURL"
	KeyNotifications        = "notifications.enabled"
	KeyPushGateway          = "metrics.pushgateway"
	KeyLogFile              = "logFile"
	KeyVerbosity            = "verbosity"
)

// Registry and token file names looked up next to the executable
const (
	DefaultRegistryFile = "JenkinsBuilder.json"
	DefaultTokenFile    = "GitHubToken.txt"
	SettingsName        = "jenkinsbuilder"
	EnvPrefix           = "JENKINSBUILDER"
)

// WaitSettings configures the prerequisite-process poll
type WaitSettings struct {
	Interval   time.Duration
	StallTicks int
	Processes  []string
}

// GitHubSettings points the release client at a GitHub instance
type GitHubSettings struct {
	BaseURL   string
	UploadURL string
}

// Settings holds everything the run needs besides the registry
type Settings struct {
	Engine               types.EngineSettings
	Templates            types.Templates
	Wait                 WaitSettings
	RegistryPath         string
	TokenFile            string
	PublishConfiguration string
	GitHub               GitHubSettings
	Notifications        bool
	PushGateway          string
	LogFile              string
	Verbosity            string
}

// DefaultEngineSettings returns the engine layout for the host platform
func DefaultEngineSettings(goos string) types.EngineSettings {
	es := types.EngineSettings{
		BuildConfiguration: "Development",
		Toolchain: types.Toolchain{
			Prefix:  command.DefaultToolchainPrefix,
			Version: command.DefaultToolchainVersion,
		},
	}
	switch goos {
	case "windows":
		es.Root = `C:\UnrealEngine\UE_4.27\`
		es.BuildTool = `Engine\Binaries\DotNET\UnrealBuildTool.exe`
		es.AutomationTool = `Engine\Build\BatchFiles\RunUAT.bat`
	case "darwin":
		es.Root = "/Users/Shared/Epic Games/UE_4.27/"
		es.BuildTool = "Engine/Build/BatchFiles/Mac/Build.sh"
		es.AutomationTool = "Engine/Build/BatchFiles/RunUAT.sh"
	default:
		es.Root = "/opt/UnrealEngine/UE_4.27/"
		es.BuildTool = "Engine/Build/BatchFiles/Linux/Build.sh"
		es.AutomationTool = "Engine/Build/BatchFiles/RunUAT.sh"
	}
	return es
}

// SetDefaults registers default values. exeDir anchors the registry and
// token files.
func SetDefaults(v *viper.Viper, exeDir string) {
	engine := DefaultEngineSettings(runtime.GOOS)

	v.SetDefault(KeyEnginePath, engine.Root)
	v.SetDefault(KeyEngineBuildTool, engine.BuildTool)
	v.SetDefault(KeyEngineAutomationTool, engine.AutomationTool)
	v.SetDefault(KeyEngineConfiguration, engine.BuildConfiguration)
	v.SetDefault(KeyToolchainVersion, engine.Toolchain.Version)
	v.SetDefault(KeyToolchainPrefix, engine.Toolchain.Prefix)
	v.SetDefault(KeyCommandPlugin, command.DefaultPluginTemplate)
	v.SetDefault(KeyCommandProjectFiles, command.DefaultProjectFilesTemplate)
	v.SetDefault(KeyCommandCookRun, command.DefaultCookRunTemplate)
	v.SetDefault(KeyWaitInterval, 10*time.Second)
	v.SetDefault(KeyWaitStallTicks, 60)
	v.SetDefault(KeyWaitProcesses, []string{"AutomationTool", "UnrealBuildTool"})
	v.SetDefault(KeyRegistry, filepath.Join(exeDir, DefaultRegistryFile))
	v.SetDefault(KeyTokenFile, filepath.Join(exeDir, DefaultTokenFile))
	v.SetDefault(KeyPublishConfiguration, "Release")
	v.SetDefault(KeyGitHubBaseURL, "")
	v.SetDefault(KeyGitHubUploadURL, "")
	v.SetDefault(KeyNotifications, false)
	v.SetDefault(KeyPushGateway, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyVerbosity, "info")
}

// ReadSettings reads the optional settings file and environment into v.
// An explicitly named file must exist; the default lookup may find nothing.
func ReadSettings(v *viper.Viper, settingsFile, exeDir string) error {
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
	} else {
		v.AddConfigPath(exeDir)
		v.SetConfigName(SettingsName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if settingsFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return types.NewError(types.KindConfig, "read settings", err)
	}
	return nil
}

// FromViper builds validated Settings from v
func FromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Engine: types.EngineSettings{
			Root:               v.GetString(KeyEnginePath),
			BuildTool:          v.GetString(KeyEngineBuildTool),
			AutomationTool:     v.GetString(KeyEngineAutomationTool),
			BuildConfiguration: v.GetString(KeyEngineConfiguration),
			Toolchain: types.Toolchain{
				Prefix:  v.GetString(KeyToolchainPrefix),
				Version: v.GetString(KeyToolchainVersion),
			},
		},
		Templates: types.Templates{
			Plugin:       v.GetString(KeyCommandPlugin),
			ProjectFiles: v.GetString(KeyCommandProjectFiles),
			CookRun:      v.GetString(KeyCommandCookRun),
		},
		Wait: WaitSettings{
			Interval:   v.GetDuration(KeyWaitInterval),
			StallTicks: v.GetInt(KeyWaitStallTicks),
			Processes:  v.GetStringSlice(KeyWaitProcesses),
		},
		RegistryPath:         v.GetString(KeyRegistry),
		TokenFile:            v.GetString(KeyTokenFile),
		PublishConfiguration: v.GetString(KeyPublishConfiguration),
		GitHub: GitHubSettings{
			BaseURL:   v.GetString(KeyGitHubBaseURL),
			UploadURL: v.GetString(KeyGitHubUploadURL),
		},
		Notifications: v.GetBool(KeyNotifications),
		PushGateway:   v.GetString(KeyPushGateway),
		LogFile:       v.GetString(KeyLogFile),
		Verbosity:     v.GetString(KeyVerbosity),
	}

	if s.Engine.Toolchain.Version == "" {
		s.Engine.Toolchain.Version = command.DefaultToolchainVersion
	}
	if s.PublishConfiguration == "" {
		s.PublishConfiguration = "Release"
	}

	if err := s.Validate(); err != nil {
		return nil, types.NewError(types.KindConfig, "settings", err)
	}
	return s, nil
}

// Validate checks settings that would otherwise fail late
func (s *Settings) Validate() error {
	if s.Wait.Interval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyWaitInterval, s.Wait.Interval)
	}
	if s.Wait.StallTicks < 0 {
		return fmt.Errorf("%s must not be negative", KeyWaitStallTicks)
	}
	if s.Engine.BuildTool == "" || s.Engine.AutomationTool == "" {
		return fmt.Errorf("%s and %s must be set", KeyEngineBuildTool, KeyEngineAutomationTool)
	}
	if s.Templates.Plugin == "" || s.Templates.ProjectFiles == "" || s.Templates.CookRun == "" {
		return errors.New("command templates must not be empty")
	}
	if s.RegistryPath == "" {
		return fmt.Errorf("%s must be set", KeyRegistry)
	}
	return nil
}
