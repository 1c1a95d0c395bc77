// Package command expands the command line templates handed to the engine tools
package command

import (
	"os"
	"strings"
)

// Placeholder tokens recognised in templates
const (
	TokenEnginePath         = "%ENGINE_PATH%"
	TokenBuildTool          = "%UE_BUILD_TOOL%"
	TokenProjectName        = "%PROJECT_NAME%"
	TokenWorkspace          = "%WORKSPACE%"
	TokenTargetPlatform     = "%TARGET_PLATFORM%"
	TokenToolchain          = "%TOOLCHAIN%"
	TokenToolchainVersion   = "%TOOLCHAIN_VERSION%"
	TokenBuildConfiguration = "%BUILD_CONFIGURATION%"
)

// DefaultToolchainVersion is used when no toolchain version is supplied
const DefaultToolchainVersion = "2019"

// DefaultToolchainPrefix precedes the version in the prefixed toolchain form
const DefaultToolchainPrefix = "VS"

// Default templates. Forward slashes are accepted by the engine tools on
// every host platform.
const (
	DefaultPluginTemplate = `BuildPlugin -Plugin="%WORKSPACE%/%PROJECT_NAME%.uplugin" -Package="%WORKSPACE%/Packaged" -Rocket -%TOOLCHAIN% -TargetPlatforms=%TARGET_PLATFORM%`

	DefaultProjectFilesTemplate = `-projectfiles -project="%WORKSPACE%/%PROJECT_NAME%.uproject" -game -rocket -progress "%ENGINE_PATH%%UE_BUILD_TOOL%" %PROJECT_NAME% %BUILD_CONFIGURATION% %TARGET_PLATFORM% -project="%WORKSPACE%/%PROJECT_NAME%.uproject" -rocket -editorrecompile -progress -noubtmakefiles -NoHotReloadFromIDE -%TOOLCHAIN_VERSION%`

	DefaultCookRunTemplate = `BuildCookRun -project="%WORKSPACE%/%PROJECT_NAME%.uproject" -noP4 -platform=%TARGET_PLATFORM% -clientconfig=%BUILD_CONFIGURATION% -cook -numcookerstospawn=8 -compressed -EncryptIniFiles -ForDistribution -allmaps -build -stage -pak -prereqs -package -archive -archivedirectory="%WORKSPACE%/Saved/Builds"`
)

// Values are the concrete substitutions for one expansion
type Values struct {
	EnginePath         string
	BuildTool          string
	ProjectName        string
	Workspace          string
	Platforms          []string
	ToolchainPrefix    string
	ToolchainVersion   string
	BuildConfiguration string
}

// JoinPlatforms joins target platforms with '+', keeping order and duplicates
func JoinPlatforms(platforms []string) string {
	return strings.Join(platforms, "+")
}

// EngineRoot returns path with exactly one trailing separator so templates
// can concatenate relative tool paths directly after %ENGINE_PATH%.
func EngineRoot(path string) string {
	if path == "" {
		return ""
	}
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	sep := string(os.PathSeparator)
	if strings.Contains(path, `\`) && !strings.Contains(path, "/") {
		sep = `\`
	}
	return trimmed + sep
}

// Replacer builds the substitution table for v
func (v Values) Replacer() *strings.Replacer {
	version := v.ToolchainVersion
	if version == "" {
		version = DefaultToolchainVersion
	}

	// %TOOLCHAIN% and %TOOLCHAIN_VERSION% differ at the closing '%'; neither shadows the other.
	return strings.NewReplacer(
		TokenEnginePath, EngineRoot(v.EnginePath),
		TokenBuildTool, v.BuildTool,
		TokenProjectName, v.ProjectName,
		TokenWorkspace, v.Workspace,
		TokenTargetPlatform, JoinPlatforms(v.Platforms),
		TokenToolchainVersion, version,
		TokenToolchain, v.ToolchainPrefix+version,
		TokenBuildConfiguration, v.BuildConfiguration,
	)
}

// Expand substitutes every placeholder in template in a single pass.
// Substituted text is never rescanned, so values containing '%' are safe.
func Expand(template string, v Values) string {
	return v.Replacer().Replace(template)
}
