package command_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/command"
)

func TestExpand_TargetPlatforms(t *testing.T) {
	got := command.Expand("-TargetPlatforms=%TARGET_PLATFORM%", command.Values{
		Platforms: []string{"Win64", "Linux"},
	})
	assert.Equal(t, "-TargetPlatforms=Win64+Linux", got)
}

func TestExpand_PlatformsKeepOrderAndDuplicates(t *testing.T) {
	got := command.Expand("%TARGET_PLATFORM%", command.Values{
		Platforms: []string{"Linux", "Win64", "Linux"},
	})
	assert.Equal(t, "Linux+Win64+Linux", got)
}

func TestExpand_Toolchain(t *testing.T) {
	tests := []struct {
		name    string
		values  command.Values
		want    string
	}{
		{
			name:   "explicit version",
			values: command.Values{ToolchainPrefix: "VS", ToolchainVersion: "2022"},
			want:   "-VS2022 -2022",
		},
		{
			name:   "default version",
			values: command.Values{ToolchainPrefix: "VS"},
			want:   "-VS2019 -2019",
		},
		{
			name:   "no prefix",
			values: command.Values{ToolchainVersion: "17"},
			want:   "-17 -17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, command.Expand("-%TOOLCHAIN% -%TOOLCHAIN_VERSION%", tt.values))
		})
	}
}

func TestExpand_DefaultPluginTemplate(t *testing.T) {
	got := command.Expand(command.DefaultPluginTemplate, command.Values{
		ProjectName:     "MyPlugin",
		Workspace:       "/ws",
		Platforms:       []string{"Win64"},
		ToolchainPrefix: "VS",
	})

	want := `BuildPlugin -Plugin="/ws/MyPlugin.uplugin" -Package="/ws/Packaged" -Rocket -VS2019 -TargetPlatforms=Win64`
	assert.Equal(t, want, got)
}

func TestExpand_ProjectFilesTemplateUsesEngineRoot(t *testing.T) {
	got := command.Expand(command.DefaultProjectFilesTemplate, command.Values{
		EnginePath:         `C:\UnrealEngine\UE_4.27`,
		BuildTool:          `Engine\Binaries\DotNET\UnrealBuildTool.exe`,
		ProjectName:        "Shooter",
		Workspace:          `C:\ws`,
		Platforms:          []string{"Win64"},
		BuildConfiguration: "Development",
	})

	assert.Contains(t, got, `"C:\UnrealEngine\UE_4.27\Engine\Binaries\DotNET\UnrealBuildTool.exe" Shooter Development Win64`)
	assert.True(t, strings.HasSuffix(got, "-2019"))
	assert.NotContains(t, got, "%")
}

func TestEngineRoot(t *testing.T) {
	assert.Equal(t, "", command.EngineRoot(""))
	assert.Equal(t, `C:\UE\`, command.EngineRoot(`C:\UE`))
	assert.Equal(t, `C:\UE\`, command.EngineRoot(`C:\UE\\`))
	assert.Equal(t, "/", command.EngineRoot("/"))
	assert.True(t, strings.HasPrefix(command.EngineRoot("/opt/UE/"), "/opt/UE"))
}

var tokens = []string{
	command.TokenEnginePath,
	command.TokenBuildTool,
	command.TokenProjectName,
	command.TokenWorkspace,
	command.TokenTargetPlatform,
	command.TokenToolchain,
	command.TokenToolchainVersion,
	command.TokenBuildConfiguration,
}

// Every token occurrence is replaced and literal text between tokens is left untouched,
// even when substituted values themselves look like tokens.
func TestExpand_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		literal := rapid.StringMatching(`[A-Za-z0-9 =/"\-_.]{0,12}`)
		value := rapid.SampledFrom([]string{"", "Win64", "%WORKSPACE%", "a%b", "100%", "Linux Arm"})

		v := command.Values{
			BuildTool:          value.Draw(t, "buildTool"),
			ProjectName:        value.Draw(t, "project"),
			Workspace:          value.Draw(t, "workspace"),
			Platforms:          rapid.SliceOfN(value, 0, 4).Draw(t, "platforms"),
			ToolchainPrefix:    value.Draw(t, "prefix"),
			ToolchainVersion:   rapid.SampledFrom([]string{"2019", "2022", "17"}).Draw(t, "version"),
			BuildConfiguration: value.Draw(t, "configuration"),
		}
		expected := map[string]string{
			command.TokenEnginePath:         "",
			command.TokenBuildTool:          v.BuildTool,
			command.TokenProjectName:        v.ProjectName,
			command.TokenWorkspace:          v.Workspace,
			command.TokenTargetPlatform:     strings.Join(v.Platforms, "+"),
			command.TokenToolchain:          v.ToolchainPrefix + v.ToolchainVersion,
			command.TokenToolchainVersion:   v.ToolchainVersion,
			command.TokenBuildConfiguration: v.BuildConfiguration,
		}

		var template, want strings.Builder
		parts := rapid.IntRange(0, 8).Draw(t, "parts")
		for i := 0; i < parts; i++ {
			lit := literal.Draw(t, "literal")
			tok := rapid.SampledFrom(tokens).Draw(t, "token")
			template.WriteString(lit + tok)
			want.WriteString(lit + expected[tok])
		}
		tail := literal.Draw(t, "tail")
		template.WriteString(tail)
		want.WriteString(tail)

		got := command.Expand(template.String(), v)
		if got != want.String() {
			t.Fatalf("Expand(%q) = %q, want %q", template.String(), got, want.String())
		}
	})
}
