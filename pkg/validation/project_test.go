package validation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/validation"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProjectValidator_Validate(t *testing.T) {
	plugin := types.Project{Name: "MyPlugin", Config: types.ProjectConfig{
		UE: true, UEPlugin: true, TargetPlatform: []string{"Win64"},
		PublishContent: "Packaged", GitHubRepo: "studio/MyPlugin",
	}}
	game := types.Project{Name: "ShooterGame", Config: types.ProjectConfig{
		UE: true, TargetPlatform: []string{"Win64"},
	}}
	tool := types.Project{Name: "Tool", Config: types.ProjectConfig{
		PublishContent: "dist", GitHubRepo: "studio/Tool",
	}}

	tests := []struct {
		name        string
		project     types.Project
		files       []string
		noEngine    bool
		expectValid bool
		expectField string
		expectLevel validation.ValidationLevel
	}{
		{
			name:        "packaged plugin",
			project:     plugin,
			files:       []string{"MyPlugin.uplugin", "Packaged/MyPlugin.uplugin"},
			expectValid: true,
			expectField: "PublishContent",
			expectLevel: validation.ValidationLevelInfo,
		},
		{
			name:        "plugin source descriptor missing",
			project:     plugin,
			files:       []string{"Packaged/MyPlugin.uplugin"},
			expectValid: false,
			expectField: "descriptor",
			expectLevel: validation.ValidationLevelError,
		},
		{
			name:        "packaged descriptor missing",
			project:     plugin,
			files:       []string{"MyPlugin.uplugin", "Packaged/Binaries/Win64/MyPlugin.dll"},
			expectValid: true,
			expectField: "descriptor",
			expectLevel: validation.ValidationLevelWarning,
		},
		{
			name:        "engine missing",
			project:     game,
			files:       []string{"ShooterGame.uproject"},
			noEngine:    true,
			expectValid: false,
			expectField: "engine",
			expectLevel: validation.ValidationLevelError,
		},
		{
			name:        "project cannot publish",
			project:     game,
			files:       []string{"ShooterGame.uproject"},
			expectValid: true,
			expectField: "publish",
			expectLevel: validation.ValidationLevelWarning,
		},
		{
			name:        "non engine project not packaged yet",
			project:     tool,
			expectValid: true,
			expectField: "PublishContent",
			expectLevel: validation.ValidationLevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace := t.TempDir()
			engineRoot := t.TempDir()
			if tt.noEngine {
				engineRoot = filepath.Join(engineRoot, "missing")
			}
			for _, f := range tt.files {
				touch(t, filepath.Join(workspace, filepath.FromSlash(f)))
			}

			result := validation.NewProjectValidator(workspace, engineRoot).Validate(tt.project)
			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v, got %v (%v)", tt.expectValid, result.Valid, result.Errors)
			}

			found := false
			for _, e := range result.Errors {
				if e.Field == tt.expectField && e.Level == tt.expectLevel {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s finding on %s, got %v", tt.expectLevel, tt.expectField, result.Errors)
			}
		})
	}
}

func TestProjectValidator_MissingWorkspace(t *testing.T) {
	workspace := filepath.Join(t.TempDir(), "gone")
	result := validation.NewProjectValidator(workspace, t.TempDir()).Validate(types.Project{Name: "Tool"})

	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "workspace" {
		t.Errorf("expected a single workspace error, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0].Error(), "[error] Tool.workspace:") {
		t.Errorf("unexpected message %q", result.Errors[0].Error())
	}
	if result.Count(validation.ValidationLevelError) != 1 {
		t.Errorf("expected one error, got %d", result.Count(validation.ValidationLevelError))
	}
}
