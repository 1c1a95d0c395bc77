package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		want     types.Command
		wantErr  bool
		builds   bool
		publishs bool
	}{
		{"Build", types.CommandBuild, false, true, false},
		{"BuildPublish", types.CommandBuildPublish, false, true, true},
		{"Publish", types.CommandPublish, false, false, true},
		{"build", "", true, false, false},
		{"Deploy", "", true, false, false},
		{"", "", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, types.ErrInvalidCommand) {
					t.Errorf("expected ErrInvalidCommand, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if got.Builds() != tt.builds {
				t.Errorf("Builds() = %v, want %v", got.Builds(), tt.builds)
			}
			if got.Publishes() != tt.publishs {
				t.Errorf("Publishes() = %v, want %v", got.Publishes(), tt.publishs)
			}
		})
	}
}

func TestProject_Repository(t *testing.T) {
	tests := []struct {
		repo      string
		wantOwner string
		wantRepo  string
	}{
		{"epicgames/ShooterGame", "epicgames", "ShooterGame"},
		{"epicgames", "epicgames", "Foo"},
		{"epicgames/", "epicgames", "Foo"},
		{"", "", "Foo"},
	}

	for _, tt := range tests {
		p := types.Project{Name: "Foo", Config: types.ProjectConfig{GitHubRepo: tt.repo}}
		owner, repo := p.Repository()
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("Repository(%q) = %s/%s, want %s/%s", tt.repo, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}

func TestToolchain_Prefixed(t *testing.T) {
	tc := types.Toolchain{Prefix: "VS", Version: "2019"}
	if tc.Prefixed() != "VS2019" {
		t.Errorf("expected VS2019, got %s", tc.Prefixed())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, types.ExitOK},
		{"plain", errors.New("boom"), types.ExitFailure},
		{"usage sentinel", fmt.Errorf("parse: %w", types.ErrInvalidCommand), types.ExitUsage},
		{"config sentinel", fmt.Errorf("engine: %w", types.ErrEngineNotFound), types.ExitConfig},
		{"token sentinel", types.ErrTokenMissing, types.ExitConfig},
		{"field error", &types.FieldError{Project: "Foo", Field: "UE", Reason: "is required"}, types.ExitConfig},
		{"process", fmt.Errorf("step 1: %w", &types.ProcessError{Tool: "RunUAT.bat", ExitCode: 25}), types.ExitProcess},
		{"remote", types.NewError(types.KindRemote, "create release", errors.New("401")), types.ExitRemote},
		{"kind wins over sentinel", types.NewError(types.KindUsage, "args", types.ErrProjectNotFound), types.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProcessError_Message(t *testing.T) {
	err := &types.ProcessError{Tool: "RunUAT.bat", ExitCode: 3}
	if err.Error() != "RunUAT.bat exited with code 3" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	startErr := &types.ProcessError{Tool: "missing.exe", ExitCode: -1, Err: errors.New("file not found")}
	if !errors.Is(startErr, startErr.Err) {
		t.Error("expected ProcessError to unwrap to the start error")
	}
}
