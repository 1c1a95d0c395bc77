// Package validation checks a workspace against a registry entry before a run
package validation

import (
	"fmt"
	"path/filepath"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/config"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/utils"
)

// ProjectValidator checks that a workspace can be built and published
type ProjectValidator struct {
	workspace  string
	engineRoot string
	config     *config.Manager
}

// NewProjectValidator creates a validator for a workspace and engine root
func NewProjectValidator(workspace, engineRoot string) *ProjectValidator {
	return &ProjectValidator{
		workspace:  workspace,
		engineRoot: engineRoot,
		config:     config.NewManager(),
	}
}

// ValidationError represents a validation finding
type ValidationError struct {
	Project string
	Field   string
	Message string
	Level   ValidationLevel
}

// ValidationLevel represents finding severity
type ValidationLevel string

const (
	ValidationLevelError   ValidationLevel = "error"
	ValidationLevelWarning ValidationLevel = "warning"
	ValidationLevelInfo    ValidationLevel = "info"
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Level, e.Project, e.Field, e.Message)
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// AddError adds a finding. Only error-level findings invalidate the result.
func (r *ValidationResult) AddError(project, field, message string, level ValidationLevel) {
	r.Errors = append(r.Errors, ValidationError{
		Project: project,
		Field:   field,
		Message: message,
		Level:   level,
	})
	if level == ValidationLevelError {
		r.Valid = false
	}
}

// Count returns the number of findings at level
func (r *ValidationResult) Count(level ValidationLevel) int {
	n := 0
	for _, e := range r.Errors {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Validate checks project against the workspace
func (v *ProjectValidator) Validate(project types.Project) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if !utils.DirectoryExists(v.workspace) {
		result.AddError(project.Name, "workspace", fmt.Sprintf("%s does not exist", v.workspace), ValidationLevelError)
		return result
	}

	if err := v.config.ValidateProject(project); err != nil {
		result.AddError(project.Name, "registry", err.Error(), ValidationLevelError)
	}

	v.validateBuild(project, result)
	v.validatePublish(project, result)
	return result
}

func (v *ProjectValidator) validateBuild(project types.Project, result *ValidationResult) {
	name := project.Name
	if !project.IsEngineProject() {
		result.AddError(name, "UE", "not an engine project, Build does nothing", ValidationLevelInfo)
		return
	}

	if !utils.DirectoryExists(v.engineRoot) {
		result.AddError(name, "engine", fmt.Sprintf("engine path %s does not exist", v.engineRoot), ValidationLevelError)
	}

	descriptor := name + ".uproject"
	if project.IsPlugin() {
		descriptor = name + ".uplugin"
	}
	if !utils.FileExists(filepath.Join(v.workspace, descriptor)) {
		result.AddError(name, "descriptor", fmt.Sprintf("%s not found in workspace", descriptor), ValidationLevelError)
	}
}

func (v *ProjectValidator) validatePublish(project types.Project, result *ValidationResult) {
	name := project.Name
	if err := v.config.ValidatePublish(project); err != nil {
		result.AddError(name, "publish", err.Error()+", Publish will fail", ValidationLevelWarning)
		return
	}

	packaged := filepath.Join(v.workspace, project.Config.PublishContent)
	if !utils.DirectoryExists(packaged) {
		result.AddError(name, "PublishContent",
			fmt.Sprintf("%s does not exist yet, run Build first", project.Config.PublishContent), ValidationLevelInfo)
		return
	}

	size, files, err := utils.GetDirectorySize(packaged)
	switch {
	case err != nil:
		result.AddError(name, "PublishContent", err.Error(), ValidationLevelWarning)
	case files == 0:
		result.AddError(name, "PublishContent", "publish directory is empty", ValidationLevelWarning)
	default:
		result.AddError(name, "PublishContent",
			fmt.Sprintf("%d files, %s", files, utils.FormatBytes(size)), ValidationLevelInfo)
	}

	if project.IsPlugin() {
		path := publish.DescriptorPath(v.workspace, project.Config.PublishContent, name)
		if !utils.FileExists(path) {
			result.AddError(name, "descriptor",
				fmt.Sprintf("packaged %s.uplugin missing, version stamping will fail", name), ValidationLevelWarning)
		}
	}
}
