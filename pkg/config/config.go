// Package config handles the project registry and tool settings
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"gopkg.in/yaml.v3"
)

// Registry maps project names to their configuration
type Registry struct {
	projects map[string]types.ProjectConfig
	names    []string // file order
}

// Lookup selects exactly one project by name
func (r *Registry) Lookup(name string) (types.Project, error) {
	cfg, ok := r.projects[name]
	if !ok {
		return types.Project{}, fmt.Errorf("%w: %q", types.ErrProjectNotFound, name)
	}
	return types.Project{Name: name, Config: cfg}, nil
}

// Names returns the project names in file order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of projects
func (r *Registry) Len() int {
	return len(r.names)
}

// rawProject mirrors types.ProjectConfig with pointers so absent fields can
// be told apart from zero values.
type rawProject struct {
	UE             *bool    `json:"UE" yaml:"UE"`
	UEPlugin       *bool    `json:"UEPlugin" yaml:"UEPlugin"`
	TargetPlatform []string `json:"TargetPlatform" yaml:"TargetPlatform"`
	PublishContent *string  `json:"PublishContent" yaml:"PublishContent"`
	GitHubRepo     *string  `json:"GitHubRepo" yaml:"GitHubRepo"`
}

// Manager handles registry operations
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadRegistry loads and validates the registry file. JSON is expected; YAML
// is accepted when the content is not valid JSON.
func (m *Manager) LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.KindConfig, "read registry", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, types.NewError(types.KindConfig, "read registry", fmt.Errorf("registry %s is empty", path))
	}

	var reg *Registry
	if json.Valid(data) {
		reg, err = parseJSON(data)
	} else {
		reg, err = parseYAML(data)
	}
	if err != nil {
		return nil, types.NewError(types.KindConfig, "parse registry "+path, err)
	}
	return reg, nil
}

// ValidateProject checks a single entry. Engine projects need target
// platforms; plugin projects must also be engine projects.
func (m *Manager) ValidateProject(p types.Project) error {
	cfg := p.Config
	if cfg.UEPlugin && !cfg.UE {
		return &types.FieldError{Project: p.Name, Field: "UEPlugin", Reason: "requires UE to be true"}
	}
	if cfg.UE {
		if len(cfg.TargetPlatform) == 0 {
			return &types.FieldError{Project: p.Name, Field: "TargetPlatform", Reason: "must list at least one platform for engine projects"}
		}
		for i, platform := range cfg.TargetPlatform {
			if strings.TrimSpace(platform) == "" {
				return &types.FieldError{Project: p.Name, Field: "TargetPlatform", Reason: fmt.Sprintf("entry %d is empty", i)}
			}
		}
	}
	if cfg.GitHubRepo != "" {
		owner, _, _ := strings.Cut(cfg.GitHubRepo, "/")
		if owner == "" {
			return &types.FieldError{Project: p.Name, Field: "GitHubRepo", Reason: "must be in owner/name form"}
		}
	}
	return nil
}

// ValidatePublish checks the fields a publish needs
func (m *Manager) ValidatePublish(p types.Project) error {
	if strings.TrimSpace(p.Config.PublishContent) == "" {
		return &types.FieldError{Project: p.Name, Field: "PublishContent", Reason: "is required to publish"}
	}
	if strings.TrimSpace(p.Config.GitHubRepo) == "" {
		return &types.FieldError{Project: p.Name, Field: "GitHubRepo", Reason: "is required to publish"}
	}
	return nil
}

// Private methods

func parseJSON(data []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("registry must be a JSON object keyed by project name")
	}

	reg := &Registry{projects: make(map[string]types.ProjectConfig)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
		var rp rawProject
		pd := json.NewDecoder(bytes.NewReader(raw))
		pd.DisallowUnknownFields()
		if err := pd.Decode(&rp); err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
		if err := reg.add(name, rp); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return reg, nil
}

func parseYAML(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("registry must be a mapping keyed by project name")
	}

	root := doc.Content[0]
	reg := &Registry{projects: make(map[string]types.ProjectConfig)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		value := root.Content[i+1]

		// Round-trip through a strict decoder to reject unknown fields.
		encoded, err := yaml.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
		var rp rawProject
		dec := yaml.NewDecoder(bytes.NewReader(encoded))
		dec.KnownFields(true)
		if err := dec.Decode(&rp); err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
		if err := reg.add(name, rp); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) add(name string, rp rawProject) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("project name must not be empty")
	}
	if _, dup := r.projects[name]; dup {
		return fmt.Errorf("project %q is defined more than once", name)
	}
	if rp.UE == nil {
		return &types.FieldError{Project: name, Field: "UE", Reason: "is required"}
	}

	cfg := types.ProjectConfig{
		UE:             *rp.UE,
		TargetPlatform: rp.TargetPlatform,
	}
	if rp.UEPlugin != nil {
		cfg.UEPlugin = *rp.UEPlugin
	}
	if rp.PublishContent != nil {
		cfg.PublishContent = *rp.PublishContent
	}
	if rp.GitHubRepo != nil {
		cfg.GitHubRepo = *rp.GitHubRepo
	}

	if err := NewManager().ValidateProject(types.Project{Name: name, Config: cfg}); err != nil {
		return err
	}

	r.projects[name] = cfg
	r.names = append(r.names, name)
	return nil
}

// SortedNames returns project names alphabetically
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}
