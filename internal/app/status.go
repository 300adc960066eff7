package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"sbwt/internal/envinspect"
	"sbwt/internal/ports"
	"sbwt/internal/registry"
	"sbwt/internal/rewrite"
	"sbwt/pkg/logging"
)

// ConfigCheck is the result of parsing the generated config.
type ConfigCheck struct {
	Path      string `json:"path" yaml:"path"`
	Exists    bool   `json:"exists" yaml:"exists"`
	Valid     bool   `json:"valid" yaml:"valid"`
	ProjectID string `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckGeneratedConfig parses path as TOML and reads back its project_id.
func CheckGeneratedConfig(path string) ConfigCheck {
	check := ConfigCheck{Path: path}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			check.Error = err.Error()
		}
		return check
	}
	check.Exists = true

	var doc struct {
		ProjectID string `toml:"project_id"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		check.Error = err.Error()
		return check
	}
	check.Valid = true
	check.ProjectID = doc.ProjectID
	return check
}

// PortStatus pairs a template port with its allocated value.
type PortStatus struct {
	Key       string `json:"key" yaml:"key"`
	Template  int    `json:"template" yaml:"template"`
	Allocated string `json:"allocated,omitempty" yaml:"allocated,omitempty"`
}

// EnvFileStatus is one discovered env file.
type EnvFileStatus struct {
	Path       string                 `json:"path" yaml:"path"`
	BackedUp   bool                   `json:"backedUp" yaml:"backedUp"`
	References []envinspect.Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// Status is everything sbwt knows about one environment.
type Status struct {
	EnvironmentPath string           `json:"environmentPath" yaml:"environmentPath"`
	Repository      string           `json:"repository,omitempty" yaml:"repository,omitempty"`
	Record          *registry.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Ports           []PortStatus     `json:"ports" yaml:"ports"`
	APIURL          string           `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	EnvFiles        []EnvFileStatus  `json:"envFiles" yaml:"envFiles"`
	Config          ConfigCheck      `json:"config" yaml:"config"`
	Warnings        []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Registered reports whether the environment has a registry record.
func (s *Status) Registered() bool {
	return s.Record != nil
}

// Status inspects the environment at path without changing anything.
// A missing template or unreadable env file becomes a warning.
func (m *Manager) Status(ctx context.Context, path string) (*Status, error) {
	path = registry.NormalizePath(path)
	st := &Status{EnvironmentPath: path, Repository: m.repository(ctx, path)}

	rec, ok, err := m.registry.Get(path)
	if err != nil {
		return nil, err
	}
	var portMap ports.PortMap
	if ok {
		st.Record = &rec
		portMap = rec.PortMap
	}

	if data, err := os.ReadFile(m.cfg.TemplatePath); err != nil {
		st.Warnings = append(st.Warnings, "template: "+err.Error())
	} else {
		extracted := ports.Extract(string(data))
		for _, p := range extracted {
			st.Ports = append(st.Ports, PortStatus{
				Key:       p.QualifiedKey(),
				Template:  p.Value,
				Allocated: portMap[strconv.Itoa(p.Value)],
			})
		}
		if ok {
			st.APIURL = APIURL(extracted, portMap)
		}
	}

	files, err := m.finder.FindFiles(m.cfg.EnvPatterns, path)
	if err != nil {
		st.Warnings = append(st.Warnings, "env discovery: "+err.Error())
	}
	for _, f := range files {
		fs := EnvFileStatus{Path: f, BackedUp: rewrite.HasBackup(f)}
		refs, err := envinspect.PortReferences(f)
		if err != nil {
			logging.Debug(managerSubsystem, "Skipping references of %s: %v", f, err)
			st.Warnings = append(st.Warnings, filepath.Base(f)+": "+err.Error())
		}
		fs.References = refs
		st.EnvFiles = append(st.EnvFiles, fs)
	}

	st.Config = CheckGeneratedConfig(m.cfg.OutputPath)
	if ok && st.Config.Valid && st.Config.ProjectID != "" && st.Config.ProjectID != rec.Identifier {
		st.Warnings = append(st.Warnings, "generated project_id "+st.Config.ProjectID+" does not match "+rec.Identifier)
	}
	return st, nil
}
