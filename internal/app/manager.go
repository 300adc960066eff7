package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sbwt/internal/config"
	"sbwt/internal/identifier"
	"sbwt/internal/ports"
	"sbwt/internal/registry"
	"sbwt/internal/rewrite"
	"sbwt/pkg/logging"
)

const managerSubsystem = "Manager"

// GitProvider supplies the names an environment is known by.
type GitProvider interface {
	CurrentBranch(ctx context.Context, path string) (string, error)
	RepositoryDisplayName(ctx context.Context, path string) (string, error)
	LinkedWorktree(ctx context.Context, path string) (bool, string, error)
}

// ServiceController starts and stops the service stack of an environment.
type ServiceController interface {
	Start(ctx context.Context, path string) (string, error)
	Stop(ctx context.Context, path string) (string, error)
}

// FileFinder locates env files and backups under an environment directory.
type FileFinder interface {
	FindFiles(patterns []string, root string) ([]string, error)
	FindBySuffix(root, suffix string) ([]string, error)
}

// Manager runs the allocate/rewrite/register cycle and its teardown.
type Manager struct {
	cfg      config.SbwtConfig
	registry *registry.Registry
	git      GitProvider
	service  ServiceController
	finder   FileFinder
	now      func() time.Time
}

// NewManager returns a Manager. cfg must be the configuration loaded for the
// environment directory the Manager operates on.
func NewManager(cfg config.SbwtConfig, reg *registry.Registry, git GitProvider, service ServiceController, finder FileFinder) *Manager {
	return &Manager{
		cfg:      cfg,
		registry: reg,
		git:      git,
		service:  service,
		finder:   finder,
		now:      time.Now,
	}
}

// StartOptions tune Start.
type StartOptions struct {
	// SkipService writes files and registers without running supabase.
	SkipService bool
}

// StartResult describes what Start did.
type StartResult struct {
	Record        registry.Record       `json:"record" yaml:"record"`
	Repository    string                `json:"repository,omitempty" yaml:"repository,omitempty"`
	Previous      *registry.Record      `json:"previous,omitempty" yaml:"previous,omitempty"`
	Ports         []ports.ExtractedPort `json:"ports" yaml:"ports"`
	ConfigPath    string                `json:"configPath" yaml:"configPath"`
	ModifiedFiles []string              `json:"modifiedFiles" yaml:"modifiedFiles"`
	RestoredFiles []string              `json:"restoredFiles,omitempty" yaml:"restoredFiles,omitempty"`
	APIURL        string                `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	Output        string                `json:"output,omitempty" yaml:"output,omitempty"`
}

// Reallocated reports whether the environment already had a record.
func (r *StartResult) Reallocated() bool {
	return r.Previous != nil
}

// Start allocates a port block for the environment at path, writes the
// generated config, rewrites env files, registers the allocation and starts
// the service. A service failure leaves every written file in place.
func (m *Manager) Start(ctx context.Context, path string, opts StartOptions) (*StartResult, error) {
	path = registry.NormalizePath(path)

	extracted, err := m.readTemplate()
	if err != nil {
		return nil, err
	}
	if err := ports.ValidateSpan(extracted, m.cfg.BlockSize); err != nil {
		return nil, config.NewUserError(
			fmt.Sprintf("ports in %s span %d, more than one block of %d", m.cfg.TemplatePath, ports.Span(extracted)+1, m.cfg.BlockSize),
			fmt.Sprintf("Raise blockSize in .sbwt/config.yaml to at least %d, or move the outlying ports next to the others.", ports.Span(extracted)+1),
			err,
		)
	}
	primary, fallback := m.names(ctx, path)

	envFiles, err := m.finder.FindFiles(m.cfg.EnvPatterns, path)
	if err != nil {
		return nil, fmt.Errorf("failed to discover env files: %w", err)
	}
	logging.Debug(managerSubsystem, "Discovered %d env file(s) under %s", len(envFiles), path)

	res := &StartResult{Ports: extracted, ConfigPath: m.cfg.OutputPath, Repository: m.repository(ctx, path)}
	err = m.registry.WithLock(func() error {
		records, err := m.registry.List()
		if err != nil {
			return err
		}
		var occupied []int
		ids := make(map[string]struct{}, len(records))
		for _, r := range records {
			if r.EnvironmentPath == path {
				prev := r
				res.Previous = &prev
				continue
			}
			occupied = append(occupied, r.PortBase)
			ids[r.Identifier] = struct{}{}
		}

		// Rewrites always start from pristine env content.
		restored, err := m.restoreBackups(path)
		res.RestoredFiles = restored
		if err != nil {
			return err
		}

		startBase := ports.MinPort(extracted)
		base, err := ports.AllocateBase(occupied, startBase, m.cfg.BlockSize)
		if err != nil {
			return err
		}
		if err := ports.ValidateRange(base, m.cfg.BlockSize); err != nil {
			return config.NewUserError(
				fmt.Sprintf("template ports start at %d", startBase),
				fmt.Sprintf("Use port values of at least %d in %s.", ports.MinUnprivilegedPort, m.cfg.TemplatePath),
				err,
			)
		}
		portMap := ports.BuildPortMap(extracted, base)
		if err := ports.ValidatePortMap(portMap); err != nil {
			return err
		}
		id := identifier.Derive(primary, fallback, ids)
		logging.Info(managerSubsystem, "Allocated base %d for %s as %s", base, path, id)

		if err := rewrite.WriteConfig(m.cfg.TemplatePath, m.cfg.OutputPath, portMap, id); err != nil {
			return err
		}
		modified, err := rewrite.UpdateFiles(envFiles, portMap)
		res.ModifiedFiles = modified
		if err != nil {
			return err
		}

		name := fallback
		if primary != "" {
			name = primary
		}
		res.Record = registry.Record{
			EnvironmentPath: path,
			Name:            name,
			PortBase:        base,
			Identifier:      id,
			AllocatedAt:     m.now().UTC(),
			PortMap:         portMap,
		}
		return m.registry.Upsert(res.Record)
	})
	if err != nil {
		return res, err
	}
	res.APIURL = APIURL(extracted, res.Record.PortMap)

	if check := CheckGeneratedConfig(m.cfg.OutputPath); check.Error != "" {
		logging.Warn(managerSubsystem, "Generated config %s does not parse: %s", m.cfg.OutputPath, check.Error)
	}

	if opts.SkipService {
		return res, nil
	}
	out, err := m.service.Start(ctx, path)
	res.Output = out
	if err != nil {
		return res, err
	}
	return res, nil
}

// StopOptions tune Stop.
type StopOptions struct {
	// SkipService leaves the running stack alone.
	SkipService bool
}

// StopResult describes what Stop did.
type StopResult struct {
	EnvironmentPath string           `json:"environmentPath" yaml:"environmentPath"`
	Record          *registry.Record `json:"record,omitempty" yaml:"record,omitempty"`
	RestoredFiles   []string         `json:"restoredFiles" yaml:"restoredFiles"`
	Removed         bool             `json:"removed" yaml:"removed"`
	Output          string           `json:"output,omitempty" yaml:"output,omitempty"`
}

// Stop tears the environment down: stop the service, restore env files from
// backups and remove the registry record. Every step runs even when an
// earlier one fails; the failures are joined into the returned error.
func (m *Manager) Stop(ctx context.Context, path string, opts StopOptions) (*StopResult, error) {
	path = registry.NormalizePath(path)
	res := &StopResult{EnvironmentPath: path}
	var errs []error

	if rec, ok, err := m.registry.Get(path); err != nil {
		logging.Warn(managerSubsystem, "Could not read registry: %v", err)
		errs = append(errs, err)
	} else if ok {
		res.Record = &rec
	}

	if !opts.SkipService {
		out, err := m.service.Stop(ctx, path)
		res.Output = out
		if err != nil {
			logging.Warn(managerSubsystem, "Stopping the service failed, continuing teardown: %v", err)
			errs = append(errs, err)
		}
	}

	restored, err := m.restoreBackups(path)
	res.RestoredFiles = restored
	if err != nil {
		logging.Warn(managerSubsystem, "Restoring env files failed, continuing teardown: %v", err)
		errs = append(errs, err)
	}

	removed, err := m.registry.Remove(path)
	res.Removed = removed
	if err != nil {
		logging.Warn(managerSubsystem, "Unregistering %s failed: %v", path, err)
		errs = append(errs, err)
	}

	return res, errors.Join(errs...)
}

// List returns every registered environment.
func (m *Manager) List() ([]registry.Record, error) {
	return m.registry.List()
}

// Cleanup removes records whose environment directory no longer exists.
func (m *Manager) Cleanup() ([]registry.Record, error) {
	var removed []registry.Record
	err := m.registry.WithLock(func() error {
		var err error
		removed, err = m.registry.ReapStale()
		return err
	})
	return removed, err
}

// Reset empties the registry, including one that no longer parses.
func (m *Manager) Reset() error {
	return m.registry.WithLock(m.registry.Clear)
}

// readTemplate loads the template and extracts its ports.
func (m *Manager) readTemplate() ([]ports.ExtractedPort, error) {
	data, err := os.ReadFile(m.cfg.TemplatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, config.NewUserError(
				fmt.Sprintf("config template not found at %s", m.cfg.TemplatePath),
				"Copy supabase/config.toml to supabase/config.toml.template and commit it, or set templatePath in .sbwt/config.yaml.",
				nil,
			)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", m.cfg.TemplatePath, err)
	}
	extracted := ports.Extract(string(data))
	if len(extracted) == 0 {
		return nil, config.NewUserError(
			fmt.Sprintf("no port fields found in %s", m.cfg.TemplatePath),
			"The template must declare its ports as `port = <number>` fields.",
			nil,
		)
	}
	if !rewrite.HasIdentifierField(string(data)) {
		logging.Warn(managerSubsystem, "Template %s has no top-level %s; containers will share names across worktrees", m.cfg.TemplatePath, rewrite.IdentifierField)
	}
	return extracted, nil
}

// names returns the linked worktree name (may be empty) and the branch name,
// falling back to the directory name when git cannot answer.
func (m *Manager) names(ctx context.Context, path string) (string, string) {
	var primary string
	if linked, name, err := m.git.LinkedWorktree(ctx, path); err != nil {
		logging.Debug(managerSubsystem, "Worktree lookup failed for %s: %v", path, err)
	} else if linked {
		primary = name
	}

	fallback, err := m.git.CurrentBranch(ctx, path)
	if err != nil || fallback == "" {
		logging.Warn(managerSubsystem, "Could not determine branch of %s, using directory name", path)
		fallback = filepath.Base(path)
	}
	return primary, fallback
}

// repository returns the display name of the repository path belongs to, or
// "" when git cannot tell.
func (m *Manager) repository(ctx context.Context, path string) string {
	name, err := m.git.RepositoryDisplayName(ctx, path)
	if err != nil {
		logging.Debug(managerSubsystem, "Repository lookup failed for %s: %v", path, err)
		return ""
	}
	return name
}

// restoreBackups restores every backed-up file under path, including files
// whose live copy was deleted.
func (m *Manager) restoreBackups(path string) ([]string, error) {
	backups, err := m.finder.FindBySuffix(path, rewrite.BackupSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to find env backups: %w", err)
	}
	if len(backups) == 0 {
		return nil, nil
	}
	live := make([]string, 0, len(backups))
	for _, b := range backups {
		live = append(live, strings.TrimSuffix(b, rewrite.BackupSuffix))
	}
	restored, err := rewrite.RestoreFiles(live)
	if len(restored) > 0 {
		logging.Info(managerSubsystem, "Restored %d env file(s) from backup", len(restored))
	}
	return restored, err
}

// APIURL returns the local URL of the API port, if the template has one.
func APIURL(extracted []ports.ExtractedPort, portMap ports.PortMap) string {
	for _, p := range extracted {
		if p.Section != "api" || p.Key != "port" {
			continue
		}
		port := fmt.Sprint(p.Value)
		if mapped, ok := portMap[port]; ok {
			port = mapped
		}
		return "http://127.0.0.1:" + port
	}
	return ""
}
