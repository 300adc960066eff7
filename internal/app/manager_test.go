package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbwt/internal/config"
	"sbwt/internal/discovery"
	"sbwt/internal/ports"
	"sbwt/internal/registry"
	"sbwt/internal/rewrite"
	"sbwt/internal/supabase"
)

const testTemplate = `project_id = "app"

[api]
enabled = true
port = 54321

[db]
port = 54322

[studio]
port = 54323
`

const testEnv = "SUPABASE_URL=http://localhost:54321/rest\nRANDOM_NUMBER=54321\n"

type fakeGit struct {
	branch   string
	linked   bool
	worktree string
	err      error
}

func (g fakeGit) CurrentBranch(ctx context.Context, path string) (string, error) {
	return g.branch, g.err
}

func (g fakeGit) RepositoryDisplayName(ctx context.Context, path string) (string, error) {
	return "app", g.err
}

func (g fakeGit) LinkedWorktree(ctx context.Context, path string) (bool, string, error) {
	return g.linked, g.worktree, g.err
}

type fakeService struct {
	started  []string
	stopped  []string
	startErr error
	stopErr  error

	// entered is closed when Start is called; block makes Start wait for ctx.
	entered chan struct{}
	block   bool
}

func (s *fakeService) Start(ctx context.Context, path string) (string, error) {
	s.started = append(s.started, path)
	if s.entered != nil {
		close(s.entered)
	}
	if s.block {
		<-ctx.Done()
		return "Stopping containers...", ctx.Err()
	}
	return "Started supabase local development setup.", s.startErr
}

func (s *fakeService) Stop(ctx context.Context, path string) (string, error) {
	s.stopped = append(s.stopped, path)
	return "Stopped supabase local development setup.", s.stopErr
}

type fixture struct {
	dir     string
	cfg     config.SbwtConfig
	store   *registry.MemoryStore
	reg     *registry.Registry
	service *fakeService
	manager *Manager
}

func newFixture(t *testing.T, git fakeGit, records ...registry.Record) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "supabase"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "supabase", "config.toml.template"), []byte(testTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(testEnv), 0o644))

	cfg := config.GetDefaultConfig()
	cfg.TemplatePath = filepath.Join(dir, config.DefaultTemplatePath)
	cfg.OutputPath = filepath.Join(dir, config.DefaultOutputPath)

	store := registry.NewMemoryStore(records...)
	reg := registry.New(store)
	service := &fakeService{}
	m := NewManager(cfg, reg, git, service, discovery.New(cfg.IgnoreDirs, rewrite.BackupSuffix))
	m.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

	return &fixture{dir: dir, cfg: cfg, store: store, reg: reg, service: service, manager: m}
}

func otherRecord(t *testing.T) registry.Record {
	return registry.Record{
		EnvironmentPath: t.TempDir(),
		Name:            "main",
		PortBase:        54321,
		Identifier:      "sbwt-main",
		PortMap:         ports.PortMap{"54321": "54321"},
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestManagerStart(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "feature/login"}, otherRecord(t))

	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	require.NoError(t, err)

	assert.False(t, res.Reallocated())
	assert.Equal(t, 54421, res.Record.PortBase)
	assert.Equal(t, "sbwt-feature-login", res.Record.Identifier)
	assert.Equal(t, "feature/login", res.Record.Name)
	assert.Equal(t, ports.PortMap{"54321": "54421", "54322": "54422", "54323": "54423"}, res.Record.PortMap)
	assert.Equal(t, "http://127.0.0.1:54421", res.APIURL)
	assert.Equal(t, []string{filepath.Join(f.dir, ".env")}, res.ModifiedFiles)
	assert.Equal(t, []string{f.dir}, f.service.started)

	generated := readString(t, f.cfg.OutputPath)
	assert.Contains(t, generated, `project_id = "sbwt-feature-login"`)
	assert.Contains(t, generated, "port = 54421")
	assert.Equal(t, testTemplate, readString(t, f.cfg.TemplatePath))

	env := readString(t, filepath.Join(f.dir, ".env"))
	assert.Equal(t, "SUPABASE_URL=http://localhost:54421/rest\nRANDOM_NUMBER=54321\n", env)
	assert.True(t, rewrite.HasBackup(filepath.Join(f.dir, ".env")))

	rec, ok, err := f.reg.Get(f.dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Record, rec)

	check := CheckGeneratedConfig(f.cfg.OutputPath)
	assert.True(t, check.Valid)
	assert.Equal(t, "sbwt-feature-login", check.ProjectID)
}

func TestManagerStart_LinkedWorktreeName(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "feature/login", linked: true, worktree: "Review 42"})

	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	assert.Equal(t, "sbwt-review-42", res.Record.Identifier)
	assert.Equal(t, "Review 42", res.Record.Name)
	assert.Equal(t, 54321, res.Record.PortBase)
	assert.Empty(t, f.service.started)
}

func TestManagerStart_GitUnavailableUsesDirectoryName(t *testing.T) {
	f := newFixture(t, fakeGit{err: errors.New("not a git repository")})

	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(f.dir), res.Record.Name)
	assert.Empty(t, res.Repository)
}

func TestManagerStart_ReallocationStartsFromPristineFiles(t *testing.T) {
	other := otherRecord(t)
	f := newFixture(t, fakeGit{branch: "feature/login"}, other)
	envPath := filepath.Join(f.dir, ".env")

	first, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)

	second, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)

	require.True(t, second.Reallocated())
	assert.Equal(t, first.Record.PortBase, second.Record.PortBase)
	assert.Equal(t, first.Record.Identifier, second.Record.Identifier)
	assert.Equal(t, []string{envPath}, second.RestoredFiles)
	assert.Equal(t, testEnv, readString(t, rewrite.BackupPath(envPath)))
	assert.Equal(t, "SUPABASE_URL=http://localhost:54421/rest\nRANDOM_NUMBER=54321\n", readString(t, envPath))

	records, err := f.reg.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestManagerStart_ServiceFailureLeavesFiles(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"}, otherRecord(t))
	f.service.startErr = &supabase.ProcessError{Op: "start", ExitCode: 1}

	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	var perr *supabase.ProcessError
	require.ErrorAs(t, err, &perr)
	require.NotNil(t, res)

	assert.FileExists(t, f.cfg.OutputPath)
	assert.True(t, rewrite.HasBackup(filepath.Join(f.dir, ".env")))
	_, ok, err := f.reg.Get(f.dir)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManagerStart_MissingTemplate(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})
	require.NoError(t, os.Remove(f.cfg.TemplatePath))

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	ue, ok := config.AsUserError(err)
	require.True(t, ok)
	assert.Contains(t, ue.Message, "config template not found")
	assert.NotEmpty(t, ue.Hint)
	assert.Empty(t, f.service.started)
}

func TestManagerStart_NoPorts(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})
	require.NoError(t, os.WriteFile(f.cfg.TemplatePath, []byte("project_id = \"x\"\n"), 0o644))

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	_, ok := config.AsUserError(err)
	assert.True(t, ok)
}

func TestManagerStart_SpanWiderThanBlock(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})
	template := "[api]\nport = 54321\n\n[edge_runtime]\ninspector_port = 8083\n"
	require.NoError(t, os.WriteFile(f.cfg.TemplatePath, []byte(template), 0o644))

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	userErr, ok := config.AsUserError(err)
	require.True(t, ok)
	assert.ErrorIs(t, err, ports.ErrSpanTooWide)
	assert.Contains(t, userErr.Hint, "at least 46239")
	assert.NoFileExists(t, f.cfg.OutputPath)
	assert.Empty(t, f.service.started)
	assert.Equal(t, testEnv, readString(t, filepath.Join(f.dir, ".env")))

	records, err := f.reg.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestManagerStart_SpanEqualToBlockIsRejected(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})
	template := "[api]\nport = 54321\n\n[studio]\nport = 54421\n"
	require.NoError(t, os.WriteFile(f.cfg.TemplatePath, []byte(template), 0o644))

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	assert.ErrorIs(t, err, ports.ErrSpanTooWide)

	f.manager.cfg.BlockSize = 101
	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	assert.Equal(t, "54421", res.Record.PortMap["54421"])
}

func TestManagerStart_TopBlockStaysBelowMaxPort(t *testing.T) {
	var records []registry.Record
	for base := 54321; base <= 65321; base += 100 {
		records = append(records, registry.Record{
			EnvironmentPath: t.TempDir(),
			Name:            "busy",
			PortBase:        base,
			Identifier:      fmt.Sprintf("sbwt-busy-%d", base),
		})
	}
	f := newFixture(t, fakeGit{branch: "main"}, records...)

	res, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	assert.Equal(t, 65421, res.Record.PortBase)
	for oldPort, newPort := range res.Record.PortMap {
		n, err := strconv.Atoi(newPort)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, ports.MaxPort, "port for %s", oldPort)
	}
	assert.True(t, CheckGeneratedConfig(f.cfg.OutputPath).Valid)
}

func TestManagerStart_Exhausted(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})
	f.manager.cfg.BlockSize = 20000

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	assert.ErrorIs(t, err, ports.ErrAllocationExhausted)
	assert.NoFileExists(t, f.cfg.OutputPath)
}

func TestManagerStop(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"}, otherRecord(t))
	envPath := filepath.Join(f.dir, ".env")

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{})
	require.NoError(t, err)

	res, err := f.manager.Stop(context.Background(), f.dir, StopOptions{})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	require.NotNil(t, res.Record)
	assert.Equal(t, []string{envPath}, res.RestoredFiles)
	assert.Equal(t, testEnv, readString(t, envPath))
	assert.False(t, rewrite.HasBackup(envPath))
	assert.Equal(t, []string{f.dir}, f.service.stopped)

	records, err := f.reg.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sbwt-main", records[0].Identifier)
}

func TestManagerStop_BestEffort(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"}, otherRecord(t))
	envPath := filepath.Join(f.dir, ".env")

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	f.service.stopErr = &supabase.ProcessError{Op: "stop", TimedOut: true}

	res, err := f.manager.Stop(context.Background(), f.dir, StopOptions{})
	var perr *supabase.ProcessError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.TimedOut)

	assert.True(t, res.Removed)
	assert.Equal(t, testEnv, readString(t, envPath))
}

func TestManagerStop_RestoresDeletedLiveFile(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"}, otherRecord(t))
	envPath := filepath.Join(f.dir, ".env")

	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)
	require.NoError(t, os.Remove(envPath))

	res, err := f.manager.Stop(context.Background(), f.dir, StopOptions{SkipService: true})
	require.NoError(t, err)
	assert.Equal(t, []string{envPath}, res.RestoredFiles)
	assert.Equal(t, testEnv, readString(t, envPath))
	assert.Empty(t, f.service.stopped)
}

func TestManagerStop_NotRegistered(t *testing.T) {
	f := newFixture(t, fakeGit{branch: "main"})

	res, err := f.manager.Stop(context.Background(), f.dir, StopOptions{SkipService: true})
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Nil(t, res.Record)
	assert.Empty(t, res.RestoredFiles)
}

func TestManagerCleanupAndReset(t *testing.T) {
	gone := registry.Record{EnvironmentPath: "/definitely/not/here", PortBase: 54521, Identifier: "sbwt-gone"}
	f := newFixture(t, fakeGit{branch: "main"}, gone)
	_, err := f.manager.Start(context.Background(), f.dir, StartOptions{SkipService: true})
	require.NoError(t, err)

	removed, err := f.manager.Cleanup()
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "sbwt-gone", removed[0].Identifier)

	records, err := f.manager.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, f.dir, records[0].EnvironmentPath)

	f.store.LoadErr = &registry.CorruptError{Path: "registry.json", Err: errors.New("bad json")}
	_, err = f.manager.List()
	assert.ErrorIs(t, err, registry.ErrCorrupt)

	require.NoError(t, f.manager.Reset())
	records, err = f.manager.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAPIURL(t *testing.T) {
	extracted := ports.Extract(testTemplate)
	assert.Equal(t, "http://127.0.0.1:54321", APIURL(extracted, nil))
	assert.Equal(t, "http://127.0.0.1:60000", APIURL(extracted, ports.PortMap{"54321": "60000"}))
	assert.Empty(t, APIURL(ports.Extract("[db]\nport = 1\n"), nil))
}
