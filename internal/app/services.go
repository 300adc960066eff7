package app

import (
	"sbwt/internal/discovery"
	"sbwt/internal/gitinfo"
	"sbwt/internal/registry"
	"sbwt/internal/rewrite"
	"sbwt/internal/supabase"
)

// Services holds the collaborators wired from the loaded configuration.
type Services struct {
	Registry *registry.Registry
	Git      *gitinfo.Client
	Supabase *supabase.Controller
	Finder   *discovery.Finder
	Manager  *Manager
}

// InitializeServices creates the registry, git client, supabase controller
// and env file finder, and the Manager that ties them together.
func InitializeServices(cfg *Config) (*Services, error) {
	sc := cfg.SbwtConfig

	reg := registry.New(registry.NewFileStore(sc.RegistryPath))
	git := gitinfo.New()
	controller := supabase.NewController(sc.SupabaseBinary, sc.StartTimeout, sc.StopTimeout)
	finder := discovery.New(sc.IgnoreDirs, rewrite.BackupSuffix)

	return &Services{
		Registry: reg,
		Git:      git,
		Supabase: controller,
		Finder:   finder,
		Manager:  NewManager(*sc, reg, git, controller, finder),
	}, nil
}
