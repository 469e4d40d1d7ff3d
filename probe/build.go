package probe

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/jonwraymond/watchtower/health"
)

// BuildCheckConfig configures NewBuildCheck.
type BuildCheckConfig struct {
	// CriticalEnv must all be set for the check to pass.
	CriticalEnv []string `mapstructure:"critical_env" yaml:"critical_env"`

	// OptionalEnv are reported but never fail the check.
	OptionalEnv []string `mapstructure:"optional_env" yaml:"optional_env"`

	// Artifacts are files that must exist, such as a bundled asset or a
	// migrations directory.
	Artifacts []string `mapstructure:"artifacts" yaml:"artifacts"`

	// SkipBuildInfo omits the module build info node.
	SkipBuildInfo bool `mapstructure:"skip_build_info" yaml:"skip_build_info"`

	Getenv        func(string) string               `mapstructure:"-" yaml:"-"`
	Stat          func(string) (os.FileInfo, error) `mapstructure:"-" yaml:"-"`
	ReadBuildInfo func() (*debug.BuildInfo, bool)   `mapstructure:"-" yaml:"-"`
}

type buildCheck struct {
	cfg BuildCheckConfig
}

// NewBuildCheck creates the "build" probe.
func NewBuildCheck(cfg BuildCheckConfig) health.Check {
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if cfg.Stat == nil {
		cfg.Stat = os.Stat
	}
	if cfg.ReadBuildInfo == nil {
		cfg.ReadBuildInfo = debug.ReadBuildInfo
	}
	return &buildCheck{cfg: cfg}
}

func (c *buildCheck) ID() string   { return "build" }
func (c *buildCheck) Name() string { return "Build Integrity" }

func (c *buildCheck) Run(context.Context) (health.StatusNode, error) {
	children := []health.StatusNode{c.goVersion()}
	if !c.cfg.SkipBuildInfo {
		children = append(children, c.buildInfo())
	}
	if len(c.cfg.CriticalEnv) > 0 || len(c.cfg.OptionalEnv) > 0 {
		children = append(children, c.envVars())
	}
	if len(c.cfg.Artifacts) > 0 {
		children = append(children, c.artifacts())
	}
	return health.Group(c.ID(), c.Name(), children, nil), nil
}

func (c *buildCheck) goVersion() health.StatusNode {
	version := runtime.Version()
	return health.NewStatusNode("go_version", "Go Version", health.StatusUp, "Go "+version, nil, map[string]any{
		"version": version,
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	})
}

func (c *buildCheck) buildInfo() health.StatusNode {
	info, ok := c.cfg.ReadBuildInfo()
	if !ok || info == nil {
		return health.NewStatusNode("build_info", "Build Info", health.StatusPartial, "Build info unavailable", nil, nil)
	}

	meta := map[string]any{
		"module":  info.Main.Path,
		"version": info.Main.Version,
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			meta["revision"] = s.Value
		case "vcs.modified":
			meta["modified"] = s.Value == "true"
		}
	}
	return health.NewStatusNode("build_info", "Build Info", health.StatusUp,
		fmt.Sprintf("%s %s", info.Main.Path, info.Main.Version), nil, meta)
}

func (c *buildCheck) split(names []string) health.EnvGroup {
	var g health.EnvGroup
	for _, name := range names {
		if c.cfg.Getenv(name) != "" {
			g.Present = append(g.Present, name)
		} else {
			g.Missing = append(g.Missing, name)
		}
	}
	return g
}

func (c *buildCheck) envVars() health.StatusNode {
	meta := health.EnvVarsMetadata{
		Critical: c.split(c.cfg.CriticalEnv),
		Optional: c.split(c.cfg.OptionalEnv),
	}

	status := health.StatusUp
	var message string
	switch {
	case len(meta.Critical.Missing) > 0:
		status = health.StatusDown
		message = fmt.Sprintf("Missing %d critical vars", len(meta.Critical.Missing))
	case len(c.cfg.CriticalEnv) > 0:
		message = fmt.Sprintf("All %d critical vars present", len(meta.Critical.Present))
	default:
		message = fmt.Sprintf("%d/%d optional vars present", len(meta.Optional.Present), meta.Optional.Total())
	}

	return health.NewStatusNode(health.NodeEnvVars, "Environment Variables", status, message, nil, meta.Map())
}

func (c *buildCheck) artifacts() health.StatusNode {
	var meta health.BuildMetadata
	missing := 0
	for _, path := range c.cfg.Artifacts {
		_, err := c.cfg.Stat(path)
		exists := err == nil
		if !exists {
			missing++
		}
		meta.Checks = append(meta.Checks, health.ArtifactCheck{Path: path, Exists: exists})
	}

	status := health.StatusUp
	message := fmt.Sprintf("All %d build artifacts present", len(c.cfg.Artifacts))
	if missing > 0 {
		status = health.StatusDown
		message = fmt.Sprintf("Missing %d build artifacts", missing)
	}
	return health.NewStatusNode(health.NodeBuildArtifacts, "Build Artifacts", status, message, nil, meta.Map())
}
