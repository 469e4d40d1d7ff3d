package probe

import (
	"context"
	"io/fs"
	"os"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/watchtower/health"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func statFiles(existing ...string) func(string) (os.FileInfo, error) {
	set := make(map[string]bool, len(existing))
	for _, p := range existing {
		set[p] = true
	}
	return func(p string) (os.FileInfo, error) {
		if set[p] {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
}

func fakeBuildInfo() (*debug.BuildInfo, bool) {
	return &debug.BuildInfo{
		Main: debug.Module{Path: "example.com/shop", Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "false"},
		},
	}, true
}

func TestBuildCheck_AllPresent(t *testing.T) {
	check := NewBuildCheck(BuildCheckConfig{
		CriticalEnv:   []string{"DATABASE_URL"},
		OptionalEnv:   []string{"SENTRY_DSN", "FEATURE_FLAGS"},
		Artifacts:     []string{"public/index.html"},
		Getenv:        envMap(map[string]string{"DATABASE_URL": "postgres://", "SENTRY_DSN": "x"}),
		Stat:          statFiles("public/index.html"),
		ReadBuildInfo: fakeBuildInfo,
	})
	assert.Equal(t, "build", check.ID())
	assert.Equal(t, "Build Integrity", check.Name())

	node, err := check.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StatusUp, node.Status)
	assert.Equal(t, "Build Integrity: All systems operational", node.Message)
	require.Len(t, node.Services, 4)

	goNode := node.Services[0]
	assert.Equal(t, "go_version", goNode.ID)
	assert.Equal(t, "Go "+runtime.Version(), goNode.Message)

	info := node.Services[1]
	assert.Equal(t, "build_info", info.ID)
	assert.Equal(t, "example.com/shop v1.2.3", info.Message)
	assert.Equal(t, "abc123", info.Metadata["revision"])
	assert.Equal(t, false, info.Metadata["modified"])

	env := node.Services[2]
	assert.Equal(t, health.NodeEnvVars, env.ID)
	assert.Equal(t, "All 1 critical vars present", env.Message)
	critical := env.Metadata["critical"].(map[string]any)
	assert.Equal(t, []string{"DATABASE_URL"}, critical["present"])
	optional := env.Metadata["optional"].(map[string]any)
	assert.Equal(t, []string{"FEATURE_FLAGS"}, optional["missing"])
	assert.Equal(t, 2, optional["total"])

	artifacts := node.Services[3]
	assert.Equal(t, health.NodeBuildArtifacts, artifacts.ID)
	assert.Equal(t, "All 1 build artifacts present", artifacts.Message)
}

func TestBuildCheck_MissingCriticalEnv(t *testing.T) {
	node, err := NewBuildCheck(BuildCheckConfig{
		CriticalEnv:   []string{"API_KEY", "DATABASE_URL"},
		Getenv:        envMap(nil),
		ReadBuildInfo: fakeBuildInfo,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StatusDown, node.Status)
	env := health.Find(node.Services, health.NodeEnvVars)
	require.NotNil(t, env)
	assert.Equal(t, health.StatusDown, env.Status)
	assert.Equal(t, "Missing 2 critical vars", env.Message)
}

func TestBuildCheck_OptionalOnly(t *testing.T) {
	node, err := NewBuildCheck(BuildCheckConfig{
		OptionalEnv:   []string{"A", "B"},
		Getenv:        envMap(map[string]string{"A": "1"}),
		ReadBuildInfo: fakeBuildInfo,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StatusUp, node.Status)
	env := health.Find(node.Services, health.NodeEnvVars)
	require.NotNil(t, env)
	assert.Equal(t, "1/2 optional vars present", env.Message)
}

func TestBuildCheck_MissingArtifact(t *testing.T) {
	node, err := NewBuildCheck(BuildCheckConfig{
		Artifacts:     []string{"dist/app.js", "dist/app.css"},
		Stat:          statFiles("dist/app.js"),
		ReadBuildInfo: fakeBuildInfo,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StatusDown, node.Status)
	artifacts := health.Find(node.Services, health.NodeBuildArtifacts)
	require.NotNil(t, artifacts)
	assert.Equal(t, "Missing 1 build artifacts", artifacts.Message)
	assert.Equal(t, 2, health.ListLen(artifacts.Metadata["checks"]))
}

func TestBuildCheck_NoBuildInfo(t *testing.T) {
	node, err := NewBuildCheck(BuildCheckConfig{
		ReadBuildInfo: func() (*debug.BuildInfo, bool) { return nil, false },
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StatusPartial, node.Status)
	info := health.Find(node.Services, "build_info")
	require.NotNil(t, info)
	assert.Equal(t, "Build info unavailable", info.Message)
}

func TestBuildCheck_SkipBuildInfo(t *testing.T) {
	node, err := NewBuildCheck(BuildCheckConfig{SkipBuildInfo: true}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, node.Services, 1)
	assert.Equal(t, "go_version", node.Services[0].ID)
}
