package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const quietTelemetry = `
telemetry:
  logging:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "watchtower.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body+quietTelemetry), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_JSON(t *testing.T) {
	path := writeConfig(t, `
checks:
  build:
    skip_build_info: true
`)

	out, err := execute(t, "check", "--config", path, "-o", "json", "--site", "shop")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "shop_healthcheck", report["id"])
	assert.Equal(t, "Up", report["status"])
}

func TestCheck_YAML(t *testing.T) {
	path := writeConfig(t, `
checks:
  build:
    skip_build_info: true
`)

	out, err := execute(t, "check", "--config", path, "-o", "yaml")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "Up", report["status"])
}

func TestCheck_DownIsUnhealthy(t *testing.T) {
	path := writeConfig(t, `
checks:
  build:
    skip_build_info: true
    critical_env: [WATCHTOWER_TEST_MISSING_VAR]
`)

	out, err := execute(t, "check", "--config", path)
	require.ErrorIs(t, err, errUnhealthy)
	assert.True(t, strings.HasPrefix(out, "Down"), out)
	assert.Contains(t, out, "Environment Variables: Missing 1 critical vars")
}

func TestCheck_UnknownFormat(t *testing.T) {
	path := writeConfig(t, "")
	_, err := execute(t, "check", "--config", path, "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "watchtower dev"), out)
}
