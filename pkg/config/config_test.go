package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/aptcache/pkg/core"
	"github.com/arc-language/aptcache/pkg/platform"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{EnvConfig, EnvRoot, EnvArch, EnvDebug} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir:
  status: /srv/dpkg/status
architecture: arm64
architectures: [armhf]
debs:
  - /tmp/hello.deb
debug: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/dpkg/status", cfg.Dir.Status)
	assert.Equal(t, DefaultListsDir, cfg.Dir.Lists)
	assert.Equal(t, "arm64", cfg.Architecture)
	assert.Equal(t, []string{"armhf"}, cfg.Architectures)
	assert.Equal(t, []string{"/tmp/hello.deb"}, cfg.Debs)
	assert.True(t, cfg.Debug)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
architecture = "i386"

[dir]
lists = "/srv/lists"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "i386", cfg.Architecture)
	assert.Equal(t, "/srv/lists", cfg.Dir.Lists)
	assert.Equal(t, DefaultStatusFile, cfg.Dir.Status)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("dir: [unclosed"), 0o644))
	_, err := Load(yamlPath)
	assert.Error(t, err)

	tomlPath := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("architecture = "), 0o644))
	_, err = Load(tomlPath)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv(EnvRoot, root)
	t.Setenv(EnvArch, "riscv64")
	t.Setenv(EnvDebug, "true")

	cfg, err := Load(filepath.Join(root, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultStatusFile), cfg.Dir.Status)
	assert.Equal(t, filepath.Join(root, DefaultListsDir), cfg.Dir.Lists)
	assert.Equal(t, "riscv64", cfg.Architecture)
	assert.True(t, cfg.Debug)
}

func TestLoadUsesEnvConfigPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aptc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("architecture: s390x\n"), 0o644))
	t.Setenv(EnvConfig, path)

	assert.Equal(t, path, DefaultPath())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s390x", cfg.Architecture)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Architecture = "arm64"
	cfg.Architectures = []string{"armhf"}
	cfg.Debs = []string{"a.deb"}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	cfg.NewLogger("cache").Debug("hello")
	assert.Contains(t, buf.String(), "cache")
	assert.Contains(t, buf.String(), "hello")

	assert.NotNil(t, DefaultConfig().NewLogger("x"))
}

func TestInitAndGlobal(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Global()
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	assert.False(t, Initialized())

	cfg := DefaultConfig()
	cfg.Rebase(t.TempDir())
	cfg.Architecture = "amd64"
	cfg.Architectures = []string{"i386"}
	require.NoError(t, Init(cfg))

	state, err := Global()
	require.NoError(t, err)
	assert.True(t, Initialized())
	assert.Same(t, cfg, state.Config)
	assert.Equal(t, platform.ArchAmd64, state.System.NativeArch)
	assert.Equal(t, []platform.Architecture{platform.ArchI386}, state.System.ForeignArchs)
	assert.Equal(t, cfg.Dir.Status, state.System.StatusFile)
}

func TestInitInvalidArchitecture(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.Architecture = "x86_64"
	err := Init(cfg)
	require.Error(t, err)

	var cerr *core.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "init system", cerr.Op)
	assert.False(t, Initialized())
}
