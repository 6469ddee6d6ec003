package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	as := require.New(t)

	wd, err := os.Getwd()
	as.NoError(err)
	as.NoError(os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	as.NoError(err)
	as.Equal("tokyo-night", cfg.Style)
	as.Equal(28, cfg.TreeWidth)
	as.Equal([]string{".md", ".mdx"}, cfg.Extensions)
	as.Empty(cfg.Excludes)
	as.False(cfg.Verbose)
}

func TestLoadExplicitFile(t *testing.T) {
	as := require.New(t)

	path := filepath.Join(t.TempDir(), "docnav.yaml")
	as.NoError(os.WriteFile(path, []byte(
		"style: dracula\ntree-width: 40\nexcludes:\n  - drafts/**\nextensions:\n  - .markdown\nverbose: true\n",
	), 0o644))

	cfg, err := config.Load(path)
	as.NoError(err)
	as.Equal("dracula", cfg.Style)
	as.Equal(40, cfg.TreeWidth)
	as.Equal([]string{"drafts/**"}, cfg.Excludes)
	as.Equal([]string{".markdown"}, cfg.Extensions)
	as.True(cfg.Verbose)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	as := require.New(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	as.Error(err)
}
