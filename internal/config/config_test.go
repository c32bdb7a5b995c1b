package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "Site", cfg.Title)
	require.Equal(t, "pages", cfg.Pages.Directory)
	require.Equal(t, "_site", cfg.Output.Directory)
	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadReadsSiteFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFileName, `
title: My Site
baseurl: https://example.com/
taxonomies:
  tags: tag
server:
  port: 9000
headers:
  - path: /*
    headers:
      - key: X-Frame-Options
        value: SAMEORIGIN
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "My Site", cfg.Title)
	require.Equal(t, "https://example.com/", cfg.BaseURL)
	require.Equal(t, map[string]string{"tags": "tag"}, cfg.Taxonomies)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "localhost", cfg.Server.Host, "unset values keep defaults")
	require.Len(t, cfg.Headers, 1)
}

func TestExtraConfigMergesOverBase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFileName, "title: Base\nserver:\n  port: 9000\n")
	writeConfig(t, dir, "override.yaml", "title: Override\n")

	cfg, err := Load(dir, "override.yaml")
	require.NoError(t, err)
	require.Equal(t, "Override", cfg.Title)
	require.Equal(t, 9000, cfg.Server.Port, "keys absent from the override survive")
}

func TestInvalidPortRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFileName, "title: X\nserver:\n  port: 99999\n")

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation")
}

func TestHeaderRuleRequiresPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFileName, `
title: X
headers:
  - headers:
      - key: A
        value: b
`)
	_, err := Load(dir)
	require.Error(t, err)
}

func TestEnvironmentExpansion(t *testing.T) {
	t.Setenv("SITE_TITLE", "From Env")
	dir := t.TempDir()
	writeConfig(t, dir, DefaultFileName, "title: ${SITE_TITLE}\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Title)
}
