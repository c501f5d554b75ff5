package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir, "")
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, "vocabhub.db"), cfg.DBPath())
	assert.Equal(t, time.Second, cfg.Study.CorrectDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Study.IncorrectDelay)
	assert.Equal(t, "en-US", cfg.Pronunciation.Locale)
}

func TestNewReadsYAMLAndAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
backend: remote
gateway:
  base_url: https://vocab.example.com
  timeout: 3s
study:
  interaction: spelling
  new_item_limit: 5
  correct_delay: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	t.Setenv("VOCABHUB_TOKEN", "tok-123")
	t.Setenv("VOCABHUB_REVIEW_LIMIT", "7")

	cfg, err := New(dir, path)
	require.NoError(t, err)

	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, "https://vocab.example.com", cfg.Gateway.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "spelling", cfg.Study.Interaction)
	assert.Equal(t, 5, cfg.Study.NewItemLimit)
	assert.Equal(t, 7, cfg.Study.ReviewItemLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Study.CorrectDelay)
	assert.Equal(t, "tok-123", cfg.Auth.Token)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		cfg := Default(t.TempDir())
		cfg.Backend = "cloud"
		assert.Error(t, cfg.Validate())
	})
	t.Run("interaction", func(t *testing.T) {
		cfg := Default(t.TempDir())
		cfg.Study.Interaction = "binary"
		assert.Error(t, cfg.Validate())
	})
	t.Run("negative limit", func(t *testing.T) {
		cfg := Default(t.TempDir())
		cfg.Study.NewItemLimit = -1
		assert.Error(t, cfg.Validate())
	})
	t.Run("remote without url", func(t *testing.T) {
		cfg := Default(t.TempDir())
		cfg.Backend = BackendRemote
		cfg.Gateway.BaseURL = " "
		assert.Error(t, cfg.Validate())
	})
}

func TestNewRequiresDataDir(t *testing.T) {
	_, err := New("", "")
	require.Error(t, err)
}

func TestNewRejectsNonNumericLimitOverrides(t *testing.T) {
	for _, key := range []string{"VOCABHUB_NEW_LIMIT", "VOCABHUB_REVIEW_LIMIT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "ten")
			_, err := New(t.TempDir(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
