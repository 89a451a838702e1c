package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("ZNW_TEST_KEY", "sk-test")

	assert.Equal(t, "key: sk-test", expandEnv("key: ${ZNW_TEST_KEY}"))
	assert.Equal(t, "url: http://local", expandEnv("url: ${ZNW_TEST_MISSING:http://local}"))
	assert.Equal(t, "empty: ", expandEnv("empty: ${ZNW_TEST_MISSING:}"))
	assert.Equal(t, "raw: ${ZNW_TEST_MISSING}", expandEnv("raw: ${ZNW_TEST_MISSING}"))
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), true)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.APIURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
	assert.InDelta(t, 0.55, cfg.Retrieval.WorldviewThreshold, 1e-9)
	assert.InDelta(t, 0.6, cfg.Retrieval.CharacterThreshold, 1e-9)
	assert.Equal(t, 2, cfg.Retrieval.RecentChapters)
	assert.Equal(t, 20*time.Second, cfg.Retrieval.ContextTimeout)
}

func TestLoadFromMergesEnvFile(t *testing.T) {
	dir := t.TempDir()
	base := "storage:\n  driver: bolt\n  bolt:\n    path: ${ZNW_TEST_DB:/tmp/base.db}\nretrieval:\n  character_threshold: 0.7\n"
	override := "retrieval:\n  character_threshold: 0.8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(override), 0o600))
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir, false)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/base.db", cfg.Storage.Bolt.Path)
	assert.InDelta(t, 0.8, cfg.Retrieval.CharacterThreshold, 1e-9)
}

func TestLoadFromRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  driver: mongo\n"), 0o600))

	_, err := LoadFrom(dir, false)
	assert.Error(t, err)
}

func TestLoadFromMissingBase(t *testing.T) {
	_, err := LoadFrom(t.TempDir(), false)
	assert.Error(t, err)
}
