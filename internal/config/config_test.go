package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/dispatch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, dispatch.DefaultBinaryModel, cfg.Models.Binary)
	assert.Equal(t, dispatch.DefaultClassifierModel, cfg.Models.Classifier)
	assert.Equal(t, cleaning.DefaultOptions(), cfg.Cleaning)
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 3s
models:
  dir: /srv/models
  cache_ttl: 10m
cleaning:
  lemmatize_mode: token
  remove_stopwords: false
logging:
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "/srv/models", cfg.Models.Dir)
	assert.Equal(t, 10*time.Minute, cfg.Models.CacheTTL)
	assert.Equal(t, cleaning.LemmatizeTokens, cfg.Cleaning.LemmatizeMode)
	assert.False(t, cfg.Cleaning.RemoveStopwords)
	assert.True(t, cfg.Cleaning.Lemmatize)
	assert.True(t, cfg.Logging.JSON)
	assert.True(t, cfg.Logging.Settings().JSON)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")

	t.Setenv("CYBERBULLYING_ADDR", ":7070")
	t.Setenv("CYBERBULLYING_MODEL_CACHE_SIZE", "3")
	t.Setenv("CYBERBULLYING_WARM_UP", "yes")
	t.Setenv("CYBERBULLYING_WRITE_TIMEOUT", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Models.CacheSize)
	assert.True(t, cfg.Server.WarmUp)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
}

func TestEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CYBERBULLYING_BINARY_MODEL=gate_v2\n"), 0o644))
	t.Setenv("ENV_FILE", envFile)
	t.Cleanup(func() { os.Unsetenv("CYBERBULLYING_BINARY_MODEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gate_v2", cfg.Models.Binary)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cleaning:\n  lemmatize_mode: stem\n"))
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	cfg.Models.Binary = ""
	cfg.Models.CacheSize = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "models.binary")
	assert.Contains(t, err.Error(), "models.cache_size")
}
