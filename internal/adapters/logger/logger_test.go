package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, err := NewFromSettings(Settings{Output: path, JSON: true})
	require.NoError(t, err)
	log.Info("Request processed", "path", "/clean")
	require.NoError(t, log.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenStreams(t *testing.T) {
	for _, output := range []string{"", "stdout", "stderr"} {
		lg, err := Open(Settings{Output: output})
		require.NoError(t, err, output)
		require.NoError(t, lg.Close())
	}
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(Settings{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Debug("ignored", "k", "v")
	log.Warn("ignored")
	assert.NoError(t, log.Close())
}
