package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/config"
	"column/internal/storage"
)

func TestNewFromReader_Defaults(t *testing.T) {
	c, err := config.NewFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default, *c)
	assert.Equal(t, "columnData", c.StorageKey)
}

func TestNewFromReader_Overrides(t *testing.T) {
	c, err := config.NewFromReader(strings.NewReader(`
dataDir: /srv/column
listen: 0.0.0.0:8080
autosave: ""
resumeDraft: true
logLevel: debug
store:
  driver: postgres
  host: db.internal
  database: column
  username: app
  passwordKey: column-pg
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/column", c.DataDir)
	assert.Equal(t, "0.0.0.0:8080", c.Listen)
	assert.Empty(t, c.Autosave)
	assert.True(t, c.ResumeDraft)
	assert.Equal(t, storage.DriverPostgres, c.Store.Driver)
	assert.Equal(t, "column-pg", c.Store.PasswordKey)
	assert.Equal(t, config.Default.MaxImageBytes, c.MaxImageBytes)
}

func TestNewFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"bad driver", "store:\n  driver: redis\n", "Driver"},
		{"mysql without host", "store:\n  driver: mysql\n  database: x\n", "Host"},
		{"bad cron", "autosave: every now and then\n", "Autosave"},
		{"bad level", "logLevel: loud\n", "LogLevel"},
		{"key with slash", "storageKey: a/b\n", "StorageKey"},
		{"zero image limit", "maxImageBytes: 0\n", "MaxImageBytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.NewFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}

	_, err := config.NewFromReader(strings.NewReader("listen: ["))
	assert.ErrorContains(t, err, "unmarshal")
}

func TestLoad(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default, *c)

	path := filepath.Join(t.TempDir(), "column.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storageKey: notes\n"), 0o644))
	c, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", c.StorageKey)
}

func TestLogger(t *testing.T) {
	c := config.Default
	c.LogLevel = "warn"
	var buf bytes.Buffer
	log, err := c.Logger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.WithField("component", "test").Info("hidden")
	log.WithField("component", "test").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=test")
}
