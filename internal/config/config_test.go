package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFormat_UnmarshalText(t *testing.T) {
	var f LogFormat

	require.NoError(t, f.UnmarshalText([]byte("json")))
	assert.Equal(t, LogFormatJSON, f)

	require.NoError(t, f.UnmarshalText([]byte("Text")))
	assert.Equal(t, LogFormatText, f)

	assert.Error(t, f.UnmarshalText([]byte("xml")))
}

func TestNew(t *testing.T) {
	type Config struct {
		Log      Log
		Postgres Postgres
		Report   Report
		Outbox   Outbox
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("DATABASE_URL", "postgres://localhost/inventory")

		cfg, err := New[Config]()
		require.NoError(t, err)

		assert.Equal(t, LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, "postgres://localhost/inventory", cfg.Postgres.URL)
		assert.Equal(t, int32(4), cfg.Postgres.MaxConns)
		assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
		assert.Equal(t, "summary_report.csv", cfg.Report.Output)
		assert.False(t, cfg.Outbox.Enabled)
	})

	t.Run("Should read a .env file without overriding the environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
			[]byte("REPORT_OUTPUT=from-dotenv.csv\nLOG_FORMAT=JSON\n"), 0o600))
		t.Setenv("LOG_FORMAT", "TEXT")
		t.Setenv("REPORT_OUTPUT", "")
		os.Unsetenv("REPORT_OUTPUT")

		cfg, err := New[Config]()
		require.NoError(t, err)

		assert.Equal(t, "from-dotenv.csv", cfg.Report.Output)
		assert.Equal(t, LogFormatText, cfg.Log.Format)
	})

	t.Run("Should fail on invalid values", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("LOG_FORMAT", "xml")

		_, err := New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should enforce required variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("KAFKA_ADDRESSES", "")
		os.Unsetenv("KAFKA_ADDRESSES")

		_, err := New[Kafka]()
		assert.Error(t, err)
	})
}
