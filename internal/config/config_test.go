package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:4567", opts.Port)
	assert.Equal(t, "info", opts.LogLevel)
	assert.True(t, opts.Metrics)
	assert.Zero(t, opts.RateLimit)
	assert.Equal(t, 30*time.Second, opts.ReportInterval.Duration)
	assert.False(t, opts.TLSEnabled())
}

func TestParseArgs_Flags(t *testing.T) {
	opts, err := ParseArgs([]string{
		"-a", ":9000",
		"-log-level", "debug",
		"-metrics=false",
		"-rate-limit", "5",
		"-rate-burst", "3",
		"-tls-self-signed",
		"-report-interval", "5s",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9000", opts.Port)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.False(t, opts.Metrics)
	assert.Equal(t, 5.0, opts.RateLimit)
	assert.Equal(t, 3, opts.RateBurst)
	assert.True(t, opts.TLSEnabled())
	assert.Equal(t, 5*time.Second, opts.ReportInterval.Duration)
}

func TestParseArgs_ConfigFiles(t *testing.T) {
	files := map[string]string{
		"config.json": `{"address":":7000","log_level":"warn","rate_limit":2,"report_interval":"1m","read_timeout":"3s"}`,
		"config.yaml": "address: \":7000\"\nlog_level: warn\nrate_limit: 2\nreport_interval: 1m\nread_timeout: 3s\n",
		"config.toml": "address = \":7000\"\nlog_level = \"warn\"\nrate_limit = 2.0\nreport_interval = \"1m\"\nread_timeout = \"3s\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, name, content)
			opts, err := ParseArgs([]string{"-c", path})
			require.NoError(t, err)

			assert.Equal(t, path, opts.Config)
			assert.Equal(t, ":7000", opts.Port)
			assert.Equal(t, "warn", opts.LogLevel)
			assert.Equal(t, 2.0, opts.RateLimit)
			assert.Equal(t, time.Minute, opts.ReportInterval.Duration)
			assert.Equal(t, 3*time.Second, opts.ReadTimeout.Duration)
			assert.Equal(t, 10*time.Second, opts.WriteTimeout.Duration, "unset keys keep defaults")
		})
	}
}

func TestParseArgs_Precedence(t *testing.T) {
	path := writeConfig(t, "config.json", `{"address":":7000","log_level":"warn"}`)

	opts, err := ParseArgs([]string{"-config", path, "-a", ":8000"})
	require.NoError(t, err)
	assert.Equal(t, ":8000", opts.Port, "explicit flag wins over file")
	assert.Equal(t, "warn", opts.LogLevel)

	t.Setenv("SERVER_ADDRESS", ":9000")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("RATE_LIMIT", "4.5")
	opts, err = ParseArgs([]string{"-config", path, "-a", ":8000"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", opts.Port, "environment wins over flags")
	assert.Equal(t, "error", opts.LogLevel)
	assert.Equal(t, 4.5, opts.RateLimit)
}

func TestParseArgs_ConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "settings.yml", "address: \":6000\"\n")
	t.Setenv("CONFIG", path)

	opts, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, ":6000", opts.Port)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		file string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "bad rate limit env", env: map[string]string{"RATE_LIMIT": "fast"}},
		{name: "negative rate", args: []string{"-rate-limit", "-1"}},
		{name: "cert without key", args: []string{"-tls-cert", "server.crt"}},
		{name: "zero report interval", args: []string{"-report-interval", "0s"}},
		{name: "unsupported extension", file: "config.ini"},
		{name: "malformed json", file: "config.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := tt.args
			if tt.file != "" {
				args = append(args, "-c", writeConfig(t, tt.file, "{not valid"))
			}
			_, err := ParseArgs(args)
			assert.Error(t, err)
		})
	}
}
