package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipedef/internal/app"
	"github.com/vk/pipedef/internal/emit"
)

func TestParse_Emit(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{
		"emit", "--format", "json", "-o", "out.json",
		"--external-id", "Kotlin_A", "--external-id", "Kotlin_B",
		"--history-db", "h.db", "--log-level", "DEBUG",
		"examples/kotlinlang", "extra.hcl",
	}, out)

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, app.CommandEmit, cfg.Command)
	assert.Equal(t, []string{"examples/kotlinlang", "extra.hcl"}, cfg.Paths)
	assert.Equal(t, emit.FormatJSON, cfg.Format)
	assert.Equal(t, "out.json", cfg.OutPath)
	assert.Equal(t, "h.db", cfg.HistoryDB)
	assert.Equal(t, []string{"Kotlin_A", "Kotlin_B"}, cfg.ExternalIDs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParse_Defaults(t *testing.T) {
	cfg, _, err := Parse([]string{"emit", "."}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, emit.FormatYAML, cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.OutPath)
}

func TestParse_Match(t *testing.T) {
	cfg, _, err := Parse([]string{"match", "-p", "docker.server.osType=linux", "--property", "env.X=a=b", "."}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, app.CommandMatch, cfg.Command)
	assert.Equal(t, map[string]string{"docker.server.osType": "linux", "env.X": "a=b"}, cfg.Properties)
}

func TestParse_History(t *testing.T) {
	cfg, _, err := Parse([]string{"history", "--history-db", "h.db", "-n", "5"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, app.CommandHistory, cfg.Command)
	assert.Equal(t, 5, cfg.HistoryLimit)
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}, {"emit", "--help"}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"emit", "--bogus", "."}, wantErr: "unknown flag: --bogus"},
		{name: "missing path", args: []string{"emit"}, wantErr: "requires at least 1 arg"},
		{name: "unknown command", args: []string{"deploy"}, wantErr: `unknown command "deploy"`},
		{name: "bad format", args: []string{"emit", "-f", "toml", "."}, wantErr: "unknown output format"},
		{name: "bad log level", args: []string{"validate", "--log-level", "trace", "."}, wantErr: "invalid log-level"},
		{name: "bad property", args: []string{"match", "-p", "novalue", "."}, wantErr: "expected key=value"},
		{name: "history without db", args: []string{"history"}, wantErr: "ledger database path"},
		{name: "bad external id", args: []string{"emit", "--external-id", "not valid", "."}, wantErr: "invalid external id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.False(t, shouldExit)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
