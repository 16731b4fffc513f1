package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/query"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doclog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.LogPath)
	assert.Empty(t, cfg.TextFields)
	assert.Equal(t, "present", cfg.OperandMode)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_path: /var/lib/people.log
text_fields: [bio, title]
operand_mode: truthy
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/people.log", cfg.LogPath)
	assert.Equal(t, []string{"bio", "title"}, cfg.TextFields)
	assert.Equal(t, "truthy", cfg.OperandMode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_path: from-file.log\ntext_fields: [bio]\n")
	t.Setenv("DOCLOG_LOG_PATH", "from-env.log")
	t.Setenv("DOCLOG_TEXT_FIELDS", "title, body")
	t.Setenv("DOCLOG_OPERAND_MODE", "truthy")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.log", cfg.LogPath)
	assert.Equal(t, []string{"title", "body"}, cfg.TextFields)
	assert.Equal(t, "truthy", cfg.OperandMode)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "log_path: a\nschema: x\n", "parse config"},
		{"unknown key holding empty map", "log_path: a\nschema: {}\n", "field schema not found"},
		{"unknown key holding empty list", "log_path: a\nextra: []\n", "field extra not found"},
		{"bad operand mode", "operand_mode: loose\n", "unknown operand mode"},
		{"bad log level", "log_level: loud\n", "unknown log level"},
		{"malformed yaml", "log_path: [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "present", cfg.OperandMode)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestEngineOptions(t *testing.T) {
	cfg := &Config{TextFields: []string{"bio"}, OperandMode: "truthy"}

	e, err := query.NewDocumentEngine(nopSource{}, cfg.EngineOptions()...)
	require.NoError(t, err)
	assert.Equal(t, []string{"bio"}, e.TextFields())
	assert.Equal(t, query.OperandTruthy, e.OperandMode())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
