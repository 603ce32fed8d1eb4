package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filedock.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
startup_handler: hex
sample:
  max_bytes: 8192
  read_timeout: 2s
recognizers:
  - id: fits
    mime: image/fits
    magic: "SIMPLE  ="
    before: [text]
  - id: nes
    mime: application/x-nes-rom
    magic_hex: "4e45531a"
handlers:
  - id: text
    name: Text Editor
    mime: ["text/*", "application/xml"]
  - id: image
    mime: ["image/*"]
    deny_alternates: true
journal:
  redis_url: redis://localhost:6379/0
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, "hex", config.StartupHandler)
	assert.Equal(t, 8192, config.Sample.MaxBytes)
	assert.Equal(t, 2*time.Second, config.Sample.ReadTimeout)

	require.Len(t, config.Recognizers, 2)
	assert.Equal(t, []string{"text"}, config.Recognizers[0].Before)
	sig, err := config.Recognizers[1].Signature()
	require.NoError(t, err)
	assert.Equal(t, []byte{'N', 'E', 'S', 0x1a}, sig)

	require.Len(t, config.Handlers, 2)
	assert.Equal(t, "Text Editor", config.Handlers[0].Name)
	assert.Equal(t, "image", config.Handlers[1].Name, "name defaults to id")
	assert.True(t, config.Handlers[1].DenyAlternates)

	require.NotNil(t, config.Journal)
	assert.Equal(t, DefaultInstance, config.Journal.Instance)
	opts, err := config.Journal.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"`))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxBytes, config.Sample.MaxBytes)
	assert.Equal(t, DefaultReadTimeout, config.Sample.ReadTimeout)
	assert.Equal(t, DefaultRecentSize, config.Workspace.RecentSize)
	assert.Equal(t, DefaultConcurrency, config.Workspace.Concurrency)
	assert.Nil(t, config.Journal)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/filedock.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"
handlers:
  - this is invalid
    yaml syntax
`))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "filedock.yml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxBytes, config.Sample.MaxBytes)
	})

	t.Run("invalid file is still an error", func(t *testing.T) {
		_, err := LoadOrDefault(writeConfig(t, `version: "2.0"`))
		assert.Error(t, err)
	})

	t.Run("redis url from environment", func(t *testing.T) {
		t.Setenv(EnvRedisURL, "redis://cache:6380/2")
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "filedock.yml"))
		require.NoError(t, err)
		require.NotNil(t, config.Journal)
		assert.Equal(t, "redis://cache:6380/2", config.Journal.RedisURL)
	})
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultPath, ResolvePath(""))

	t.Setenv(EnvConfigPath, "/etc/filedock.yml")
	assert.Equal(t, "/etc/filedock.yml", ResolvePath(""))
	assert.Equal(t, "local.yml", ResolvePath("local.yml"))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config FiledockConfig
		errMsg string
	}{
		{
			name:   "unsupported version",
			config: FiledockConfig{Version: "2.0"},
			errMsg: "unsupported version: 2.0",
		},
		{
			name:   "sample too large",
			config: FiledockConfig{Version: "1.0", Sample: &SampleConfig{MaxBytes: MaxSampleBytes + 1}},
			errMsg: "sample.max_bytes must be between",
		},
		{
			name:   "negative timeout",
			config: FiledockConfig{Version: "1.0", Sample: &SampleConfig{ReadTimeout: -time.Second}},
			errMsg: "sample.read_timeout must be positive",
		},
		{
			name: "recognizer without magic",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "a/b"},
			}},
			errMsg: "one of magic or magic_hex is required",
		},
		{
			name: "recognizer with both magics",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "a/b", Magic: "X", MagicHex: "58"},
			}},
			errMsg: "mutually exclusive",
		},
		{
			name: "recognizer with bad hex",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "a/b", MagicHex: "zz"},
			}},
			errMsg: "invalid magic_hex",
		},
		{
			name: "recognizer beyond the sample",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "a/b", Magic: "ustar", Offset: 4094},
			}},
			errMsg: "beyond sample.max_bytes",
		},
		{
			name: "recognizer with bad mime",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "binary", Magic: "X"},
			}},
			errMsg: "mime must have the form type/subtype",
		},
		{
			name: "duplicate recognizer",
			config: FiledockConfig{Version: "1.0", Recognizers: []RecognizerConfig{
				{ID: "x", MIME: "a/b", Magic: "X"},
				{ID: "x", MIME: "a/c", Magic: "Y"},
			}},
			errMsg: "duplicate recognizer id 'x'",
		},
		{
			name: "handler without patterns",
			config: FiledockConfig{Version: "1.0", Handlers: []HandlerConfig{
				{ID: "text"},
			}},
			errMsg: "at least one mime pattern is required",
		},
		{
			name: "handler with malformed pattern",
			config: FiledockConfig{Version: "1.0", Handlers: []HandlerConfig{
				{ID: "text", MIME: []string{"text/[x"}},
			}},
			errMsg: "handler 'text'",
		},
		{
			name: "duplicate handler",
			config: FiledockConfig{Version: "1.0", Handlers: []HandlerConfig{
				{ID: "text", MIME: []string{"text/*"}},
				{ID: "text", MIME: []string{"text/plain"}},
			}},
			errMsg: "duplicate handler id 'text'",
		},
		{
			name:   "journal without url",
			config: FiledockConfig{Version: "1.0", Journal: &JournalConfig{}},
			errMsg: "journal.redis_url is required",
		},
		{
			name:   "journal with bad url",
			config: FiledockConfig{Version: "1.0", Journal: &JournalConfig{RedisURL: "http://nope"}},
			errMsg: "journal.redis_url",
		},
		{
			name:   "journal instance with colon",
			config: FiledockConfig{Version: "1.0", Journal: &JournalConfig{RedisURL: "redis://localhost:6379", Instance: "a:b"}},
			errMsg: "journal.instance: invalid instance name 'a:b'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, DefaultMaxBytes, config.Sample.MaxBytes)
	assert.Empty(t, config.Handlers)
}
