package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dyluth/filedock/internal/handler"
	"github.com/dyluth/filedock/internal/instance"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the config file looked up in the working directory.
	DefaultPath = "filedock.yml"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "FILEDOCK_CONFIG"

	// EnvRedisURL overrides journal.redis_url.
	EnvRedisURL = "FILEDOCK_REDIS_URL"

	DefaultMaxBytes    = 4096
	MaxSampleBytes     = 1 << 20
	DefaultReadTimeout = 5 * time.Second
	DefaultInstance    = "default"
	DefaultRecentSize  = 20
	DefaultConcurrency = 4
)

// FiledockConfig represents the top-level filedock.yml configuration
type FiledockConfig struct {
	Version        string             `yaml:"version"`
	StartupHandler string             `yaml:"startup_handler,omitempty"` // Task given to windows opened empty
	Sample         *SampleConfig      `yaml:"sample,omitempty"`
	Workspace      *WorkspaceConfig   `yaml:"workspace,omitempty"`
	Recognizers    []RecognizerConfig `yaml:"recognizers,omitempty"`
	Handlers       []HandlerConfig    `yaml:"handlers,omitempty"`
	Journal        *JournalConfig     `yaml:"journal,omitempty"`
}

// SampleConfig bounds the content prefix read for classification
type SampleConfig struct {
	MaxBytes    int           `yaml:"max_bytes,omitempty"`
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"` // e.g. "5s"; a hung source fails after this
}

// WorkspaceConfig tunes the in-process workspace
type WorkspaceConfig struct {
	RecentSize  int `yaml:"recent_size,omitempty"`
	Concurrency int `yaml:"concurrency,omitempty"` // Samples read at once when loading many resources
}

// RecognizerConfig declares a magic-number recognizer
type RecognizerConfig struct {
	ID       string   `yaml:"id"`
	MIME     string   `yaml:"mime"`
	Magic    string   `yaml:"magic,omitempty"`     // Literal signature
	MagicHex string   `yaml:"magic_hex,omitempty"` // Hex-encoded signature, for binary magic
	Offset   int      `yaml:"offset,omitempty"`
	Before   []string `yaml:"before,omitempty"`
	After    []string `yaml:"after,omitempty"`
	Wildcard bool     `yaml:"wildcard,omitempty"`
}

// HandlerConfig declares a task type
type HandlerConfig struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name,omitempty"`
	MIME           []string `yaml:"mime"` // Patterns such as "text/*"
	DenyAlternates bool     `yaml:"deny_alternates,omitempty"`
}

// JournalConfig points at the Redis instance that records events
type JournalConfig struct {
	RedisURL string `yaml:"redis_url"`
	Instance string `yaml:"instance,omitempty"`
}

// Default returns the configuration used when no filedock.yml exists.
func Default() *FiledockConfig {
	c := &FiledockConfig{Version: "1.0"}
	_ = c.Validate()
	return c
}

// Validate performs strict validation on the configuration and fills in
// defaults
func (c *FiledockConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Sample == nil {
		c.Sample = &SampleConfig{}
	}
	if c.Sample.MaxBytes == 0 {
		c.Sample.MaxBytes = DefaultMaxBytes
	}
	if c.Sample.MaxBytes < 0 || c.Sample.MaxBytes > MaxSampleBytes {
		return fmt.Errorf("sample.max_bytes must be between 1 and %d, got %d", MaxSampleBytes, c.Sample.MaxBytes)
	}
	if c.Sample.ReadTimeout == 0 {
		c.Sample.ReadTimeout = DefaultReadTimeout
	}
	if c.Sample.ReadTimeout < 0 {
		return fmt.Errorf("sample.read_timeout must be positive, got %s", c.Sample.ReadTimeout)
	}

	if c.Workspace == nil {
		c.Workspace = &WorkspaceConfig{}
	}
	if c.Workspace.RecentSize == 0 {
		c.Workspace.RecentSize = DefaultRecentSize
	}
	if c.Workspace.Concurrency == 0 {
		c.Workspace.Concurrency = DefaultConcurrency
	}
	if c.Workspace.RecentSize < 0 || c.Workspace.Concurrency < 0 {
		return fmt.Errorf("workspace.recent_size and workspace.concurrency must be positive")
	}

	seen := make(map[string]bool)
	for i := range c.Recognizers {
		r := &c.Recognizers[i]
		if err := r.Validate(c.Sample.MaxBytes); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate recognizer id '%s'", r.ID)
		}
		seen[r.ID] = true
	}

	seen = make(map[string]bool)
	for i := range c.Handlers {
		h := &c.Handlers[i]
		if err := h.Validate(); err != nil {
			return err
		}
		if seen[h.ID] {
			return fmt.Errorf("duplicate handler id '%s'", h.ID)
		}
		seen[h.ID] = true
	}

	if c.Journal != nil {
		if err := c.Journal.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks a recognizer declaration against the sample cap
func (r *RecognizerConfig) Validate(maxBytes int) error {
	if r.ID == "" {
		return fmt.Errorf("recognizer: id is required")
	}
	if !strings.Contains(r.MIME, "/") {
		return fmt.Errorf("recognizer '%s': mime must have the form type/subtype, got %q", r.ID, r.MIME)
	}
	sig, err := r.Signature()
	if err != nil {
		return err
	}
	if r.Offset < 0 {
		return fmt.Errorf("recognizer '%s': offset must be >= 0", r.ID)
	}
	if r.Offset+len(sig) > maxBytes {
		return fmt.Errorf("recognizer '%s': signature ends at byte %d, beyond sample.max_bytes %d", r.ID, r.Offset+len(sig), maxBytes)
	}
	return nil
}

// Signature returns the decoded magic bytes
func (r *RecognizerConfig) Signature() ([]byte, error) {
	switch {
	case r.Magic != "" && r.MagicHex != "":
		return nil, fmt.Errorf("recognizer '%s': magic and magic_hex are mutually exclusive", r.ID)
	case r.Magic != "":
		return []byte(r.Magic), nil
	case r.MagicHex != "":
		sig, err := hex.DecodeString(strings.ReplaceAll(r.MagicHex, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("recognizer '%s': invalid magic_hex: %w", r.ID, err)
		}
		return sig, nil
	default:
		return nil, fmt.Errorf("recognizer '%s': one of magic or magic_hex is required", r.ID)
	}
}

// Validate checks a handler declaration
func (h *HandlerConfig) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("handler: id is required")
	}
	if len(h.MIME) == 0 {
		return fmt.Errorf("handler '%s': at least one mime pattern is required", h.ID)
	}
	for _, p := range h.MIME {
		if err := handler.ValidatePattern(p); err != nil {
			return fmt.Errorf("handler '%s': %w", h.ID, err)
		}
	}
	if h.Name == "" {
		h.Name = h.ID
	}
	return nil
}

// Validate checks the journal connection settings
func (j *JournalConfig) Validate() error {
	if j.RedisURL == "" {
		return fmt.Errorf("journal.redis_url is required when journal is configured")
	}
	if _, err := redis.ParseURL(j.RedisURL); err != nil {
		return fmt.Errorf("journal.redis_url: %w", err)
	}
	if j.Instance == "" {
		j.Instance = DefaultInstance
	}
	if err := instance.ValidateName(j.Instance); err != nil {
		return fmt.Errorf("journal.instance: %w", err)
	}
	return nil
}

// RedisOptions returns the connection options for the journal
func (j *JournalConfig) RedisOptions() (*redis.Options, error) {
	return redis.ParseURL(j.RedisURL)
}

// ResolvePath picks the config file: the flag value, then FILEDOCK_CONFIG, then
// filedock.yml in the working directory
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads and validates filedock.yml from the specified path
func Load(path string) (*FiledockConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config FiledockConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path, falling back to the defaults when the file does
// not exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*FiledockConfig, error) {
	config, err := Load(path)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	config = &FiledockConfig{Version: "1.0"}
	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *FiledockConfig) applyEnv() {
	if url := os.Getenv(EnvRedisURL); url != "" {
		if c.Journal == nil {
			c.Journal = &JournalConfig{}
		}
		c.Journal.RedisURL = url
	}
}
