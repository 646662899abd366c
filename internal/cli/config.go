// Package cli holds the shared wiring behind the easel commands: config
// loading, the engine factory, and the long-running command loops. The cobra
// layer in cmd/easel stays thin and delegates here.
package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/chacha20poly1305"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is consulted when no --config flag is given.
const DefaultConfigFile = "easel.yaml"

// Config collects every knob the commands share. Values are resolved in
// three layers: built-in defaults, then the YAML config file, then EASEL_*
// environment variables. A .env file in the working directory is folded into
// the environment before the last layer runs.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// ModulesDir points at a directory of module manifests. Empty leaves the
	// engine without a catalog, so any module name is accepted.
	ModulesDir string `yaml:"modules_dir"`

	HTTPPort int `yaml:"http_port"`
	MCPPort  int `yaml:"mcp_port"`

	// RedisURL switches the surface store from in-memory to Redis.
	RedisURL string `yaml:"redis_url"`

	// RedisTTL expires orphaned records; zero keeps them until Delete.
	RedisTTL time.Duration `yaml:"redis_ttl"`

	// StateDir switches the surface store to JSON files in a directory.
	// Ignored when RedisURL is set.
	StateDir string `yaml:"state_dir"`

	// StrictProps validates props against manifest schemas on every start
	// and update. Needs a catalog to have any effect.
	StrictProps bool `yaml:"strict_props"`

	// ErrorOverlay keeps surfaces alive when a render fails and exposes the
	// failure instead of rejecting the operation. Development aid.
	ErrorOverlay bool `yaml:"error_overlay"`

	// CoalesceWindow suppresses duplicate update events inside the window
	// before they reach hooks. Zero disables coalescing.
	CoalesceWindow time.Duration `yaml:"coalesce_window"`

	// SealKey, base64-encoded and 32 bytes once decoded, encrypts props at
	// rest. SealFallbackKeys are tried on reads during key rotation.
	SealKey          string   `yaml:"seal_key"`
	SealFallbackKeys []string `yaml:"seal_fallback_keys"`

	// ScrubPatterns are regular expressions for prop keys to mask before
	// records are persisted. Masking is one-way.
	ScrubPatterns []string `yaml:"scrub_patterns"`

	// RenderHost runs rendering in a child process instead of in-process
	// components. The command is spawned once and spoken to over stdio.
	RenderHost     string   `yaml:"render_host"`
	RenderHostArgs []string `yaml:"render_host_args"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		HTTPPort:  8080,
		MCPPort:   8081,
	}
}

// Load resolves the effective configuration. An explicit path must exist;
// the default file is optional. Environment variables win over the file.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case and not an error.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	envString("EASEL_LOG_LEVEL", &c.LogLevel)
	envString("EASEL_LOG_FORMAT", &c.LogFormat)
	envString("EASEL_MODULES_DIR", &c.ModulesDir)
	envString("EASEL_REDIS_URL", &c.RedisURL)
	envString("EASEL_STATE_DIR", &c.StateDir)
	envString("EASEL_SEAL_KEY", &c.SealKey)
	envString("EASEL_RENDER_HOST", &c.RenderHost)
	envList("EASEL_SEAL_FALLBACK_KEYS", &c.SealFallbackKeys)
	envList("EASEL_SCRUB_PATTERNS", &c.ScrubPatterns)

	if err := envInt("EASEL_HTTP_PORT", &c.HTTPPort); err != nil {
		return err
	}
	if err := envInt("EASEL_MCP_PORT", &c.MCPPort); err != nil {
		return err
	}
	if err := envBool("EASEL_STRICT_PROPS", &c.StrictProps); err != nil {
		return err
	}
	if err := envBool("EASEL_ERROR_OVERLAY", &c.ErrorOverlay); err != nil {
		return err
	}
	if err := envDuration("EASEL_REDIS_TTL", &c.RedisTTL); err != nil {
		return err
	}
	return envDuration("EASEL_COALESCE_WINDOW", &c.CoalesceWindow)
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	for _, p := range c.ScrubPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid scrub_patterns entry %q: %w", p, err)
		}
	}
	if _, err := c.sealKeys(); err != nil {
		return err
	}
	return nil
}

// sealKeys decodes the configured seal keys. The middleware insists on
// 32-byte keys, so length is checked here where the error can carry the
// config field name.
func (c *Config) sealKeys() (active []byte, err error) {
	if c.SealKey == "" {
		return nil, nil
	}
	active, err = decodeSealKey(c.SealKey)
	if err != nil {
		return nil, fmt.Errorf("invalid seal_key: %w", err)
	}
	return active, nil
}

func (c *Config) sealFallbacks() ([][]byte, error) {
	keys := make([][]byte, 0, len(c.SealFallbackKeys))
	for i, encoded := range c.SealFallbackKeys {
		key, err := decodeSealKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid seal_fallback_keys[%d]: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func decodeSealKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("decoded key is %d bytes, want %d", len(key), chacha20poly1305.KeySize)
	}
	return key, nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envList(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
