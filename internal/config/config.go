package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/degreeplan/internal/advisor"
)

// Config holds application configuration.
type Config struct {
	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes disables every tool of a type.
	// Known types: "major", "catalog", "progress", "evaluation".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	Advisor AdvisorConfig `json:"advisor"`
	Cache   CacheConfig   `json:"cache"`
	Web     WebConfig     `json:"web"`
}

// AdvisorConfig selects the text generation backend.
type AdvisorConfig struct {
	// Provider is "ollama" (default) or "gemini".
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	Endpoint       string `json:"endpoint,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	// Disabled skips generation and always returns the offline summary.
	Disabled bool `json:"disabled,omitempty"`
}

// CacheConfig configures the advice cache.
type CacheConfig struct {
	// RedisAddr selects Redis. Empty means an in-process cache.
	RedisAddr  string `json:"redis_addr,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// WebConfig configures the HTTP server.
type WebConfig struct {
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`
}

// DefaultConfig returns the default configuration. Advisor model and endpoint
// stay empty so they resolve per provider in AdvisorSettings.
func DefaultConfig() *Config {
	return &Config{
		Advisor: AdvisorConfig{
			Provider:       string(advisor.ProviderOllama),
			TimeoutSeconds: int(advisor.DefaultTimeout / time.Second),
		},
		Cache: CacheConfig{
			TTLSeconds: 24 * 60 * 60,
		},
		Web: WebConfig{
			Bind: "127.0.0.1",
			Port: 8000,
		},
	}
}

// AdvisorSettings converts the advisor section for advisor.NewGenerator,
// filling the chosen provider's default model and endpoint.
func (c *Config) AdvisorSettings() advisor.Config {
	return advisor.Config{
		Provider: advisor.Provider(c.Advisor.Provider),
		Model:    c.Advisor.Model,
		Endpoint: c.Advisor.Endpoint,
		APIKey:   c.Advisor.APIKey,
		Timeout:  time.Duration(c.Advisor.TimeoutSeconds) * time.Second,
	}.WithDefaults()
}

// CacheTTL returns the advice cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.degreeplan.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.degreeplan) and repo (.degreeplan) directories.
// Repo config is found by walking upward from startDir to find the nearest .degreeplan/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .degreeplan/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".degreeplan", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvModel    = "LLAMA_MODEL"
	EnvEndpoint = "OLLAMA_URL"
	EnvProvider = "DEGREEPLAN_ADVISOR_PROVIDER"
	EnvGemini   = "GEMINI_API_KEY"
	EnvRedis    = "REDIS_ADDR"
)

// ApplyEnv overlays environment values onto cfg. getenv is usually os.Getenv;
// only main calls this.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvProvider)); v != "" {
		cfg.Advisor.Provider = v
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		cfg.Advisor.Model = v
	}
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		cfg.Advisor.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvGemini)); v != "" && cfg.Advisor.APIKey == "" {
		cfg.Advisor.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvRedis)); v != "" {
		cfg.Cache.RedisAddr = v
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.Advisor = AdvisorConfig{
		Provider:       pickString(overlay.Advisor.Provider, base.Advisor.Provider),
		Model:          pickString(overlay.Advisor.Model, base.Advisor.Model),
		Endpoint:       pickString(overlay.Advisor.Endpoint, base.Advisor.Endpoint),
		APIKey:         pickString(overlay.Advisor.APIKey, base.Advisor.APIKey),
		TimeoutSeconds: pickInt(overlay.Advisor.TimeoutSeconds, base.Advisor.TimeoutSeconds),
		// Booleans: overlay wins if true, else base
		Disabled: base.Advisor.Disabled || overlay.Advisor.Disabled,
	}
	result.Cache = CacheConfig{
		RedisAddr:  pickString(overlay.Cache.RedisAddr, base.Cache.RedisAddr),
		TTLSeconds: pickInt(overlay.Cache.TTLSeconds, base.Cache.TTLSeconds),
	}
	result.Web = WebConfig{
		Bind: pickString(overlay.Web.Bind, base.Web.Bind),
		Port: pickInt(overlay.Web.Port, base.Web.Port),
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
