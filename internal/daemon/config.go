// Package daemon holds the sheriff daemon configuration: the TOML file at
// ~/.sheriff/config.toml plus the defaults used when it is absent.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration. Every field has a default, so a
// missing config file is not an error.
type Config struct {
	API         APIConfig         `toml:"api"`
	Registry    RegistryConfig    `toml:"registry"`
	Statute     StatuteConfig     `toml:"statute"`
	Enforcement EnforcementConfig `toml:"enforcement"`
	Letters     LettersConfig     `toml:"letters"`
	Ledger      LedgerConfig      `toml:"ledger"`
	Metrics     MetricsConfig     `toml:"metrics"`
}

// APIConfig configures the HTTP API listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Timeout string `toml:"timeout"`
}

// RegistryConfig selects where permit snapshots come from: the built-in
// fixture, a watchlist file, or the local store.
type RegistryConfig struct {
	Source string `toml:"source"`
	Path   string `toml:"path"`
}

// StatuteConfig points at an optional YAML statute profile. Empty means the
// built-in Florida profile.
type StatuteConfig struct {
	Profile string `toml:"profile"`
}

// EnforcementConfig bounds the enforcement pipeline stages. DemoMode keeps
// letter drafting on the built-in template instead of a drafting provider.
type EnforcementConfig struct {
	DraftTimeout    string `toml:"draft_timeout"`
	NotarizeTimeout string `toml:"notarize_timeout"`
	DemoMode        bool   `toml:"demo_mode"`
}

// LettersConfig names the external drafting provider used when demo mode
// is off.
type LettersConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
}

// LedgerConfig selects the enforcement ledger backend.
type LedgerConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// MetricsConfig gates the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8410,
			Timeout: "60s",
		},
		Registry: RegistryConfig{
			Source: "fixture",
		},
		Enforcement: EnforcementConfig{
			DraftTimeout:    "10s",
			NotarizeTimeout: "10s",
			DemoMode:        true,
		},
		Ledger: LedgerConfig{
			Backend: "memory",
			Path:    "~/.sheriff/sheriff.db",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns ~/.sheriff/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sheriff", "config.toml")
	}
	return filepath.Join(home, ".sheriff", "config.toml")
}

// Load reads a TOML config file over the defaults. A missing file returns
// the defaults; a malformed or invalid file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the daemon cannot run with.
func (c Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api port %d out of range", c.API.Port)
	}
	switch c.Registry.Source {
	case "fixture", "file", "store":
	default:
		return fmt.Errorf("registry source %q (want fixture, file, or store)", c.Registry.Source)
	}
	if c.Registry.Source == "file" && c.Registry.Path == "" {
		return fmt.Errorf("registry source %q requires registry.path", c.Registry.Source)
	}
	switch c.Ledger.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("ledger backend %q (want memory or sqlite)", c.Ledger.Backend)
	}
	if c.Ledger.Backend == "sqlite" && c.Ledger.Path == "" {
		return fmt.Errorf("ledger backend %q requires ledger.path", c.Ledger.Backend)
	}
	if !c.Enforcement.DemoMode && c.Letters.Provider == "" {
		return fmt.Errorf("letters.provider is required when demo_mode is off")
	}
	return nil
}

// ListenAddr returns the host:port the API binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// APITimeout returns the per-request timeout. Bad or missing values fall
// back to the default.
func (c Config) APITimeout() time.Duration {
	return parseTimeout(c.API.Timeout, 60*time.Second)
}

// DraftTimeout bounds the letter drafting stage.
func (c Config) DraftTimeout() time.Duration {
	return parseTimeout(c.Enforcement.DraftTimeout, 10*time.Second)
}

// NotarizeTimeout bounds the notarization stage.
func (c Config) NotarizeTimeout() time.Duration {
	return parseTimeout(c.Enforcement.NotarizeTimeout, 10*time.Second)
}

// LedgerPath expands a leading ~/ in the configured ledger path.
func (c Config) LedgerPath() string {
	return expandHome(c.Ledger.Path)
}

func parseTimeout(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
