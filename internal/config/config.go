// Package config loads the mathspan configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "mathspan.yaml"

// Renderer names.
const (
	RendererTerminal = "terminal"
	RendererPlain    = "plain"
	RendererMathJax  = "mathjax"
	RendererCommand  = "command"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverLoam   = "loam"
	DriverRedis  = "redis"
)

// Config is the decoded configuration file.
type Config struct {
	Profile  string                    `mapstructure:"profile"`
	Profiles map[string]domain.Profile `mapstructure:"profiles"`
	Typeset  TypesetConfig             `mapstructure:"typeset"`
	Store    StoreConfig               `mapstructure:"store"`
	Log      LogConfig                 `mapstructure:"log"`
}

// TypesetConfig configures the typeset queue and the renderer behind it.
type TypesetConfig struct {
	Renderer    string        `mapstructure:"renderer"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Debounce    time.Duration `mapstructure:"debounce"`
	MathJaxURL  string        `mapstructure:"mathjax_url"`
	Command     []string      `mapstructure:"command"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	Dir           string        `mapstructure:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, documents are stored
	// encrypted; FallbackKeys still decrypt documents saved before a rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Profile:  domain.ProfileDefault,
		Profiles: domain.BuiltinProfiles(),
		Typeset: TypesetConfig{
			Renderer:   RendererTerminal,
			RetryDelay: 100 * time.Millisecond,
			Debounce:   250 * time.Millisecond,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Dir:    ".",
			Prefix: "mathspan:doc:",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path (YAML, or JSON by extension) on top of
// the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return Decode(raw)
}

// Decode applies raw on top of the defaults.
func Decode(raw map[string]any) (*Config, error) {
	cfg := Default()
	builtin := cfg.Profiles
	cfg.Profiles = nil

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// User profiles extend and override the built-in ones.
	profiles := builtin
	for name, p := range cfg.Profiles {
		p.Name = name
		profiles[name] = p
	}
	cfg.Profiles = profiles

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if _, err := c.ActiveProfile(); err != nil {
		return err
	}
	switch c.Typeset.Renderer {
	case RendererTerminal, RendererPlain:
	case RendererMathJax:
		if c.Typeset.MathJaxURL == "" {
			return fmt.Errorf("invalid config: renderer %q requires typeset.mathjax_url", c.Typeset.Renderer)
		}
	case RendererCommand:
		if len(c.Typeset.Command) == 0 {
			return fmt.Errorf("invalid config: renderer %q requires typeset.command", c.Typeset.Renderer)
		}
	default:
		return fmt.Errorf("invalid config: unknown renderer %q", c.Typeset.Renderer)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverLoam:
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("invalid config: store driver %q requires store.redis_addr", c.Store.Driver)
		}
	default:
		return fmt.Errorf("invalid config: unknown store driver %q", c.Store.Driver)
	}
	if c.Typeset.MaxAttempts < 0 {
		return fmt.Errorf("invalid config: typeset.max_attempts must not be negative")
	}
	return nil
}

// ActiveProfile resolves the selected profile.
func (c *Config) ActiveProfile() (domain.Profile, error) {
	name := c.Profile
	if name == "" {
		name = domain.ProfileDefault
	}
	p, ok := c.Profiles[name]
	if !ok {
		return domain.Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the configured profiles in sorted order.
func (c *Config) ProfileNames() []string {
	return slices.Sorted(maps.Keys(c.Profiles))
}
