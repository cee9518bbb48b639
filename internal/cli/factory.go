package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/internal/config"
	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/internal/presentation/tui"
	"github.com/aretw0/mathspan/pkg/adapters/loam"
	"github.com/aretw0/mathspan/pkg/adapters/mathjax"
	"github.com/aretw0/mathspan/pkg/adapters/memory"
	"github.com/aretw0/mathspan/pkg/adapters/process"
	"github.com/aretw0/mathspan/pkg/adapters/redis"
	"github.com/aretw0/mathspan/pkg/adapters/terminal"
	"github.com/aretw0/mathspan/pkg/persistence/middleware"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the global command-line overrides.
type Options struct {
	ConfigPath string
	Profile    string
	LogLevel   string
	Dir        string
}

// LoadConfig reads the configuration file and applies the overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Dir != "" {
		cfg.Store.Dir = opts.Dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger creates the application logger on stderr.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// NewTypesetter creates the configured renderer.
func NewTypesetter(cfg *config.Config) (ports.Typesetter, error) {
	switch cfg.Typeset.Renderer {
	case config.RendererMathJax:
		return mathjax.New(cfg.Typeset.MathJaxURL), nil
	case config.RendererCommand:
		return process.FromArgv(cfg.Typeset.Command, process.WithBaseDir(cfg.Store.Dir))
	case config.RendererTerminal:
		if tui.IsTerminal(os.Stdout) {
			return terminal.New()
		}
		return terminal.NewPlain()
	default:
		return terminal.NewPlain()
	}
}

// NewEditor creates an Editor from the configuration. reg may be nil.
func NewEditor(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*mathspan.Editor, error) {
	profile, err := cfg.ActiveProfile()
	if err != nil {
		return nil, err
	}
	typesetter, err := NewTypesetter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create typesetter: %w", err)
	}

	opts := []mathspan.Option{
		mathspan.WithProfile(profile),
		mathspan.WithTypesetter(typesetter),
		mathspan.WithLogger(logger),
		mathspan.WithRetryDelay(cfg.Typeset.RetryDelay),
		mathspan.WithMaxAttempts(cfg.Typeset.MaxAttempts),
		mathspan.WithTaskTimeout(cfg.Typeset.Timeout),
		mathspan.WithDebounce(cfg.Typeset.Debounce),
	}
	if reg != nil {
		opts = append(opts, mathspan.WithRegisterer(reg))
	}
	return mathspan.New(opts...)
}

// NewSessions creates the configured document store wrapped in a session
// manager. The returned func releases the store's resources.
func NewSessions(cfg *config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	noop := func() error { return nil }
	sessionOpts := []session.Option{session.WithLogger(logger)}

	var store ports.DocumentStore
	closeFn := noop

	switch cfg.Store.Driver {
	case config.DriverLoam:
		s, err := loam.New(cfg.Store.Dir)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open document directory: %w", err)
		}
		store = s
	case config.DriverRedis:
		s := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB,
			redis.WithPrefix(cfg.Store.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		store = s
		closeFn = s.Close
		sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(s.Client(), cfg.Store.Prefix)))
	default:
		store = memory.NewStore()
	}

	if cfg.Store.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg.Store)
		if err != nil {
			_ = closeFn()
			return nil, noop, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(enc))
	}

	logger.Debug("document store ready", "driver", cfg.Store.Driver)
	return session.NewManager(store, sessionOpts...), closeFn, nil
}

func encryptionConfig(cfg config.StoreConfig) (middleware.EncryptionConfig, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, err
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("fallback key: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}
