package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mathspan/internal/cli"
	"github.com/aretw0/mathspan/internal/config"
	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/adapters/mathjax"
	"github.com/aretw0/mathspan/pkg/adapters/process"
	"github.com/aretw0/mathspan/pkg/adapters/terminal"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathspan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: plain\nlog: {level: warn}\n"), 0644))

	cfg, err := cli.LoadConfig(cli.Options{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePlain, cfg.Profile)
	assert.Equal(t, "warn", cfg.Log.Level)

	cfg, err = cli.LoadConfig(cli.Options{ConfigPath: path, Profile: "blogdown", LogLevel: "debug", Dir: "docs"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileBlogdown, cfg.Profile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "docs", cfg.Store.Dir)

	_, err = cli.LoadConfig(cli.Options{ConfigPath: path, Profile: "nope"})
	assert.Error(t, err)
}

func TestNewTypesetter(t *testing.T) {
	cfg := config.Default()
	cfg.Typeset.Renderer = config.RendererPlain
	ts, err := cli.NewTypesetter(cfg)
	require.NoError(t, err)
	assert.IsType(t, &terminal.Typesetter{}, ts)

	cfg.Typeset.Renderer = config.RendererMathJax
	cfg.Typeset.MathJaxURL = "http://localhost:8003"
	ts, err = cli.NewTypesetter(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mathjax.Typesetter{}, ts)

	cfg.Typeset.Renderer = config.RendererCommand
	cfg.Typeset.Command = []string{"tex2svg"}
	ts, err = cli.NewTypesetter(cfg)
	require.NoError(t, err)
	assert.IsType(t, &process.Typesetter{}, ts)
}

func TestNewEditor_UsesProfile(t *testing.T) {
	cfg := config.Default()
	cfg.Profile = domain.ProfileBlogdown
	cfg.Typeset.Renderer = config.RendererPlain

	reg := prometheus.NewRegistry()
	editor, err := cli.NewEditor(cfg, logging.NewNop(), reg)
	require.NoError(t, err)
	defer editor.Close()

	assert.True(t, editor.Profile().BlogdownMathInCode)
	assert.NotNil(t, editor.Metrics())

	out, err := editor.Preview(context.Background(), "$x$")
	require.NoError(t, err)
	assert.Contains(t, out, "x")
}

func TestNewSessions_Drivers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := map[string]func(*config.Config){
		config.DriverMemory: func(c *config.Config) {},
		config.DriverLoam: func(c *config.Config) {
			c.Store.Driver = config.DriverLoam
			c.Store.Dir = t.TempDir()
		},
		config.DriverRedis: func(c *config.Config) {
			c.Store.Driver = config.DriverRedis
			c.Store.RedisAddr = mr.Addr()
			c.Store.TTL = time.Minute
		},
	}
	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			setup(cfg)

			sessions, closeFn, err := cli.NewSessions(cfg, logging.NewNop())
			require.NoError(t, err)
			defer closeFn()

			doc := document.New()
			doc.Blocks = append(doc.Blocks, domain.NewMathNode(domain.MathInline, "y"))
			require.NoError(t, sessions.Save(ctx, "notes", doc))

			ids, err := sessions.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"notes"}, ids)

			loaded, err := sessions.Open(ctx, "notes")
			require.NoError(t, err)
			require.Len(t, loaded.MathNodes(), 1)
			assert.Equal(t, "$y$", loaded.MathNodes()[0].Node.Content)
		})
	}
}

func TestNewSessions_Encrypted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Store.Driver = config.DriverLoam
	cfg.Store.Dir = dir
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, middleware.KeySize))

	sessions, closeFn, err := cli.NewSessions(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeFn()

	doc := document.New()
	doc.Blocks = append(doc.Blocks, domain.NewMathNode(domain.MathInline, "secret"))
	require.NoError(t, sessions.Save(ctx, "notes", doc))

	raw, err := os.ReadFile(filepath.Join(dir, "notes.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	loaded, err := sessions.Open(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "$secret$", loaded.MathNodes()[0].Node.Content)

	cfg.Store.EncryptionKey = "short"
	_, _, err = cli.NewSessions(cfg, logging.NewNop())
	assert.Error(t, err)
}
