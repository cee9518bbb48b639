package process_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/mathspan/pkg/adapters/process"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestTypesetter_PassesExpression(t *testing.T) {
	skipOnWindows(t)

	ts := process.New("sh", []string{"-c", `printf '%s|%s|%s|' "$MATHSPAN_ARG_KIND" "$MATHSPAN_ARG_DISPLAY" "$MATHSPAN_ARG_MATH"; cat`})

	target := surface.NewElement("div")
	require.NoError(t, ts.Typeset(context.Background(), target, "$$a+b$$"))
	assert.Equal(t, "DisplayMath|true|a+b|a+b", target.Text())

	out, err := ts.Render(context.Background(), "$x$")
	require.NoError(t, err)
	assert.Equal(t, "InlineMath|false|x|x", out)
}

func TestTypesetter_Failures(t *testing.T) {
	skipOnWindows(t)

	t.Run("Not Math", func(t *testing.T) {
		ts := process.New("sh", []string{"-c", "cat"})
		_, err := ts.Render(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrNoMath)
	})

	t.Run("Non-Zero Exit", func(t *testing.T) {
		ts := process.New("sh", []string{"-c", "echo 'Undefined control sequence' >&2; exit 3"})
		_, err := ts.Render(context.Background(), `$\foo$`)
		assert.ErrorIs(t, err, process.ErrRender)
		assert.Contains(t, err.Error(), "Undefined control sequence")
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		ts := process.New("sh", []string{"-c", "sleep 5"})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := ts.Render(ctx, "$x$")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Empty Command", func(t *testing.T) {
		_, err := process.FromArgv(nil)
		assert.Error(t, err)
	})
}

func TestTypesetter_Env(t *testing.T) {
	skipOnWindows(t)

	ts, err := process.FromArgv([]string{"sh", "-c", `printf '%s' "$STYLE"`}, process.WithEnv("STYLE=svg"), process.WithBaseDir(t.TempDir()))
	require.NoError(t, err)

	out, err := ts.Render(context.Background(), "$x$")
	require.NoError(t, err)
	assert.Equal(t, "svg", out)
}
