package tui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mathspan/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := tui.NewStatus(&buf)

	s.OK("%d equations", 3)
	s.Warn("node %d is empty", 1)
	s.Fail("bad kind")
	s.Info("done")

	assert.Equal(t, "ok 3 equations\nwarn node 1 is empty\nfail bad kind\ndone\n", buf.String())
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "mathspan")
	assert.Contains(t, buf.String(), "v0.1.0")
}

func TestRenderer_NonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, tui.IsTerminal(f))
	assert.False(t, tui.IsTerminal(nil))

	out, err := tui.NewRenderer(f)("`x+1`")
	require.NoError(t, err)
	assert.Contains(t, out, "x+1")
	assert.NotContains(t, out, "\x1b[")
}
