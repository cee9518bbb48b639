package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[{"t":"Para","c":[` +
	`{"t":"Str","c":"Let"},{"t":"Space"},{"t":"Math","c":[{"t":"InlineMath"},"x+1"]},{"t":"Space"},` +
	`{"t":"Math","c":[{"t":"DisplayMath"},"\\frac{a}{b}"]}]}]}`

// run executes the CLI with a config file that does not exist unless the
// caller passes --config.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))

	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRead_List(t *testing.T) {
	out, err := run(t, sample, "read", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "POS")
	assert.Contains(t, out, "0    InlineMath   $x+1$")
	assert.Contains(t, out, `1    DisplayMath  $$\frac{a}{b}$$`)
}

func TestReadWrite_RoundTrip(t *testing.T) {
	model, err := run(t, sample, "read")
	require.NoError(t, err)
	assert.Contains(t, model, `"MathNode"`)

	out, err := run(t, model, "write", "-")
	require.NoError(t, err)

	doc, err := pandoc.Decode(strings.NewReader(out))
	require.NoError(t, err)
	para, _ := pandoc.AsToken(doc.Blocks[0])
	inlines, _ := para.Items()
	assert.Equal(t, `Let $x+1$ $$\frac{a}{b}$$`, pandoc.Literal(inlines))
}

func TestWrite_Blogdown(t *testing.T) {
	model, err := run(t, sample, "read")
	require.NoError(t, err)

	out, err := run(t, model, "write", "--profile", "blogdown")
	require.NoError(t, err)
	assert.Contains(t, out, `"Code"`)
	assert.NotContains(t, out, `"Math"`)
}

func TestRead_UnknownKind(t *testing.T) {
	_, err := run(t, strings.Replace(sample, "InlineMath", "SideMath", 1), "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized math kind")
}

func TestCheck(t *testing.T) {
	out, err := run(t, sample, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok 2 equations")

	bad := strings.Replace(sample, `\\frac{a}{b}`, `\\frac{a`, 1)
	out, err = run(t, bad, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 equations failed")
	assert.Contains(t, out, "fail 1:")
}

func TestImport(t *testing.T) {
	out, err := run(t, "Area: $\\pi r^2$\n\n$$\nE = mc^2\n$$\n", "import")
	require.NoError(t, err)

	model, err := run(t, out, "read", "--list")
	require.NoError(t, err)
	assert.Contains(t, model, `$\pi r^2$`)
	assert.Contains(t, model, "DisplayMath")
}

func TestPreview(t *testing.T) {
	out, err := run(t, "", "preview", "--expr", "$a^2$")
	require.NoError(t, err)
	assert.Contains(t, out, "a^2")

	_, err = run(t, "", "preview", "--expr", "a^2")
	assert.Error(t, err)

	out, err = run(t, sample, "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "0: ")
	assert.Contains(t, out, "1: ")
}

func TestDocs_Loam(t *testing.T) {
	docs := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "mathspan.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: loam\n  dir: "+docs+"\n"), 0644))

	_, err := run(t, sample, "docs", "put", "notes", "--config", cfgPath)
	require.NoError(t, err)

	out, err := run(t, "", "docs", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "notes\n", out)

	out, err = run(t, "", "docs", "get", "notes", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"x+1"`)

	_, err = run(t, "", "docs", "rm", "notes", "--config", cfgPath)
	require.NoError(t, err)

	_, err = run(t, "", "docs", "get", "notes", "--config", cfgPath)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mathspan version "))
}
