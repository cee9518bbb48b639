package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTypesetter struct{}

func (echoTypesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	if _, _, ok := domain.Classify(source); !ok {
		return domain.ErrNoMath
	}
	target.SetContent("<" + source + ">")
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	editor, err := mathspan.New(mathspan.WithTypesetter(echoTypesetter{}))
	require.NoError(t, err)
	t.Cleanup(editor.Close)
	return NewServer(editor, "test")
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestServer_ReadThenWrite(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	doc := `{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[{"t":"Para","c":[{"t":"Math","c":[{"t":"DisplayMath"},"a^2"]}]}]}`
	res, err := s.handleRead(ctx, call(map[string]any{"document": doc}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	model := text(t, res)
	assert.Contains(t, model, `"content":"$$a^2$$"`)

	// Remove the closing delimiters: the equation is written back as raw markdown.
	edited := strings.Replace(model, `"$$a^2$$"`, `"$$a^2"`, 1)
	res, err = s.handleWrite(ctx, call(map[string]any{"model": edited}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), `"RawInline"`)
	assert.Contains(t, text(t, res), `$$a^2`)
}

func TestServer_ReadRejectsUnknownKind(t *testing.T) {
	s := newTestServer(t)

	doc := `{"blocks":[{"t":"Para","c":[{"t":"Math","c":[{"t":"SideMath"},"a"]}]}]}`
	res, err := s.handleRead(context.Background(), call(map[string]any{"document": doc}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unrecognized math kind")

	res, err = s.handleRead(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_Classify(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		text string
		want ClassifyResponse
	}{
		{"$x$", ClassifyResponse{Kind: "InlineMath", Expression: "x", WellFormed: true}},
		{"$$ $$", ClassifyResponse{Kind: "DisplayMath", Expression: " ", WellFormed: true, Empty: true}},
		{"x$", ClassifyResponse{Expression: "x$"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := s.handleClassify(ctx, mcp.CallToolRequest{}, ClassifyArgs{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_Typeset(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleTypeset(ctx, call(map[string]any{"source": "$y$"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "<$y$>", text(t, res))

	res, err = s.handleTypeset(ctx, call(map[string]any{"source": "y"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "no math delimiters")
}
