// Package mcp exposes the transcoder and the typesetter as Model Context
// Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentsURI is the resource listing stored documents.
const DocumentsURI = "mathspan://documents"

// Engine is what the MCP server needs from the editor.
type Engine interface {
	ports.Codec
	ports.Previewer
}

// ClassifyArgs are the arguments of classify_math.
type ClassifyArgs struct {
	Text string `json:"text"`
}

// ClassifyResponse describes a piece of math source.
type ClassifyResponse struct {
	Kind       string `json:"kind,omitempty" jsonschema_description:"InlineMath or DisplayMath; empty when not math"`
	Expression string `json:"expression" jsonschema_description:"The source without its delimiters"`
	WellFormed bool   `json:"well_formed" jsonschema_description:"Whether the text carries matching delimiters"`
	Empty      bool   `json:"empty" jsonschema_description:"Whether the expression is blank"`
}

// Server wraps the editor and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions exposes the stored documents as a resource.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("mathspan-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.sessions != nil {
		s.registerResources()
	}
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("read_pandoc",
		mcp.WithDescription("Load a Pandoc JSON document and return the editor model, in which every equation is a MathNode."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Pandoc JSON document")),
	), s.handleRead)

	s.mcpServer.AddTool(mcp.NewTool("write_pandoc",
		mcp.WithDescription("Save an editor model back to a Pandoc JSON document."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Editor model as returned by read_pandoc")),
	), s.handleWrite)

	s.mcpServer.AddTool(mcp.NewTool("classify_math",
		mcp.WithDescription("Report whether text is delimited inline ($...$) or display ($$...$$) math."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Math source including delimiters")),
		mcp.WithOutputSchema[ClassifyResponse](),
	), mcp.NewStructuredToolHandler(s.handleClassify))

	s.mcpServer.AddTool(mcp.NewTool("typeset_math",
		mcp.WithDescription("Typeset delimited math source and return the rendering."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Math source including delimiters")),
	), s.handleTypeset)
}

func (s *Server) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("document", "")
	if raw == "" {
		return mcp.NewToolResultError("document is required"), nil
	}
	doc, err := pandoc.Decode(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	model, err := s.engine.Load(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	var b strings.Builder
	if err := document.Encode(&b, model); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(strings.TrimSpace(b.String())), nil
}

func (s *Server) handleWrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("model", "")
	if raw == "" {
		return mcp.NewToolResultError("model is required"), nil
	}
	model, err := document.Decode(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.engine.Save(model)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}

	var b strings.Builder
	if err := pandoc.Encode(&b, out); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(strings.TrimSpace(b.String())), nil
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest, args ClassifyArgs) (ClassifyResponse, error) {
	kind, expr, ok := domain.Classify(args.Text)
	if !ok {
		return ClassifyResponse{Expression: args.Text}, nil
	}
	return ClassifyResponse{
		Kind:       string(kind),
		Expression: expr,
		WellFormed: true,
		Empty:      strings.TrimSpace(expr) == "",
	}, nil
}

func (s *Server) handleTypeset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := request.GetString("source", "")
	out, err := s.engine.Preview(ctx, source)
	if err != nil {
		s.logger.Debug("typeset_math failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("typeset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DocumentsURI, "Stored documents",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DocumentsURI,
				MIMEType: "text/plain",
				Text:     strings.Join(ids, "\n"),
			},
		}, nil
	})
}
