package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the services the MCP tools operate on. OutputDir is where
// composed images are written when they are not routed into a session.
type Deps struct {
	Catalog   *catalog.Store
	Sessions  *session.Manager
	Composer  *compositor.Composer
	OutputDir string
	Logger    *zap.Logger
}

// Server wraps an MCP server that exposes the page editor as tools.
type Server struct {
	catalog   *catalog.Store
	sessions  *session.Manager
	composer  *compositor.Composer
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(d Deps) *Server {
	s := &Server{
		catalog:   d.Catalog,
		sessions:  d.Sessions,
		composer:  d.Composer,
		outputDir: d.OutputDir,
		logger:    logging.OrNop(d.Logger).Named("mcp"),
		now:       time.Now,
	}
	if s.outputDir == "" {
		s.outputDir = "."
	}

	s.mcp = server.NewMCPServer(
		"onepage",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listTemplatesTool, s.handleListTemplates)
	s.mcp.AddTool(createSessionTool, s.handleCreateSession)
	s.mcp.AddTool(getDocumentTool, s.handleGetDocument)
	s.mcp.AddTool(sendMessageTool, s.handleSendMessage)
	s.mcp.AddTool(applyPatchesTool, s.handleApplyPatches)
	s.mcp.AddTool(exportPageTool, s.handleExportPage)
	s.mcp.AddTool(composeImageTool, s.handleComposeImage)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
