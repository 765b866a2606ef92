// Package mcp exposes the engine to agent tooling over the Model Context
// Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/eval"
)

const defaultTenant = "default"

// Engine defines the interface required by the MCP server.
type Engine interface {
	ListProjects(ctx context.Context, tenant string) ([]domain.Project, error)
	Materialize(ctx context.Context, tenant, projectID, treeID string) (*domain.ComputedTree, error)
	Dag(ctx context.Context, tenant, projectID, treeID string) (*domain.DagItem, error)
}

// EvaluateResponse is the structured result of the evaluate_condition tool.
type EvaluateResponse struct {
	Resolved bool `json:"resolved" jsonschema_description:"Whether the condition holds against the given attributes"`
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("thicket-mcp", strings.TrimSpace(thicket.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
		slog.Info("MCP server listening (SSE)", "address", addr)
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: evaluate_condition
	evaluateTool := mcp.NewTool("evaluate_condition",
		mcp.WithDescription("Evaluate a node condition against a set of configuration attributes. Returns whether the condition holds."),
		mcp.WithString("condition", mcp.Required(), mcp.Description("Condition expression, e.g. config[\"cloud\"] == true")),
		mcp.WithString("attributes", mcp.Description("JSON object of configuration attributes (optional, defaults to empty)")),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: get_computed_tree
	s.mcpServer.AddTool(mcp.NewTool("get_computed_tree",
		mcp.WithDescription("Materialize a tree against its project's selected configuration. Each node carries a conditionResolved flag."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID owning the tree")),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID to materialize")),
		mcp.WithString("tenant", mcp.Description("Tenant name (optional)")),
	), s.handleComputedTree)

	// TOOL: get_tree_dag
	s.mcpServer.AddTool(mcp.NewTool("get_tree_dag",
		mcp.WithDescription("Resolve the downward cross-tree dependency graph starting from a tree."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID owning the tree")),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID to start from")),
		mcp.WithString("tenant", mcp.Description("Tenant name (optional)")),
	), s.handleTreeDag)
}

func tenantArg(args map[string]any) string {
	if t, ok := args["tenant"].(string); ok && t != "" {
		return t
	}
	return defaultTenant
}

func (s *Server) handleEvaluate(_ context.Context, _ mcp.CallToolRequest, args map[string]any) (EvaluateResponse, error) {
	condition, _ := args["condition"].(string)

	attrs := map[string]any{}
	if raw, ok := args["attributes"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return EvaluateResponse{}, fmt.Errorf("attributes must be a JSON object: %w", err)
		}
	}

	resolved := eval.Evaluate(condition, domain.Configuration{Attributes: attrs})
	return EvaluateResponse{Resolved: resolved}, nil
}

func (s *Server) handleComputedTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, _ := args["project_id"].(string)
	treeID, _ := args["tree_id"].(string)

	computed, err := s.engine.Materialize(ctx, tenantArg(args), projectID, treeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("materialize failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(computed)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleTreeDag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID, _ := args["project_id"].(string)
	treeID, _ := args["tree_id"].(string)

	root, err := s.engine.Dag(ctx, tenantArg(args), projectID, treeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving dag root: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(root)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: thicket://projects
	s.mcpServer.AddResource(mcp.NewResource("thicket://projects", "Projects in the default tenant",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		projects, err := s.engine.ListProjects(ctx, defaultTenant)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		jsonBytes, _ := json.Marshal(projects)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "thicket://projects",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
