// Package mcp provides the MCP (Model Context Protocol) server for pragent.
// It exposes change analysis, PR template, and workflow status tools to AI
// agents, plus guidance prompts for common CI workflows.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"pragent/internal/config"
	"pragent/internal/events"
	"pragent/internal/gitdiff"
	"pragent/internal/templates"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with pragent-specific functionality.
type Server struct {
	mcpServer    *server.MCPServer
	analyzer     *gitdiff.Analyzer
	catalog      *templates.Catalog
	store        *events.Store
	cfg          *config.Config
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	WorkDir string        // Where config discovery starts (empty = ".")
}

// AllTools lists all available tools.
var AllTools = []string{
	"analyze_file_changes",
	"get_pr_templates",
	"suggest_template",
	"get_recent_actions_events",
	"get_workflow_status",
}

// New creates a new MCP server for pragent.
func New(cfg Config) (*Server, error) {
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}

	appCfg, err := config.Load(workDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"pragent",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:    mcpServer,
		analyzer:     gitdiff.NewAnalyzer(appCfg.Git.WorkDir),
		catalog:      templates.NewCatalog(appCfg.Templates.Dir, appCfg.Templates.SkipUnreadable),
		store:        events.NewStore(appCfg.Events.File),
		cfg:          appCfg,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	s.registerPrompts()

	return s, nil
}

// registerTool registers a single tool with the MCP server.
func (s *Server) registerTool(name string) error {
	switch name {
	case "analyze_file_changes":
		return s.registerAnalyzeTool()
	case "get_pr_templates":
		return s.registerTemplatesTool()
	case "suggest_template":
		return s.registerSuggestTool()
	case "get_recent_actions_events":
		return s.registerRecentEventsTool()
	case "get_workflow_status":
		return s.registerWorkflowStatusTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "pragent serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp.
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools. These
// mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"analyze_file_changes": {
		Name:        "analyze_file_changes",
		Description: "Get the diff, changed files, statistics, and commits between a base branch and HEAD.",
		Parameters: []ParameterSchema{
			{Name: "base_branch", Type: "string", Description: "Branch to compare against (default: main)"},
			{Name: "include_diff", Type: "boolean", Description: "Include the full diff content (default: true)"},
			{Name: "max_diff_lines", Type: "number", Description: "Maximum diff lines to include (default: 500)"},
			{Name: "working_directory", Type: "string", Description: "Directory to run git commands in (default: configured or current directory)"},
		},
	},
	"get_pr_templates": {
		Name:        "get_pr_templates",
		Description: "List available PR templates with their content.",
	},
	"suggest_template": {
		Name:        "suggest_template",
		Description: "Suggest the most appropriate PR template for an analyzed change.",
		Parameters: []ParameterSchema{
			{Name: "changes_summary", Type: "string", Description: "Analysis of what the changes do", Required: true},
			{Name: "change_type", Type: "string", Description: "Identified change type (bug, feature, docs, refactor, test, ...)", Required: true},
		},
	},
	"get_recent_actions_events": {
		Name:        "get_recent_actions_events",
		Description: "Get recent GitHub Actions events received via webhook.",
		Parameters: []ParameterSchema{
			{Name: "limit", Type: "number", Description: "Maximum number of events to return (default: 10)"},
		},
	},
	"get_workflow_status": {
		Name:        "get_workflow_status",
		Description: "Get the current status of GitHub Actions workflows.",
		Parameters: []ParameterSchema{
			{Name: "workflow_name", Type: "string", Description: "Optional workflow name to filter by (exact match)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string. Internal failures become an error payload
// in the result, never an error return: a tool must always produce a
// parseable result for its caller.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'pragent call --list' to see available tools)", name)
	}

	switch name {
	case "analyze_file_changes":
		return s.executeAnalyze(context.Background(), analyzeArgs(args, s.cfg)), nil
	case "get_pr_templates":
		return s.executeTemplates(), nil
	case "suggest_template":
		summary, _ := args["changes_summary"].(string)
		changeType, _ := args["change_type"].(string)
		return s.executeSuggest(summary, changeType), nil
	case "get_recent_actions_events":
		limit := 10
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeRecentEvents(limit), nil
	case "get_workflow_status":
		workflowName, _ := args["workflow_name"].(string)
		return s.executeWorkflowStatus(workflowName), nil
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// analyzeArgs extracts analyze_file_changes options from raw arguments,
// applying configured defaults.
func analyzeArgs(args map[string]interface{}, cfg *config.Config) gitdiff.Options {
	opts := gitdiff.Options{
		BaseBranch:   cfg.Git.BaseBranch,
		IncludeDiff:  true,
		MaxDiffLines: cfg.Git.MaxDiffLines,
	}
	if b, ok := args["base_branch"].(string); ok && b != "" {
		opts.BaseBranch = b
	}
	if inc, ok := args["include_diff"].(bool); ok {
		opts.IncludeDiff = inc
	}
	if m, ok := args["max_diff_lines"].(float64); ok {
		opts.MaxDiffLines = int(m)
	}
	if wd, ok := args["working_directory"].(string); ok {
		opts.WorkDir = wd
	}
	return opts
}

// Tool registrations

func (s *Server) registerAnalyzeTool() error {
	tool := mcp.NewTool("analyze_file_changes",
		mcp.WithDescription("Get the diff, changed files, statistics, and commits between a base branch and HEAD."),
		mcp.WithString("base_branch",
			mcp.Description("Branch to compare against (default: main)"),
		),
		mcp.WithBoolean("include_diff",
			mcp.Description("Include the full diff content (default: true)"),
		),
		mcp.WithNumber("max_diff_lines",
			mcp.Description("Maximum diff lines to include (default: 500)"),
		),
		mcp.WithString("working_directory",
			mcp.Description("Directory to run git commands in (default: configured or current directory)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleAnalyze)
	return nil
}

func (s *Server) registerTemplatesTool() error {
	tool := mcp.NewTool("get_pr_templates",
		mcp.WithDescription("List available PR templates with their content."),
	)

	s.mcpServer.AddTool(tool, s.handleTemplates)
	return nil
}

func (s *Server) registerSuggestTool() error {
	tool := mcp.NewTool("suggest_template",
		mcp.WithDescription("Suggest the most appropriate PR template for an analyzed change."),
		mcp.WithString("changes_summary",
			mcp.Required(),
			mcp.Description("Analysis of what the changes do"),
		),
		mcp.WithString("change_type",
			mcp.Required(),
			mcp.Description("Identified change type (bug, feature, docs, refactor, test, ...)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleSuggest)
	return nil
}

func (s *Server) registerRecentEventsTool() error {
	tool := mcp.NewTool("get_recent_actions_events",
		mcp.WithDescription("Get recent GitHub Actions events received via webhook."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to return (default: 10)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRecentEvents)
	return nil
}

func (s *Server) registerWorkflowStatusTool() error {
	tool := mcp.NewTool("get_workflow_status",
		mcp.WithDescription("Get the current status of GitHub Actions workflows."),
		mcp.WithString("workflow_name",
			mcp.Description("Optional workflow name to filter by (exact match)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleWorkflowStatus)
	return nil
}

// Tool handlers

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	opts := analyzeArgs(req.GetArguments(), s.cfg)
	return mcp.NewToolResultText(s.executeAnalyze(ctx, opts)), nil
}

func (s *Server) handleTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	return mcp.NewToolResultText(s.executeTemplates()), nil
}

func (s *Server) handleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	summary, _ := args["changes_summary"].(string)
	changeType, _ := args["change_type"].(string)

	return mcp.NewToolResultText(s.executeSuggest(summary, changeType)), nil
}

func (s *Server) handleRecentEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	limit := 10
	if l, ok := req.GetArguments()["limit"].(float64); ok {
		limit = int(l)
	}

	return mcp.NewToolResultText(s.executeRecentEvents(limit)), nil
}

func (s *Server) handleWorkflowStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	workflowName, _ := req.GetArguments()["workflow_name"].(string)

	return mcp.NewToolResultText(s.executeWorkflowStatus(workflowName)), nil
}

// Execution functions. Each returns a JSON string; failures are encoded as
// {"error": "..."} payloads so the invoking agent always gets a parseable
// result.

func (s *Server) executeAnalyze(ctx context.Context, opts gitdiff.Options) string {
	cs, err := s.analyzer.Analyze(ctx, opts)
	if err != nil {
		return errorPayload(err)
	}
	return toJSON(cs)
}

func (s *Server) executeTemplates() string {
	entries, err := s.catalog.List()
	if err != nil {
		return errorPayload(err)
	}
	if entries == nil {
		entries = []templates.Entry{}
	}
	return toJSON(entries)
}

func (s *Server) executeSuggest(changesSummary, changeType string) string {
	suggestion, err := s.catalog.Suggest(changesSummary, changeType)
	if err != nil {
		return errorPayload(err)
	}
	return toJSON(suggestion)
}

func (s *Server) executeRecentEvents(limit int) string {
	evs, err := s.store.Recent(limit)
	if err != nil {
		return errorPayload(err)
	}
	if evs == nil {
		evs = []events.Event{}
	}
	return toJSON(evs)
}

func (s *Server) executeWorkflowStatus(workflowName string) string {
	evs, err := s.store.ReadAll()
	if err != nil {
		return errorPayload(err)
	}
	if len(evs) == 0 {
		// No events yet is a normal state, not an error.
		return toJSON(map[string]string{"message": "No GitHub Actions events found."})
	}

	summaries := events.Status(evs, workflowName)
	if summaries == nil {
		summaries = []events.WorkflowStatus{}
	}
	return toJSON(summaries)
}

// Helper functions

// errorPayload converts any failure into the structured error result the
// tool contract requires. Git failures get a "Git error:" prefix so agents
// can pattern-match on them.
func errorPayload(err error) string {
	var gitErr *gitdiff.GitError
	msg := err.Error()
	if errors.As(err, &gitErr) {
		msg = fmt.Sprintf("Git error: %s", gitErr.Error())
	}
	return toJSON(map[string]string{"error": msg})
}

func toJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Marshaling static shapes cannot fail; guard anyway.
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}
