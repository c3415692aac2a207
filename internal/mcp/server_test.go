package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"pragent/internal/config"
	"pragent/internal/events"
	"pragent/internal/gitdiff"
	"pragent/internal/templates"
)

// testServer builds a Server directly over temp fixtures, skipping config
// discovery and MCP transport setup.
func testServer(t *testing.T) *Server {
	t.Helper()

	tmplDir := t.TempDir()
	for _, name := range []string{"bug.md", "feature.md", "docs.md", "refactor.md", "test.md", "performance.md", "security.md"} {
		if err := os.WriteFile(filepath.Join(tmplDir, name), []byte("## "+name+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	tools := make(map[string]bool)
	for _, name := range AllTools {
		tools[name] = true
	}

	return &Server{
		analyzer: gitdiff.NewAnalyzer(""),
		catalog:  templates.NewCatalog(tmplDir, false),
		store:    events.NewStore(filepath.Join(t.TempDir(), "github_events.json")),
		cfg:      cfg,
		tools:    tools,
	}
}

func mustDecode(t *testing.T, s string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("tool result is not valid JSON: %v\n%s", err, s)
	}
}

func TestGetToolSchemas(t *testing.T) {
	expectedTools := []string{
		"analyze_file_changes", "get_pr_templates", "suggest_template",
		"get_recent_actions_events", "get_workflow_status",
	}

	for _, name := range expectedTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(expectedTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(expectedTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	// suggest_template is the only tool with required parameters.
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"suggest_template", "changes_summary"},
		{"suggest_template", "change_type"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestToolSchemaNoRequiredParams(t *testing.T) {
	noRequired := []string{"analyze_file_changes", "get_pr_templates", "get_recent_actions_events", "get_workflow_status"}

	for _, name := range noRequired {
		schema := toolSchemaRegistry[name]
		for _, p := range schema.Parameters {
			if p.Required {
				t.Errorf("tool %s param %s is marked required but should not be", name, p.Name)
			}
		}
	}
}

func TestAllToolsMatchesRegistry(t *testing.T) {
	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	allToolsCopy := make([]string, len(AllTools))
	copy(allToolsCopy, AllTools)
	sort.Strings(allToolsCopy)

	if len(registryNames) != len(allToolsCopy) {
		t.Errorf("schema registry has %d tools, AllTools has %d", len(registryNames), len(allToolsCopy))
	}

	for i, name := range registryNames {
		if i >= len(allToolsCopy) {
			t.Errorf("AllTools missing: %s", name)
			continue
		}
		if name != allToolsCopy[i] {
			t.Errorf("mismatch at index %d: registry=%s, AllTools=%s", i, name, allToolsCopy[i])
		}
	}
}

func TestCallToolUnknownTool(t *testing.T) {
	s := testServer(t)

	_, err := s.CallTool("no_such_tool", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(err.Error(), "no_such_tool") {
		t.Errorf("error should name the tool: %v", err)
	}
}

func TestAnalyzeArgsDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	opts := analyzeArgs(map[string]interface{}{}, cfg)

	if opts.BaseBranch != "main" {
		t.Errorf("expected base branch main, got %q", opts.BaseBranch)
	}
	if !opts.IncludeDiff {
		t.Error("include_diff should default to true")
	}
	if opts.MaxDiffLines != 500 {
		t.Errorf("expected max 500 lines, got %d", opts.MaxDiffLines)
	}
	if opts.WorkDir != "" {
		t.Errorf("expected empty workdir, got %q", opts.WorkDir)
	}
}

func TestAnalyzeArgsOverrides(t *testing.T) {
	cfg := config.DefaultConfig()

	// JSON-decoded arguments arrive with float64 numbers.
	opts := analyzeArgs(map[string]interface{}{
		"base_branch":       "develop",
		"include_diff":      false,
		"max_diff_lines":    float64(100),
		"working_directory": "/repo",
	}, cfg)

	if opts.BaseBranch != "develop" {
		t.Errorf("expected develop, got %q", opts.BaseBranch)
	}
	if opts.IncludeDiff {
		t.Error("include_diff override not applied")
	}
	if opts.MaxDiffLines != 100 {
		t.Errorf("expected max 100 lines, got %d", opts.MaxDiffLines)
	}
	if opts.WorkDir != "/repo" {
		t.Errorf("expected /repo, got %q", opts.WorkDir)
	}
}

func TestExecuteAnalyzeErrorPayload(t *testing.T) {
	s := testServer(t)

	out := s.executeAnalyze(context.Background(), gitdiff.Options{MaxDiffLines: 0})

	var payload map[string]string
	mustDecode(t, out, &payload)
	if payload["error"] == "" {
		t.Fatalf("expected error payload, got %s", out)
	}
	if !strings.Contains(payload["error"], "max_diff_lines") {
		t.Errorf("error should explain the invalid parameter: %q", payload["error"])
	}
}

func TestExecuteTemplatesListsCatalog(t *testing.T) {
	s := testServer(t)

	out := s.executeTemplates()

	var entries []templates.Entry
	mustDecode(t, out, &entries)
	if len(entries) != 7 {
		t.Fatalf("expected 7 templates, got %d", len(entries))
	}
	if entries[0].Filename != "bug.md" || entries[0].Type != "Bug Fix" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
}

func TestExecuteSuggest(t *testing.T) {
	s := testServer(t)

	out := s.executeSuggest("fixed race in queue shutdown", "bug")

	var sg templates.Suggestion
	mustDecode(t, out, &sg)
	if sg.RecommendedTemplate.Filename != "bug.md" {
		t.Errorf("expected bug.md, got %q", sg.RecommendedTemplate.Filename)
	}
	if !strings.Contains(sg.Reasoning, "fixed race in queue shutdown") {
		t.Errorf("reasoning should quote the summary: %q", sg.Reasoning)
	}
}

func TestExecuteRecentEventsEmptyLog(t *testing.T) {
	s := testServer(t)

	out := s.executeRecentEvents(10)

	if strings.TrimSpace(out) != "[]" {
		t.Errorf("missing log should produce an empty array, got %s", out)
	}
}

func TestExecuteRecentEventsRespectsLimit(t *testing.T) {
	s := testServer(t)
	writeEvents(t, s.store.Path(), `[
  {"workflow_run":{"name":"CI","status":"queued","updated_at":"2024-03-01T10:00:00Z","html_url":"u"}},
  {"workflow_run":{"name":"CI","status":"in_progress","updated_at":"2024-03-01T10:01:00Z","html_url":"u"}},
  {"workflow_run":{"name":"CI","status":"completed","conclusion":"success","updated_at":"2024-03-01T10:02:00Z","html_url":"u"}}
]`)

	out := s.executeRecentEvents(2)

	var evs []map[string]interface{}
	mustDecode(t, out, &evs)
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
}

func TestExecuteWorkflowStatusEmptyLog(t *testing.T) {
	s := testServer(t)

	out := s.executeWorkflowStatus("")

	var payload map[string]string
	mustDecode(t, out, &payload)
	if payload["message"] != "No GitHub Actions events found." {
		t.Errorf("unexpected empty-state payload: %s", out)
	}
}

func TestExecuteWorkflowStatusAggregates(t *testing.T) {
	s := testServer(t)
	writeEvents(t, s.store.Path(), `[
  {"workflow_run":{"name":"CI","status":"in_progress","conclusion":null,"updated_at":"2024-03-01T10:00:00Z","html_url":"https://example.com/run/1"}},
  {"workflow_run":{"name":"CI","status":"completed","conclusion":"success","updated_at":"2024-03-01T10:08:00Z","html_url":"https://example.com/run/1"}}
]`)

	out := s.executeWorkflowStatus("CI")

	var statuses []events.WorkflowStatus
	mustDecode(t, out, &statuses)
	if len(statuses) != 1 {
		t.Fatalf("expected 1 workflow, got %d", len(statuses))
	}
	if statuses[0].Status != "completed" {
		t.Errorf("expected the latest event to win, got %q", statuses[0].Status)
	}
}

func TestExecuteWorkflowStatusNoMatchIsEmptyArray(t *testing.T) {
	s := testServer(t)
	writeEvents(t, s.store.Path(), `[
  {"workflow_run":{"name":"CI","status":"queued","updated_at":"2024-03-01T10:00:00Z","html_url":"u"}}
]`)

	out := s.executeWorkflowStatus("Deploy")

	if strings.TrimSpace(out) != "[]" {
		t.Errorf("no-match filter should produce an empty array, got %s", out)
	}
}

func TestErrorPayloadGitPrefix(t *testing.T) {
	err := &gitdiff.GitError{
		Args:   []string{"diff", "main...HEAD"},
		Stderr: "fatal: not a git repository",
	}

	out := errorPayload(err)

	var payload map[string]string
	mustDecode(t, out, &payload)
	if !strings.HasPrefix(payload["error"], "Git error: ") {
		t.Errorf("git failures should carry the Git error prefix, got %q", payload["error"])
	}
	if !strings.Contains(payload["error"], "not a git repository") {
		t.Errorf("stderr should survive into the payload: %q", payload["error"])
	}
}

func writeEvents(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
