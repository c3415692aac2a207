package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"pragent/internal/mcp"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call any pragent tool directly from the CLI",
	Long: `Call any pragent tool with structured JSON input/output, without an
MCP client.

Modes:
  pragent call --list                          List all tools and parameters
  pragent call <tool> '{"key":"value"}'        Call a tool with JSON args
  pragent call --pipe                          Read JSON lines from stdin

Examples:
  pragent call --list
  pragent call analyze_file_changes '{"base_branch":"main","include_diff":false}'
  pragent call get_pr_templates
  pragent call suggest_template '{"changes_summary":"fixed null pointer","change_type":"bug"}'
  pragent call get_recent_actions_events '{"limit":5}'
  pragent call get_workflow_status '{"workflow_name":"CI"}'
  echo '{"tool":"get_workflow_status","args":{}}' | pragent call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList()
	}
	if callPipe {
		return runCallPipe()
	}
	if len(args) == 0 {
		return fmt.Errorf("tool name required (run 'pragent call --list' to see available tools)")
	}
	return runCallSingle(args)
}

func runCallList() error {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	schemas := srv.GetToolSchemas()

	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	default: // json
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	}
}

func runCallSingle(args []string) error {
	toolName := args[0]

	var toolArgs map[string]interface{}
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	} else {
		toolArgs = make(map[string]interface{})
	}

	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	result, err := srv.CallTool(toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

// pipeRequest is one line of pipe-mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

func runCallPipe() error {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(map[string]string{"error": fmt.Sprintf("invalid request: %v", err)})
			continue
		}

		result, err := srv.CallTool(req.Tool, req.Args)
		if err != nil {
			enc.Encode(map[string]string{"error": err.Error()})
			continue
		}

		// Results are already JSON; emit them as one line per request.
		var compact json.RawMessage = []byte(result)
		enc.Encode(map[string]json.RawMessage{"result": compact})
	}

	return scanner.Err()
}
