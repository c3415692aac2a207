package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// guidancePrompt pairs a prompt name with its fixed instructional text.
// Prompts carry no logic: they tell the agent which tools to call and how
// to shape its report.
type guidancePrompt struct {
	name        string
	description string
	text        string
}

var guidancePrompts = []guidancePrompt{
	{
		name:        "analyze_ci_results",
		description: "Analyze recent CI/CD results and provide insights.",
		text: `Please analyze the recent CI/CD results from GitHub Actions.

Use the following tools:
1. First, get the recent CI/CD events using the get_recent_actions_events() tool.
2. Then, use the get_workflow_status() tool to get current workflow statuses.
3. Analyze the results and identify any failures or issues that need attention.
4. Based on the analysis, provide the steps needed to resolve any issues.

Format your response as:
## CI/CD Status Report
- **Overall Status**: [Good/Warning/Critical]
- **Successful Workflows**: [List the recent successful workflows]
- **Failed Workflows**: [List the failed workflows with links]
- **Recommendations**: [Specific actions to take]
- **Trends**: [Any patterns or trends observed]`,
	},
	{
		name:        "create_deployment_summary",
		description: "Generate a deployment summary for team communication.",
		text: `Create a deployment summary for team communication:

1. Check the workflow status using the get_workflow_status() tool.
2. Look specifically for deployment-related workflows.
3. Note the deployment outcome, timing, and any issues.

Format as a concise message suitable for team chat:

**Deployment Summary**
- **Status**: [Success/Failure/In Progress]
- **Environment**: [Production/Staging/Development]
- **Duration**: [Time if available]
- **Key Changes**: [Brief summary of changes if available]
- **Issues**: [Any issues encountered]
- **Next Steps**: [Required actions or follow-ups]

The summary should be clear, simple, and informative for team awareness.`,
	},
	{
		name:        "generate_pr_status_report",
		description: "Generate a comprehensive PR status report including CI/CD results.",
		text: `Generate a comprehensive PR status report:
1. First, use the analyze_file_changes() tool to identify what changes were made in the PR.
2. Next, use the get_workflow_status() tool to get the current status of the CI/CD workflows.
3. Then, use the suggest_template() tool to recommend the most appropriate PR template based on the changes.
4. Finally, summarize all the information into a report that includes:

## PR Status Report

### Code Changes
- **Files Modified**: [Count by file type]
- **Change Type**: [Feature/Bugfix/Refactor/Etc.]
- **Impact Assessment**: [High/Medium/Low with reasoning]
- **Key Changes**: [Bullet points of the main changes]

### CI/CD Status
- **All Checks**: [Passing/Failing/Running]
- **Test Results**: [Pass rate, failures if any]
- **Build Status**: [Success/Running/Failed with details]
- **Code Quality**: [Linting, coverage if available]

### Recommendations
- **PR Template**: [Suggested template based on changes]
- **Next Steps**: [What steps to take before merging]
- **Reviewers**: [Suggested reviewers based on files changed]

### Risks & Considerations
- [Any deployment risks, potential issues, etc.]
- [Breaking changes]
- [Dependencies affected]`,
	},
	{
		name:        "troubleshoot_workflow_failure",
		description: "Help troubleshoot a failing GitHub Actions workflow.",
		text: `Help troubleshoot a failing GitHub Actions workflow:

1. First, use the get_recent_actions_events() tool to find recent workflow issues or failures.
2. Next, use the get_workflow_status() tool to identify failing workflows.
3. Then, analyze the failure patterns and timing.
4. Finally, provide systematic troubleshooting steps based on the findings.

Format your response as:

## Workflow Troubleshooting Guide

### Failed Workflow Details
- **Workflow Name**: [Name of the failing workflow]
- **Failure Type**: [Test/Build/Deployment/Linting]
- **First Failure**: [When the failures started]
- **Failure Rate**: [Intermittent or consistent]

### Diagnostic Information
- **Error Patterns**: [Common errors found in logs]
- **Recent Changes**: [What changed before the failures began]
- **Dependencies**: [External services or resources involved]

### Possible Causes (ordered by likelihood)
1. **[Most Likely]**: [Description and why]
2. **[Likely]**: [Description and why]
3. **[Possible]**: [Description and why]

### Suggested Fixes
**Immediate Actions:**
- [ ] [Quick fix to try first]
- [ ] [Second quick fix]

**Investigation Steps:**
- [ ] [How to gather more information]
- [ ] [Logs or data to check]

**Long-Term Solutions:**
- [ ] [Preventive measures to avoid future issues]
- [ ] [Improvements to workflow reliability]`,
	},
}

// registerPrompts registers the four guidance prompts with the MCP server.
func (s *Server) registerPrompts() {
	for _, p := range guidancePrompts {
		prompt := mcp.NewPrompt(p.name,
			mcp.WithPromptDescription(p.description),
		)
		s.mcpServer.AddPrompt(prompt, promptHandler(p))
	}
}

// promptHandler returns a handler serving the prompt's fixed text.
func promptHandler(p guidancePrompt) func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(
			p.description,
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(p.text)),
			},
		), nil
	}
}
