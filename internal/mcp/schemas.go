package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// upgradeProjectTool returns the tool definition for upgrade_project
func upgradeProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upgrade_project",
		Description: "Upgrade all C# files under a directory to .NET 8 conventions, rewriting them in place",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root to scan for source files",
				},
				"dry_run": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, report what would change without writing any files",
					"default":     false,
				},
				"extension": map[string]interface{}{
					"type":        "string",
					"description": "File extension to process (including the dot)",
					"default":     ".cs",
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of files processed concurrently (0 uses the CPU count)",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"path"},
		},
	}
}

// listRunsTool returns the tool definition for list_runs
func listRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_runs",
		Description: "List recent upgrade runs recorded in the run journal",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{},
		},
	}
}
