package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flexhire/flexhire/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the marketplace to agent
// clients: job search, job lookup, and per-user dashboard stats.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"flexhire",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("flexhire — informal-labor job marketplace. Search open jobs, inspect them, and read user dashboard stats."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_jobs",
			mcp.WithDescription("Search open jobs. All filters are optional and AND-combined."),
			mcp.WithString("category", mcp.Description("Exact job category (construction, electrical, plumbing, agriculture, repair, cleaning, other)")),
			mcp.WithString("location", mcp.Description("Location substring, case-insensitive")),
			mcp.WithString("duration", mcp.Description("Exact duration type (hourly, daily, weekly, monthly)")),
			mcp.WithNumber("max_budget", mcp.Description("Upper bound on budget")),
			mcp.WithString("search", mcp.Description("Title substring, case-insensitive")),
		),
		mcpSearchJobs(deps),
	)

	s.AddTool(
		mcp.NewTool("get_job",
			mcp.WithDescription("Fetch a single job by id."),
			mcp.WithString("id", mcp.Description("Job id"), mcp.Required()),
		),
		mcpGetJob(deps),
	)

	s.AddTool(
		mcp.NewTool("job_stats",
			mcp.WithDescription("Dashboard aggregates for a user: jobs posted or applied, completed count, average rating, earnings."),
			mcp.WithString("user_id", mcp.Description("User id"), mcp.Required()),
		),
		mcpJobStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"marketplace://stats",
			"Marketplace Stats",
			mcp.WithResourceDescription("Marketplace-wide counts by job status"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpSearchJobs(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := storage.JobFilter{
			Category:     req.GetString("category", ""),
			Location:     req.GetString("location", ""),
			DurationType: req.GetString("duration", ""),
			MaxBudget:    int64(req.GetInt("max_budget", 0)),
			Search:       req.GetString("search", ""),
		}

		jobs, err := deps.Store.ListOpenJobs(filter)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if jobs == nil {
			jobs = []storage.Job{}
		}

		b, err := json.Marshal(jobs)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal jobs: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetJob(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		job, err := deps.Store.GetJob(id)
		if err == storage.ErrNotFound {
			return mcpError(fmt.Sprintf("job %s not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load job: %v", err)), nil
		}

		b, err := json.Marshal(job)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal job: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpJobStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}

		stats, err := deps.Store.GetUserStats(userID)
		if err == storage.ErrNotFound {
			return mcpError(fmt.Sprintf("user %s not found", userID)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load stats: %v", err)), nil
		}

		b, err := json.Marshal(stats)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStats(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		counts := map[string]int{}
		for _, status := range []string{storage.JobOpen, storage.JobInProgress, storage.JobCompleted} {
			var n int
			err := deps.Store.DB().QueryRow("SELECT COUNT(*) FROM jobs WHERE status = ?", status).Scan(&n)
			if err != nil {
				return nil, fmt.Errorf("counting %s jobs: %w", status, err)
			}
			counts[status] = n
		}

		b, err := json.Marshal(counts)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
