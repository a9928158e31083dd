package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flexhire/flexhire/internal/storage"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return MCPDeps{Store: store}, store
}

func seedMarketplace(t *testing.T, store *storage.Store) (storage.User, storage.Job) {
	t.Helper()
	provider := storage.User{
		ID: uuid.New().String(), Email: uuid.New().String() + "@example.com",
		PasswordHash: "x", Name: "Provider", UserType: storage.RoleProvider,
	}
	if err := store.CreateUser(provider); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	job := storage.Job{
		ID: uuid.New().String(), ProviderID: provider.ID,
		Title: "Repair a pump", Category: "repair", Location: "Riverside",
		DurationType: "daily", DurationValue: 1, Budget: 250,
		Urgency: "normal", Status: storage.JobOpen, PostedDate: time.Now().UTC(),
	}
	if err := store.CreateJob(job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return provider, job
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_SearchJobs(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	_, job := seedMarketplace(t, store)
	handler := mcpSearchJobs(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_jobs", map[string]interface{}{
		"category": "repair",
		"location": "river",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var jobs []storage.Job
	if err := json.Unmarshal([]byte(toolText(t, result)), &jobs); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Errorf("jobs = %+v, want the seeded job", jobs)
	}

	result, _ = handler(context.Background(), makeCallToolRequest("search_jobs", map[string]interface{}{
		"category": "cleaning",
	}))
	if got := toolText(t, result); got != "[]" {
		t.Errorf("unmatched search = %s, want []", got)
	}
}

func TestMCPTool_GetJob(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	_, job := seedMarketplace(t, store)
	handler := mcpGetJob(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_job", map[string]interface{}{
		"id": job.ID,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}
	if !strings.Contains(toolText(t, result), "Repair a pump") {
		t.Errorf("result missing job title: %s", toolText(t, result))
	}

	result, _ = handler(context.Background(), makeCallToolRequest("get_job", map[string]interface{}{
		"id": "missing",
	}))
	if !result.IsError {
		t.Error("missing job did not report a tool error")
	}
}

func TestMCPTool_JobStats(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	provider, _ := seedMarketplace(t, store)
	handler := mcpJobStats(deps)

	result, err := handler(context.Background(), makeCallToolRequest("job_stats", map[string]interface{}{
		"user_id": provider.ID,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var stats storage.UserStats
	if err := json.Unmarshal([]byte(toolText(t, result)), &stats); err != nil {
		t.Fatalf("unmarshaling stats: %v", err)
	}
	if stats.TotalJobs != 1 {
		t.Errorf("TotalJobs = %d, want 1", stats.TotalJobs)
	}
}

func TestMCPResource_MarketplaceStats(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	seedMarketplace(t, store)
	handler := mcpResourceStats(deps)

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "marketplace://stats"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d resource contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var counts map[string]int
	if err := json.Unmarshal([]byte(text.Text), &counts); err != nil {
		t.Fatalf("unmarshaling counts: %v", err)
	}
	if counts[storage.JobOpen] != 1 || counts[storage.JobCompleted] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
