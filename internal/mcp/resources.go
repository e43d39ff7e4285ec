// ABOUTME: MCP resource implementations for the health data store.
// ABOUTME: Provides healthimport://summary and healthimport://conflicts.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// healthimport://summary - row counts per table plus recent runs
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthimport://summary",
		Name:        "Store Summary",
		Description: "Row counts per table and the most recent import runs",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// healthimport://conflicts - unresolved conflicts awaiting review
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthimport://conflicts",
		Name:        "Open Conflicts",
		Description: "Import conflicts that have not been reviewed yet",
		MIMEType:    "application/json",
	}, s.handleConflictsResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	counts := make(map[string]int)
	for _, table := range models.AllTables() {
		n, err := s.store.CountRows(table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[string(table)] = n
	}

	runs, err := s.store.ListRuns(10)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	runOutputs := make([]runOutput, len(runs))
	for i, run := range runs {
		runOutputs[i] = toRunOutput(run)
	}

	result := map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"row_counts":   counts,
		"recent_runs":  runOutputs,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthimport://summary",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleConflictsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	conflicts, err := s.store.ListConflicts(nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	var open []*models.ConflictEntry
	for _, c := range conflicts {
		if c.ResolvedAt == nil {
			open = append(open, c)
		}
	}

	result := map[string]any{
		"open_count": len(open),
		"conflicts":  open,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthimport://conflicts",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
