// ABOUTME: MCP tool implementations over the normalized health store.
// ABOUTME: Read-only queries plus the out-of-band conflict resolution step.
package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/healthimport/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_runs
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent import runs with their outcome counters",
	}, s.handleListRuns)

	// get_run
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_run",
		Description: "Get a single import run by id",
	}, s.handleGetRun)

	// list_conflicts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_conflicts",
		Description: "List import conflicts, optionally filtered by run id",
	}, s.handleListConflicts)

	// resolve_conflict
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_conflict",
		Description: "Tag a conflict as resolved (kept_existing, overwritten, or manual)",
	}, s.handleResolveConflict)

	// query_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_records",
		Description: "Query rows from a health data table, optionally by date range",
	}, s.handleQueryRecords)

	// get_activity_laps
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_activity_laps",
		Description: "Get the lap splits attached to an activity",
	}, s.handleGetActivityLaps)
}

// Tool input/output types

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type getRunInput struct {
	RunID string `json:"run_id" jsonschema:"Import run UUID"`
}

type runOutput struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Origin     string `json:"origin"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Processed  int    `json:"processed"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Conflicted int    `json:"conflicted"`
	Enriched   int    `json:"enriched"`
}

type listConflictsInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"Filter by import run UUID"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type resolveConflictInput struct {
	ConflictID int64  `json:"conflict_id" jsonschema:"Conflict entry id"`
	Resolution string `json:"resolution" jsonschema:"One of kept_existing / overwritten / manual"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type queryRecordsInput struct {
	Table      string `json:"table" jsonschema:"Table name (activities / body_measurements / vo2max_readings / resting_heart_rate / strength_workouts / nutrition_daily / nutrition_entries)"`
	DateColumn string `json:"date_column,omitempty" jsonschema:"Date column for range filtering (e.g. measurement_date)"`
	From       string `json:"from,omitempty" jsonschema:"Range start (YYYY-MM-DD, inclusive)"`
	To         string `json:"to,omitempty" jsonschema:"Range end (YYYY-MM-DD, inclusive)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type getActivityLapsInput struct {
	ActivityID int64 `json:"activity_id" jsonschema:"Activity row id"`
}

// Tool handlers

func (s *Server) handleListRuns(ctx context.Context, req *mcp.CallToolRequest, input listRunsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	runs, err := s.store.ListRuns(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, map[string]any{"message": "No import runs found."}, nil
	}

	out := make([]runOutput, len(runs))
	for i, run := range runs {
		out[i] = toRunOutput(run)
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(ctx context.Context, req *mcp.CallToolRequest, input getRunInput) (*mcp.CallToolResult, runOutput, error) {
	id, err := uuid.Parse(input.RunID)
	if err != nil {
		return nil, runOutput{}, fmt.Errorf("invalid run id: %s", input.RunID)
	}
	run, err := s.store.GetRun(id)
	if err != nil {
		return nil, runOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func (s *Server) handleListConflicts(ctx context.Context, req *mcp.CallToolRequest, input listConflictsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var runID *uuid.UUID
	if input.RunID != "" {
		id, err := uuid.Parse(input.RunID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid run id: %s", input.RunID)
		}
		runID = &id
	}

	conflicts, err := s.store.ListConflicts(runID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		return nil, map[string]any{"message": "No conflicts found."}, nil
	}
	return nil, conflicts, nil
}

func (s *Server) handleResolveConflict(ctx context.Context, req *mcp.CallToolRequest, input resolveConflictInput) (*mcp.CallToolResult, simpleOutput, error) {
	if !models.IsValidResolution(input.Resolution) {
		return nil, simpleOutput{}, fmt.Errorf("unknown resolution: %s", input.Resolution)
	}
	if err := s.store.ResolveConflict(input.ConflictID, models.Resolution(input.Resolution)); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to resolve conflict: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Conflict %d resolved as %s", input.ConflictID, input.Resolution),
	}, nil
}

func (s *Server) handleQueryRecords(ctx context.Context, req *mcp.CallToolRequest, input queryRecordsInput) (*mcp.CallToolResult, any, error) {
	if !models.IsValidTable(input.Table) {
		return nil, nil, fmt.Errorf("unknown table: %s", input.Table)
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}
	table := models.Table(input.Table)

	var rows []map[string]any
	var err error
	if input.From != "" || input.To != "" {
		dateColumn := input.DateColumn
		if dateColumn == "" {
			dateColumn = defaultDateColumn(table)
		}
		rows, err = s.store.ListRowsByDateRange(table, dateColumn, input.From, input.To, input.Limit)
	} else {
		rows, err = s.store.ListRows(table, input.Limit)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s: %w", input.Table, err)
	}
	if len(rows) == 0 {
		return nil, map[string]any{"message": "No records found."}, nil
	}
	return nil, rows, nil
}

func (s *Server) handleGetActivityLaps(ctx context.Context, req *mcp.CallToolRequest, input getActivityLapsInput) (*mcp.CallToolResult, any, error) {
	laps, err := s.store.ListLaps(input.ActivityID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list laps: %w", err)
	}
	if len(laps) == 0 {
		return nil, map[string]any{"message": "No laps found."}, nil
	}
	return nil, laps, nil
}

func toRunOutput(run *models.ImportRun) runOutput {
	out := runOutput{
		ID:         run.ID.String(),
		Source:     run.Source,
		Origin:     run.Origin,
		StartedAt:  run.StartedAt.Format("2006-01-02 15:04:05"),
		Status:     string(run.Status),
		Error:      run.Error,
		Processed:  run.Processed,
		Inserted:   run.Inserted,
		Skipped:    run.Skipped,
		Conflicted: run.Conflicted,
		Enriched:   run.Enriched,
	}
	if run.FinishedAt != nil {
		out.FinishedAt = run.FinishedAt.Format("2006-01-02 15:04:05")
	}
	return out
}

// defaultDateColumn picks the natural date column for range queries.
func defaultDateColumn(table models.Table) string {
	switch table {
	case models.TableActivities:
		return "start_time"
	case models.TableBodyMeasurements, models.TableVO2Max, models.TableRestingHR:
		return "measurement_date"
	case models.TableStrengthWorkouts:
		return "workout_date"
	default:
		return "date"
	}
}
