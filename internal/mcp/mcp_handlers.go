package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/epigrowth/core"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyInputArgs overrides the base config with the shared tool arguments.
func applyInputArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if p := request.GetString("cases_file", ""); p != "" {
		cfg.CasesFile = p
	}
	if p := request.GetString("population_file", ""); p != "" {
		cfg.PopulationFile = p
	}
	if p := request.GetString("shapes_file", ""); p != "" {
		cfg.ShapesFile = p
	}
	if s := request.GetString("state", ""); s != "" {
		cfg.States = contract.ParseList(s)
	}
	if d := request.GetString("reference_date", ""); d != "" {
		ref, err := contract.ParseDate(d)
		if err != nil {
			return fmt.Errorf("invalid reference_date '%s': %w", d, err)
		}
		cfg.ReferenceDate = ref
	}
	if n := request.GetInt("min_observations", 0); n != 0 {
		if n < contract.DefaultMinObservations {
			return fmt.Errorf("min_observations must be at least %d (received %d)", contract.DefaultMinObservations, n)
		}
		cfg.MinObservations = n
	}
	if cfg.CasesFile == "" {
		return fmt.Errorf("cases_file is required")
	}
	return nil
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetGrowthRates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyInputArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	ranked, output, err := core.GetRatesResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return jsonResult(struct {
		Counties []schema.EnrichedCountyRate `json:"counties"`
		Skipped  schema.EstimateFailures     `json:"skipped"`
	}{schema.EnrichRates(ranked), output.Failures})
}

func (h *toolHandler) handleGetDensitySummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyInputArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if b := request.GetInt("bins", 0); b > 0 {
		cfg.Plot.Bins = b
	}

	summary, err := core.GetDensityResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("density analysis failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleGetCaseTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("cases_file", ""); p != "" {
		cfg.CasesFile = p
	}
	if s := request.GetString("state", ""); s != "" {
		cfg.States = contract.ParseList(s)
	}
	if cfg.CasesFile == "" {
		return mcp.NewToolResultError("invalid parameters: cases_file is required"), nil
	}

	trend, err := core.GetTrendResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend analysis failed: %v", err)), nil
	}
	return jsonResult(trend)
}
