// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the epigrowth MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Epigrowth Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_growth_rates ---
	s.AddTool(mcp.NewTool("get_growth_rates",
		withInputOptions(
			mcp.WithDescription("Estimate the exponential growth rate of cumulative cases per county and rank counties by rate."),
			mcp.WithNumber("limit", mcp.Description("Limit the number of counties returned.")),
		)...,
	), h.handleGetGrowthRates)

	// --- 2. Tool: get_density_summary ---
	s.AddTool(mcp.NewTool("get_density_summary",
		withInputOptions(
			mcp.WithDescription("Relate county growth rates to population density: correlation, log-log fit and histograms."),
			mcp.WithNumber("bins", mcp.Description("Number of histogram bins (defaults to 30).")),
		)...,
	), h.handleGetDensitySummary)

	// --- 3. Tool: get_case_trend ---
	s.AddTool(mcp.NewTool("get_case_trend",
		mcp.WithDescription("Sum new cases across all counties per date."),
		mcp.WithString("cases_file", mcp.Description("Path to the daily county cases CSV.")),
		mcp.WithString("state", mcp.Description("Comma-separated states to keep (defaults to all).")),
	), h.handleGetCaseTrend)

	return s
}

// withInputOptions adds the dataset and estimation parameters shared by the analysis tools.
func withInputOptions(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithString("cases_file", mcp.Description("Path to the daily county cases CSV.")),
		mcp.WithString("population_file", mcp.Description("Path to the census population estimates CSV.")),
		mcp.WithString("shapes_file", mcp.Description("Path to the county boundary shapefile (.shp).")),
		mcp.WithString("reference_date", mcp.Description("Day zero of the regression in YYYY-MM-DD (defaults to 2020-03-08).")),
		mcp.WithString("state", mcp.Description("Comma-separated states to keep (defaults to all but excluded states).")),
		mcp.WithNumber("min_observations", mcp.Description("Minimum days of data per county (at least 2).")),
	)
}

// StartMCPServer starts the epigrowth MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
