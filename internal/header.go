// Package internal has helpers shared by the command and core layers.
package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/epigrowth/internal/contract"
)

// LogAnalysisHeader prints a concise, 2-line header for each analysis run to stderr.
func LogAnalysisHeader(cfg *contract.Config) {
	writeAnalysisHeader(os.Stderr, cfg)
}

// LogTrendHeader prints a one-line header for the trend command to stderr.
func LogTrendHeader(cfg *contract.Config) {
	writeTrendHeader(os.Stderr, cfg)
}

func writeAnalysisHeader(w io.Writer, cfg *contract.Config) {
	// Line 1: The inputs being joined
	_, _ = fmt.Fprintf(w, "%sCases: %s | Population: %s | Shapes: %s\n",
		prefix(cfg, "🔎 "), baseName(cfg.CasesFile), baseName(cfg.PopulationFile), baseName(cfg.ShapesFile))

	// Line 2: The estimation settings
	_, _ = fmt.Fprintf(w, "%sReference: %s (min observations: %d, min cases: %d, excluding: %s)\n",
		prefix(cfg, "📅 "), cfg.ReferenceDate.Format(contract.DateFormat),
		cfg.MinObservations, cfg.MinTotalCases, listOrNone(cfg.ExcludeStates))
}

func writeTrendHeader(w io.Writer, cfg *contract.Config) {
	_, _ = fmt.Fprintf(w, "%sCases: %s | States: %s\n",
		prefix(cfg, "📈 "), baseName(cfg.CasesFile), listOrNone(cfg.States))
}

func prefix(cfg *contract.Config, emoji string) string {
	if cfg.UseEmojis {
		return emoji
	}
	return ""
}

func baseName(path string) string {
	if path == "" {
		return "none"
	}
	return filepath.Base(path)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
