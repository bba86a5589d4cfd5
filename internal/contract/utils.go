package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/epigrowth/schema"
)

// Color variables for console output.
var (
	ExplosiveColor = color.New(color.FgRed, color.Bold)     // ExplosiveColor represents standard danger.
	FastColor      = color.New(color.FgMagenta, color.Bold) // FastColor represents a strong, distinct warning.
	ModerateColor  = color.New(color.FgYellow)              // ModerateColor represents caution, not bold.
	SlowColor      = color.New(color.FgCyan)                // SlowColor represents a low-priority signal.
)

// GetColorLabel returns a colored growth label for console output (table).
func GetColorLabel(rate float64) string {
	label := schema.GetGrowthLabel(rate)
	text := string(label)

	switch label {
	case schema.ExplosiveGrowth:
		return ExplosiveColor.Sprint(text)
	case schema.FastGrowth:
		return FastColor.Sprint(text)
	case schema.ModerateGrowth:
		return ModerateColor.Sprint(text)
	default:
		return SlowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".epigrowth_cache.db"
	}
	return filepath.Join(homeDir, ".epigrowth_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".epigrowth_analysis.db"
	}
	return filepath.Join(homeDir, ".epigrowth_analysis.db")
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, strings.TrimSpace(s), time.UTC)
}

// ParseList splits a comma-separated value, trimming blanks and dropping empty items.
func ParseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ContainsFold reports whether list contains s, ignoring case.
func ContainsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}

// NormalizeFIPS left-pads a numeric county code to five digits.
// Values like "1001" or "1001.0" become "01001". Empty input stays empty.
func NormalizeFIPS(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	s = strings.TrimSuffix(s, ".0")
	if s == "" || len(s) > 5 {
		return "", fmt.Errorf("fips %q must have 1 to 5 digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("fips %q is not numeric", s)
		}
	}
	return strings.Repeat("0", 5-len(s)) + s, nil
}

// TruncateName truncates a county name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
