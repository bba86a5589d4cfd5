// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/epigrowth/internal/contract"
	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for county names in table output
// based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + State + FIPS + Rate + Doubling + Label + Obs + Cases + Population + Density
	baseWidth := 100

	// Table borders, separators and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
