package cli

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"mtctl/internal/results"
)

// NewCleanProgress returns a progress bar for a cleanup of total
// directories.
func NewCleanProgress(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString("Cleaning: ")),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// PrintCleanSummary writes the one-line outcome of a cleanup.
func PrintCleanSummary(w io.Writer, res *results.CleanupResult) {
	freed := humanize.Bytes(uint64(res.Summary.TotalSizeFreed))
	switch {
	case res.DryRun:
		fmt.Fprintln(w, color.YellowString("Dry run: %d of %d results would be removed, freeing %s",
			res.Summary.TotalItemsCleaned, res.Summary.TotalItemsScanned, freed))
	case len(res.Summary.Errors) > 0:
		fmt.Fprintln(w, color.YellowString("Removed %d of %d results, freeing %s (%d problems)",
			res.Summary.TotalItemsCleaned, res.Summary.TotalItemsScanned, freed, len(res.Summary.Errors)))
	default:
		fmt.Fprintln(w, color.GreenString("✓ Removed %d of %d results, freeing %s",
			res.Summary.TotalItemsCleaned, res.Summary.TotalItemsScanned, freed))
	}
}

// Success prints a green check line.
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓ "+format, args...))
}

// Failure prints a red cross line.
func Failure(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.RedString("✗ "+format, args...))
}

// Warn prints a yellow warning line.
func Warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.YellowString("⚠ "+format, args...))
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
