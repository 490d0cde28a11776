// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints a comparison report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	return PrintReport(report, cfg, duration)
}

// WriteHistoryStatus prints history store status to stdout.
func (ow *OutWriter) WriteHistoryStatus(status schema.HistoryStatus) error {
	return PrintHistoryStatus(os.Stdout, status)
}

// Widths of the report table columns other than File, including borders and padding.
const (
	reportFixedWidth = 60
	minPathWidth     = 15
	maxPathWidth     = 70
	fallbackWidth    = 80
)

// GetMaxTablePathWidth returns how many runes of a file path fit in the report table.
// The --width override wins over the detected terminal size.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	width := cfg.Width
	if width <= 0 {
		width = fallbackWidth
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return min(max(width-reportFixedWidth, minPathWidth), maxPathWidth)
}
