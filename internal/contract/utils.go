package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/schemadiff/schema"
)

// Color variables for console output.
var (
	MajorColor     = color.New(color.FgRed, color.Bold) // breaking
	MinorColor     = color.New(color.FgYellow)          // additive
	PatchColor     = color.New(color.FgCyan)            // docs only
	SameColor      = color.New(color.FgGreen)
	FileDeltaColor = color.New(color.FgMagenta) // added or removed files
)

// GetColorLabel returns a colored status label for console output (table).
func GetColorLabel(status schema.Status) string {
	text := string(status)

	switch status {
	case schema.MajorStatus:
		return MajorColor.Sprint(text)
	case schema.MinorStatus:
		return MinorColor.Sprint(text)
	case schema.PatchStatus:
		return PatchColor.Sprint(text)
	case schema.AddedStatus, schema.RemovedStatus:
		return FileDeltaColor.Sprint(text)
	default: // same, unchanged
		return SameColor.Sprint(text)
	}
}

// GetStatusLabel returns the colored label when colors are enabled and the plain one otherwise.
func GetStatusLabel(status schema.Status, useColors bool) string {
	if useColors {
		return GetColorLabel(status)
	}
	return string(status)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogError prints a fatal error to stderr without exiting.
func LogError(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	LogError(msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".schemadiff_history.db"
	}
	return filepath.Join(homeDir, ".schemadiff_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
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
