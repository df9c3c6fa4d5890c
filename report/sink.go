package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sink delivers an assembled report to a destination.
type Sink interface {
	// Write delivers the report. Implementations must not mutate it.
	Write(ctx context.Context, r *Report) error
}

// Format represents the format for exporting reports.
type Format string

const (
	// FormatJSON exports the full report as JSON.
	FormatJSON Format = "json"

	// FormatCSV exports per-user assessment rows as comma-separated values.
	FormatCSV Format = "csv"
)

// IsValid returns true if the export format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// String returns the string representation of the export format.
func (f Format) String() string {
	return string(f)
}

// FileExtension returns the file extension for the export format.
func (f Format) FileExtension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ""
	}
}

// MimeType returns the MIME type for the export format.
func (f Format) MimeType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// JSONExporter writes each report as an indented JSON file named after
// the run ID in the configured directory.
type JSONExporter struct {
	// Dir is the output directory. It is created if it does not exist.
	Dir string
}

// Write implements Sink.
func (e *JSONExporter) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", r.RunID, err)
	}
	return writeFile(e.Dir, r.RunID+FormatJSON.FileExtension(), data)
}

// CSVExporter writes each report's per-user assessments as a CSV file
// named after the run ID in the configured directory.
type CSVExporter struct {
	// Dir is the output directory. It is created if it does not exist.
	Dir string
}

// Write implements Sink.
func (e *CSVExporter) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"user_id", "score", "tier", "reduced_confidence", "signals"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, a := range r.Assessments {
		parts := make([]string, 0, len(a.Signals))
		for _, s := range a.Signals {
			parts = append(parts, fmt.Sprintf("%s=%.3f", s.Source, s.Value))
		}
		row := []string{
			a.UserID,
			strconv.FormatFloat(a.Score, 'f', 4, 64),
			a.Tier.String(),
			strconv.FormatBool(a.ReducedConfidence),
			strings.Join(parts, ";"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", a.UserID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV for report %s: %w", r.RunID, err)
	}

	return writeFile(e.Dir, r.RunID+FormatCSV.FileExtension(), []byte(sb.String()))
}

func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
