// Package toml writes batch receipt reports as TOML files, one file per
// finished shipment.
package toml

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	schemaVersion   = 1
	reportFileMode  = 0o600
	reportDirMode   = 0o700
	tempFilePattern = ".report-*.toml.tmp"
)

// Report is the durable record of a receiving session: what was expected,
// what was scanned, and how the session ended.
type Report struct {
	Shipment  domain.ShipmentReference
	State     domain.SessionState
	Progress  domain.Progress
	Records   []domain.ScanRecord
	Exception *domain.ExceptionRecord
	WrittenAt time.Time
}

// Write encodes the report and replaces the file at path atomically.
func Write(path string, report Report) error {
	if report.WrittenAt.IsZero() {
		report.WrittenAt = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(path), reportDirMode); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	data, err := toml.Marshal(toSchema(report))
	if err != nil {
		return fmt.Errorf("encode report file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp report file: %w", err)
	}

	if err := tempFile.Chmod(reportFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp report file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp report file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}

	cleanup = false

	return nil
}

// Read loads a previously written report.
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return Report{}, fmt.Errorf("decode report file: %w", err)
	}

	return fromSchema(file), nil
}

// DefaultFileName builds the report name for a shipment, for example
// "receipt-SHP-1.toml".
func DefaultFileName(shipmentID string) string {
	return fmt.Sprintf("receipt-%s.toml", shipmentID)
}
