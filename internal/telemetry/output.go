package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/Faultbox/skyraid/internal/config"
)

// OutputManager writes run output into one directory.
type OutputManager struct {
	dir        string
	windowFile *os.File

	// Track if headers have been written
	windowHeaderWritten bool
}

// NewOutputManager creates the output directory and opens windows.csv.
// Returns nil if dir is empty (output disabled); every method accepts a nil
// manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	return &OutputManager{dir: dir, windowFile: f}, nil
}

// Dir returns the output directory.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// WriteConfig saves the effective configuration next to the CSV.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.SaveTo(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends a window record to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.windowHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.windowFile); err != nil {
			return fmt.Errorf("writing window: %w", err)
		}
		om.windowHeaderWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, om.windowFile); err != nil {
		return fmt.Errorf("writing window: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.windowFile.Sync(), om.windowFile.Close())
}

// ReadWindows parses a windows.csv written by WriteWindow.
func ReadWindows(path string) ([]WindowStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []WindowStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}
