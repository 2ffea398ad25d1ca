// Package output writes the merged user records to disk.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loosehose/sunvoy/internal/types"
)

// Writer writes records as indented JSON to a fixed path.
type Writer struct {
	path string
}

// NewWriter returns a Writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the output file location.
func (w *Writer) Path() string {
	return w.path
}

// Write replaces the output file with records. A nil slice is written as [].
func (w *Writer) Write(records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}
