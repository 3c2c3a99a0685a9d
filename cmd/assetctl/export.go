package main

import (
	"fmt"
	"os"

	"github.com/nitpy-cse/assetreg/internal/table"
)

// exportFile writes the view's loaded rows to an .xlsx file at path.
func exportFile[T any](v *table.View[T], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := v.ExportXLSX(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
