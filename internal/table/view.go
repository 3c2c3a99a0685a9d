// Package table holds the in-memory tabular views of assets, users and login
// logs: global text filtering, single-column sorting, text rendering and
// spreadsheet export.
package table

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

// Column describes one column of a view.
type Column[T any] struct {
	Key    string
	Header string
	// Value renders the cell as shown and as matched by the global filter.
	Value func(T) string
	// Cell is the exported spreadsheet value. Nil exports Value.
	Cell func(T) any
	// Numeric columns sort by number instead of text.
	Numeric bool
}

// SortOrder is the direction of the active sort.
type SortOrder int

const (
	Unsorted SortOrder = iota
	Ascending
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// View holds every loaded row of one table along with its filter and sort
// state. Rows are replaced wholesale by SetRows after each fetch.
type View[T any] struct {
	columns []Column[T]
	export  []Column[T]
	sheet   string

	rows    []T
	filter  string
	sortKey string
	order   SortOrder
}

// NewView returns an empty view. The export columns may differ from the
// displayed ones; sheet names the worksheet of the exported workbook.
func NewView[T any](sheet string, columns, export []Column[T]) *View[T] {
	return &View[T]{columns: columns, export: export, sheet: sheet}
}

// Columns returns the displayed columns.
func (v *View[T]) Columns() []Column[T] {
	return v.columns
}

// SetRows replaces the loaded rows.
func (v *View[T]) SetRows(rows []T) {
	v.rows = append([]T(nil), rows...)
}

// Len returns the number of loaded rows, ignoring the filter.
func (v *View[T]) Len() int {
	return len(v.rows)
}

// SetFilter sets the global filter text. An empty string clears it.
func (v *View[T]) SetFilter(text string) {
	v.filter = strings.TrimSpace(text)
}

// Filter returns the global filter text.
func (v *View[T]) Filter() string {
	return v.filter
}

// ToggleSort cycles the sort on key: ascending, then descending, then
// unsorted. Switching to another column starts again at ascending.
func (v *View[T]) ToggleSort(key string) error {
	if _, ok := v.column(key); !ok {
		return fmt.Errorf("unknown column %q", key)
	}

	if v.sortKey != key {
		v.sortKey, v.order = key, Ascending
		return nil
	}
	switch v.order {
	case Ascending:
		v.order = Descending
	case Descending:
		v.sortKey, v.order = "", Unsorted
	default:
		v.order = Ascending
	}
	return nil
}

// SetSort sets the sort directly. Unsorted clears it.
func (v *View[T]) SetSort(key string, order SortOrder) error {
	if order == Unsorted {
		v.sortKey, v.order = "", Unsorted
		return nil
	}
	if _, ok := v.column(key); !ok {
		return fmt.Errorf("unknown column %q", key)
	}
	v.sortKey, v.order = key, order
	return nil
}

// Sort returns the active sort column and order.
func (v *View[T]) Sort() (string, SortOrder) {
	return v.sortKey, v.order
}

func (v *View[T]) column(key string) (Column[T], bool) {
	for _, c := range v.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Rows returns the loaded rows that match the filter, in sort order.
func (v *View[T]) Rows() []T {
	var out []T
	needle := strings.ToLower(v.filter)
	for _, row := range v.rows {
		if needle == "" || v.matches(row, needle) {
			out = append(out, row)
		}
	}

	col, ok := v.column(v.sortKey)
	if !ok || v.order == Unsorted {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(col, a, b)
		if v.order == Descending {
			return -c
		}
		return c
	})
	return out
}

func (v *View[T]) matches(row T, needle string) bool {
	for _, c := range v.columns {
		if strings.Contains(strings.ToLower(c.Value(row)), needle) {
			return true
		}
	}
	return false
}

func compare[T any](col Column[T], a, b T) int {
	sa, sb := col.Value(a), col.Value(b)
	if col.Numeric {
		na, errA := strconv.ParseFloat(sa, 64)
		nb, errB := strconv.ParseFloat(sb, 64)
		switch {
		case errA == nil && errB == nil:
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
	}
	return strings.Compare(strings.ToLower(sa), strings.ToLower(sb))
}

// Render writes the filtered, sorted rows as an aligned text table.
func (v *View[T]) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(v.columns))
	for i, c := range v.columns {
		h := c.Header
		if c.Key == v.sortKey {
			switch v.order {
			case Ascending:
				h += " ^"
			case Descending:
				h += " v"
			}
		}
		headers[i] = h
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	rows := v.Rows()
	for _, row := range rows {
		cells := make([]string, len(v.columns))
		for i, c := range v.columns {
			cells[i] = c.Value(row)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d of %d rows\n", len(rows), len(v.rows))
	return err
}

// ExportXLSX writes every loaded row, ignoring filter and sort, to a
// single-sheet workbook.
func (v *View[T]) ExportXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", v.sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(v.export))
	for i, c := range v.export {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(v.sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for r, row := range v.rows {
		values := make([]any, len(v.export))
		for i, c := range v.export {
			if c.Cell != nil {
				values[i] = c.Cell(row)
			} else {
				values[i] = c.Value(row)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(v.sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
