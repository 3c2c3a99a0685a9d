package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
)

// DefaultAssetLimit is the page size used when a listing does not set one.
const DefaultAssetLimit = 50

var (
	// ErrUnknownColumn is returned when a filter, sort, or update names a column
	// outside the assets allow-list.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoFields is returned by UpdateAsset when there is nothing to update.
	ErrNoFields = errors.New("no fields to update")
)

// AssetQuery holds the caller-supplied filter, sort, and pagination for ListAssets.
type AssetQuery struct {
	FilterColumn string
	FilterValue  string
	SortColumn   string
	SortOrder    string
	Limit        int
	Offset       int
}

const assetSelect = `SELECT id, year_of_purchase, item_name, quantity, inventory_number,
        room_number, floor_number, building_block, remarks, department_origin, last_updated
 FROM assets`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (model.Asset, error) {
	var a model.Asset
	err := row.Scan(&a.ID, &a.YearOfPurchase, &a.ItemName, &a.Quantity, &a.InventoryNumber,
		&a.RoomNumber, &a.FloorNumber, &a.BuildingBlock, &a.Remarks, &a.DepartmentOrigin, &a.LastUpdated)
	return a, err
}

// ListAssets returns assets matching the query. The filter is an equality match
// and is applied only when both column and value are set. Column names are
// checked against the asset allow-list before they reach the SQL text.
func ListAssets(ctx context.Context, db *db.DB, q AssetQuery) ([]model.Asset, error) {
	var b strings.Builder
	var args []any

	b.WriteString(assetSelect)

	if q.FilterColumn != "" && q.FilterValue != "" {
		if !model.IsAssetColumn(q.FilterColumn) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, q.FilterColumn)
		}
		fmt.Fprintf(&b, " WHERE %q = ?", q.FilterColumn)
		args = append(args, q.FilterValue)
	}

	if q.SortColumn != "" {
		if !model.IsAssetColumn(q.SortColumn) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, q.SortColumn)
		}
		direction := "ASC"
		if strings.EqualFold(q.SortOrder, "desc") {
			direction = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %q %s, id", q.SortColumn, direction)
	} else {
		b.WriteString(" ORDER BY id")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultAssetLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, db *db.DB, id int64) (*model.Asset, error) {
	a, err := scanAsset(db.QueryRowContext(ctx, assetSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return &a, nil
}

// CreateAsset inserts an asset and returns its generated ID. ID and
// LastUpdated on a are ignored.
func CreateAsset(ctx context.Context, db *db.DB, a *model.Asset) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO assets (year_of_purchase, item_name, quantity, inventory_number, room_number,
		                     floor_number, building_block, remarks, department_origin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		a.YearOfPurchase, a.ItemName, a.Quantity, a.InventoryNumber, a.RoomNumber,
		a.FloorNumber, a.BuildingBlock, a.Remarks, a.DepartmentOrigin,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating asset: %w", err)
	}
	return id, nil
}

// UpdateAsset rewrites only the given columns of an asset and stamps
// last_updated. It returns the number of affected rows; zero means the id
// does not exist.
func UpdateAsset(ctx context.Context, db *db.DB, id int64, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrNoFields
	}

	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !model.IsEditableAssetColumn(col) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for _, col := range columns {
		sets = append(sets, fmt.Sprintf("%q = ?", col))
		args = append(args, fields[col])
	}
	sets = append(sets, "last_updated = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := db.ExecContext(ctx,
		`UPDATE assets SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("updating asset: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting updated assets: %w", err)
	}
	return n, nil
}

// DeleteAsset removes an asset and returns the number of affected rows.
func DeleteAsset(ctx context.Context, db *db.DB, id int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting asset: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted assets: %w", err)
	}
	return n, nil
}

// CountAssets returns the number of rows in the assets table.
func CountAssets(ctx context.Context, db *db.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return n, nil
}
