package model

import "time"

// Asset is one physical inventory record owned by a department.
type Asset struct {
	ID               int64     `json:"id"`
	YearOfPurchase   int       `json:"year_of_purchase"`
	ItemName         string    `json:"item_name"`
	Quantity         int       `json:"quantity"`
	InventoryNumber  string    `json:"inventory_number"`
	RoomNumber       string    `json:"room_number"`
	FloorNumber      string    `json:"floor_number"`
	BuildingBlock    string    `json:"building_block"`
	Remarks          string    `json:"remarks"`
	DepartmentOrigin string    `json:"department_origin"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Department origins.
const (
	OriginOwn   = "own"
	OriginOther = "other"
)

// assetColumns lists every column of the assets table, in table order.
var assetColumns = []string{
	"id",
	"year_of_purchase",
	"item_name",
	"quantity",
	"inventory_number",
	"room_number",
	"floor_number",
	"building_block",
	"remarks",
	"department_origin",
	"last_updated",
}

// AssetColumns returns the column names of the assets table.
func AssetColumns() []string {
	cols := make([]string, len(assetColumns))
	copy(cols, assetColumns)
	return cols
}

// IsAssetColumn reports whether name is a column that may be filtered or sorted on.
func IsAssetColumn(name string) bool {
	for _, c := range assetColumns {
		if c == name {
			return true
		}
	}
	return false
}

// IsEditableAssetColumn reports whether name may appear in a partial update.
// The id and the last_updated stamp are owned by the database.
func IsEditableAssetColumn(name string) bool {
	return name != "id" && name != "last_updated" && IsAssetColumn(name)
}
