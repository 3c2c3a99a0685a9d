package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nitpy-cse/assetreg/internal/fixtures"
	"github.com/nitpy-cse/assetreg/internal/model"
)

func inventoryNumbers(assets []model.Asset) []string {
	var out []string
	for _, a := range assets {
		out = append(out, a.InventoryNumber)
	}
	return out
}

func TestGlobalFilter(t *testing.T) {
	v := NewAssetView()
	v.SetRows(fixtures.Assets())

	v.SetFilter("Projector")
	assert.Equal(t, []string{"CS-003"}, inventoryNumbers(v.Rows()))

	// Case-insensitive, and idempotent.
	v.SetFilter("projector")
	first := v.Rows()
	v.SetFilter("projector")
	assert.Equal(t, first, v.Rows())
	assert.Equal(t, []string{"CS-003"}, inventoryNumbers(first))

	// Any visible column matches, including rendered numbers.
	v.SetFilter("server room")
	assert.Equal(t, []string{"CS-004"}, inventoryNumbers(v.Rows()))
	v.SetFilter("2021")
	assert.Equal(t, []string{"CS-004"}, inventoryNumbers(v.Rows()))

	v.SetFilter("OTHER")
	assert.Equal(t, []string{"CS-004"}, inventoryNumbers(v.Rows()))

	v.SetFilter("no such thing")
	assert.Empty(t, v.Rows())

	v.SetFilter("")
	assert.Len(t, v.Rows(), 5)
}

func TestToggleSort(t *testing.T) {
	v := NewAssetView()
	v.SetRows(fixtures.Assets())

	require.NoError(t, v.ToggleSort("quantity"))
	key, order := v.Sort()
	assert.Equal(t, "quantity", key)
	assert.Equal(t, Ascending, order)
	assert.Equal(t, []string{"CS-005", "CS-003", "CS-004", "CS-001", "CS-002"}, inventoryNumbers(v.Rows()))

	require.NoError(t, v.ToggleSort("quantity"))
	assert.Equal(t, []string{"CS-002", "CS-001", "CS-004", "CS-003", "CS-005"}, inventoryNumbers(v.Rows()))

	require.NoError(t, v.ToggleSort("quantity"))
	_, order = v.Sort()
	assert.Equal(t, Unsorted, order)
	assert.Equal(t, []string{"CS-001", "CS-002", "CS-003", "CS-004", "CS-005"}, inventoryNumbers(v.Rows()))

	// Switching columns restarts at ascending.
	require.NoError(t, v.ToggleSort("quantity"))
	require.NoError(t, v.ToggleSort("item_name"))
	_, order = v.Sort()
	assert.Equal(t, Ascending, order)
	assert.Equal(t, "CS-001", v.Rows()[0].InventoryNumber)

	assert.Error(t, v.ToggleSort("password_hash"))
}

func TestNumericSortIsNotLexical(t *testing.T) {
	v := NewAssetView()
	v.SetRows([]model.Asset{
		{ID: 1, Quantity: 9},
		{ID: 2, Quantity: 100},
		{ID: 3, Quantity: 25},
	})
	require.NoError(t, v.SetSort("quantity", Ascending))

	var got []int
	for _, a := range v.Rows() {
		got = append(got, a.Quantity)
	}
	assert.Equal(t, []int{9, 25, 100}, got)
}

func TestFilterAndSortCompose(t *testing.T) {
	v := NewAssetView()
	v.SetRows(fixtures.Assets())
	v.SetFilter("own")
	require.NoError(t, v.SetSort("year_of_purchase", Descending))

	rows := v.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, 2022, rows[len(rows)-1].YearOfPurchase)
	assert.Equal(t, 5, v.Len(), "filter does not drop loaded rows")
}

func TestRender(t *testing.T) {
	v := NewAssetView()
	v.SetRows(fixtures.Assets())
	v.SetFilter("printer")
	require.NoError(t, v.ToggleSort("item_name"))

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Item Name ^")
	assert.Contains(t, lines[1], "CS-005")
	assert.Equal(t, "1 of 5 rows", lines[2])
}

func TestExportIgnoresFilter(t *testing.T) {
	v := NewAssetView()
	v.SetRows(fixtures.Assets())
	v.SetFilter("Projector")

	var buf bytes.Buffer
	require.NoError(t, v.ExportXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Assets")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Item Name", rows[0][0])
	assert.Equal(t, "Year of Purchase", rows[0][6])
	assert.Equal(t, "Dell Latitude Laptop", rows[1][0])
	assert.Equal(t, "25", rows[1][1])
	assert.Equal(t, "CS-005", rows[5][2])
}

func TestLogView(t *testing.T) {
	v := NewLogView()
	v.SetRows(fixtures.LoginLogs())

	v.SetFilter("active session")
	rows := v.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Smith", rows[0].UserName)
	assert.Equal(t, ActiveSession, LogoutText(rows[0]))
	assert.Equal(t, model.SessionActive, DurationText(rows[0]))

	v.SetFilter("9h 30m")
	rows = v.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, model.SessionCompleted, rows[0].Status())

	var buf bytes.Buffer
	require.NoError(t, v.ExportXLSX(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet, err := f.GetRows("Login Logs")
	require.NoError(t, err)
	require.Len(t, sheet, 6)
	assert.Equal(t, "Duration (minutes)", sheet[0][4])
	assert.Equal(t, "570", sheet[1][4])
	assert.Equal(t, ActiveSession, sheet[3][3])
	assert.Equal(t, "Active", sheet[3][5])
}

func TestUserView(t *testing.T) {
	v := NewUserView()
	v.SetRows(fixtures.Users())

	v.SetFilter("HOD")
	rows := v.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "hod-csedept@nitpy.ac.in", rows[0].Email)

	v.SetFilter("employee")
	assert.Len(t, v.Rows(), 3)
}

func TestComputeLogStats(t *testing.T) {
	s := ComputeLogStats(fixtures.LoginLogs())
	assert.Equal(t, LogStats{Total: 5, Active: 1, Completed: 4, AverageMinutes: 525}, s)

	assert.Equal(t, LogStats{}, ComputeLogStats(nil))
}
