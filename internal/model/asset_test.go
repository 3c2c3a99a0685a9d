package model

import "testing"

func TestAssetColumnAllowList(t *testing.T) {
	tests := []struct {
		name     string
		column   bool
		editable bool
	}{
		{"id", true, false},
		{"last_updated", true, false},
		{"item_name", true, true},
		{"department_origin", true, true},
		{"quantity", true, true},
		{"item_name; DROP TABLE assets", false, false},
		{"`item_name`", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := IsAssetColumn(tt.name); got != tt.column {
			t.Errorf("IsAssetColumn(%q) = %v, want %v", tt.name, got, tt.column)
		}
		if got := IsEditableAssetColumn(tt.name); got != tt.editable {
			t.Errorf("IsEditableAssetColumn(%q) = %v, want %v", tt.name, got, tt.editable)
		}
	}
}

func TestAssetColumnsReturnsCopy(t *testing.T) {
	cols := AssetColumns()
	cols[0] = "mutated"
	if !IsAssetColumn("id") {
		t.Error("mutating the returned slice changed the allow-list")
	}
}
