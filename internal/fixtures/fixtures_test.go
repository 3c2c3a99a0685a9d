package fixtures

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitpy-cse/assetreg/internal/model"
)

func TestSampleData(t *testing.T) {
	assets := Assets()
	require.Len(t, assets, 5)
	assert.Equal(t, "CS-003", assets[2].InventoryNumber)
	assert.Equal(t, model.OriginOther, assets[3].DepartmentOrigin)

	assert.Len(t, Users(), 4)

	logs := LoginLogs()
	require.Len(t, logs, 5)
	active := 0
	for _, l := range logs {
		if l.Active() {
			active++
			assert.Nil(t, l.DurationMinutes)
			continue
		}
		assert.Equal(t, model.SessionMinutes(l.LoginTime, *l.LogoutTime), *l.DurationMinutes,
			"duration of log %d matches its timestamps", l.ID)
	}
	assert.Equal(t, 1, active)
}

func TestCopiesAreIndependent(t *testing.T) {
	a := Assets()
	a[0].ItemName = "changed"
	assert.Equal(t, "Dell Latitude Laptop", Assets()[0].ItemName)

	s := NewStore()
	got := s.Assets()
	got[0].Quantity = 0
	assert.Equal(t, 25, s.Assets()[0].Quantity)
}

func TestEditAsset(t *testing.T) {
	s := NewStore()

	updated, ok, err := s.EditAsset(3, map[string]any{"quantity": 10, "remarks": "two returned"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, "two returned", updated.Remarks)
	assert.Equal(t, "Projector", updated.ItemName)
	assert.Equal(t, int64(3), updated.ID)
	assert.Equal(t, updated, s.Assets()[2])

	_, ok, err = s.EditAsset(99, map[string]any{"quantity": 1})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.EditAsset(1, map[string]any{"quantity": "many"})
	assert.Error(t, err)
	assert.Equal(t, 25, s.Assets()[0].Quantity)
}

func TestAddAndDeleteUser(t *testing.T) {
	s := NewStore()

	u := s.AddUser("Priya Raman", "priya.raman@nitpy.ac.in", model.RoleEmployee)
	assert.Equal(t, int64(5), u.ID)
	assert.Len(t, s.Users(), 5)

	assert.True(t, s.DeleteUser(u.ID))
	assert.False(t, s.DeleteUser(u.ID))
	assert.Len(t, s.Users(), 4)

	// Ids are not reused after a delete.
	assert.Equal(t, int64(6), s.AddUser("X", "x@nitpy.ac.in", model.RoleEmployee).ID)
}

func TestAuthenticate(t *testing.T) {
	s := NewStore()

	u, ok := s.Authenticate("hod-csedept@nitpy.ac.in", "NITPY123")
	require.True(t, ok)
	assert.Equal(t, model.RoleHOD, u.Role)

	u, ok = s.Authenticate("john.doe@nitpy.ac.in", "password123")
	require.True(t, ok)
	assert.Equal(t, model.RoleEmployee, u.Role)

	_, ok = s.Authenticate("john.doe@nitpy.ac.in", "NITPY123")
	assert.False(t, ok)
}

func TestStoreConcurrentUse(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AddUser("u", "u@nitpy.ac.in", model.RoleEmployee)
			s.EditAsset(1, map[string]any{"quantity": n})
			_ = s.Users()
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Users(), 14)
}
