// Package fixtures holds the canned sample data used to seed a fresh database
// and to answer client calls in offline mode.
package fixtures

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nitpy-cse/assetreg/internal/model"
)

// Account is a sample login accepted in offline mode.
type Account struct {
	Email    string
	Password string
	UserID   int64
}

// Accounts returns the sample logins: one HOD and one employee.
func Accounts() []Account {
	return []Account{
		{Email: "hod-csedept@nitpy.ac.in", Password: "NITPY123", UserID: 1},
		{Email: "john.doe@nitpy.ac.in", Password: "password123", UserID: 2},
	}
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad timestamp %q", s))
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// Assets returns the five sample assets.
func Assets() []model.Asset {
	return []model.Asset{
		{
			ID: 1, YearOfPurchase: 2023, ItemName: "Dell Latitude Laptop", Quantity: 25,
			InventoryNumber: "CS-001", RoomNumber: "101", FloorNumber: "1",
			BuildingBlock: "Computer Science Block", Remarks: "For faculty use",
			DepartmentOrigin: model.OriginOwn, LastUpdated: ts("2024-01-20T10:30:00Z"),
		},
		{
			ID: 2, YearOfPurchase: 2022, ItemName: "HP Desktop Computer", Quantity: 50,
			InventoryNumber: "CS-002", RoomNumber: "102", FloorNumber: "1",
			BuildingBlock: "Computer Science Block", Remarks: "For lab use",
			DepartmentOrigin: model.OriginOwn, LastUpdated: ts("2024-01-18T14:20:00Z"),
		},
		{
			ID: 3, YearOfPurchase: 2023, ItemName: "Projector", Quantity: 8,
			InventoryNumber: "CS-003", RoomNumber: "201", FloorNumber: "2",
			BuildingBlock: "Computer Science Block", Remarks: "For classroom presentations",
			DepartmentOrigin: model.OriginOwn, LastUpdated: ts("2024-01-19T09:15:00Z"),
		},
		{
			ID: 4, YearOfPurchase: 2021, ItemName: "Network Switch", Quantity: 12,
			InventoryNumber: "CS-004", RoomNumber: "Server Room", FloorNumber: "1",
			BuildingBlock: "Computer Science Block", Remarks: "24-port managed switches",
			DepartmentOrigin: model.OriginOther, LastUpdated: ts("2024-01-17T16:45:00Z"),
		},
		{
			ID: 5, YearOfPurchase: 2023, ItemName: "Printer", Quantity: 6,
			InventoryNumber: "CS-005", RoomNumber: "103", FloorNumber: "1",
			BuildingBlock: "Computer Science Block", Remarks: "Laser printers for department use",
			DepartmentOrigin: model.OriginOwn, LastUpdated: ts("2024-01-16T11:30:00Z"),
		},
	}
}

// Users returns the four sample users.
func Users() []model.User {
	return []model.User{
		{ID: 1, Name: "HOD Computer Science", Email: "hod-csedept@nitpy.ac.in", Role: model.RoleHOD, CreatedAt: ts("2024-01-01T00:00:00Z")},
		{ID: 2, Name: "John Doe", Email: "john.doe@nitpy.ac.in", Role: model.RoleEmployee, CreatedAt: ts("2024-01-15T00:00:00Z")},
		{ID: 3, Name: "Jane Smith", Email: "jane.smith@nitpy.ac.in", Role: model.RoleEmployee, CreatedAt: ts("2024-01-20T00:00:00Z")},
		{ID: 4, Name: "Mike Johnson", Email: "mike.johnson@nitpy.ac.in", Role: model.RoleEmployee, CreatedAt: ts("2024-01-25T00:00:00Z")},
	}
}

// LoginLogs returns the five sample login log entries. Entry 3 is an open session.
func LoginLogs() []model.LoginLog {
	return []model.LoginLog{
		{
			ID: 1, UserID: 1, UserName: "HOD Computer Science", UserEmail: "hod-csedept@nitpy.ac.in",
			LoginTime: ts("2024-01-31T08:00:00Z"), LogoutTime: ptr(ts("2024-01-31T17:30:00Z")), DurationMinutes: ptr(570),
		},
		{
			ID: 2, UserID: 2, UserName: "John Doe", UserEmail: "john.doe@nitpy.ac.in",
			LoginTime: ts("2024-01-31T09:15:00Z"), LogoutTime: ptr(ts("2024-01-31T16:45:00Z")), DurationMinutes: ptr(450),
		},
		{
			ID: 3, UserID: 3, UserName: "Jane Smith", UserEmail: "jane.smith@nitpy.ac.in",
			LoginTime: ts("2024-01-31T08:30:00Z"),
		},
		{
			ID: 4, UserID: 1, UserName: "HOD Computer Science", UserEmail: "hod-csedept@nitpy.ac.in",
			LoginTime: ts("2024-01-30T08:00:00Z"), LogoutTime: ptr(ts("2024-01-30T18:00:00Z")), DurationMinutes: ptr(600),
		},
		{
			ID: 5, UserID: 2, UserName: "John Doe", UserEmail: "john.doe@nitpy.ac.in",
			LoginTime: ts("2024-01-30T09:00:00Z"), LogoutTime: ptr(ts("2024-01-30T17:00:00Z")), DurationMinutes: ptr(480),
		},
	}
}

// Store is a mutable copy of the sample data. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	assets []model.Asset
	users  []model.User
	logs   []model.LoginLog
	nextID int64
}

// NewStore returns a store holding fresh copies of the sample data.
func NewStore() *Store {
	s := &Store{
		assets: Assets(),
		users:  Users(),
		logs:   LoginLogs(),
	}
	for _, u := range s.users {
		s.nextID = max(s.nextID, u.ID)
	}
	return s
}

// Assets returns a copy of the current assets.
func (s *Store) Assets() []model.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Asset(nil), s.assets...)
}

// EditAsset overlays fields, keyed by JSON column name, onto the asset with
// the given id. It reports whether the asset exists.
func (s *Store) EditAsset(id int64, fields map[string]any) (model.Asset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.assets {
		if a.ID != id {
			continue
		}

		merged := map[string]any{}
		raw, err := json.Marshal(a)
		if err != nil {
			return model.Asset{}, false, fmt.Errorf("encoding asset: %w", err)
		}
		if err := json.Unmarshal(raw, &merged); err != nil {
			return model.Asset{}, false, fmt.Errorf("decoding asset: %w", err)
		}
		for k, v := range fields {
			if k == "id" {
				continue
			}
			merged[k] = v
		}
		merged["last_updated"] = time.Now().UTC().Format(time.RFC3339)

		raw, err = json.Marshal(merged)
		if err != nil {
			return model.Asset{}, false, fmt.Errorf("encoding fields: %w", err)
		}
		var updated model.Asset
		if err := json.Unmarshal(raw, &updated); err != nil {
			return model.Asset{}, false, fmt.Errorf("applying fields: %w", err)
		}
		s.assets[i] = updated
		return updated, true, nil
	}
	return model.Asset{}, false, nil
}

// Users returns a copy of the current users.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...)
}

// User returns the user with the given id.
func (s *Store) User(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// AddUser appends a user with the next free id.
func (s *Store) AddUser(name, email, role string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := model.User{ID: s.nextID, Name: name, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	s.users = append(s.users, u)
	return u
}

// DeleteUser removes a user and reports whether it existed.
func (s *Store) DeleteUser(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return true
		}
	}
	return false
}

// LoginLogs returns a copy of the login logs.
func (s *Store) LoginLogs() []model.LoginLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LoginLog(nil), s.logs...)
}

// Authenticate returns the sample user matching the credentials.
func (s *Store) Authenticate(email, password string) (model.User, bool) {
	for _, acct := range Accounts() {
		if acct.Email == email && acct.Password == password {
			return s.User(acct.UserID)
		}
	}
	return model.User{}, false
}
