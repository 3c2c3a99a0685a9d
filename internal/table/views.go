package table

import (
	"math"
	"strconv"
	"time"

	"github.com/nitpy-cse/assetreg/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"

	// ActiveSession is shown in place of an unset logout time.
	ActiveSession = "Active Session"
)

func itoa(n int) string { return strconv.Itoa(n) }

func localDate(t time.Time) string     { return t.Local().Format(dateLayout) }
func localDateTime(t time.Time) string { return t.Local().Format(dateTimeLayout) }

// NewAssetView returns the assets table.
func NewAssetView() *View[model.Asset] {
	columns := []Column[model.Asset]{
		{Key: "id", Header: "ID", Value: func(a model.Asset) string { return strconv.FormatInt(a.ID, 10) }, Numeric: true},
		{Key: "item_name", Header: "Item Name", Value: func(a model.Asset) string { return a.ItemName }},
		{Key: "quantity", Header: "Quantity", Value: func(a model.Asset) string { return itoa(a.Quantity) }, Numeric: true},
		{Key: "inventory_number", Header: "Inventory #", Value: func(a model.Asset) string { return a.InventoryNumber }},
		{Key: "room_number", Header: "Room", Value: func(a model.Asset) string { return a.RoomNumber }},
		{Key: "floor_number", Header: "Floor", Value: func(a model.Asset) string { return a.FloorNumber }},
		{Key: "building_block", Header: "Building", Value: func(a model.Asset) string { return a.BuildingBlock }},
		{Key: "year_of_purchase", Header: "Year", Value: func(a model.Asset) string { return itoa(a.YearOfPurchase) }, Numeric: true},
		{Key: "department_origin", Header: "Origin", Value: func(a model.Asset) string { return a.DepartmentOrigin }},
		{Key: "remarks", Header: "Remarks", Value: func(a model.Asset) string { return a.Remarks }},
	}
	export := []Column[model.Asset]{
		{Header: "Item Name", Value: func(a model.Asset) string { return a.ItemName }},
		{Header: "Quantity", Cell: func(a model.Asset) any { return a.Quantity }},
		{Header: "Inventory Number", Value: func(a model.Asset) string { return a.InventoryNumber }},
		{Header: "Room Number", Value: func(a model.Asset) string { return a.RoomNumber }},
		{Header: "Floor Number", Value: func(a model.Asset) string { return a.FloorNumber }},
		{Header: "Building Block", Value: func(a model.Asset) string { return a.BuildingBlock }},
		{Header: "Year of Purchase", Cell: func(a model.Asset) any { return a.YearOfPurchase }},
		{Header: "Department Origin", Value: func(a model.Asset) string { return a.DepartmentOrigin }},
		{Header: "Remarks", Value: func(a model.Asset) string { return a.Remarks }},
		{Header: "Last Updated", Value: func(a model.Asset) string { return localDate(a.LastUpdated) }},
	}
	return NewView("Assets", columns, export)
}

// NewUserView returns the users table.
func NewUserView() *View[model.User] {
	columns := []Column[model.User]{
		{Key: "id", Header: "ID", Value: func(u model.User) string { return strconv.FormatInt(u.ID, 10) }, Numeric: true},
		{Key: "name", Header: "Name", Value: func(u model.User) string { return u.Name }},
		{Key: "email", Header: "Email", Value: func(u model.User) string { return u.Email }},
		{Key: "role", Header: "Role", Value: func(u model.User) string { return u.Role }},
		{Key: "created_at", Header: "Created", Value: func(u model.User) string { return localDate(u.CreatedAt) }},
	}
	return NewView("Users", columns, columns[1:])
}

// LogoutText renders the logout time, or "Active Session" while open.
func LogoutText(l model.LoginLog) string {
	if l.LogoutTime == nil {
		return ActiveSession
	}
	return localDateTime(*l.LogoutTime)
}

// DurationText renders the session length as "Xh Ym", or "Active" while open.
func DurationText(l model.LoginLog) string {
	if l.DurationMinutes == nil {
		return model.SessionActive
	}
	return model.FormatDuration(*l.DurationMinutes)
}

// NewLogView returns the login logs table.
func NewLogView() *View[model.LoginLog] {
	columns := []Column[model.LoginLog]{
		{Key: "user_name", Header: "User Name", Value: func(l model.LoginLog) string { return l.UserName }},
		{Key: "user_email", Header: "Email", Value: func(l model.LoginLog) string { return l.UserEmail }},
		{Key: "login_time", Header: "Login Time", Value: func(l model.LoginLog) string { return localDateTime(l.LoginTime) }},
		{Key: "logout_time", Header: "Logout Time", Value: LogoutText},
		{Key: "duration", Header: "Duration", Value: DurationText},
		{Key: "status", Header: "Status", Value: func(l model.LoginLog) string { return l.Status() }},
	}
	export := []Column[model.LoginLog]{
		columns[0],
		columns[1],
		columns[2],
		columns[3],
		{Header: "Duration (minutes)", Cell: func(l model.LoginLog) any {
			if l.DurationMinutes == nil {
				return model.SessionActive
			}
			return *l.DurationMinutes
		}},
		columns[5],
	}
	return NewView("Login Logs", columns, export)
}

// LogStats summarises a set of login logs.
type LogStats struct {
	Total     int
	Active    int
	Completed int
	// AverageMinutes is the rounded mean of the recorded non-zero durations.
	AverageMinutes int
}

// ComputeLogStats counts sessions and averages their durations.
func ComputeLogStats(logs []model.LoginLog) LogStats {
	var s LogStats
	var sum, n int
	s.Total = len(logs)
	for _, l := range logs {
		if l.Active() {
			s.Active++
		}
		if l.DurationMinutes != nil && *l.DurationMinutes > 0 {
			sum += *l.DurationMinutes
			n++
		}
	}
	s.Completed = s.Total - s.Active
	if n > 0 {
		s.AverageMinutes = int(math.Round(float64(sum) / float64(n)))
	}
	return s
}
