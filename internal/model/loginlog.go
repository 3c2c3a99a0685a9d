package model

import (
	"fmt"
	"time"
)

// LoginLog records one user session from login to logout.
type LoginLog struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	UserName        string     `json:"user_name"`
	UserEmail       string     `json:"user_email"`
	LoginTime       time.Time  `json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	IPAddress       string     `json:"ip_address,omitempty"`
	UserAgent       string     `json:"user_agent,omitempty"`
}

// Session statuses.
const (
	SessionActive    = "Active"
	SessionCompleted = "Completed"
)

// Active reports whether the session has not been closed yet.
func (l LoginLog) Active() bool {
	return l.LogoutTime == nil
}

// Status returns "Active" while logout_time is unset and "Completed" afterwards.
func (l LoginLog) Status() string {
	if l.Active() {
		return SessionActive
	}
	return SessionCompleted
}

// SessionMinutes returns the whole minutes elapsed between login and logout,
// truncated toward zero. Negative spans count as zero.
func SessionMinutes(login, logout time.Time) int {
	d := logout.Sub(login)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// FormatDuration renders minutes as "9h 30m", or "45m" under an hour.
func FormatDuration(minutes int) string {
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
