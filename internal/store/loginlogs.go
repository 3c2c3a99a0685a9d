package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
)

const loginLogSelect = `SELECT ll.id, ll.user_id, u.name, u.email, ll.login_time, ll.logout_time,
        ll.duration_minutes, ll.ip_address, ll.user_agent
 FROM login_logs ll
 JOIN users u ON u.id = ll.user_id`

func scanLoginLog(row rowScanner) (model.LoginLog, error) {
	var l model.LoginLog
	var ip, ua sql.NullString
	err := row.Scan(&l.ID, &l.UserID, &l.UserName, &l.UserEmail, &l.LoginTime, &l.LogoutTime,
		&l.DurationMinutes, &ip, &ua)
	l.IPAddress = ip.String
	l.UserAgent = ua.String
	return l, err
}

// CreateLoginLog records a new login for a user and returns the log ID.
func CreateLoginLog(ctx context.Context, db *db.DB, userID int64, at time.Time, ipAddress, userAgent string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO login_logs (user_id, login_time, ip_address, user_agent)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		userID, at.UTC(), ipAddress, userAgent,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating login log: %w", err)
	}
	return id, nil
}

// CloseLoginLog sets the logout time and session duration of an open log.
// It reports false when the log does not exist or was already closed.
func CloseLoginLog(ctx context.Context, db *db.DB, id int64, at time.Time) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var loginTime time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT login_time FROM login_logs WHERE id = ? AND logout_time IS NULL`, id,
	).Scan(&loginTime)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading login time: %w", err)
	}

	logout := at.UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE login_logs SET logout_time = ?, duration_minutes = ?
		 WHERE id = ? AND logout_time IS NULL`,
		logout, model.SessionMinutes(loginTime, logout), id,
	)
	if err != nil {
		return false, fmt.Errorf("closing login log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing logout: %w", err)
	}
	return true, nil
}

// GetLoginLog returns a login log by ID.
func GetLoginLog(ctx context.Context, db *db.DB, id int64) (*model.LoginLog, error) {
	l, err := scanLoginLog(db.QueryRowContext(ctx, loginLogSelect+` WHERE ll.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting login log: %w", err)
	}
	return &l, nil
}

// ListLoginLogs returns every login log with user details, newest first.
func ListLoginLogs(ctx context.Context, db *db.DB) ([]model.LoginLog, error) {
	rows, err := db.QueryContext(ctx, loginLogSelect+` ORDER BY ll.login_time DESC, ll.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing login logs: %w", err)
	}
	defer rows.Close()

	var logs []model.LoginLog
	for rows.Next() {
		l, err := scanLoginLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning login log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
