package command

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for command queue persistence.
type Repository interface {
	// Enqueue inserts a queued command for the device. The text is trimmed
	// and upper-cased before storage. Returns ErrDeviceNotFound if the serial
	// was never registered, ErrEmptyText if nothing remains after trimming.
	Enqueue(ctx context.Context, sn, text string) (*Command, error)

	// DrainForPoll atomically consumes all queued commands for the device in
	// FIFO order and marks them sent. A command is returned by exactly one
	// call even under concurrent polls; an immediate second call returns nil.
	DrainForPoll(ctx context.Context, sn string) ([]Command, error)

	// RecentSent returns the most recently sent commands for the device,
	// newest first, bounded by limit. This is the acknowledgment
	// correlation window.
	RecentSent(ctx context.Context, sn string, limit int) ([]Command, error)

	// Resolve moves a sent command to its terminal state, stamping
	// executed_at and storing the raw device response.
	// Returns ErrNotFound if the ID does not exist.
	Resolve(ctx context.Context, id int64, completed bool, response string) error

	// List returns commands for the operator API, newest first.
	// An empty deviceSN returns commands for all devices.
	List(ctx context.Context, deviceSN string) ([]Command, error)

	// ClearQueued deletes every command still in the queued state, across
	// all devices, and returns the number removed. Sent and resolved
	// commands are untouched.
	ClearQueued(ctx context.Context) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Enqueue inserts a queued command for the device.
func (r *SQLiteRepository) Enqueue(ctx context.Context, sn, text string) (*Command, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyText
	}

	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE serial_number = ?", sn,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking device existence: %w", err)
	}
	if exists == 0 {
		return nil, ErrDeviceNotFound
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO device_commands (device_sn, command, status, created_at) VALUES (?, ?, ?, ?)",
		sn, text, string(StatusQueued), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting command: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading command id: %w", err)
	}

	return &Command{
		ID:        id,
		DeviceSN:  sn,
		Text:      text,
		Status:    StatusQueued,
		CreatedAt: now,
	}, nil
}

// DrainForPoll atomically consumes the device's queued commands.
func (r *SQLiteRepository) DrainForPoll(ctx context.Context, sn string) ([]Command, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	query := `
		SELECT id, device_sn, command, status, created_at, executed_at, response
		FROM device_commands
		WHERE device_sn = ? AND status = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := tx.QueryContext(ctx, query, sn, string(StatusQueued))
	if err != nil {
		return nil, fmt.Errorf("querying queued commands: %w", err)
	}

	candidates, err := collectCommands(rows)
	if err != nil {
		return nil, err
	}

	// The conditional update is the consume step: only rows still queued
	// flip to sent, so a command lost to a concurrent drain is dropped from
	// this poll's batch rather than delivered twice.
	var drained []Command
	for _, c := range candidates {
		result, err := tx.ExecContext(ctx,
			"UPDATE device_commands SET status = ? WHERE id = ? AND status = ?",
			string(StatusSent), c.ID, string(StatusQueued),
		)
		if err != nil {
			return nil, fmt.Errorf("marking command sent: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 1 {
			c.Status = StatusSent
			drained = append(drained, c)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing drain: %w", err)
	}
	return drained, nil
}

// RecentSent returns the correlation window for acknowledgment matching.
func (r *SQLiteRepository) RecentSent(ctx context.Context, sn string, limit int) ([]Command, error) {
	query := `
		SELECT id, device_sn, command, status, created_at, executed_at, response
		FROM device_commands
		WHERE device_sn = ? AND status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sn, string(StatusSent), limit)
	if err != nil {
		return nil, fmt.Errorf("querying sent commands: %w", err)
	}
	return collectCommands(rows)
}

// Resolve moves a sent command to completed or failed.
func (r *SQLiteRepository) Resolve(ctx context.Context, id int64, completed bool, response string) error {
	status := StatusFailed
	if completed {
		status = StatusCompleted
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE device_commands SET status = ?, executed_at = ?, response = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), response, id,
	)
	if err != nil {
		return fmt.Errorf("resolving command: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns commands for the operator API, newest first.
func (r *SQLiteRepository) List(ctx context.Context, deviceSN string) ([]Command, error) {
	query := `
		SELECT id, device_sn, command, status, created_at, executed_at, response
		FROM device_commands`
	var args []any

	if deviceSN != "" {
		query += " WHERE device_sn = ?"
		args = append(args, deviceSN)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	return collectCommands(rows)
}

// ClearQueued deletes all queued commands.
func (r *SQLiteRepository) ClearQueued(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM device_commands WHERE status = ?", string(StatusQueued),
	)
	if err != nil {
		return 0, fmt.Errorf("clearing queued commands: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return count, nil
}

// collectCommands scans and closes a command result set.
func collectCommands(rows *sql.Rows) ([]Command, error) {
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var c Command
		var status, createdAt string
		var executedAt, response sql.NullString

		err := rows.Scan(&c.ID, &c.DeviceSN, &c.Text, &status, &createdAt, &executedAt, &response)
		if err != nil {
			return nil, fmt.Errorf("scanning command row: %w", err)
		}

		c.Status = Status(status)
		c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if executedAt.Valid {
			ts, err := time.Parse(time.RFC3339, executedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing executed_at: %w", err)
			}
			c.ExecutedAt = &ts
		}
		if response.Valid {
			c.Response = &response.String
		}

		commands = append(commands, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}
	return commands, nil
}
