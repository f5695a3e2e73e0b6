package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// RegisterOrRefresh creates the device on first contact and refreshes it
	// on every later contact. Address, model and firmware are overwritten
	// unconditionally (last value wins); last_seen is set to now.
	// Returns created=true when a new row was inserted.
	RegisterOrRefresh(ctx context.Context, sn, addr string, model, firmware *string) (created bool, err error)

	// GetBySN retrieves a device by serial number.
	// Returns ErrNotFound if the device does not exist.
	GetBySN(ctx context.Context, sn string) (*Device, error)

	// List retrieves all devices, most recently seen first.
	List(ctx context.Context) ([]Device, error)

	// Remove deletes a device and everything that references it (commands,
	// attendance logs) in a single transaction. Returns per-relation counts.
	// Returns ErrNotFound if the device does not exist.
	Remove(ctx context.Context, sn string) (RemovalCounts, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RegisterOrRefresh creates or refreshes the device row.
func (r *SQLiteRepository) RegisterOrRefresh(ctx context.Context, sn, addr string, model, firmware *string) (bool, error) {
	if sn == "" {
		return false, ErrInvalidSerial
	}

	now := time.Now().UTC().Format(time.RFC3339)

	// Upsert keyed on serial_number. The update branch overwrites address,
	// model and firmware with whatever the device just reported, including
	// NULL. Devices only report model/firmware on data pushes, so plain polls
	// clear them until the next push.
	query := `
		INSERT INTO devices (serial_number, ip_address, model, firmware_version, last_seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(serial_number) DO UPDATE SET
			ip_address = excluded.ip_address,
			model = excluded.model,
			firmware_version = excluded.firmware_version,
			last_seen = excluded.last_seen`

	// Detect insert-vs-update by checking existence inside the same
	// single-writer connection. SQLite's upsert does not report which branch
	// ran, and the pool is capped at one connection so this cannot race.
	var existing int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE serial_number = ?", sn,
	).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("checking device existence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, sn, addr, nullableString(model), nullableString(firmware), now, now)
	if err != nil {
		return false, fmt.Errorf("upserting device: %w", err)
	}

	return existing == 0, nil
}

// GetBySN retrieves a device by serial number.
func (r *SQLiteRepository) GetBySN(ctx context.Context, sn string) (*Device, error) {
	query := `
		SELECT id, serial_number, ip_address, model, firmware_version, last_seen, created_at
		FROM devices
		WHERE serial_number = ?`

	row := r.db.QueryRowContext(ctx, query, sn)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying device by serial: %w", err)
	}
	return d, nil
}

// List retrieves all devices, most recently seen first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := `
		SELECT id, serial_number, ip_address, model, firmware_version, last_seen, created_at
		FROM devices
		ORDER BY last_seen DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// Remove deletes a device and its dependent rows in a single transaction.
func (r *SQLiteRepository) Remove(ctx context.Context, sn string) (RemovalCounts, error) {
	var counts RemovalCounts

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	result, err := tx.ExecContext(ctx, "DELETE FROM attendance_logs WHERE device_sn = ?", sn)
	if err != nil {
		return counts, fmt.Errorf("deleting attendance logs: %w", err)
	}
	counts.Attendance, err = result.RowsAffected()
	if err != nil {
		return counts, fmt.Errorf("checking attendance rows affected: %w", err)
	}

	result, err = tx.ExecContext(ctx, "DELETE FROM device_commands WHERE device_sn = ?", sn)
	if err != nil {
		return counts, fmt.Errorf("deleting commands: %w", err)
	}
	counts.Commands, err = result.RowsAffected()
	if err != nil {
		return counts, fmt.Errorf("checking command rows affected: %w", err)
	}

	result, err = tx.ExecContext(ctx, "DELETE FROM devices WHERE serial_number = ?", sn)
	if err != nil {
		return counts, fmt.Errorf("deleting device: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return counts, fmt.Errorf("checking device rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return RemovalCounts{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("committing removal: %w", err)
	}
	return counts, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device row into a Device struct.
func scanDevice(row rowScanner) (*Device, error) {
	var d Device
	var model, firmware sql.NullString
	var lastSeen, createdAt string

	err := row.Scan(&d.ID, &d.SerialNumber, &d.IPAddress, &model, &firmware, &lastSeen, &createdAt)
	if err != nil {
		return nil, err
	}

	if model.Valid {
		d.Model = &model.String
	}
	if firmware.Valid {
		d.FirmwareVersion = &firmware.String
	}

	d.LastSeen, err = time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return nil, fmt.Errorf("parsing last_seen: %w", err)
	}
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &d, nil
}

// nullableString converts a *string to a driver-friendly value.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
