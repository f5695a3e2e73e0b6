package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Listing limits for the operator API.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Repository defines the interface for attendance log persistence.
type Repository interface {
	// Ingest parses a device payload and appends one record per valid
	// transaction line, returning the stored records. Malformed lines are
	// skipped, not fatal; a payload with no valid lines stores nothing and
	// is not an error.
	Ingest(ctx context.Context, sn, body string) (stored []Record, skipped int, err error)

	// List returns the most recent records, newest first.
	// A non-positive limit uses the default; the limit is clamped.
	List(ctx context.Context, limit int) ([]Record, error)

	// Clear deletes all attendance records and returns the count removed.
	Clear(ctx context.Context) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Ingest parses the payload and appends valid records.
func (r *SQLiteRepository) Ingest(ctx context.Context, sn, body string) ([]Record, int, error) {
	parsedRecords, skipped := parsePayload(body)
	if len(parsedRecords) == 0 {
		return nil, skipped, nil
	}

	now := time.Now().UTC()
	createdAt := now.Format(time.RFC3339)
	stored := make([]Record, 0, len(parsedRecords))
	for _, p := range parsedRecords {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO attendance_logs (device_sn, user_id, timestamp, verify_mode, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sn, p.UserID, p.Timestamp, p.VerifyMode, p.Status, createdAt,
		)
		if err != nil {
			return stored, skipped, fmt.Errorf("inserting attendance record: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return stored, skipped, fmt.Errorf("reading inserted record id: %w", err)
		}
		stored = append(stored, Record{
			ID:         id,
			DeviceSN:   sn,
			UserID:     p.UserID,
			Timestamp:  p.Timestamp,
			VerifyMode: p.VerifyMode,
			Status:     p.Status,
			CreatedAt:  now,
		})
	}

	return stored, skipped, nil
}

// List returns the most recent records, newest first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, device_sn, user_id, timestamp, verify_mode, status, created_at
		FROM attendance_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attendance logs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string

		err := rows.Scan(&rec.ID, &rec.DeviceSN, &rec.UserID, &rec.Timestamp, &rec.VerifyMode, &rec.Status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance row: %w", err)
		}

		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance logs: %w", err)
	}
	return records, nil
}

// Clear deletes all attendance records.
func (r *SQLiteRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM attendance_logs")
	if err != nil {
		return 0, fmt.Errorf("clearing attendance logs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return count, nil
}
