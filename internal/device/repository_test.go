package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	schema := `
		CREATE TABLE devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial_number TEXT UNIQUE NOT NULL,
			ip_address TEXT,
			model TEXT,
			firmware_version TEXT,
			last_seen TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE device_commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_sn TEXT NOT NULL,
			command TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			created_at TEXT NOT NULL,
			executed_at TEXT,
			response TEXT
		);
		CREATE TABLE attendance_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_sn TEXT NOT NULL,
			user_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			verify_mode INTEGER NOT NULL DEFAULT 0,
			status INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

func strPtr(s string) *string {
	return &s
}

func TestRegisterOrRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("first contact creates device", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		created, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", strPtr("K40"), strPtr("6.60"))
		if err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}
		if !created {
			t.Error("expected created=true on first contact")
		}

		d, err := repo.GetBySN(ctx, "SN001")
		if err != nil {
			t.Fatalf("GetBySN() error = %v", err)
		}
		if d.IPAddress != "10.0.0.5" {
			t.Errorf("IPAddress = %q, want %q", d.IPAddress, "10.0.0.5")
		}
		if d.Model == nil || *d.Model != "K40" {
			t.Errorf("Model = %v, want K40", d.Model)
		}
	})

	t.Run("repeat contacts are idempotent", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		for i := 0; i < 5; i++ {
			_, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", nil, nil)
			if err != nil {
				t.Fatalf("RegisterOrRefresh() #%d error = %v", i, err)
			}
		}

		devices, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(devices) != 1 {
			t.Errorf("expected 1 device after 5 registrations, got %d", len(devices))
		}
	})

	t.Run("second contact reports created=false", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		if _, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", nil, nil); err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}
		created, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", nil, nil)
		if err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}
		if created {
			t.Error("expected created=false on second contact")
		}
	})

	t.Run("last value wins", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		if _, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", strPtr("K40"), strPtr("6.60")); err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}

		// A plain poll reports no model/firmware; the nils overwrite.
		if _, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.9", nil, nil); err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}

		d, err := repo.GetBySN(ctx, "SN001")
		if err != nil {
			t.Fatalf("GetBySN() error = %v", err)
		}
		if d.IPAddress != "10.0.0.9" {
			t.Errorf("IPAddress = %q, want %q", d.IPAddress, "10.0.0.9")
		}
		if d.Model != nil {
			t.Errorf("Model = %v, want nil after plain poll", *d.Model)
		}
		if d.FirmwareVersion != nil {
			t.Errorf("FirmwareVersion = %v, want nil after plain poll", *d.FirmwareVersion)
		}
	})

	t.Run("empty serial rejected", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		_, err := repo.RegisterOrRefresh(ctx, "", "10.0.0.5", nil, nil)
		if !errors.Is(err, ErrInvalidSerial) {
			t.Errorf("expected ErrInvalidSerial, got %v", err)
		}
	})
}

func TestGetBySN_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.GetBySN(context.Background(), "UNKNOWN")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_Empty(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	devices, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("expected empty list, got %d devices", len(devices))
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade deletes with counts", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteRepository(db)

		if _, err := repo.RegisterOrRefresh(ctx, "SN001", "10.0.0.5", nil, nil); err != nil {
			t.Fatalf("RegisterOrRefresh() error = %v", err)
		}

		now := time.Now().UTC().Format(time.RFC3339)
		for i := 0; i < 3; i++ {
			_, err := db.Exec(
				"INSERT INTO device_commands (device_sn, command, status, created_at) VALUES (?, ?, 'queued', ?)",
				"SN001", "REBOOT", now,
			)
			if err != nil {
				t.Fatalf("seeding command: %v", err)
			}
		}
		for i := 0; i < 2; i++ {
			_, err := db.Exec(
				"INSERT INTO attendance_logs (device_sn, user_id, timestamp, created_at) VALUES (?, ?, ?, ?)",
				"SN001", "42", "2026-08-15 09:00:00", now,
			)
			if err != nil {
				t.Fatalf("seeding attendance: %v", err)
			}
		}

		counts, err := repo.Remove(ctx, "SN001")
		if err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if counts.Commands != 3 {
			t.Errorf("Commands deleted = %d, want 3", counts.Commands)
		}
		if counts.Attendance != 2 {
			t.Errorf("Attendance deleted = %d, want 2", counts.Attendance)
		}

		if _, err := repo.GetBySN(ctx, "SN001"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after removal, got %v", err)
		}
	})

	t.Run("unknown device", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		_, err := repo.Remove(ctx, "UNKNOWN")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	tests := []struct {
		name     string
		lastSeen time.Time
		want     Status
	}{
		{
			name:     "just seen",
			lastSeen: now,
			want:     StatusOnline,
		},
		{
			name:     "inside window",
			lastSeen: now.Add(-window + time.Second),
			want:     StatusOnline,
		},
		{
			name:     "exactly at window",
			lastSeen: now.Add(-window),
			want:     StatusOffline,
		},
		{
			name:     "past window",
			lastSeen: now.Add(-window - time.Second),
			want:     StatusOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Device{LastSeen: tt.lastSeen}
			if got := d.StatusAt(now, window); got != tt.want {
				t.Errorf("StatusAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
