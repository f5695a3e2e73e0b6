package command

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the schema and one
// registered device.
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
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.Exec(
		"INSERT INTO devices (serial_number, ip_address, last_seen, created_at) VALUES (?, ?, ?, ?)",
		"SN001", "10.0.0.5", now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed device: %v", err)
	}

	return db
}

func TestEnqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("upper-cases and stores", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		cmd, err := repo.Enqueue(ctx, "SN001", "  reboot ")
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if cmd.Text != "REBOOT" {
			t.Errorf("Text = %q, want %q", cmd.Text, "REBOOT")
		}
		if cmd.Status != StatusQueued {
			t.Errorf("Status = %v, want %v", cmd.Status, StatusQueued)
		}
		if cmd.ID == 0 {
			t.Error("expected non-zero ID")
		}
	})

	t.Run("unknown device", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		_, err := repo.Enqueue(ctx, "UNKNOWN", "REBOOT")
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("expected ErrDeviceNotFound, got %v", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		_, err := repo.Enqueue(ctx, "SN001", "   ")
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("expected ErrEmptyText, got %v", err)
		}
	})
}

func TestDrainForPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("FIFO order", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		for _, text := range []string{"FIRST", "SECOND", "THIRD"} {
			if _, err := repo.Enqueue(ctx, "SN001", text); err != nil {
				t.Fatalf("Enqueue(%q) error = %v", text, err)
			}
		}

		drained, err := repo.DrainForPoll(ctx, "SN001")
		if err != nil {
			t.Fatalf("DrainForPoll() error = %v", err)
		}
		if len(drained) != 3 {
			t.Fatalf("drained %d commands, want 3", len(drained))
		}

		want := []string{"FIRST", "SECOND", "THIRD"}
		for i, c := range drained {
			if c.Text != want[i] {
				t.Errorf("drained[%d] = %q, want %q", i, c.Text, want[i])
			}
			if c.Status != StatusSent {
				t.Errorf("drained[%d] status = %v, want %v", i, c.Status, StatusSent)
			}
		}
	})

	t.Run("consume once", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		if _, err := repo.Enqueue(ctx, "SN001", "REBOOT"); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}

		first, err := repo.DrainForPoll(ctx, "SN001")
		if err != nil {
			t.Fatalf("first DrainForPoll() error = %v", err)
		}
		if len(first) != 1 {
			t.Fatalf("first drain returned %d commands, want 1", len(first))
		}

		second, err := repo.DrainForPoll(ctx, "SN001")
		if err != nil {
			t.Fatalf("second DrainForPoll() error = %v", err)
		}
		if len(second) != 0 {
			t.Errorf("second drain returned %d commands, want 0", len(second))
		}
	})

	t.Run("empty queue", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		drained, err := repo.DrainForPoll(ctx, "SN001")
		if err != nil {
			t.Fatalf("DrainForPoll() error = %v", err)
		}
		if len(drained) != 0 {
			t.Errorf("drained %d commands from empty queue, want 0", len(drained))
		}
	})

	t.Run("per-device isolation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteRepository(db)

		now := time.Now().UTC().Format(time.RFC3339)
		_, err := db.Exec(
			"INSERT INTO devices (serial_number, ip_address, last_seen, created_at) VALUES (?, ?, ?, ?)",
			"SN002", "10.0.0.6", now, now,
		)
		if err != nil {
			t.Fatalf("seeding second device: %v", err)
		}

		if _, err := repo.Enqueue(ctx, "SN001", "FOR-ONE"); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if _, err := repo.Enqueue(ctx, "SN002", "FOR-TWO"); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}

		drained, err := repo.DrainForPoll(ctx, "SN001")
		if err != nil {
			t.Fatalf("DrainForPoll() error = %v", err)
		}
		if len(drained) != 1 || drained[0].Text != "FOR-ONE" {
			t.Errorf("drained = %+v, want only FOR-ONE", drained)
		}
	})
}

func TestRecentSent(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	for _, text := range []string{"A", "B", "C"} {
		if _, err := repo.Enqueue(ctx, "SN001", text); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", text, err)
		}
	}
	if _, err := repo.DrainForPoll(ctx, "SN001"); err != nil {
		t.Fatalf("DrainForPoll() error = %v", err)
	}

	recent, err := repo.RecentSent(ctx, "SN001", 2)
	if err != nil {
		t.Fatalf("RecentSent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentSent() returned %d commands, want 2", len(recent))
	}

	// Newest first: C then B (A falls outside the window).
	if recent[0].Text != "C" || recent[1].Text != "B" {
		t.Errorf("RecentSent() order = [%s %s], want [C B]", recent[0].Text, recent[1].Text)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("completed", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		cmd, err := repo.Enqueue(ctx, "SN001", "REBOOT")
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if _, err := repo.DrainForPoll(ctx, "SN001"); err != nil {
			t.Fatalf("DrainForPoll() error = %v", err)
		}

		if err := repo.Resolve(ctx, cmd.ID, true, "OK"); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		list, err := repo.List(ctx, "SN001")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("List() returned %d commands, want 1", len(list))
		}
		got := list[0]
		if got.Status != StatusCompleted {
			t.Errorf("Status = %v, want %v", got.Status, StatusCompleted)
		}
		if got.ExecutedAt == nil {
			t.Error("expected ExecutedAt to be stamped")
		}
		if got.Response == nil || *got.Response != "OK" {
			t.Errorf("Response = %v, want OK", got.Response)
		}
	})

	t.Run("failed", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		cmd, err := repo.Enqueue(ctx, "SN001", "REBOOT")
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if _, err := repo.DrainForPoll(ctx, "SN001"); err != nil {
			t.Fatalf("DrainForPoll() error = %v", err)
		}

		if err := repo.Resolve(ctx, cmd.ID, false, "ERROR=-1"); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		list, err := repo.List(ctx, "SN001")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if list[0].Status != StatusFailed {
			t.Errorf("Status = %v, want %v", list[0].Status, StatusFailed)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewSQLiteRepository(setupTestDB(t))

		err := repo.Resolve(ctx, 9999, true, "OK")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClearQueued(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.Enqueue(ctx, "SN001", "KEEP-SENT"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := repo.DrainForPoll(ctx, "SN001"); err != nil {
		t.Fatalf("DrainForPoll() error = %v", err)
	}

	for _, text := range []string{"Q1", "Q2"} {
		if _, err := repo.Enqueue(ctx, "SN001", text); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", text, err)
		}
	}

	count, err := repo.ClearQueued(ctx)
	if err != nil {
		t.Fatalf("ClearQueued() error = %v", err)
	}
	if count != 2 {
		t.Errorf("ClearQueued() = %d, want 2", count)
	}

	// The sent command survives.
	list, err := repo.List(ctx, "SN001")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Text != "KEEP-SENT" {
		t.Errorf("List() = %+v, want only KEEP-SENT", list)
	}
}
