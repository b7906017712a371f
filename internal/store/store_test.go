package store

import (
	"database/sql"
	"testing"
	"time"

	"choresquest/internal/database"
	"choresquest/internal/model"
	"choresquest/internal/recurrence"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// An in-memory database exists per connection; pin the pool to one so
	// every query and transaction sees the same database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestParent inserts a parent account and returns its ID.
func createTestParent(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	us := NewUserStore(db)
	user, err := us.Create("Test Parent", username, "hash", "recovery-hash")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	return user.ID
}

func createTestChild(t *testing.T, db *sql.DB, parentID int64, name string) *model.Child {
	t.Helper()
	cs := NewChildStore(db)
	child, err := cs.Create(parentID, name, "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

func createTestTask(t *testing.T, db *sql.DB, parentID int64, p TaskParams) *model.Task {
	t.Helper()
	ts := NewTaskStore(db)
	task, err := ts.Create(parentID, p)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// basicTaskParams returns a one-time task due today assigned to the child.
func basicTaskParams(childID int64, dueDate time.Time) TaskParams {
	return TaskParams{
		Title:            "Take out trash",
		DueDate:          dueDate,
		Points:           10,
		RepeatPolicy:     recurrence.None,
		AssignedChildIDs: []int64{childID},
	}
}
