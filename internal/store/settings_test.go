package store

import "testing"

func TestSettingsStore(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	ss := NewSettingsStore(db)

	// Unset keys read as empty.
	v, err := ss.Get(parentID, SettingSoundEnabled)
	if err != nil || v != "" {
		t.Errorf("unset get = %q, %v", v, err)
	}

	if err := ss.Set(parentID, SettingSoundEnabled, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ss.Set(parentID, SettingSoundEnabled, "false"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, _ = ss.Get(parentID, SettingSoundEnabled)
	if v != "false" {
		t.Errorf("get = %q, want false", v)
	}

	if err := ss.Set(parentID, SettingCelebrations, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	all, err := ss.GetAll(parentID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d settings, want 2", len(all))
	}

	// Settings are per parent.
	otherParent := createTestParent(t, db, "other")
	v, _ = ss.Get(otherParent, SettingSoundEnabled)
	if v != "" {
		t.Errorf("foreign parent sees %q", v)
	}

	if err := ss.Delete(parentID, SettingSoundEnabled); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _ = ss.Get(parentID, SettingSoundEnabled)
	if v != "" {
		t.Errorf("get after delete = %q", v)
	}
}
