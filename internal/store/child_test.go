package store

import (
	"testing"
)

func TestChildCRUD(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)

	child, err := cs.Create(parentID, "Ava", "/pics/ava.png")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.Points != 0 {
		t.Errorf("new child points = %d, want 0", child.Points)
	}

	newName := "Ava B"
	updated, err := cs.Update(parentID, child.ID, &newName, nil)
	if err != nil {
		t.Fatalf("update child: %v", err)
	}
	if updated.Name != "Ava B" {
		t.Errorf("name = %q, want %q", updated.Name, "Ava B")
	}
	if updated.ProfilePicURL != "/pics/ava.png" {
		t.Errorf("nil field overwrote profile pic: %q", updated.ProfilePicURL)
	}

	children, err := cs.ListByParent(parentID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}

	// Ownership scoping.
	otherParent := createTestParent(t, db, "other")
	if got, _ := cs.GetOwned(otherParent, child.ID); got != nil {
		t.Error("child visible to a different parent")
	}
	if got, _ := cs.Update(otherParent, child.ID, &newName, nil); got != nil {
		t.Error("different parent could update child")
	}

	if err := cs.Delete(parentID, child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if got, _ := cs.GetByID(child.ID); got != nil {
		t.Error("child still present after delete")
	}
}

func TestChildAdjustPoints(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)
	child := createTestChild(t, db, parentID, "Ben")

	got, err := cs.AdjustPoints(parentID, child.ID, 30)
	if err != nil {
		t.Fatalf("adjust points: %v", err)
	}
	if got.Points != 30 {
		t.Errorf("points = %d, want 30", got.Points)
	}

	got, err = cs.AdjustPoints(parentID, child.ID, -10)
	if err != nil {
		t.Fatalf("adjust points: %v", err)
	}
	if got.Points != 20 {
		t.Errorf("points = %d, want 20", got.Points)
	}

	// The balance clamps at zero.
	got, err = cs.AdjustPoints(parentID, child.ID, -100)
	if err != nil {
		t.Fatalf("adjust points: %v", err)
	}
	if got.Points != 0 {
		t.Errorf("points = %d, want 0", got.Points)
	}

	if got, _ := cs.AdjustPoints(parentID, 9999, 5); got != nil {
		t.Error("adjust on missing child returned a row")
	}
}

func TestChildSetPoints(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)
	child := createTestChild(t, db, parentID, "Cara")

	got, err := cs.SetPoints(parentID, child.ID, 42)
	if err != nil {
		t.Fatalf("set points: %v", err)
	}
	if got.Points != 42 {
		t.Errorf("points = %d, want 42", got.Points)
	}

	got, err = cs.SetPoints(parentID, child.ID, -5)
	if err != nil {
		t.Fatalf("set points: %v", err)
	}
	if got.Points != 0 {
		t.Errorf("negative set: points = %d, want 0", got.Points)
	}
}
