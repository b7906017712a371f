package store

import (
	"testing"

	"choresquest/internal/model"
)

func TestNotificationStore(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	child := createTestChild(t, db, parentID, "Ana")
	ns := NewNotificationStore(db)

	n, err := ns.Create(NotificationParams{
		ParentUserID: parentID,
		ChildID:      &child.ID,
		Type:         model.NotificationTaskCompleted,
		Message:      "Ana completed \"Dishes\" (+5 points)",
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.IsRead {
		t.Error("new notification should be unread")
	}
	if n.ChildID == nil || *n.ChildID != child.ID {
		t.Errorf("child id = %v", n.ChildID)
	}

	unread, err := ns.UnreadCount(parentID)
	if err != nil || unread != 1 {
		t.Errorf("unread = %d, %v; want 1", unread, err)
	}

	marked, err := ns.MarkRead(parentID, n.ID)
	if err != nil || !marked {
		t.Fatalf("mark read: marked=%v err=%v", marked, err)
	}
	unread, _ = ns.UnreadCount(parentID)
	if unread != 0 {
		t.Errorf("unread after mark = %d, want 0", unread)
	}

	// Other parents cannot see or mark the notification.
	otherParent := createTestParent(t, db, "other")
	if marked, _ := ns.MarkRead(otherParent, n.ID); marked {
		t.Error("different parent marked the notification")
	}
	list, _ := ns.ListByParent(otherParent, 0)
	if len(list) != 0 {
		t.Errorf("foreign list has %d notifications", len(list))
	}
}

func TestNotificationListLimitAndMarkAll(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	ns := NewNotificationStore(db)

	for i := 0; i < 5; i++ {
		if _, err := ns.Create(NotificationParams{
			ParentUserID: parentID,
			Type:         model.NotificationPointsAdjusted,
			Message:      "adjustment",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := ns.ListByParent(parentID, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("limited list = %d, want 3", len(list))
	}

	if err := ns.MarkAllRead(parentID); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	unread, _ := ns.UnreadCount(parentID)
	if unread != 0 {
		t.Errorf("unread after mark all = %d", unread)
	}
}

func TestNotificationSurvivesReferenceDeletion(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	child := createTestChild(t, db, parentID, "Bea")
	ns := NewNotificationStore(db)
	cs := NewChildStore(db)

	n, err := ns.Create(NotificationParams{
		ParentUserID: parentID,
		ChildID:      &child.ID,
		Type:         model.NotificationTaskCompleted,
		Message:      "Bea completed a task",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := cs.Delete(parentID, child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}

	got, err := ns.GetByID(n.ID)
	if err != nil {
		t.Fatalf("get after child delete: %v", err)
	}
	if got == nil {
		t.Fatal("notification gone after child delete")
	}
	if got.ChildID != nil {
		t.Errorf("child reference = %v, want nil", got.ChildID)
	}
	if got.Message == "" {
		t.Error("message lost")
	}
}
