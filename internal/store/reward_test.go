package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRewardCRUD(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	rs := NewRewardStore(db)

	reward, err := rs.Create(parentID, "Movie night", "", 50)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if !reward.IsActive {
		t.Error("new reward should be active")
	}

	updated, err := rs.Update(parentID, reward.ID, "Movie night!", "/img/movie.png", 60)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.RequiredPoints != 60 {
		t.Errorf("required points = %d, want 60", updated.RequiredPoints)
	}

	toggled, err := rs.ToggleActive(parentID, reward.ID)
	if err != nil {
		t.Fatalf("toggle reward: %v", err)
	}
	if toggled.IsActive {
		t.Error("toggle should deactivate the reward")
	}

	all, _ := rs.ListByParent(parentID)
	active, _ := rs.ListActiveByParent(parentID)
	if len(all) != 1 || len(active) != 0 {
		t.Errorf("all=%d active=%d, want 1/0", len(all), len(active))
	}

	if deleted, err := rs.Delete(parentID, reward.ID); err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
}

func TestClaimReward(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)
	rs := NewRewardStore(db)
	child := createTestChild(t, db, parentID, "Dee")

	reward, err := rs.Create(parentID, "Ice cream", "", 30)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	now := time.Date(2025, time.June, 5, 16, 0, 0, 0, time.UTC)

	// Not enough points yet.
	if _, err := rs.Claim(child.ID, reward.ID, now); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	if _, err := cs.SetPoints(parentID, child.ID, 50); err != nil {
		t.Fatalf("set points: %v", err)
	}

	claim, err := rs.Claim(child.ID, reward.ID, now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.PointsSpent != 30 {
		t.Errorf("points spent = %d, want 30", claim.PointsSpent)
	}

	got, _ := cs.GetByID(child.ID)
	if got.Points != 20 {
		t.Errorf("balance = %d, want 20", got.Points)
	}

	claims, err := rs.ListClaimsByChild(child.ID)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("got %d claims, want 1", len(claims))
	}
}

func TestClaimRewardGuards(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)
	rs := NewRewardStore(db)
	child := createTestChild(t, db, parentID, "Eve")
	if _, err := cs.SetPoints(parentID, child.ID, 100); err != nil {
		t.Fatalf("set points: %v", err)
	}

	now := time.Date(2025, time.June, 5, 16, 0, 0, 0, time.UTC)

	if _, err := rs.Claim(9999, 1, now); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("missing child err = %v, want ErrChildNotFound", err)
	}
	if _, err := rs.Claim(child.ID, 9999, now); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("missing reward err = %v, want ErrRewardNotFound", err)
	}

	// Inactive rewards are distinguishable from missing ones.
	reward, _ := rs.Create(parentID, "Stickers", "", 10)
	if _, err := rs.ToggleActive(parentID, reward.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := rs.Claim(child.ID, reward.ID, now); !errors.Is(err, ErrRewardInactive) {
		t.Errorf("inactive reward err = %v, want ErrRewardInactive", err)
	}

	// A reward from another family is invisible.
	otherParent := createTestParent(t, db, "other")
	foreign, _ := rs.Create(otherParent, "Candy", "", 10)
	if _, err := rs.Claim(child.ID, foreign.ID, now); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("foreign reward err = %v, want ErrRewardNotFound", err)
	}
}

func TestClaimRewardConcurrent(t *testing.T) {
	db := setupTestDB(t)
	parentID := createTestParent(t, db, "parent")
	cs := NewChildStore(db)
	rs := NewRewardStore(db)
	child := createTestChild(t, db, parentID, "Fin")
	if _, err := cs.SetPoints(parentID, child.ID, 30); err != nil {
		t.Fatalf("set points: %v", err)
	}

	reward, _ := rs.Create(parentID, "Game hour", "", 30)
	now := time.Date(2025, time.June, 5, 16, 0, 0, 0, time.UTC)

	// Two simultaneous claims with balance for only one.
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = rs.Claim(child.ID, reward.ID, now)
		}(i)
	}
	wg.Wait()

	var wins, broke int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInsufficientPoints):
			broke++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || broke != 1 {
		t.Fatalf("wins=%d insufficient=%d, want exactly one claim", wins, broke)
	}

	got, _ := cs.GetByID(child.ID)
	if got.Points != 0 {
		t.Errorf("balance = %d, want 0", got.Points)
	}
}
