package store

import (
	"database/sql"
	"fmt"
	"time"

	"choresquest/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var isActive int
	err := scanner.Scan(
		&r.ID, &r.ParentUserID, &r.Title, &r.ImageURL, &r.RequiredPoints,
		&isActive, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.IsActive = isActive != 0
	return &r, nil
}

const rewardCols = `id, parent_user_id, title, image_url, required_points, is_active, created_at`

func (s *RewardStore) Create(parentUserID int64, title, imageURL string, requiredPoints int) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (parent_user_id, title, image_url, required_points, is_active) VALUES (?, ?, ?, ?, 1)`,
		parentUserID, title, imageURL, requiredPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListByParent returns all of a parent's rewards, active and inactive, for
// the management view. Cheapest first.
func (s *RewardStore) ListByParent(parentUserID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE parent_user_id = ? ORDER BY required_points ASC, title ASC`,
		parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// ListActiveByParent returns only claimable rewards, for the child-facing
// shop view.
func (s *RewardStore) ListActiveByParent(parentUserID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE parent_user_id = ? AND is_active = 1 ORDER BY required_points ASC, title ASC`,
		parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(parentUserID, rewardID int64, title, imageURL string, requiredPoints int) (*model.Reward, error) {
	result, err := s.db.Exec(
		`UPDATE rewards SET title = ?, image_url = ?, required_points = ? WHERE id = ? AND parent_user_id = ?`,
		title, imageURL, requiredPoints, rewardID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(rewardID)
}

// ToggleActive flips a reward between claimable and hidden.
func (s *RewardStore) ToggleActive(parentUserID, rewardID int64) (*model.Reward, error) {
	result, err := s.db.Exec(
		`UPDATE rewards SET is_active = CASE is_active WHEN 1 THEN 0 ELSE 1 END WHERE id = ? AND parent_user_id = ?`,
		rewardID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle reward: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(rewardID)
}

func (s *RewardStore) Delete(parentUserID, rewardID int64) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM rewards WHERE id = ? AND parent_user_id = ?`,
		rewardID, parentUserID,
	)
	if err != nil {
		return false, fmt.Errorf("delete reward: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Claim spends a child's points on a reward, in one transaction. The child
// row is the serialization point: the points deduction is conditional on the
// balance, so two concurrent claims cannot overspend. Sentinel errors for
// each failure: missing child, missing or foreign reward, inactive reward,
// and insufficient balance.
func (s *RewardStore) Claim(childID, rewardID int64, now time.Time) (*model.ClaimedReward, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the child row before reading the balance.
	result, err := tx.Exec(`UPDATE children SET updated_at = updated_at WHERE id = ?`, childID)
	if err != nil {
		return nil, fmt.Errorf("lock child: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrChildNotFound
	}

	var points int
	var parentUserID int64
	err = tx.QueryRow(`SELECT points, parent_user_id FROM children WHERE id = ?`, childID).
		Scan(&points, &parentUserID)
	if err != nil {
		return nil, fmt.Errorf("fetch child: %w", err)
	}

	var requiredPoints, isActive int
	err = tx.QueryRow(
		`SELECT required_points, is_active FROM rewards WHERE id = ? AND parent_user_id = ?`,
		rewardID, parentUserID,
	).Scan(&requiredPoints, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch reward: %w", err)
	}
	if isActive == 0 {
		return nil, ErrRewardInactive
	}

	if points < requiredPoints {
		return nil, ErrInsufficientPoints
	}

	if _, err := tx.Exec(
		`UPDATE children SET points = points - ?, updated_at = datetime('now') WHERE id = ?`,
		requiredPoints, childID,
	); err != nil {
		return nil, fmt.Errorf("deduct points: %w", err)
	}

	result, err = tx.Exec(
		`INSERT INTO claimed_rewards (reward_id, child_id, points_spent, claimed_at) VALUES (?, ?, ?, ?)`,
		rewardID, childID, requiredPoints, now.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	claimID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var claim model.ClaimedReward
	err = tx.QueryRow(
		`SELECT id, reward_id, child_id, points_spent, claimed_at FROM claimed_rewards WHERE id = ?`,
		claimID,
	).Scan(&claim.ID, &claim.RewardID, &claim.ChildID, &claim.PointsSpent, &claim.ClaimedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &claim, nil
}

// ListClaimsByChild returns a child's claimed rewards, most recent first.
func (s *RewardStore) ListClaimsByChild(childID int64) ([]model.ClaimedReward, error) {
	rows, err := s.db.Query(
		`SELECT cr.id, cr.reward_id, cr.child_id, cr.points_spent, cr.claimed_at
		 FROM claimed_rewards cr
		 WHERE cr.child_id = ?
		 ORDER BY cr.claimed_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var claims []model.ClaimedReward
	for rows.Next() {
		var c model.ClaimedReward
		if err := rows.Scan(&c.ID, &c.RewardID, &c.ChildID, &c.PointsSpent, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
