package store

import (
	"database/sql"
	"fmt"

	"choresquest/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(
		&c.ID, &c.ParentUserID, &c.Name, &c.ProfilePicURL, &c.Points,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `id, parent_user_id, name, profile_pic_url, points, created_at, updated_at`

func (s *ChildStore) Create(parentUserID int64, name, profilePicURL string) (*model.Child, error) {
	result, err := s.db.Exec(
		`INSERT INTO children (parent_user_id, name, profile_pic_url, points) VALUES (?, ?, ?, 0)`,
		parentUserID, name, profilePicURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// GetOwned returns the child only if it belongs to the given parent.
func (s *ChildStore) GetOwned(parentUserID, childID int64) (*model.Child, error) {
	row := s.db.QueryRow(
		`SELECT `+childCols+` FROM children WHERE id = ? AND parent_user_id = ?`,
		childID, parentUserID,
	)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) ListByParent(parentUserID int64) ([]model.Child, error) {
	rows, err := s.db.Query(
		`SELECT `+childCols+` FROM children WHERE parent_user_id = ? ORDER BY name ASC`,
		parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// Update changes name and/or profile picture. Nil pointers leave the stored
// value untouched, so a caller can clear the picture with an empty string
// without also having to resend the name.
func (s *ChildStore) Update(parentUserID, childID int64, name, profilePicURL *string) (*model.Child, error) {
	existing, err := s.GetOwned(parentUserID, childID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	newName := existing.Name
	if name != nil {
		newName = *name
	}
	newPic := existing.ProfilePicURL
	if profilePicURL != nil {
		newPic = *profilePicURL
	}

	_, err = s.db.Exec(
		`UPDATE children SET name = ?, profile_pic_url = ?, updated_at = datetime('now') WHERE id = ? AND parent_user_id = ?`,
		newName, newPic, childID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(childID)
}

// AdjustPoints adds delta (may be negative) to a child's balance. The balance
// never drops below zero.
func (s *ChildStore) AdjustPoints(parentUserID, childID int64, delta int) (*model.Child, error) {
	result, err := s.db.Exec(
		`UPDATE children SET points = MAX(0, points + ?), updated_at = datetime('now') WHERE id = ? AND parent_user_id = ?`,
		delta, childID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("adjust points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(childID)
}

// SetPoints overwrites a child's balance, the parent's manual override.
func (s *ChildStore) SetPoints(parentUserID, childID int64, points int) (*model.Child, error) {
	if points < 0 {
		points = 0
	}
	result, err := s.db.Exec(
		`UPDATE children SET points = ?, updated_at = datetime('now') WHERE id = ? AND parent_user_id = ?`,
		points, childID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("set points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(childID)
}

func (s *ChildStore) Delete(parentUserID, childID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM children WHERE id = ? AND parent_user_id = ?`,
		childID, parentUserID,
	)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}
