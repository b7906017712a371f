package store

import (
	"database/sql"
	"fmt"

	"choresquest/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// NotificationParams carries the optional references a notification can
// point at. Nil references survive deletion of the referenced row.
type NotificationParams struct {
	ParentUserID int64
	ChildID      *int64
	TaskID       *int64
	RewardID     *int64
	Type         string
	Message      string
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var childID, taskID, rewardID sql.NullInt64
	var isRead int
	err := scanner.Scan(
		&n.ID, &n.ParentUserID, &childID, &taskID, &rewardID,
		&n.Type, &n.Message, &isRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if childID.Valid {
		n.ChildID = &childID.Int64
	}
	if taskID.Valid {
		n.TaskID = &taskID.Int64
	}
	if rewardID.Valid {
		n.RewardID = &rewardID.Int64
	}
	n.IsRead = isRead != 0
	return &n, nil
}

const notificationCols = `id, parent_user_id, child_id, task_id, reward_id, notification_type, message, is_read, created_at`

func (s *NotificationStore) Create(p NotificationParams) (*model.Notification, error) {
	result, err := s.db.Exec(
		`INSERT INTO notifications (parent_user_id, child_id, task_id, reward_id, notification_type, message, is_read)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		p.ParentUserID, p.ChildID, p.TaskID, p.RewardID, p.Type, p.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListByParent returns the parent's notifications, newest first, capped at
// limit. A limit of 0 means no cap.
func (s *NotificationStore) ListByParent(parentUserID int64, limit int) ([]model.Notification, error) {
	query := `SELECT ` + notificationCols + ` FROM notifications WHERE parent_user_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{parentUserID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) UnreadCount(parentUserID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE parent_user_id = ? AND is_read = 0`,
		parentUserID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(parentUserID, notificationID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND parent_user_id = ?`,
		notificationID, parentUserID,
	)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *NotificationStore) MarkAllRead(parentUserID int64) error {
	_, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE parent_user_id = ? AND is_read = 0`,
		parentUserID,
	)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *NotificationStore) Delete(parentUserID, notificationID int64) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM notifications WHERE id = ? AND parent_user_id = ?`,
		notificationID, parentUserID,
	)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
