package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"choresquest/internal/model"
	"choresquest/internal/store"
	"choresquest/internal/websocket"
)

// Service records notifications and pushes real-time updates after board
// mutations. All methods are best-effort: they run post-commit, so a failure
// is logged and swallowed rather than rolling back the action that already
// happened.
type Service struct {
	store  *store.NotificationStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewService(notificationStore *store.NotificationStore, hub *websocket.Hub, logger *slog.Logger) *Service {
	return &Service{
		store:  notificationStore,
		hub:    hub,
		logger: logger.With("component", "notify"),
	}
}

// TaskCompleted records that a child finished a task and broadcasts the
// update to the family's open clients.
func (s *Service) TaskCompleted(ctx context.Context, parentUserID int64, child *model.Child, task *model.Task, points int) {
	message := fmt.Sprintf("%s completed %q (+%d points)", child.Name, task.Title, points)
	s.record(ctx, store.NotificationParams{
		ParentUserID: parentUserID,
		ChildID:      &child.ID,
		TaskID:       &task.ID,
		Type:         model.NotificationTaskCompleted,
		Message:      message,
	})
	s.hub.Broadcast(parentUserID, websocket.NewMessage("task", "completed", task.ID, map[string]any{
		"child_id": child.ID,
		"points":   points,
	}))
}

// RewardClaimed records that a child spent points on a reward.
func (s *Service) RewardClaimed(ctx context.Context, parentUserID int64, child *model.Child, reward *model.Reward) {
	message := fmt.Sprintf("%s claimed %q (-%d points)", child.Name, reward.Title, reward.RequiredPoints)
	s.record(ctx, store.NotificationParams{
		ParentUserID: parentUserID,
		ChildID:      &child.ID,
		RewardID:     &reward.ID,
		Type:         model.NotificationRewardClaimed,
		Message:      message,
	})
	s.hub.Broadcast(parentUserID, websocket.NewMessage("reward", "claimed", reward.ID, map[string]any{
		"child_id": child.ID,
	}))
}

// PointsAdjusted records a manual balance change made by the parent.
func (s *Service) PointsAdjusted(ctx context.Context, parentUserID int64, child *model.Child, delta int) {
	verb := "gained"
	amount := delta
	if delta < 0 {
		verb = "lost"
		amount = -delta
	}
	message := fmt.Sprintf("%s %s %d points", child.Name, verb, amount)
	s.record(ctx, store.NotificationParams{
		ParentUserID: parentUserID,
		ChildID:      &child.ID,
		Type:         model.NotificationPointsAdjusted,
		Message:      message,
	})
	s.hub.Broadcast(parentUserID, websocket.NewMessage("child", "points_adjusted", child.ID, map[string]any{
		"points": child.Points,
	}))
}

// BoardChanged pushes a bare refresh hint for CRUD mutations that don't
// warrant a stored notification.
func (s *Service) BoardChanged(parentUserID int64, entity, action string, id int64) {
	s.hub.Broadcast(parentUserID, websocket.NewMessage(entity, action, id, nil))
}

// record inserts the notification row, retrying briefly on transient write
// failures (the sqlite writer may be busy right after the triggering
// transaction).
func (s *Service) record(ctx context.Context, p store.NotificationParams) {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.store.Create(p); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("record notification", "type", p.Type, "error", err)
	}
}
