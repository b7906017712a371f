package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"choresquest/internal/auth"
	"choresquest/internal/model"
	"choresquest/internal/notify"
	"choresquest/internal/recurrence"
	"choresquest/internal/store"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	children *store.ChildStore
	notify   *notify.Service
	logger   *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, children *store.ChildStore, notifySvc *notify.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		children: children,
		notify:   notifySvc,
		logger:   logger.With("component", "tasks"),
	}
}

type taskRequest struct {
	Title            string  `json:"title"`
	Notes            string  `json:"notes"`
	ImageURL         string  `json:"image_url"`
	DueDate          string  `json:"due_date"`
	Points           int     `json:"points"`
	RepeatPolicy     string  `json:"repeat_policy"`
	RepeatDays       []int   `json:"repeat_days"`
	IsFamilyTask     bool    `json:"is_family_task"`
	AssignedChildIDs []int64 `json:"assigned_children_ids"`
}

// parseTaskRequest validates the shared create/update payload against the
// parent's children and returns store params.
func (h *TaskHandler) parseTaskRequest(parentID int64, req taskRequest) (store.TaskParams, string) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return store.TaskParams{}, "title is required"
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return store.TaskParams{}, "due_date must be a date in YYYY-MM-DD form"
	}
	if req.Points < 0 {
		return store.TaskParams{}, "points cannot be negative"
	}

	policy, err := recurrence.ParsePolicy(req.RepeatPolicy)
	if err != nil {
		return store.TaskParams{}, "repeat_policy must be one of none, daily, weekly, monthly, custom_days"
	}
	if policy == recurrence.CustomDays && len(req.RepeatDays) == 0 {
		return store.TaskParams{}, "repeat_days is required for custom_days tasks"
	}
	for _, d := range req.RepeatDays {
		if d < 1 || d > 7 {
			return store.TaskParams{}, "repeat_days entries must be weekdays 1 (Monday) through 7 (Sunday)"
		}
	}
	// Daily tasks may carry an allowed-weekday set too; only policies that
	// never consult it drop the days.
	if policy != recurrence.Daily && policy != recurrence.CustomDays {
		req.RepeatDays = nil
	}

	if !req.IsFamilyTask {
		if len(req.AssignedChildIDs) == 0 {
			return store.TaskParams{}, "assign at least one child or mark the task as a family task"
		}
		for _, childID := range req.AssignedChildIDs {
			child, err := h.children.GetOwned(parentID, childID)
			if err != nil {
				h.logger.Error("check assigned child", "error", err)
				return store.TaskParams{}, "failed to validate assigned children"
			}
			if child == nil {
				return store.TaskParams{}, "assigned child not found"
			}
		}
	} else {
		req.AssignedChildIDs = nil
	}

	return store.TaskParams{
		Title:            req.Title,
		Notes:            req.Notes,
		ImageURL:         req.ImageURL,
		DueDate:          dueDate,
		Points:           req.Points,
		RepeatPolicy:     policy,
		RepeatDays:       req.RepeatDays,
		IsFamilyTask:     req.IsFamilyTask,
		AssignedChildIDs: req.AssignedChildIDs,
	}, ""
}

// List returns the parent's board. Before reading it runs the catch-up
// sweep, so overdue recurring tasks land on their next occurrence and
// finished one-time tasks show as completed.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID := auth.UserID(r.Context())
	today := time.Now().UTC()

	if _, err := h.tasks.AdvanceOverdue(parentID, today); err != nil {
		h.logger.Error("advance overdue tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if err := h.tasks.ReconcileOneTime(parentID, today); err != nil {
		h.logger.Error("reconcile one-time tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	tasks, err := h.tasks.List(parentID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.TaskWithAssignments{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	parentID := auth.UserID(r.Context())
	params, problem := h.parseTaskRequest(parentID, req)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	task, err := h.tasks.Create(parentID, params)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.notify.BoardChanged(parentID, "task", "created", task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.GetOwned(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	parentID := auth.UserID(r.Context())
	params, problem := h.parseTaskRequest(parentID, req)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	task, err := h.tasks.Update(parentID, id, params)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.notify.BoardChanged(parentID, "task", "updated", task.ID)
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	parentID := auth.UserID(r.Context())
	deleted, err := h.tasks.Delete(parentID, id)
	if err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.notify.BoardChanged(parentID, "task", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Complete marks a task done by a child. The store runs the whole check-
// and-award sequence in one transaction; this handler maps its sentinel
// errors onto friendly responses for the board UI.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req struct {
		ChildID int64 `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	parentID := auth.UserID(r.Context())

	// Ownership checks up front so one family cannot touch another's board.
	task, err := h.tasks.GetOwned(parentID, taskID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if child, err := h.children.GetOwned(parentID, req.ChildID); err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	} else if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	completion, err := h.tasks.Complete(taskID, req.ChildID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, "task not found")
		case errors.Is(err, store.ErrChildNotFound):
			writeError(w, http.StatusNotFound, "child not found")
		case errors.Is(err, store.ErrNotYetDue):
			writeError(w, http.StatusConflict, "this task is not due yet")
		case errors.Is(err, store.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, "this task has already been completed")
		case errors.Is(err, store.ErrFamilyTaskClaimed):
			writeError(w, http.StatusConflict, "someone beat you to it!")
		default:
			h.logger.Error("complete task", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to complete task")
		}
		return
	}

	// Re-read post-transaction state for the response and notification.
	child, err := h.children.GetByID(req.ChildID)
	if err != nil || child == nil {
		h.logger.Error("fetch child after completion", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"completion": completion})
		return
	}
	updatedTask, err := h.tasks.GetByID(taskID)
	if err != nil || updatedTask == nil {
		h.logger.Error("fetch task after completion", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"completion": completion, "child": child})
		return
	}

	h.notify.TaskCompleted(r.Context(), parentID, child, updatedTask, completion.PointsAwarded)

	writeJSON(w, http.StatusOK, map[string]any{
		"completion": completion,
		"child":      child,
		"task":       updatedTask,
	})
}
