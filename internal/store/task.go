package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"choresquest/internal/model"
	"choresquest/internal/recurrence"
)

// dateLayout is the storage format for date-only columns. Comparisons happen
// through sqlite's date() so due dates and completion timestamps line up.
const dateLayout = "2006-01-02"

// timeLayout matches sqlite's datetime('now') output, so explicit inserts
// and column defaults share one format.
const timeLayout = "2006-01-02 15:04:05"

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskParams carries the writable fields for task create/update.
type TaskParams struct {
	Title            string
	Notes            string
	ImageURL         string
	DueDate          time.Time
	Points           int
	RepeatPolicy     recurrence.Policy
	RepeatDays       []int
	IsFamilyTask     bool
	AssignedChildIDs []int64
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var dueDate, repeatDays string
	var isFamily int
	var completedDate sql.NullString

	err := scanner.Scan(
		&t.ID, &t.ParentUserID, &t.Title, &t.Notes, &t.ImageURL, &dueDate,
		&t.Points, &t.RepeatPolicy, &repeatDays, &isFamily, &t.Status,
		&completedDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DueDate, err = time.Parse(dateLayout, dueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due date %q: %w", dueDate, err)
	}
	t.RepeatDays, err = recurrence.ParseDays(repeatDays)
	if err != nil {
		return nil, fmt.Errorf("parse repeat days %q: %w", repeatDays, err)
	}
	t.IsFamilyTask = isFamily != 0
	if completedDate.Valid {
		cd, err := time.Parse(dateLayout, completedDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed date %q: %w", completedDate.String, err)
		}
		t.CompletedDate = &cd
	}
	return &t, nil
}

const taskCols = `id, parent_user_id, title, notes, image_url, due_date, points, repeat_policy, repeat_days, is_family_task, status, completed_date, created_at, updated_at`

func (s *TaskStore) Create(parentUserID int64, p TaskParams) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var isFamily int
	if p.IsFamilyTask {
		isFamily = 1
	}

	result, err := tx.Exec(
		`INSERT INTO tasks (parent_user_id, title, notes, image_url, due_date, points, repeat_policy, repeat_days, is_family_task, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'active')`,
		parentUserID, p.Title, p.Notes, p.ImageURL, p.DueDate.Format(dateLayout),
		p.Points, string(p.RepeatPolicy), recurrence.FormatDays(p.RepeatDays), isFamily,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := replaceAssignments(tx, id, p.IsFamilyTask, p.AssignedChildIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Update rewrites the task and its assignments. A completed one-time task
// that gets edited reverts to active, matching the management flow where
// editing re-opens the task.
func (s *TaskStore) Update(parentUserID, taskID int64, p TaskParams) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var isFamily int
	if p.IsFamilyTask {
		isFamily = 1
	}

	result, err := tx.Exec(
		`UPDATE tasks SET title = ?, notes = ?, image_url = ?, due_date = ?, points = ?,
		        repeat_policy = ?, repeat_days = ?, is_family_task = ?,
		        status = 'active', completed_date = NULL, updated_at = datetime('now')
		 WHERE id = ? AND parent_user_id = ?`,
		p.Title, p.Notes, p.ImageURL, p.DueDate.Format(dateLayout), p.Points,
		string(p.RepeatPolicy), recurrence.FormatDays(p.RepeatDays), isFamily,
		taskID, parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	if err := replaceAssignments(tx, taskID, p.IsFamilyTask, p.AssignedChildIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(taskID)
}

// replaceAssignments rewrites a task's assignment rows. Family tasks carry
// none: they are implicitly assigned to every child of the parent.
func replaceAssignments(tx *sql.Tx, taskID int64, isFamily bool, childIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM task_assignments WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if isFamily {
		return nil
	}
	for _, childID := range childIDs {
		if _, err := tx.Exec(
			`INSERT INTO task_assignments (task_id, child_id) VALUES (?, ?)`,
			taskID, childID,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetOwned returns the task only if it belongs to the given parent.
func (s *TaskStore) GetOwned(parentUserID, taskID int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE id = ? AND parent_user_id = ?`,
		taskID, parentUserID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned task: %w", err)
	}
	return t, nil
}

// List returns the parent's tasks with assignment info and the completion
// count for each task's current period. Callers wanting fresh due dates run
// AdvanceOverdue and ReconcileOneTime first.
func (s *TaskStore) List(parentUserID int64) ([]model.TaskWithAssignments, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.parent_user_id, t.title, t.notes, t.image_url, t.due_date, t.points,
		        t.repeat_policy, t.repeat_days, t.is_family_task, t.status, t.completed_date,
		        t.created_at, t.updated_at,
		        COALESCE(GROUP_CONCAT(DISTINCT ta.child_id), '') AS child_ids,
		        COALESCE(GROUP_CONCAT(DISTINCT c.name), '') AS child_names,
		        (SELECT COUNT(*) FROM task_completions tc
		         WHERE tc.task_id = t.id AND date(tc.completed_at) >= t.due_date) AS completion_count
		 FROM tasks t
		 LEFT JOIN task_assignments ta ON ta.task_id = t.id
		 LEFT JOIN children c ON c.id = ta.child_id
		 WHERE t.parent_user_id = ?
		 GROUP BY t.id
		 ORDER BY t.due_date ASC, t.created_at DESC`,
		parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskWithAssignments
	for rows.Next() {
		var t model.TaskWithAssignments
		var dueDate, repeatDays, childIDs, childNames string
		var isFamily int
		var completedDate sql.NullString

		err := rows.Scan(
			&t.ID, &t.ParentUserID, &t.Title, &t.Notes, &t.ImageURL, &dueDate,
			&t.Points, &t.RepeatPolicy, &repeatDays, &isFamily, &t.Status,
			&completedDate, &t.CreatedAt, &t.UpdatedAt,
			&childIDs, &childNames, &t.CompletionCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}

		t.DueDate, err = time.Parse(dateLayout, dueDate)
		if err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", dueDate, err)
		}
		t.RepeatDays, err = recurrence.ParseDays(repeatDays)
		if err != nil {
			return nil, fmt.Errorf("parse repeat days %q: %w", repeatDays, err)
		}
		t.IsFamilyTask = isFamily != 0
		if completedDate.Valid {
			cd, err := time.Parse(dateLayout, completedDate.String)
			if err != nil {
				return nil, fmt.Errorf("parse completed date %q: %w", completedDate.String, err)
			}
			t.CompletedDate = &cd
		}
		if childIDs != "" {
			for _, part := range strings.Split(childIDs, ",") {
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("parse assigned child id %q: %w", part, err)
				}
				t.AssignedChildIDs = append(t.AssignedChildIDs, id)
			}
		}
		if childNames != "" {
			t.AssignedChildNames = strings.Split(childNames, ",")
		}

		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Delete(parentUserID, taskID int64) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM tasks WHERE id = ? AND parent_user_id = ?`,
		taskID, parentUserID,
	)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// AdvanceOverdue is the read-path catch-up sweep: every active recurring task
// of the parent whose due date is strictly in the past moves to its next
// occurrence on or after today. Idempotent; safe to run on every list.
// Returns the number of tasks advanced.
func (s *TaskStore) AdvanceOverdue(parentUserID int64, today time.Time) (int, error) {
	today = recurrence.DateOnly(today)
	todayStr := today.Format(dateLayout)

	rows, err := s.db.Query(
		`SELECT id, due_date, repeat_policy, repeat_days FROM tasks
		 WHERE parent_user_id = ? AND repeat_policy != 'none' AND status = 'active' AND due_date < ?`,
		parentUserID, todayStr,
	)
	if err != nil {
		return 0, fmt.Errorf("select overdue recurring: %w", err)
	}
	defer rows.Close()

	type advance struct {
		id   int64
		next string
	}
	var advances []advance
	for rows.Next() {
		var id int64
		var dueDateStr, policyStr, daysStr string
		if err := rows.Scan(&id, &dueDateStr, &policyStr, &daysStr); err != nil {
			return 0, fmt.Errorf("scan overdue task: %w", err)
		}
		dueDate, err := time.Parse(dateLayout, dueDateStr)
		if err != nil {
			return 0, fmt.Errorf("parse due date %q: %w", dueDateStr, err)
		}
		policy, err := recurrence.ParsePolicy(policyStr)
		if err != nil {
			return 0, fmt.Errorf("task %d: %w", id, err)
		}
		days, err := recurrence.ParseDays(daysStr)
		if err != nil {
			return 0, fmt.Errorf("task %d: %w", id, err)
		}
		next := recurrence.NextDueDate(dueDate, policy, days, today)
		if !next.Equal(dueDate) {
			advances = append(advances, advance{id: id, next: next.Format(dateLayout)})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate overdue tasks: %w", err)
	}
	rows.Close()

	if len(advances) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range advances {
		if _, err := tx.Exec(
			`UPDATE tasks SET due_date = ?, updated_at = datetime('now') WHERE id = ?`,
			a.next, a.id,
		); err != nil {
			return 0, fmt.Errorf("advance task %d: %w", a.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(advances), nil
}

// ReconcileOneTime marks one-time tasks completed when a qualifying
// completion exists but the status is still active, so finished tasks land
// in the archive view even if the status write was missed.
func (s *TaskStore) ReconcileOneTime(parentUserID int64, today time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'completed', completed_date = ?, updated_at = datetime('now')
		 WHERE parent_user_id = ? AND repeat_policy = 'none' AND status = 'active'
		   AND EXISTS (SELECT 1 FROM task_completions tc
		               WHERE tc.task_id = tasks.id AND date(tc.completed_at) >= tasks.due_date)`,
		recurrence.DateOnly(today).Format(dateLayout), parentUserID,
	)
	if err != nil {
		return fmt.Errorf("reconcile one-time tasks: %w", err)
	}
	return nil
}

// Complete marks a task done by a child and awards its points, all in one
// transaction. The first statement writes the task row, which promotes the
// transaction to the database's single writer before any check runs — the
// sqlite equivalent of SELECT ... FOR UPDATE — so two concurrent completions
// of the same task serialize and exactly one wins a family-task race.
//
// Preconditions, each with its own sentinel error: the task must exist; a
// recurring task must be due (due_date <= today); the child must not have
// completed the current period already (a finished one-time task counts);
// a family task must not have been claimed by any sibling this period; and
// the child must exist under the task's parent.
//
// On success: completion row inserted, child balance incremented, then the
// one-time task is closed or the recurring due date advances. The due date
// moves only when strictly in the past — completing a task on its exact due
// date leaves it unchanged until the next list sweep.
func (s *TaskStore) Complete(taskID, childID int64, now time.Time) (*model.TaskCompletion, error) {
	now = now.UTC()
	today := recurrence.DateOnly(now)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock: a no-op write on the task row. Zero rows affected doubles as the
	// existence check.
	result, err := tx.Exec(`UPDATE tasks SET updated_at = updated_at WHERE id = ?`, taskID)
	if err != nil {
		return nil, fmt.Errorf("lock task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrTaskNotFound
	}

	row := tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	policy, err := recurrence.ParsePolicy(task.RepeatPolicy)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", taskID, err)
	}
	dueDateStr := task.DueDate.Format(dateLayout)

	if policy.Recurring() && task.DueDate.After(today) {
		return nil, ErrNotYetDue
	}
	if !policy.Recurring() && task.Status == model.TaskStatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	var childCount int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE task_id = ? AND child_id = ? AND date(completed_at) >= ?`,
		taskID, childID, dueDateStr,
	).Scan(&childCount)
	if err != nil {
		return nil, fmt.Errorf("check child completion: %w", err)
	}
	if childCount > 0 {
		return nil, ErrAlreadyCompleted
	}

	if task.IsFamilyTask {
		var anyCount int
		err = tx.QueryRow(
			`SELECT COUNT(*) FROM task_completions WHERE task_id = ? AND date(completed_at) >= ?`,
			taskID, dueDateStr,
		).Scan(&anyCount)
		if err != nil {
			return nil, fmt.Errorf("check family completion: %w", err)
		}
		if anyCount > 0 {
			return nil, ErrFamilyTaskClaimed
		}
	}

	var childExists int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM children WHERE id = ? AND parent_user_id = ?`,
		childID, task.ParentUserID,
	).Scan(&childExists)
	if err != nil {
		return nil, fmt.Errorf("check child: %w", err)
	}
	if childExists == 0 {
		return nil, ErrChildNotFound
	}

	result, err = tx.Exec(
		`INSERT INTO task_completions (task_id, child_id, points_awarded, completed_at) VALUES (?, ?, ?, ?)`,
		taskID, childID, task.Points, now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	completionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE children SET points = points + ?, updated_at = datetime('now') WHERE id = ?`,
		task.Points, childID,
	); err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}

	if !policy.Recurring() {
		if _, err := tx.Exec(
			`UPDATE tasks SET status = 'completed', completed_date = ?, updated_at = datetime('now') WHERE id = ?`,
			today.Format(dateLayout), taskID,
		); err != nil {
			return nil, fmt.Errorf("close one-time task: %w", err)
		}
	} else {
		next := recurrence.NextDueDate(task.DueDate, policy, task.RepeatDays, today)
		if !next.Equal(task.DueDate) {
			if _, err := tx.Exec(
				`UPDATE tasks SET due_date = ?, updated_at = datetime('now') WHERE id = ?`,
				next.Format(dateLayout), taskID,
			); err != nil {
				return nil, fmt.Errorf("advance due date: %w", err)
			}
		}
	}

	var completion model.TaskCompletion
	err = tx.QueryRow(
		`SELECT id, task_id, child_id, points_awarded, completed_at FROM task_completions WHERE id = ?`,
		completionID,
	).Scan(&completion.ID, &completion.TaskID, &completion.ChildID, &completion.PointsAwarded, &completion.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &completion, nil
}

// ListCompletionsByChild returns a child's completion history, most recent
// first, joined with the task fields the history view renders.
func (s *TaskStore) ListCompletionsByChild(childID int64) ([]model.ChildCompletion, error) {
	rows, err := s.db.Query(
		`SELECT tc.task_id, tc.completed_at, t.title, t.image_url, tc.points_awarded,
		        t.is_family_task, t.repeat_policy, t.notes
		 FROM task_completions tc
		 JOIN tasks t ON t.id = tc.task_id
		 WHERE tc.child_id = ?
		 ORDER BY tc.completed_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by child: %w", err)
	}
	defer rows.Close()

	var completions []model.ChildCompletion
	for rows.Next() {
		var c model.ChildCompletion
		var isFamily int
		err := rows.Scan(
			&c.TaskID, &c.CompletedAt, &c.Title, &c.ImageURL, &c.Points,
			&isFamily, &c.RepeatPolicy, &c.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.IsFamilyTask = isFamily != 0
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// CountCompletions reports the number of completion rows for a task,
// regardless of period.
func (s *TaskStore) CountCompletions(taskID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM task_completions WHERE task_id = ?`, taskID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
