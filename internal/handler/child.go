package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"choresquest/internal/auth"
	"choresquest/internal/model"
	"choresquest/internal/notify"
	"choresquest/internal/store"
)

type ChildHandler struct {
	children *store.ChildStore
	tasks    *store.TaskStore
	rewards  *store.RewardStore
	notify   *notify.Service
	logger   *slog.Logger
}

func NewChildHandler(children *store.ChildStore, tasks *store.TaskStore, rewards *store.RewardStore, notifySvc *notify.Service, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{
		children: children,
		tasks:    tasks,
		rewards:  rewards,
		notify:   notifySvc,
		logger:   logger.With("component", "children"),
	}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.ListByParent(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		ProfilePicURL string `json:"profile_pic_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	parentID := auth.UserID(r.Context())
	child, err := h.children.Create(parentID, req.Name, req.ProfilePicURL)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create child")
		return
	}

	h.notify.BoardChanged(parentID, "child", "created", child.ID)
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	child, err := h.children.GetOwned(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	var req struct {
		Name          *string `json:"name"`
		ProfilePicURL *string `json:"profile_pic_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		req.Name = &trimmed
	}

	parentID := auth.UserID(r.Context())
	child, err := h.children.Update(parentID, id, req.Name, req.ProfilePicURL)
	if err != nil {
		h.logger.Error("update child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update child")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	h.notify.BoardChanged(parentID, "child", "updated", child.ID)
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	parentID := auth.UserID(r.Context())
	existing, err := h.children.GetOwned(parentID, id)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete child")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	if err := h.children.Delete(parentID, id); err != nil {
		h.logger.Error("delete child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete child")
		return
	}

	h.notify.BoardChanged(parentID, "child", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdjustPoints applies a manual balance change. Positive delta is a bonus,
// negative a penalty; the store clamps the balance at zero.
func (h *ChildHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	parentID := auth.UserID(r.Context())
	child, err := h.children.AdjustPoints(parentID, id, req.Delta)
	if err != nil {
		h.logger.Error("adjust points", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to adjust points")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	h.notify.PointsAdjusted(r.Context(), parentID, child, req.Delta)
	writeJSON(w, http.StatusOK, child)
}

// Completions returns a child's task completion history.
func (h *ChildHandler) Completions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	child, err := h.children.GetOwned(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	completions, err := h.tasks.ListCompletionsByChild(id)
	if err != nil {
		h.logger.Error("list completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.ChildCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// Claims returns a child's claimed reward history.
func (h *ChildHandler) Claims(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	child, err := h.children.GetOwned(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	claims, err := h.rewards.ListClaimsByChild(id)
	if err != nil {
		h.logger.Error("list claims", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if claims == nil {
		claims = []model.ClaimedReward{}
	}
	writeJSON(w, http.StatusOK, claims)
}
