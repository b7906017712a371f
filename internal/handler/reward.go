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
	"choresquest/internal/store"
)

type RewardHandler struct {
	rewards  *store.RewardStore
	children *store.ChildStore
	notify   *notify.Service
	logger   *slog.Logger
}

func NewRewardHandler(rewards *store.RewardStore, children *store.ChildStore, notifySvc *notify.Service, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{
		rewards:  rewards,
		children: children,
		notify:   notifySvc,
		logger:   logger.With("component", "rewards"),
	}
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID := auth.UserID(r.Context())

	var (
		rewards []model.Reward
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		rewards, err = h.rewards.ListActiveByParent(parentID)
	} else {
		rewards, err = h.rewards.ListByParent(parentID)
	}
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		ImageURL       string `json:"image_url"`
		RequiredPoints int    `json:"required_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.RequiredPoints <= 0 {
		writeError(w, http.StatusBadRequest, "required_points must be positive")
		return
	}

	parentID := auth.UserID(r.Context())
	reward, err := h.rewards.Create(parentID, req.Title, req.ImageURL, req.RequiredPoints)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	h.notify.BoardChanged(parentID, "reward", "created", reward.ID)
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
		return
	}

	var req struct {
		Title          string `json:"title"`
		ImageURL       string `json:"image_url"`
		RequiredPoints int    `json:"required_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.RequiredPoints <= 0 {
		writeError(w, http.StatusBadRequest, "required_points must be positive")
		return
	}

	parentID := auth.UserID(r.Context())
	reward, err := h.rewards.Update(parentID, id, req.Title, req.ImageURL, req.RequiredPoints)
	if err != nil {
		h.logger.Error("update reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.notify.BoardChanged(parentID, "reward", "updated", reward.ID)
	writeJSON(w, http.StatusOK, reward)
}

// ToggleActive flips a reward in or out of the claimable shop.
func (h *RewardHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
		return
	}

	parentID := auth.UserID(r.Context())
	reward, err := h.rewards.ToggleActive(parentID, id)
	if err != nil {
		h.logger.Error("toggle reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle reward")
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.notify.BoardChanged(parentID, "reward", "updated", reward.ID)
	writeJSON(w, http.StatusOK, reward)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
		return
	}

	parentID := auth.UserID(r.Context())
	deleted, err := h.rewards.Delete(parentID, id)
	if err != nil {
		h.logger.Error("delete reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reward")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	h.notify.BoardChanged(parentID, "reward", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Claim spends a child's points on a reward.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
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
	if child, err := h.children.GetOwned(parentID, req.ChildID); err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to claim reward")
		return
	} else if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	claim, err := h.rewards.Claim(req.ChildID, id, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrChildNotFound):
			writeError(w, http.StatusNotFound, "child not found")
		case errors.Is(err, store.ErrRewardNotFound):
			writeError(w, http.StatusNotFound, "reward not found")
		case errors.Is(err, store.ErrRewardInactive):
			writeError(w, http.StatusConflict, "that reward is not available right now")
		case errors.Is(err, store.ErrInsufficientPoints):
			writeError(w, http.StatusConflict, "not enough points yet")
		default:
			h.logger.Error("claim reward", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to claim reward")
		}
		return
	}

	child, err := h.children.GetByID(req.ChildID)
	if err != nil || child == nil {
		h.logger.Error("fetch child after claim", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"claim": claim})
		return
	}
	reward, err := h.rewards.GetByID(id)
	if err != nil || reward == nil {
		h.logger.Error("fetch reward after claim", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"claim": claim, "child": child})
		return
	}

	h.notify.RewardClaimed(r.Context(), parentID, child, reward)

	writeJSON(w, http.StatusOK, map[string]any{
		"claim":  claim,
		"child":  child,
		"reward": reward,
	})
}
