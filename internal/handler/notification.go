package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"choresquest/internal/auth"
	"choresquest/internal/model"
	"choresquest/internal/store"
)

const defaultNotificationLimit = 50

type NotificationHandler struct {
	notifications *store.NotificationStore
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With("component", "notifications"),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	parentID := auth.UserID(r.Context())
	notifications, err := h.notifications.ListByParent(parentID, limit)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	unread, err := h.notifications.UnreadCount(parentID)
	if err != nil {
		h.logger.Error("count unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	marked, err := h.notifications.MarkRead(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("mark read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notification")
		return
	}
	if !marked {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(auth.UserID(r.Context())); err != nil {
		h.logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	deleted, err := h.notifications.Delete(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("delete notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
