package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"choresquest/internal/auth"
	"choresquest/internal/middleware"
	"choresquest/internal/store"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 50
)

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger.With("component", "auth")}
}

// Register creates a parent account and returns the one-time recovery code.
// The code is never shown again: only its hash is stored.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Username == "" || len(req.Username) > maxUsernameLength {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	exists, err := h.users.UsernameExists(req.Username)
	if err != nil {
		h.logger.Error("check username", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "that username is taken")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	recoveryCode, err := auth.GenerateRecoveryCode()
	if err != nil {
		h.logger.Error("generate recovery code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	recoveryHash, err := auth.HashRecoveryCode(recoveryCode)
	if err != nil {
		h.logger.Error("hash recovery code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	user, err := h.users.Create(req.Name, req.Username, passwordHash, recoveryHash)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":          user,
		"recovery_code": recoveryCode,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	hash, err := h.users.PasswordHash(req.Username)
	if err != nil {
		h.logger.Error("fetch password hash", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// A missing user still runs the compare against an empty hash, keeping
	// timing similar for unknown usernames.
	if !auth.CheckPassword(hash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil || user == nil {
		h.logger.Error("fetch user", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessions.GetByToken(cookie.Value); err == nil && sess != nil {
			if err := h.sessions.Delete(sess.ID); err != nil {
				h.logger.Error("delete session", "error", err)
			}
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session returns the authenticated parent, for app boot. Mounted behind
// RequireAuth.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.users.GetByID(ac.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// RecoveryVerify checks a username plus recovery code without consuming
// anything, so the reset form can validate before asking for a new password.
func (h *AuthHandler) RecoveryVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username"`
		RecoveryCode string `json:"recovery_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	hash, err := h.users.RecoveryCodeHash(req.Username)
	if err != nil {
		h.logger.Error("fetch recovery hash", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if !auth.CheckRecoveryCode(hash, req.RecoveryCode) {
		writeError(w, http.StatusUnauthorized, "invalid username or recovery code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// RecoveryReset sets a new password after a successful recovery code check
// and revokes every existing session for the account.
func (h *AuthHandler) RecoveryReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username"`
		RecoveryCode string `json:"recovery_code"`
		NewPassword  string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := h.users.RecoveryCodeHash(req.Username)
	if err != nil {
		h.logger.Error("fetch recovery hash", "error", err)
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	if !auth.CheckRecoveryCode(hash, req.RecoveryCode) {
		writeError(w, http.StatusUnauthorized, "invalid username or recovery code")
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	if err := h.users.SetPassword(user.ID, newHash); err != nil {
		h.logger.Error("set password", "error", err)
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	if err := h.sessions.DeleteByUserID(user.ID); err != nil {
		h.logger.Error("revoke sessions", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
