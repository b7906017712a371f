package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"choresquest/internal/handler"
	"choresquest/internal/middleware"
	"choresquest/internal/notify"
	"choresquest/internal/store"
	ws "choresquest/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	childH        *handler.ChildHandler
	taskH         *handler.TaskHandler
	rewardH       *handler.RewardHandler
	notificationH *handler.NotificationHandler
	settingsH     *handler.SettingsHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, sessionTTL time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db, sessionTTL)
	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	notificationStore := store.NewNotificationStore(db)
	settingsStore := store.NewSettingsStore(db)

	notifySvc := notify.NewService(notificationStore, hub, logger)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger),
		childH:        handler.NewChildHandler(childStore, taskStore, rewardStore, notifySvc, logger),
		taskH:         handler.NewTaskHandler(taskStore, childStore, notifySvc, logger),
		rewardH:       handler.NewRewardHandler(rewardStore, childStore, notifySvc, logger),
		notificationH: handler.NewNotificationHandler(notificationStore, logger),
		settingsH:     handler.NewSettingsHandler(settingsStore, logger),
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimited(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("POST /api/logout", s.authH.Logout)
	outerMux.HandleFunc("POST /api/recovery/verify", s.rateLimited(s.authH.RecoveryVerify))
	outerMux.HandleFunc("POST /api/recovery/reset", s.rateLimited(s.authH.RecoveryReset))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimited wraps unauthenticated credential endpoints with a per-IP cap.
func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", s.authH.Session)

	// Children API routes
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PUT /api/children/{id}", s.childH.Update)
	mux.HandleFunc("DELETE /api/children/{id}", s.childH.Delete)
	mux.HandleFunc("POST /api/children/{id}/points", s.childH.AdjustPoints)
	mux.HandleFunc("GET /api/children/{id}/completions", s.childH.Completions)
	mux.HandleFunc("GET /api/children/{id}/claims", s.childH.Claims)

	// Task API routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)

	// Reward API routes
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("POST /api/rewards/{id}/toggle", s.rewardH.ToggleActive)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/claim", s.rewardH.Claim)

	// Notification API routes
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Delete)

	// Settings and PIN routes
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Set)
	mux.HandleFunc("POST /api/settings/pin", s.settingsH.SetPIN)
	mux.HandleFunc("POST /api/settings/pin/verify", s.settingsH.VerifyPIN)
	mux.HandleFunc("DELETE /api/settings/pin", s.settingsH.ClearPIN)

	// Real-time board updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger))
}
