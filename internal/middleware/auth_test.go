package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"choresquest/internal/auth"
	"choresquest/internal/database"
	"choresquest/internal/store"
)

func setupAuthTest(t *testing.T) (*store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return store.NewUserStore(db), store.NewSessionStore(db, time.Hour)
}

func TestRequireAuth(t *testing.T) {
	users, sessions := setupAuthTest(t)

	user, err := users.Create("Pat", "pat", "hash", "rec")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUserID int64
	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", rec.Code)
	}

	// Bogus token.
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: status = %d, want 401", rec.Code)
	}

	// Valid session.
	req = httptest.NewRequest("GET", "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid session: status = %d, want 200", rec.Code)
	}
	if gotUserID != user.ID {
		t.Errorf("context user id = %d, want %d", gotUserID, user.ID)
	}
}
