package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"choresquest/internal/auth"
)

// HandleWebSocket upgrades authenticated connections and runs them as Hub
// clients scoped to the session's parent account. Mount behind RequireAuth.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, ac.UserID)
		client.Run(r.Context())
	}
}
