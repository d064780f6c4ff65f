package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"taskhub/internal/domain"
	"taskhub/internal/hub"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsSendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated; cross-origin browser clients are
	// expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsNotification is the outbound frame shape. Field names follow the
// client contract (camelCase), not the REST representation.
type wsNotification struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"createdAt"`
	IsRead    bool    `json:"isRead"`
	TaskID    *string `json:"taskId,omitempty"`
	ProjectID *string `json:"projectId,omitempty"`
}

func toWSNotification(n domain.Notification) wsNotification {
	return wsNotification{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		IsRead:    n.IsRead,
		TaskID:    n.TaskID,
		ProjectID: n.ProjectID,
	}
}

// wsNotifications upgrades the connection and attaches it to the hub
// as one live channel for the authenticated user. The token rides in
// a query parameter because browsers cannot set headers on websocket
// handshakes.
func (s *Server) wsNotifications(w http.ResponseWriter, r *http.Request) {
	u, err := s.userFromToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("user_id", u.ID).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(u.ID, wsSendBuffer)
	s.hub.Register(client)

	go s.writePump(conn, client)
	go s.readPump(conn, client)
}

// writePump drains the client's buffer onto the wire and keeps the
// connection alive with pings. It exits when the hub closes the
// client's channel or a write fails.
func (s *Server) writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case n, ok := <-client.Receive():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(toWSNotification(n)); err != nil {
				log.Warn().Err(err).Str("user_id", client.UserID()).
					Msg("websocket send failed")
				s.hub.Unregister(client)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.Unregister(client)
				return
			}
		}
	}
}

// readPump consumes inbound frames. Clients only send keepalives;
// their content is discarded. A read error means the peer went away,
// which unregisters the client.
func (s *Server) readPump(conn *websocket.Conn, client *hub.Client) {
	defer func() {
		s.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}
