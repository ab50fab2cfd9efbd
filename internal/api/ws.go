package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon binds to loopback; surfaces connect locally.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// messagePayload is the wire shape of a message, fixed by the persisted
// contract other collaborators honor.
type messagePayload struct {
	ID         string        `json:"id"`
	ChatRoomID string        `json:"chatRoomId"`
	Text       string        `json:"text"`
	CreatedAt  int64         `json:"createdAt"`
	User       senderPayload `json:"user"`
}

type senderPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func toMessagePayloads(msgs []store.Message) []messagePayload {
	out := make([]messagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messagePayload{
			ID:         m.ID,
			ChatRoomID: m.RoomID,
			Text:       m.Body,
			CreatedAt:  m.CreatedAt,
			User: senderPayload{
				ID:     m.SenderID,
				Name:   m.SenderName,
				Avatar: m.SenderAvatar,
			},
		})
	}
	return out
}

// MessagesFeed streams full message snapshots for a room over a websocket.
// Each frame is the complete feed, newest first. Closing the socket ends
// the subscription.
func (h *Handler) MessagesFeed(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ch, stop := h.stream.Subscribe(context.Background(), roomID)
	defer stop()
	defer func() { _ = conn.Close() }()
	go readUntilClosed(conn, stop)

	for snapshot := range ch {
		if err := conn.WriteJSON(toMessagePayloads(snapshot)); err != nil {
			return
		}
	}
}

// ChatsFeed streams chat list snapshots for a user over a websocket.
func (h *Handler) ChatsFeed(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ch, stop := h.aggregator.Subscribe(context.Background(), userID)
	defer stop()
	defer func() { _ = conn.Close() }()
	go readUntilClosed(conn, stop)

	for snapshot := range ch {
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
	}
}

// readUntilClosed discards inbound frames and stops the subscription when
// the client goes away.
func readUntilClosed(conn *websocket.Conn, stop func()) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			stop()
			return
		}
	}
}
