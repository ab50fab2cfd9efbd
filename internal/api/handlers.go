package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/chat"
	"github.com/mingle-app/mingle/internal/directory"
)

// Handler carries the chat components behind the HTTP surface.
type Handler struct {
	registry   *chat.Registry
	stream     *chat.Stream
	aggregator *chat.Aggregator
	dir        directory.Client
	logger     *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(registry *chat.Registry, stream *chat.Stream, aggregator *chat.Aggregator, dir directory.Client, logger *zap.Logger) *Handler {
	return &Handler{
		registry:   registry,
		stream:     stream,
		aggregator: aggregator,
		dir:        dir,
		logger:     logger,
	}
}

type createRoomRequest struct {
	UserA string `json:"userA"`
	UserB string `json:"userB"`
}

type createRoomResponse struct {
	ChatRoomID string `json:"chatRoomId"`
}

// CreateRoom finds or creates the room between two users. Participant
// snapshots come from the directory; a user missing there still gets a
// room, with the placeholder name in the snapshot.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	profileA := h.lookupProfile(r.Context(), req.UserA)
	profileB := h.lookupProfile(r.Context(), req.UserB)

	roomID, err := h.registry.GetOrCreateRoom(req.UserA, req.UserB, profileA, profileB)
	if err != nil {
		// Room creation failures must reach the UI layer.
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, createRoomResponse{ChatRoomID: roomID})
}

// SendMessage appends a message to the room.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var out chat.Outgoing
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	roomID := mux.Vars(r)["id"]
	if err := h.stream.Send(roomID, out); err != nil {
		// Send failures must reach the UI layer.
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns the "start new chat" picker entries.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	exclude := r.URL.Query().Get("exclude")
	users, err := h.aggregator.ListUsers(r.Context(), exclude)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if users == nil {
		users = []directory.Profile{}
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) lookupProfile(ctx context.Context, userID string) directory.Profile {
	p, err := h.dir.ProfileByID(ctx, userID)
	if err != nil {
		h.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	if p == nil {
		return directory.Profile{ID: userID}
	}
	return *p
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
