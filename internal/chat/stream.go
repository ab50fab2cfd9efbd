package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/bus"
	"github.com/mingle-app/mingle/internal/store"
)

// Sender identifies the author of an outgoing message.
type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Outgoing is a message to append to a room.
type Outgoing struct {
	Text   string `json:"text"`
	Sender Sender `json:"user"`
}

// Stream appends messages to rooms and exposes a live, newest-first feed
// per room.
type Stream struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
}

// NewStream creates a message stream backed by the store.
func NewStream(db *store.DB, b *bus.Bus, logger *zap.Logger) *Stream {
	return &Stream{db: db, bus: b, logger: logger}
}

// Send appends the message stamped with server time, then refreshes the
// owning room's preview. The two writes are separate statements: a crash
// between them leaves the preview stale while the message is already
// durable. Store errors propagate to the caller.
func (s *Stream) Send(roomID string, out Outgoing) error {
	now := time.Now().UnixMilli()
	msg := &store.Message{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		Body:         out.Text,
		SenderID:     out.Sender.ID,
		SenderName:   out.Sender.Name,
		SenderAvatar: out.Sender.Avatar,
		CreatedAt:    now,
	}

	if err := s.db.InsertMessage(msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	participants, err := s.db.SetRoomPreview(roomID, out.Text, now)
	if err != nil {
		return fmt.Errorf("update room preview: %w", err)
	}

	s.bus.Publish(bus.Event{
		Kind:      bus.KindMessageAppended,
		Timestamp: time.Now(),
		Payload:   bus.MessageAppended{RoomID: roomID, MessageID: msg.ID},
	})
	s.bus.Publish(bus.Event{
		Kind:      bus.KindRoomPreviewUpdated,
		Timestamp: time.Now(),
		Payload:   bus.RoomChange{RoomID: roomID, Participants: participants},
	})
	return nil
}

// Subscribe opens a live feed for the room. Every emission is the full
// message set sorted by creation time descending; ties keep store order.
// The returned stop function is idempotent; once the subscription ends the
// channel closes and nothing more is emitted. If a snapshot read fails the
// error is logged and the feed ends; callers decide whether to resubscribe.
func (s *Stream) Subscribe(ctx context.Context, roomID string) (<-chan []store.Message, func()) {
	out := make(chan []store.Message, 1)
	events, unsub := s.bus.Subscribe("message.", 64)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer unsub()

		if !s.emit(ctx, roomID, out) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-events:
				appended, ok := evt.Payload.(bus.MessageAppended)
				if !ok || appended.RoomID != roomID {
					continue
				}
				if !s.emit(ctx, roomID, out) {
					return
				}
			}
		}
	}()

	return out, cancel
}

func (s *Stream) emit(ctx context.Context, roomID string, out chan<- []store.Message) bool {
	msgs, err := s.db.MessagesForRoom(roomID)
	if err != nil {
		s.logger.Error("message snapshot failed",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		return false
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt > msgs[j].CreatedAt
	})

	// Cancellation wins over a ready buffer slot: nothing may be
	// delivered once the subscription has been stopped.
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case out <- msgs:
		return true
	case <-ctx.Done():
		return false
	}
}
