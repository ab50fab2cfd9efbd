package bus

import "time"

// Event kinds published by the chat subsystem. Subscribers filter by
// namespace prefix, e.g. "room." matches both room kinds.
const (
	KindRoomCreated        = "room.created"
	KindRoomPreviewUpdated = "room.preview_updated"
	KindMessageAppended    = "message.appended"
)

// RoomChange is the payload for room.* events. Both kinds carry the
// participant pair, so subscribers can match rooms they have never seen.
type RoomChange struct {
	RoomID       string
	Participants [2]string
}

// MessageAppended is the payload for message.appended events.
type MessageAppended struct {
	RoomID    string
	MessageID string
}

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
