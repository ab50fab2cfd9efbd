package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/bus"
	"github.com/mingle-app/mingle/internal/directory"
	"github.com/mingle-app/mingle/internal/store"
)

// roomNamespace is the UUIDv5/SHA1 namespace for room ids. Changing it
// would orphan every existing room.
var roomNamespace = uuid.MustParse("3f1d9a6c-58e2-4c0b-9a7d-2e64b1c0d5aa")

// RoomID derives the deterministic room id for an unordered participant
// pair. Both orderings of the pair yield the same id, which is what makes
// room creation race-free: concurrent creators target the same row.
func RoomID(userA, userB string) string {
	low, high := sortPair(userA, userB)
	return uuid.NewSHA1(roomNamespace, []byte(low+"\x00"+high)).String()
}

func sortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Registry finds or creates the single room between two participants and
// owns the room's denormalized participant snapshot.
type Registry struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
}

// NewRegistry creates a room registry backed by the store.
func NewRegistry(db *store.DB, b *bus.Bus, logger *zap.Logger) *Registry {
	return &Registry{db: db, bus: b, logger: logger}
}

// GetOrCreateRoom returns the id of the room between the two users,
// creating it with a fresh participant snapshot if it does not exist yet.
// Store errors propagate to the caller, which owns retry policy.
func (r *Registry) GetOrCreateRoom(userA, userB string, profileA, profileB directory.Profile) (string, error) {
	id := RoomID(userA, userB)
	low, high := sortPair(userA, userB)

	room := &store.Room{
		ID:              id,
		ParticipantLow:  low,
		ParticipantHigh: high,
		CreatedAt:       time.Now().UnixMilli(),
		LastMessage:     "",
		LastMessageTime: nil,
		ParticipantDetails: map[string]store.ParticipantDetail{
			userA: snapshotDetail(profileA),
			userB: snapshotDetail(profileB),
		},
	}

	created, err := r.db.CreateRoomIfAbsent(room)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	if created {
		r.logger.Info("chat room created",
			zap.String("room_id", id),
			zap.String("participant_low", low),
			zap.String("participant_high", high),
		)
		r.bus.Publish(bus.Event{
			Kind:      bus.KindRoomCreated,
			Timestamp: time.Now(),
			Payload:   bus.RoomChange{RoomID: id, Participants: [2]string{low, high}},
		})
	}
	return id, nil
}

func snapshotDetail(p directory.Profile) store.ParticipantDetail {
	return store.ParticipantDetail{
		DisplayName: snapshotName(p.DisplayName, p.Email),
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}
}
