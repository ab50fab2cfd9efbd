package store

// ParticipantDetail is the denormalized profile snapshot captured on a room
// at creation time. It can go stale; readers fall back to the directory when
// the name is unusable.
type ParticipantDetail struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// Room represents a persisted 1:1 conversation container between two users.
// The participant pair is stored sorted so the UNIQUE constraint backs the
// one-room-per-pair invariant.
type Room struct {
	ID                 string
	ParticipantLow     string
	ParticipantHigh    string
	CreatedAt          int64
	LastMessage        string
	LastMessageTime    *int64
	ParticipantDetails map[string]ParticipantDetail
}

// Participants returns the room's participant pair.
func (r *Room) Participants() [2]string {
	return [2]string{r.ParticipantLow, r.ParticipantHigh}
}

// Counterpart returns the participant who is not the viewer.
func (r *Room) Counterpart(viewer string) string {
	if r.ParticipantLow == viewer {
		return r.ParticipantHigh
	}
	return r.ParticipantLow
}

// Message represents a chat message. Immutable after creation; always
// belongs to exactly one room.
type Message struct {
	ID           string
	RoomID       string
	Body         string
	SenderID     string
	SenderName   string
	SenderAvatar string
	CreatedAt    int64
}

// Profile is a row of the external users collection.
type Profile struct {
	ID          string
	DisplayName string
	FullName    string
	Email       string
	PhotoURL    string
}

// Post is a row of the external posts collection, used as a last-resort
// source for a user's display name.
type Post struct {
	ID         string
	AuthorID   string
	AuthorName string
	Body       string
	CreatedAt  int64
}
