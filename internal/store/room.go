package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateRoomIfAbsent inserts the room if no row with its id exists yet.
// Returns whether a row was actually inserted. Because room ids are
// deterministic for a participant pair, concurrent callers for the same
// pair converge on the same row.
func (db *DB) CreateRoomIfAbsent(r *Room) (bool, error) {
	details, err := json.Marshal(r.ParticipantDetails)
	if err != nil {
		return false, fmt.Errorf("marshal participant details: %w", err)
	}

	res, err := db.Exec(`
		INSERT INTO chat_rooms (id, participant_low, participant_high, created_at, last_message, last_message_time, participant_details)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		r.ID, r.ParticipantLow, r.ParticipantHigh, r.CreatedAt, r.LastMessage, r.LastMessageTime, string(details))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RoomByID returns a single room, or nil if it does not exist.
func (db *DB) RoomByID(id string) (*Room, error) {
	row := db.QueryRow(`
		SELECT id, participant_low, participant_high, created_at, last_message, last_message_time, participant_details
		FROM chat_rooms
		WHERE id = ?`, id)

	r, err := scanRoom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// RoomsForUser returns every room the user participates in. The result
// carries no ordering; callers sort in memory.
func (db *DB) RoomsForUser(userID string) ([]Room, error) {
	rows, err := db.Query(`
		SELECT id, participant_low, participant_high, created_at, last_message, last_message_time, participant_details
		FROM chat_rooms
		WHERE participant_low = ? OR participant_high = ?`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []Room
	for rows.Next() {
		r, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// SetRoomPreview refreshes the room's denormalized last-message fields and
// returns the room's participant pair so event payloads can carry it.
func (db *DB) SetRoomPreview(roomID, lastMessage string, at int64) ([2]string, error) {
	var participants [2]string
	err := db.QueryRow(`
		UPDATE chat_rooms
		SET last_message = ?, last_message_time = ?
		WHERE id = ?
		RETURNING participant_low, participant_high`,
		lastMessage, at, roomID).Scan(&participants[0], &participants[1])
	return participants, err
}

func scanRoom(scan func(dest ...any) error) (*Room, error) {
	var r Room
	var lastMessageTime sql.NullInt64
	var details string
	if err := scan(&r.ID, &r.ParticipantLow, &r.ParticipantHigh, &r.CreatedAt, &r.LastMessage, &lastMessageTime, &details); err != nil {
		return nil, err
	}
	if lastMessageTime.Valid {
		t := lastMessageTime.Int64
		r.LastMessageTime = &t
	}
	if err := json.Unmarshal([]byte(details), &r.ParticipantDetails); err != nil {
		return nil, fmt.Errorf("unmarshal participant details: %w", err)
	}
	return &r, nil
}
