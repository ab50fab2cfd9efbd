package store

import "database/sql"

// InsertMessage appends a message to its room. Values are written as given;
// the caller stamps ids and timestamps.
func (db *DB) InsertMessage(m *Message) error {
	var avatar any
	if m.SenderAvatar != "" {
		avatar = m.SenderAvatar
	}
	_, err := db.Exec(`
		INSERT INTO messages (id, room_id, body, sender_id, sender_name, sender_avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.RoomID, m.Body, m.SenderID, m.SenderName, avatar, m.CreatedAt)
	return err
}

// MessagesForRoom returns every message in the room. The query filters on
// room_id only and carries no ordering; callers sort in memory, which keeps
// the schema free of a composite (room_id, created_at) index.
func (db *DB) MessagesForRoom(roomID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, room_id, body, sender_id, sender_name, sender_avatar, created_at
		FROM messages
		WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		var avatar sql.NullString
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Body, &m.SenderID, &m.SenderName, &avatar, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SenderAvatar = avatar.String
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
