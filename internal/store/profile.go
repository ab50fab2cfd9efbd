package store

import "database/sql"

// ProfileByID returns a user profile, or nil if it does not exist.
func (db *DB) ProfileByID(id string) (*Profile, error) {
	var p Profile
	err := db.QueryRow(`
		SELECT id, display_name, full_name, email, photo_url
		FROM users
		WHERE id = ?`, id).
		Scan(&p.ID, &p.DisplayName, &p.FullName, &p.Email, &p.PhotoURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns every user profile except the excluded one.
func (db *DB) ListProfiles(excludeID string) ([]Profile, error) {
	rows, err := db.Query(`
		SELECT id, display_name, full_name, email, photo_url
		FROM users
		WHERE id != ?`, excludeID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.FullName, &p.Email, &p.PhotoURL); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpsertProfile writes a user profile. The chat subsystem never calls this
// at runtime; it exists for the profile subsystem and seed tooling.
func (db *DB) UpsertProfile(p *Profile) error {
	_, err := db.Exec(`
		INSERT INTO users (id, display_name, full_name, email, photo_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			full_name = excluded.full_name,
			email = excluded.email,
			photo_url = excluded.photo_url`,
		p.ID, p.DisplayName, p.FullName, p.Email, p.PhotoURL)
	return err
}

// LatestPostByAuthor returns the author's most recent post, or nil if the
// user never posted.
func (db *DB) LatestPostByAuthor(authorID string) (*Post, error) {
	var p Post
	err := db.QueryRow(`
		SELECT id, author_id, author_name, body, created_at
		FROM posts
		WHERE author_id = ?
		ORDER BY created_at DESC
		LIMIT 1`, authorID).
		Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Body, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPost writes a post row. Runtime writes belong to the feed subsystem;
// kept for seed tooling and tests.
func (db *DB) InsertPost(p *Post) error {
	_, err := db.Exec(`
		INSERT INTO posts (id, author_id, author_name, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, p.AuthorName, p.Body, p.CreatedAt)
	return err
}
