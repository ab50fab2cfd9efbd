package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRoom(id, low, high string) *Room {
	return &Room{
		ID:              id,
		ParticipantLow:  low,
		ParticipantHigh: high,
		CreatedAt:       1000,
		ParticipantDetails: map[string]ParticipantDetail{
			low:  {DisplayName: "Low", Email: "low@example.com"},
			high: {DisplayName: "High", Email: "high@example.com"},
		},
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so run it again to check idempotency.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (chat + directory)", result.Version)
	}
}

func TestCreateRoomIfAbsent(t *testing.T) {
	db := testDB(t)

	created, err := db.CreateRoomIfAbsent(testRoom("r1", "alice", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first insert should report created=true")
	}

	// Same id again is a no-op.
	created, err = db.CreateRoomIfAbsent(testRoom("r1", "alice", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second insert should report created=false")
	}

	r, err := db.RoomByID("r1")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil {
		t.Fatal("room not found after insert")
	}
	if r.LastMessage != "" {
		t.Errorf("last message = %q, want empty", r.LastMessage)
	}
	if r.LastMessageTime != nil {
		t.Errorf("last message time = %v, want nil", *r.LastMessageTime)
	}
	if got := r.ParticipantDetails["alice"].DisplayName; got != "Low" {
		t.Errorf("participant detail = %q, want Low", got)
	}
}

func TestRoomPairUnique(t *testing.T) {
	db := testDB(t)

	if _, err := db.CreateRoomIfAbsent(testRoom("r1", "alice", "bob")); err != nil {
		t.Fatal(err)
	}
	// A different id for the same pair must violate the pair constraint.
	if _, err := db.CreateRoomIfAbsent(testRoom("r2", "alice", "bob")); err == nil {
		t.Error("duplicate participant pair should fail")
	}
}

func TestRoomByIDMissing(t *testing.T) {
	db := testDB(t)

	r, err := db.RoomByID("missing")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Errorf("got %v, want nil", r)
	}
}

func TestRoomsForUser(t *testing.T) {
	db := testDB(t)

	for _, r := range []*Room{
		testRoom("r1", "alice", "bob"),
		testRoom("r2", "alice", "carol"),
		testRoom("r3", "bob", "carol"),
	} {
		if _, err := db.CreateRoomIfAbsent(r); err != nil {
			t.Fatal(err)
		}
	}

	rooms, err := db.RoomsForUser("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	for _, r := range rooms {
		if r.ParticipantLow != "alice" && r.ParticipantHigh != "alice" {
			t.Errorf("room %s does not contain alice", r.ID)
		}
	}
}

func TestSetRoomPreview(t *testing.T) {
	db := testDB(t)

	if _, err := db.CreateRoomIfAbsent(testRoom("r1", "alice", "bob")); err != nil {
		t.Fatal(err)
	}
	participants, err := db.SetRoomPreview("r1", "hello", 2000)
	if err != nil {
		t.Fatal(err)
	}
	if participants != [2]string{"alice", "bob"} {
		t.Errorf("participants = %v, want [alice bob]", participants)
	}

	r, err := db.RoomByID("r1")
	if err != nil {
		t.Fatal(err)
	}
	if r.LastMessage != "hello" {
		t.Errorf("last message = %q, want hello", r.LastMessage)
	}
	if r.LastMessageTime == nil || *r.LastMessageTime != 2000 {
		t.Errorf("last message time = %v, want 2000", r.LastMessageTime)
	}
}

func TestInsertAndListMessages(t *testing.T) {
	db := testDB(t)

	if _, err := db.CreateRoomIfAbsent(testRoom("r1", "alice", "bob")); err != nil {
		t.Fatal(err)
	}

	msgs := []*Message{
		{ID: "m1", RoomID: "r1", Body: "first", SenderID: "alice", SenderName: "Alice", CreatedAt: 1000},
		{ID: "m2", RoomID: "r1", Body: "second", SenderID: "bob", SenderName: "Bob", SenderAvatar: "http://x/a.png", CreatedAt: 2000},
	}
	for _, m := range msgs {
		if err := db.InsertMessage(m); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.MessagesForRoom("r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	byID := map[string]Message{}
	for _, m := range got {
		byID[m.ID] = m
	}
	if byID["m2"].SenderAvatar != "http://x/a.png" {
		t.Errorf("avatar = %q", byID["m2"].SenderAvatar)
	}
	if byID["m1"].SenderAvatar != "" {
		t.Errorf("avatar should be empty, got %q", byID["m1"].SenderAvatar)
	}
}

func TestInsertMessageMissingRoom(t *testing.T) {
	db := testDB(t)

	err := db.InsertMessage(&Message{ID: "m1", RoomID: "nope", Body: "x", SenderID: "a", SenderName: "A", CreatedAt: 1})
	if err == nil {
		t.Error("insert into missing room should fail the foreign key")
	}
}

func TestProfiles(t *testing.T) {
	db := testDB(t)

	for _, p := range []*Profile{
		{ID: "a", DisplayName: "Alice", Email: "alice@example.com"},
		{ID: "b", DisplayName: "  ", Email: "bob@example.com"},
		{ID: "c", FullName: "Carol Jones"},
	} {
		if err := db.UpsertProfile(p); err != nil {
			t.Fatal(err)
		}
	}

	p, err := db.ProfileByID("a")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.DisplayName != "Alice" {
		t.Errorf("got %v, want Alice", p)
	}

	p, err = db.ProfileByID("missing")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("got %v, want nil", p)
	}

	profiles, err := db.ListProfiles("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	for _, p := range profiles {
		if p.ID == "a" {
			t.Error("excluded profile returned")
		}
	}
}

func TestLatestPostByAuthor(t *testing.T) {
	db := testDB(t)

	for _, p := range []*Post{
		{ID: "p1", AuthorID: "a", AuthorName: "Old Name", CreatedAt: 1000},
		{ID: "p2", AuthorID: "a", AuthorName: "New Name", CreatedAt: 2000},
		{ID: "p3", AuthorID: "b", AuthorName: "Other", CreatedAt: 3000},
	} {
		if err := db.InsertPost(p); err != nil {
			t.Fatal(err)
		}
	}

	p, err := db.LatestPostByAuthor("a")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.AuthorName != "New Name" {
		t.Errorf("got %v, want the most recent post", p)
	}

	p, err = db.LatestPostByAuthor("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("got %v, want nil", p)
	}
}
