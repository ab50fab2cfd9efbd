// Package directory is the chat subsystem's read-only view of the user
// directory: profile fields by id, plus a user's most recent authored post
// as a last-resort name source.
package directory

import (
	"context"
	"fmt"

	"github.com/mingle-app/mingle/internal/store"
)

// Profile holds the directory fields the chat subsystem reads. Empty
// strings mean the field is absent.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Client looks up user directory data. Implementations must treat a missing
// user as (nil, nil) rather than an error.
type Client interface {
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	LatestAuthoredName(ctx context.Context, userID string) (string, error)
	ListProfiles(ctx context.Context, excludeID string) ([]Profile, error)
}

// StoreClient reads the directory collections from the shared store. It is
// the default Client; the profile and feed subsystems own the writes.
type StoreClient struct {
	db *store.DB
}

// NewStoreClient creates a store-backed directory client.
func NewStoreClient(db *store.DB) *StoreClient {
	return &StoreClient{db: db}
}

func (c *StoreClient) ProfileByID(_ context.Context, id string) (*Profile, error) {
	p, err := c.db.ProfileByID(id)
	if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return fromRow(p), nil
}

func (c *StoreClient) LatestAuthoredName(_ context.Context, userID string) (string, error) {
	post, err := c.db.LatestPostByAuthor(userID)
	if err != nil {
		return "", fmt.Errorf("latest post lookup: %w", err)
	}
	if post == nil {
		return "", nil
	}
	return post.AuthorName, nil
}

func (c *StoreClient) ListProfiles(_ context.Context, excludeID string) ([]Profile, error) {
	rows, err := c.db.ListProfiles(excludeID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, *fromRow(&rows[i]))
	}
	return profiles, nil
}

func fromRow(p *store.Profile) *Profile {
	return &Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		FullName:    p.FullName,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}
}
