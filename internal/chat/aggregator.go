package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/bus"
	"github.com/mingle-app/mingle/internal/directory"
	"github.com/mingle-app/mingle/internal/store"
)

// Summary is the per-viewer projection of a room: the counterpart's
// identity and the room's recency preview. Derived, never persisted.
type Summary struct {
	RoomID          string `json:"chatRoomId"`
	OtherUserID     string `json:"otherUserId"`
	OtherUserName   string `json:"otherUserName"`
	OtherUserPhoto  string `json:"otherUserPhoto,omitempty"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime *int64 `json:"lastMessageTime"`
}

// Aggregator exposes a live, per-user list of rooms enriched with a
// best-effort display name for the counterpart and sorted by recency.
type Aggregator struct {
	db     *store.DB
	bus    *bus.Bus
	dir    directory.Client
	logger *zap.Logger
}

// NewAggregator creates a chat list aggregator.
func NewAggregator(db *store.DB, b *bus.Bus, dir directory.Client, logger *zap.Logger) *Aggregator {
	return &Aggregator{db: db, bus: b, dir: dir, logger: logger}
}

// Subscribe opens a live chat list for the user. Each snapshot produces an
// emission sorted by last-message time descending (rooms without one come
// last); when any entry still carries the placeholder name, an enrichment
// fan-out runs and a second, enriched emission follows. The stop function
// is idempotent. Enrichment lookups in flight when the subscription ends
// run to completion and their results are discarded.
func (a *Aggregator) Subscribe(ctx context.Context, userID string) (<-chan []Summary, func()) {
	out := make(chan []Summary, 1)
	events, unsub := a.bus.Subscribe("room.", 64)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer unsub()

		known := a.refresh(ctx, userID, out)
		if known == nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-events:
				change, ok := evt.Payload.(bus.RoomChange)
				if !ok {
					continue
				}
				if !a.concernsUser(change, userID, known) {
					continue
				}
				if known = a.refresh(ctx, userID, out); known == nil {
					return
				}
			}
		}
	}()

	return out, cancel
}

// concernsUser reports whether a room change affects the user's list:
// either a new room naming the user, or a room already in the list.
func (a *Aggregator) concernsUser(change bus.RoomChange, userID string, known map[string]struct{}) bool {
	if change.Participants[0] == userID || change.Participants[1] == userID {
		return true
	}
	_, ok := known[change.RoomID]
	return ok
}

// refresh emits one snapshot (plus the enriched follow-up if needed) and
// returns the set of room ids now in the list, or nil if the subscription
// should end.
func (a *Aggregator) refresh(ctx context.Context, userID string, out chan<- []Summary) map[string]struct{} {
	rooms, err := a.db.RoomsForUser(userID)
	if err != nil {
		a.logger.Error("chat list snapshot failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	summaries := lo.Map(rooms, func(r store.Room, _ int) Summary {
		other := r.Counterpart(userID)
		detail := r.ParticipantDetails[other]
		name := strings.TrimSpace(detail.DisplayName)
		if name == "" {
			name = UnknownUserName
		}
		return Summary{
			RoomID:          r.ID,
			OtherUserID:     other,
			OtherUserName:   name,
			OtherUserPhoto:  detail.PhotoURL,
			LastMessage:     r.LastMessage,
			LastMessageTime: r.LastMessageTime,
		}
	})
	sortByRecency(summaries)

	if !emit(ctx, out, summaries) {
		return nil
	}

	if lo.SomeBy(summaries, needsEnrichment) {
		enriched := make([]Summary, len(summaries))
		copy(enriched, summaries)
		a.enrich(ctx, enriched)
		sortByRecency(enriched)
		if !emit(ctx, out, enriched) {
			return nil
		}
	}

	known := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		known[s.RoomID] = struct{}{}
	}
	return known
}

func needsEnrichment(s Summary) bool {
	return s.OtherUserName == UnknownUserName
}

// emit delivers a snapshot unless the subscription has been stopped.
// Cancellation wins over a ready buffer slot: when enrichment outlives the
// subscription its result is discarded, never delivered.
func emit(ctx context.Context, out chan<- []Summary, summaries []Summary) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case out <- summaries:
		return true
	case <-ctx.Done():
		return false
	}
}

// enrich resolves placeholder names concurrently, one lookup chain per
// entry, all-settle: a failing lookup is logged and leaves that entry's
// placeholder in place without affecting siblings.
func (a *Aggregator) enrich(ctx context.Context, items []Summary) {
	var wg sync.WaitGroup
	for i := range items {
		if !needsEnrichment(items[i]) {
			continue
		}
		wg.Add(1)
		go func(s *Summary) {
			defer wg.Done()
			if name := a.resolveName(ctx, s.OtherUserID); name != "" {
				s.OtherUserName = name
			}
		}(&items[i])
	}
	wg.Wait()
}

// resolveName walks the fallback chain: directory profile (display name,
// full name, email), then the author name on the user's most recent post.
// Returns "" when nothing usable was found. Lookup failures are logged,
// never returned.
func (a *Aggregator) resolveName(ctx context.Context, userID string) string {
	profile, err := a.dir.ProfileByID(ctx, userID)
	if err != nil {
		a.logger.Warn("profile enrichment failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else if profile != nil {
		for _, candidate := range []string{profile.DisplayName, profile.FullName, profile.Email} {
			if s := strings.TrimSpace(candidate); s != "" {
				return s
			}
		}
	}

	name, err := a.dir.LatestAuthoredName(ctx, userID)
	if err != nil {
		a.logger.Warn("post enrichment failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(name)
}

// ListUsers returns every directory profile except the caller's, for the
// "start new chat" picker. Whitespace-only display names are normalized to
// absent. One-shot read, not a live feed.
func (a *Aggregator) ListUsers(ctx context.Context, excludeID string) ([]directory.Profile, error) {
	profiles, err := a.dir.ListProfiles(ctx, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range profiles {
		profiles[i].DisplayName = strings.TrimSpace(profiles[i].DisplayName)
	}
	return profiles, nil
}

// sortByRecency orders summaries by last-message time descending; entries
// without a timestamp sort last, keeping their relative order.
func sortByRecency(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := summaries[i].LastMessageTime, summaries[j].LastMessageTime
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return *ti > *tj
		}
	})
}
