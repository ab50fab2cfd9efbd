package chat

import "strings"

// UnknownUserName is the placeholder shown when no usable display name is
// known for a participant. The aggregator's enrichment pass only runs for
// entries still carrying it.
const UnknownUserName = "Unknown User"

// snapshotName resolves the display name captured in a room's participant
// snapshot: trimmed display name, then email, then the placeholder.
func snapshotName(displayName, email string) string {
	if s := strings.TrimSpace(displayName); s != "" {
		return s
	}
	if email != "" {
		return email
	}
	return UnknownUserName
}
