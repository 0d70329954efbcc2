// internal/music/player/track.go
package player

// Track is a resolved, playable media reference plus display metadata.
// Immutable once constructed; owned by its queue slot until dequeued.
type Track struct {
	Title       string `json:"title"`
	PlayableRef string `json:"playable_ref"`
	SourceURL   string `json:"source_url,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// UpcomingDisplayLimit caps how many queued tracks a Snapshot lists;
// the rest show up as a remainder count.
const UpcomingDisplayLimit = 10

// Snapshot is a read-only view of one guild's playback state.
type Snapshot struct {
	Current   *Track
	Upcoming  []Track
	Remaining int
}
