// internal/music/resolver/resolver.go
package resolver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dooberhut/dooberhut-bot/internal/music/player"
)

// Resolver turns free-text queries and URLs into playable tracks.
// Failures never cross this boundary; anything unresolvable collapses
// to an empty result.
type Resolver struct {
	yt      *youtubeSource
	spotify *spotifyClient
}

// New builds a resolver. Spotify expansion is enabled only when both
// credentials are present.
func New(spotifyID, spotifySecret string) *Resolver {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	r := &Resolver{
		yt: newYouTubeSource(httpClient),
	}
	if spotifyID != "" && spotifySecret != "" {
		r.spotify = newSpotifyClient(spotifyID, spotifySecret, httpClient)
	}
	return r
}

// Resolve handles three input shapes: a Spotify track/album/playlist
// URL (expanded into per-track search queries), any other URL (treated
// as a YouTube watch URL), or a free-text search query.
func (r *Resolver) Resolve(query, requestedBy string) []player.Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if r.spotify != nil && spotifyURLRe.MatchString(query) {
		return r.resolveSpotify(query, requestedBy)
	}

	var track *player.Track
	var err error
	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		track, err = r.yt.trackFromURL(query)
	} else {
		track, err = r.yt.searchFirst(query)
	}
	if err != nil {
		log.Printf("[WARN] [Resolver] Nothing playable for %q: %v", query, err)
		return nil
	}

	track.RequestedBy = requestedBy
	return []player.Track{*track}
}

func (r *Resolver) resolveSpotify(url, requestedBy string) []player.Track {
	queries, err := r.spotify.expandToQueries(url)
	if err != nil || len(queries) == 0 {
		log.Printf("[WARN] [Resolver] Spotify expansion failed for %q: %v", url, err)
		return nil
	}

	var tracks []player.Track
	for _, q := range queries {
		t, err := r.yt.searchFirst(q)
		if err != nil {
			log.Printf("[WARN] [Resolver] No match for %q: %v", q, err)
			continue
		}
		t.RequestedBy = requestedBy
		tracks = append(tracks, *t)
	}
	return tracks
}
