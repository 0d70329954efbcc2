package resolver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchFirstVideoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("search_query"); got != "dub techno mix" {
			t.Errorf("search query: got %q", got)
		}
		w.Write([]byte(`{"url":"/watch?v=dQw4w9WgXcQ","other":"noise"}`))
	}))
	defer srv.Close()

	src := newYouTubeSource(srv.Client())
	src.baseURL = srv.URL

	got, err := src.searchFirstVideoURL("dub techno mix")
	if err != nil {
		t.Fatalf("searchFirstVideoURL: %v", err)
	}
	if want := srv.URL + "/watch?v=dQw4w9WgXcQ"; got != want {
		t.Fatalf("url: got %s, want %s", got, want)
	}
}

func TestSearchFirstVideoURLNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("no videos here"))
	}))
	defer srv.Close()

	src := newYouTubeSource(srv.Client())
	src.baseURL = srv.URL

	_, err := src.searchFirstVideoURL("anything")
	if !errors.Is(err, ErrNoVideoMatch) {
		t.Fatalf("got %v, want ErrNoVideoMatch", err)
	}
}

func TestSpotifyURLRecognition(t *testing.T) {
	tests := []struct {
		url  string
		kind string
		id   string
	}{
		{"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "track", "4uLU6hMCjMI75M1A2tKUQC"},
		{"https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE", "album", "6dVIqQ8qmQ5GBnJ9shOYGE"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=x", "playlist", "37i9dQZF1DXcBWIGoYBM5M"},
	}
	for _, tt := range tests {
		m := spotifyURLRe.FindStringSubmatch(tt.url)
		if m == nil {
			t.Fatalf("no match for %s", tt.url)
		}
		if m[1] != tt.kind || m[2] != tt.id {
			t.Fatalf("%s: got (%s, %s)", tt.url, m[1], m[2])
		}
	}

	if spotifyURLRe.MatchString("https://open.spotify.com/artist/abc") {
		t.Fatal("artist URLs are not expandable")
	}
	if spotifyURLRe.MatchString("https://www.youtube.com/watch?v=abc") {
		t.Fatal("matched a non-spotify URL")
	}
}

func TestTrackQuery(t *testing.T) {
	q := trackQuery(spotifyTrack{
		Name:    "Windowlicker",
		Artists: []spotifyArtist{{Name: "Aphex Twin"}},
	})
	if q != "Aphex Twin - Windowlicker audio" {
		t.Fatalf("query: got %q", q)
	}

	q = trackQuery(spotifyTrack{
		Name:    "Duo",
		Artists: []spotifyArtist{{Name: "A"}, {Name: "B"}},
	})
	if q != "A, B - Duo audio" {
		t.Fatalf("query: got %q", q)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r := New("", "")
	if got := r.Resolve("   ", "user"); got != nil {
		t.Fatalf("expected nil for a blank query, got %v", got)
	}
}

func TestSpotifyDisabledWithoutCredentials(t *testing.T) {
	r := New("", "")
	if r.spotify != nil {
		t.Fatal("spotify client built without credentials")
	}
	r = New("id", "secret")
	if r.spotify == nil {
		t.Fatal("spotify client missing despite credentials")
	}
}
