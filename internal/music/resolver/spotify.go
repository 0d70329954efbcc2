// internal/music/resolver/spotify.go
package resolver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

var spotifyURLRe = regexp.MustCompile(`https?://open\.spotify\.com/(track|album|playlist)/([A-Za-z0-9]+)`)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"
)

// spotifyClient expands Spotify URLs into "artists - title audio"
// search queries using the client-credentials flow.
type spotifyClient struct {
	id     string
	secret string
	http   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newSpotifyClient(id, secret string, httpClient *http.Client) *spotifyClient {
	return &spotifyClient{id: id, secret: secret, http: httpClient}
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
}

// expandToQueries turns a track, album or playlist URL into one search
// query per contained track.
func (c *spotifyClient) expandToQueries(rawURL string) ([]string, error) {
	m := spotifyURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, fmt.Errorf("not a spotify URL: %s", rawURL)
	}
	kind, id := m[1], m[2]

	switch kind {
	case "track":
		var t spotifyTrack
		if err := c.getJSON("/tracks/"+id, &t); err != nil {
			return nil, err
		}
		return []string{trackQuery(t)}, nil

	case "album":
		var album struct {
			Tracks struct {
				Items []spotifyTrack `json:"items"`
			} `json:"tracks"`
		}
		if err := c.getJSON("/albums/"+id, &album); err != nil {
			return nil, err
		}
		var out []string
		for _, t := range album.Tracks.Items {
			out = append(out, trackQuery(t))
		}
		return out, nil

	case "playlist":
		var pl struct {
			Items []struct {
				Track *spotifyTrack `json:"track"`
			} `json:"items"`
		}
		if err := c.getJSON("/playlists/"+id+"/tracks", &pl); err != nil {
			return nil, err
		}
		var out []string
		for _, it := range pl.Items {
			if it.Track == nil {
				continue
			}
			out = append(out, trackQuery(*it.Track))
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported spotify resource: %s", kind)
}

func trackQuery(t spotifyTrack) string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return fmt.Sprintf("%s - %s audio", strings.Join(names, ", "), t.Name)
}

func (c *spotifyClient) getJSON(path string, out any) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, spotifyAPIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify API returned status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// accessToken returns a cached client-credentials token, refreshing it
// shortly before expiry.
func (c *spotifyClient) accessToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequest(http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.id, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("spotify token response missing access_token")
	}

	c.token = body.AccessToken
	c.expires = time.Now().Add(time.Duration(body.ExpiresIn-30) * time.Second)
	return c.token, nil
}
