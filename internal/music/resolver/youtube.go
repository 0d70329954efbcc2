// internal/music/resolver/youtube.go
package resolver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/kkdai/youtube/v2"

	"github.com/dooberhut/dooberhut-bot/internal/music/player"
)

var (
	videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

	ErrNoVideoMatch = errors.New("no video found for the given query")
	ErrNoAudio      = errors.New("no audio formats found for video")
)

type youtubeSource struct {
	baseURL string
	http    *http.Client
	client  *youtube.Client
}

func newYouTubeSource(httpClient *http.Client) *youtubeSource {
	return &youtubeSource{
		baseURL: "https://www.youtube.com",
		http:    httpClient,
		client:  &youtube.Client{HTTPClient: httpClient},
	}
}

// searchFirst resolves a free-text query to the first search result's
// playable track.
func (s *youtubeSource) searchFirst(query string) (*player.Track, error) {
	watchURL, err := s.searchFirstVideoURL(query)
	if err != nil {
		return nil, err
	}
	return s.trackFromURL(watchURL)
}

// trackFromURL extracts video metadata and a direct audio stream URL
// the sink's decoder can consume.
func (s *youtubeSource) trackFromURL(watchURL string) (*player.Track, error) {
	video, err := s.client.GetVideo(watchURL)
	if err != nil {
		return nil, fmt.Errorf("youtube metadata error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, ErrNoAudio
	}

	streamURL, err := s.client.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream URL error: %w", err)
	}

	return &player.Track{
		Title:       video.Title,
		PlayableRef: streamURL,
		SourceURL:   watchURL,
	}, nil
}

// searchFirstVideoURL scrapes the results page for the first watch
// link.
func (s *youtubeSource) searchFirstVideoURL(query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", s.baseURL, url.QueryEscape(query))

	resp, err := s.http.Get(searchURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("YouTube search failed with status code %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := videoPattern.FindStringSubmatch(string(body))
	if len(matches) > 1 {
		return fmt.Sprintf("%s/watch?v=%s", s.baseURL, matches[1]), nil
	}

	return "", ErrNoVideoMatch
}
