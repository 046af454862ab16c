package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/strlkr/fermata/internal/modules/music/application/ports"
)

// lyricsRequestTimeout bounds each lyrics provider request.
const lyricsRequestTimeout = 10 * time.Second

// OVHLyricsProvider fetches lyrics from the lyrics.ovh REST API.
type OVHLyricsProvider struct {
	client  *http.Client
	baseURL string
}

// NewOVHLyricsProvider creates a new OVHLyricsProvider.
func NewOVHLyricsProvider() *OVHLyricsProvider {
	return &OVHLyricsProvider{
		client:  &http.Client{Timeout: lyricsRequestTimeout},
		baseURL: "https://api.lyrics.ovh/v1",
	}
}

// Name returns the provider name for logging.
func (p *OVHLyricsProvider) Name() string {
	return "lyrics.ovh"
}

// Fetch looks up lyrics by artist and title. A lookup that finds nothing
// returns empty text and no error.
func (p *OVHLyricsProvider) Fetch(ctx context.Context, title, author string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", p.baseURL, url.PathEscape(author), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lyrics request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics request returned status %d", resp.StatusCode)
	}

	var body struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	return body.Lyrics, nil
}

// LRCLIBLyricsProvider fetches plain lyrics from the lrclib.net REST API.
type LRCLIBLyricsProvider struct {
	client  *http.Client
	baseURL string
}

// NewLRCLIBLyricsProvider creates a new LRCLIBLyricsProvider.
func NewLRCLIBLyricsProvider() *LRCLIBLyricsProvider {
	return &LRCLIBLyricsProvider{
		client:  &http.Client{Timeout: lyricsRequestTimeout},
		baseURL: "https://lrclib.net/api",
	}
}

// Name returns the provider name for logging.
func (p *LRCLIBLyricsProvider) Name() string {
	return "lrclib.net"
}

// Fetch looks up plain lyrics by artist and track name. A lookup that finds
// nothing returns empty text and no error.
func (p *LRCLIBLyricsProvider) Fetch(ctx context.Context, title, author string) (string, error) {
	query := url.Values{}
	query.Set("artist_name", author)
	query.Set("track_name", title)
	endpoint := fmt.Sprintf("%s/get?%s", p.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lyrics request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics request returned status %d", resp.StatusCode)
	}

	var body struct {
		PlainLyrics string `json:"plainLyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	return body.PlainLyrics, nil
}

var (
	_ ports.LyricsProvider = (*OVHLyricsProvider)(nil)
	_ ports.LyricsProvider = (*LRCLIBLyricsProvider)(nil)
)
