// Caption download over the public timedtext endpoint
package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/ytq/internal/shared"
)

const defaultTimedTextURL = "https://www.youtube.com/api/timedtext"

// TranscriptService implements [TranscriptFetcher] with raw HTTP requests to the timedtext endpoint.
type TranscriptService struct {
	baseURL    string
	httpClient *http.Client
}

// NewTranscriptService creates a transcript client. Empty baseURL and nil client select the defaults.
func NewTranscriptService(baseURL string, client *http.Client) *TranscriptService {
	if baseURL == "" {
		baseURL = defaultTimedTextURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TranscriptService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// timedText is the XML document served by the timedtext endpoint.
type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript returns the captions of videoID in the first language of languages that has any,
// joined into a single space-separated string.
func (s *TranscriptService) FetchTranscript(ctx context.Context, videoID string, languages []string) (string, error) {
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	for _, lang := range languages {
		text, err := s.fetch(ctx, videoID, lang)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: no transcript for video %s in %s", shared.ErrNotFound, videoID, strings.Join(languages, ", "))
}

func (s *TranscriptService) fetch(ctx context.Context, videoID, lang string) (string, error) {
	query := url.Values{"v": {videoID}, "lang": {lang}}
	fullURL := s.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: timedtext status %d", shared.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: failed to decode transcript: %v", shared.ErrUpstream, err)
	}

	parts := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " "); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
