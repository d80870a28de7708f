// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/services"
	"github.com/desertthunder/ytq/internal/shared"
)

// MockProvider is an in-memory test double for [services.Provider].
//
// Channels are looked up by id and by handle. Err, when set, is returned by every call.
type MockProvider struct {
	Channels  []services.ChannelInfo
	Playlists map[string][]services.PlaylistInfo // by channel id
	Items     map[string][]services.PlaylistItem // by playlist id
	Err       error

	mu    sync.Mutex
	calls map[string]int
}

// NewMockProvider creates an empty MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Playlists: map[string][]services.PlaylistInfo{},
		Items:     map[string][]services.PlaylistItem{},
	}
}

// Calls returns how many times method was invoked
func (m *MockProvider) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockProvider) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[method]++
	return m.Err
}

func (m *MockProvider) FetchChannel(ctx context.Context, handleOrID string) (*services.ChannelInfo, error) {
	if err := m.record("FetchChannel"); err != nil {
		return nil, err
	}
	handle := shared.NormalizeHandle(handleOrID)
	for _, c := range m.Channels {
		if c.ID == handleOrID || c.Handle == handle {
			info := c
			return &info, nil
		}
	}
	return nil, fmt.Errorf("%w: channel %q", shared.ErrNotFound, handleOrID)
}

func (m *MockProvider) FetchUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	if err := m.record("FetchUploadsPlaylistID"); err != nil {
		return "", err
	}
	for _, c := range m.Channels {
		if c.ID == channelID && c.UploadsPlaylistID != "" {
			return c.UploadsPlaylistID, nil
		}
	}
	return "", fmt.Errorf("%w: uploads playlist for %s", shared.ErrNotFound, channelID)
}

func (m *MockProvider) FetchPlaylists(ctx context.Context, channelID string) ([]services.PlaylistInfo, error) {
	if err := m.record("FetchPlaylists"); err != nil {
		return nil, err
	}
	return m.Playlists[channelID], nil
}

func (m *MockProvider) FetchPlaylist(ctx context.Context, playlistID string) (*services.PlaylistInfo, error) {
	if err := m.record("FetchPlaylist"); err != nil {
		return nil, err
	}
	for _, playlists := range m.Playlists {
		for _, p := range playlists {
			if p.ID == playlistID {
				info := p
				return &info, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)
}

func (m *MockProvider) FetchPlaylistItems(ctx context.Context, playlistID string) ([]services.PlaylistItem, error) {
	if err := m.record("FetchPlaylistItems"); err != nil {
		return nil, err
	}
	return m.Items[playlistID], nil
}

// MockTranscripts is a test double for [services.TranscriptFetcher]
type MockTranscripts struct {
	Text  string
	Err   error
	Calls int
}

func (m *MockTranscripts) FetchTranscript(ctx context.Context, videoID string, languages []string) (string, error) {
	m.Calls++
	return m.Text, m.Err
}

// NewSQLiteStore creates a store on a migrated in-memory database, closed when the test ends
func NewSQLiteStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewSQLiteStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
