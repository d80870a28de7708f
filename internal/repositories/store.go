package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
)

// Store groups the three entity repositories of one backend and adds get-or-create
// and lookup helpers that work the same on every backend.
//
// Mutations issued through a Store are serialized per natural key.
type Store struct {
	Channels  models.ChannelRepository
	Playlists models.PlaylistRepository
	Videos    models.VideoRepository

	locks   keyedMutex
	closers []func() error
}

// NewStore creates a Store over the given repositories
func NewStore(channels models.ChannelRepository, playlists models.PlaylistRepository, videos models.VideoRepository) *Store {
	return &Store{Channels: channels, Playlists: playlists, Videos: videos}
}

// NewSQLiteStore creates a Store backed by db. Closing the store closes db.
func NewSQLiteStore(db *sql.DB) *Store {
	s := NewStore(NewChannelRepository(db), NewPlaylistRepository(db), NewVideoRepository(db))
	s.OnClose(db.Close)
	return s
}

// OnClose registers fn to run when the store is closed
func (s *Store) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases the backend connection
func (s *Store) Close() error {
	var errs []error
	for _, fn := range s.closers {
		errs = append(errs, fn())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// GetOrCreateVideo stores in as a new video, or merges its provided fields into the existing one.
//
// The watch state, cached transcript and publication date of an existing video are never changed.
func (s *Store) GetOrCreateVideo(ctx context.Context, in *models.Video) (*models.Video, error) {
	unlock := s.locks.lock("video:" + in.VideoID)
	defer unlock()

	video, err := s.Videos.Get(ctx, in.VideoID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		video = &models.Video{
			VideoID:       in.VideoID,
			ChannelID:     in.ChannelID,
			Title:         in.Title,
			Description:   in.Description,
			Link:          in.Link,
			Thumbnail:     in.Thumbnail,
			PublishedDate: in.PublishedDate.UTC(),
		}
	case err != nil:
		return nil, err
	default:
		video.Merge(in)
	}

	if err := s.Videos.Save(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// GetOrCreatePlaylist stores in as a new playlist, or merges its metadata into the existing one.
// Entries of in are ignored.
func (s *Store) GetOrCreatePlaylist(ctx context.Context, in *models.Playlist) (*models.Playlist, error) {
	unlock := s.locks.lock("playlist:" + in.PlaylistID)
	defer unlock()

	playlist, err := s.Playlists.Get(ctx, in.PlaylistID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		playlist = &models.Playlist{PlaylistID: in.PlaylistID}
		playlist.Merge(in)
	case err != nil:
		return nil, err
	default:
		playlist.Merge(in)
	}

	if err := s.Playlists.Save(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// GetOrCreateChannel stores in as a new channel, or updates the name and handle of the existing one.
func (s *Store) GetOrCreateChannel(ctx context.Context, in *models.Channel) (*models.Channel, error) {
	unlock := s.locks.lock("channel:" + in.ChannelID)
	defer unlock()

	channel, err := s.Channels.Get(ctx, in.ChannelID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		channel = &models.Channel{ChannelID: in.ChannelID}
		channel.Merge(in)
	case err != nil:
		return nil, err
	default:
		channel.Merge(in)
	}

	if err := s.Channels.Save(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// UpdateVideo loads a video, applies fn and saves the result under the video's lock
func (s *Store) UpdateVideo(ctx context.Context, videoID string, fn func(*models.Video) error) (*models.Video, error) {
	unlock := s.locks.lock("video:" + videoID)
	defer unlock()

	video, err := s.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := fn(video); err != nil {
		return nil, err
	}
	if err := s.Videos.Save(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// UpdatePlaylist loads a playlist, applies fn and saves the result under the playlist's lock
func (s *Store) UpdatePlaylist(ctx context.Context, playlistID string, fn func(*models.Playlist) error) (*models.Playlist, error) {
	unlock := s.locks.lock("playlist:" + playlistID)
	defer unlock()

	playlist, err := s.Playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if err := fn(playlist); err != nil {
		return nil, err
	}
	if err := s.Playlists.Save(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// UpdateChannel loads a channel, applies fn and saves the result under the channel's lock
func (s *Store) UpdateChannel(ctx context.Context, channelID string, fn func(*models.Channel) error) (*models.Channel, error) {
	unlock := s.locks.lock("channel:" + channelID)
	defer unlock()

	channel, err := s.Channels.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := fn(channel); err != nil {
		return nil, err
	}
	if err := s.Channels.Save(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// FindChannelByName returns the channel whose name equals name, ignoring case.
//
// A miss is [shared.ErrNotFound] with the closest known name as a suggestion.
func (s *Store) FindChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	channels, err := s.Channels.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(channels))
	for _, c := range channels {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
		names = append(names, c.Name)
	}
	return nil, notFound("channel", name, names)
}

// ResolveChannel finds a channel by id, handle (with or without "@") or name
func (s *Store) ResolveChannel(ctx context.Context, ref string) (*models.Channel, error) {
	ref = strings.TrimSpace(ref)
	if channel, err := s.Channels.Get(ctx, ref); err == nil {
		return channel, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	channels, err := s.Channels.List(ctx)
	if err != nil {
		return nil, err
	}

	handle := shared.NormalizeHandle(ref)
	candidates := make([]string, 0, len(channels)*2)
	for _, c := range channels {
		if c.Handle != "" && strings.EqualFold(c.Handle, handle) {
			return c, nil
		}
	}
	for _, c := range channels {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
		candidates = append(candidates, c.Handle, c.Name)
	}
	return nil, notFound("channel", ref, candidates)
}

// ResolvePlaylist finds a playlist by id or exact title
func (s *Store) ResolvePlaylist(ctx context.Context, ref string) (*models.Playlist, error) {
	if playlist, err := s.Playlists.Get(ctx, ref); err == nil {
		return playlist, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	playlists, err := s.Playlists.List(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(playlists)*2)
	for _, p := range playlists {
		if p.Title == ref {
			return p, nil
		}
		candidates = append(candidates, p.PlaylistID, p.Title)
	}
	return nil, notFound("playlist", ref, candidates)
}

// notFound builds an [shared.ErrNotFound] that names the closest candidate, if any
func notFound(kind, ref string, candidates []string) error {
	if best := Suggest(ref, candidates); best != "" {
		return fmt.Errorf("%w: %s %q (did you mean %q?)", shared.ErrNotFound, kind, ref, best)
	}
	return fmt.Errorf("%w: %s %q", shared.ErrNotFound, kind, ref)
}

// Suggest returns the candidate closest to target by case-insensitive edit distance.
//
// Candidates further than half of target's length away are not suggested.
func Suggest(target string, candidates []string) string {
	target = strings.ToLower(target)
	limit := max(len(target)/2, 2)

	best, bestDist := "", limit+1
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(target, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// keyedMutex hands out one mutex per key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
