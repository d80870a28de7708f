package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/services"
	"github.com/desertthunder/ytq/internal/shared"
)

// SyncOptions selects what [Synchronizer.SyncChannel] pulls from the provider.
type SyncOptions struct {
	Videos    bool                  // Sync the channel's uploads
	Playlists bool                  // Sync the channel's playlists and their items
	Progress  chan<- ProgressUpdate // Optional, never blocks
}

// Synchronizer copies channel and playlist metadata from a [services.Provider] into the store.
//
// Every write is a get-or-create by natural key, so repeated syncs converge on the same rows
// and never touch watch state.
type Synchronizer struct {
	provider services.Provider
	store    *repositories.Store
	logger   *log.Logger
	now      func() time.Time
}

// NewSynchronizer creates a Synchronizer. A nil logger discards output.
func NewSynchronizer(provider services.Provider, store *repositories.Store, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Synchronizer{provider: provider, store: store, logger: shared.WithLogger(logger, "component", "sync"), now: time.Now}
}

// SyncChannel resolves handleOrID through the provider and stores the channel, its uploads and its playlists.
//
// Errors abort the sync; anything persisted before the failure stays.
func (s *Synchronizer) SyncChannel(ctx context.Context, handleOrID string, opts SyncOptions) (*models.Channel, error) {
	sendProgress(opts.Progress, resolveChannelUpdate(handleOrID))

	info, err := s.provider.FetchChannel(ctx, handleOrID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", handleOrID, err)
	}

	channel, err := s.store.GetOrCreateChannel(ctx, &models.Channel{
		ChannelID: info.ID,
		Name:      info.Name,
		Handle:    info.Handle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save channel %s: %w", info.ID, err)
	}
	sendProgress(opts.Progress, foundChannelUpdate(channel))

	var videoIDs, playlistIDs []string

	if opts.Videos {
		videoIDs, err = s.syncUploads(ctx, info, opts.Progress)
		if err != nil {
			return nil, err
		}
	}

	if opts.Playlists {
		playlistIDs, err = s.syncPlaylists(ctx, info.ID, opts.Progress)
		if err != nil {
			return nil, err
		}
	}

	channel, err = s.store.UpdateChannel(ctx, info.ID, func(c *models.Channel) error {
		for _, id := range videoIDs {
			c.AddVideo(id)
		}
		for _, id := range playlistIDs {
			c.AddPlaylist(id)
		}
		c.MarkSynced(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save channel %s: %w", info.ID, err)
	}

	sendProgress(opts.Progress, saveChannelUpdate(channel))
	s.logger.Info("channel synced", "channel", channel.Name, "videos", len(channel.VideoIDs), "playlists", len(channel.PlaylistIDs))
	return channel, nil
}

func (s *Synchronizer) syncUploads(ctx context.Context, info *services.ChannelInfo, progress chan<- ProgressUpdate) ([]string, error) {
	uploads := info.UploadsPlaylistID
	if uploads == "" {
		var err error
		if uploads, err = s.provider.FetchUploadsPlaylistID(ctx, info.ID); err != nil {
			return nil, fmt.Errorf("failed to resolve uploads of %s: %w", info.ID, err)
		}
	}

	items, err := s.provider.FetchPlaylistItems(ctx, uploads)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uploads of %s: %w", info.ID, err)
	}

	total := len(items)
	sendProgress(progress, uploadsUpdate(0, total, nil))

	ids := make([]string, 0, total)
	for i, item := range items {
		item.ChannelID = info.ID
		video, err := s.saveVideo(ctx, item)
		if err != nil {
			return ids, err
		}
		ids = append(ids, video.VideoID)
		sendProgress(progress, uploadsUpdate(i+1, total, video))
	}

	s.logger.Debug("uploads synced", "channel", info.ID, "videos", len(ids))
	return ids, nil
}

func (s *Synchronizer) syncPlaylists(ctx context.Context, channelID string, progress chan<- ProgressUpdate) ([]string, error) {
	infos, err := s.provider.FetchPlaylists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists of %s: %w", channelID, err)
	}

	total := len(infos)
	sendProgress(progress, playlistsUpdate(0, total, nil))

	ids := make([]string, 0, total)
	for i, info := range infos {
		playlist, err := s.syncPlaylist(ctx, info)
		if err != nil {
			return ids, err
		}
		ids = append(ids, playlist.PlaylistID)
		sendProgress(progress, playlistsUpdate(i+1, total, playlist))
	}
	return ids, nil
}

// SyncPlaylist stores one playlist and its videos, and links it to its owning channel when that channel is already stored.
func (s *Synchronizer) SyncPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	info, err := s.provider.FetchPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}

	playlist, err := s.syncPlaylist(ctx, *info)
	if err != nil {
		return nil, err
	}

	if info.ChannelID != "" {
		_, err := s.store.UpdateChannel(ctx, info.ChannelID, func(c *models.Channel) error {
			c.AddPlaylist(playlist.PlaylistID)
			return nil
		})
		switch {
		case err == nil:
			s.logger.Debug("playlist linked to channel", "playlist", playlist.PlaylistID, "channel", info.ChannelID)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("failed to link playlist %s: %w", playlist.PlaylistID, err)
		}
	}

	sendProgress(progress, playlistSyncedUpdate(playlist))
	return playlist, nil
}

// syncPlaylist upserts the playlist metadata, each of its videos, and then its membership entries.
func (s *Synchronizer) syncPlaylist(ctx context.Context, info services.PlaylistInfo) (*models.Playlist, error) {
	if _, err := s.store.GetOrCreatePlaylist(ctx, &models.Playlist{
		PlaylistID:    info.ID,
		Title:         info.Title,
		Description:   info.Description,
		VideoCount:    info.VideoCount,
		PublishedDate: info.PublishedDate,
	}); err != nil {
		return nil, fmt.Errorf("failed to save playlist %s: %w", info.ID, err)
	}

	items, err := s.provider.FetchPlaylistItems(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items of %s: %w", info.ID, err)
	}

	entries := make([]models.PlaylistEntry, 0, len(items))
	for _, item := range items {
		video, err := s.saveVideo(ctx, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.PlaylistEntry{
			VideoID:   video.VideoID,
			Position:  strconv.FormatInt(item.Position, 10),
			AddedDate: item.AddedDate,
		})
	}

	playlist, err := s.store.UpdatePlaylist(ctx, info.ID, func(p *models.Playlist) error {
		for _, e := range entries {
			p.AddVideo(e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save entries of %s: %w", info.ID, err)
	}

	s.logger.Debug("playlist synced", "playlist", info.ID, "title", info.Title, "entries", len(playlist.Entries))
	return playlist, nil
}

func (s *Synchronizer) saveVideo(ctx context.Context, item services.PlaylistItem) (*models.Video, error) {
	video, err := s.store.GetOrCreateVideo(ctx, &models.Video{
		VideoID:       item.VideoID,
		ChannelID:     item.ChannelID,
		Title:         item.Title,
		Description:   item.Description,
		Link:          shared.VideoURL(item.VideoID),
		Thumbnail:     item.Thumbnail,
		PublishedDate: item.PublishedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save video %s: %w", item.VideoID, err)
	}
	return video, nil
}
