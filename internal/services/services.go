// package services defines the [Provider] interface for fetching channel, playlist and video metadata
package services

import (
	"context"
	"time"
)

// Provider fetches metadata from an external video platform.
//
// List operations follow every page before returning and hand back one flat slice.
type Provider interface {
	// FetchChannel looks up a channel by handle (with or without a leading "@") or by channel id.
	// Returns shared.ErrNotFound when nothing matches.
	FetchChannel(ctx context.Context, handleOrID string) (*ChannelInfo, error)

	// FetchUploadsPlaylistID returns the id of the playlist holding every upload of the channel.
	FetchUploadsPlaylistID(ctx context.Context, channelID string) (string, error)

	// FetchPlaylists returns every public playlist of the channel.
	FetchPlaylists(ctx context.Context, channelID string) ([]PlaylistInfo, error)

	// FetchPlaylist returns the metadata of a single playlist.
	FetchPlaylist(ctx context.Context, playlistID string) (*PlaylistInfo, error)

	// FetchPlaylistItems returns the playable items of a playlist.
	// Deleted and private videos are dropped.
	FetchPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
}

// TranscriptFetcher downloads the caption text of a video.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) (string, error)
}

// ChannelInfo is the channel metadata returned by a [Provider]
type ChannelInfo struct {
	ID                string
	Name              string
	Handle            string // without the leading "@"
	UploadsPlaylistID string
}

// PlaylistInfo is the playlist metadata returned by a [Provider]
type PlaylistInfo struct {
	ID            string
	ChannelID     string
	Title         string
	Description   string
	VideoCount    int
	PublishedDate time.Time
}

// PlaylistItem is one video entry of a playlist
type PlaylistItem struct {
	VideoID       string
	ChannelID     string // owner of the video, may differ from the playlist owner
	Title         string
	Description   string
	Thumbnail     string
	Position      int64
	AddedDate     time.Time // when the video was added to the playlist
	PublishedDate time.Time // when the video itself was published
}
