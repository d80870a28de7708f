// package models defines the data model for the video curation store
package models

import (
	"context"
	"time"
)

// ChannelRepository persists [Channel] values keyed by channel id.
type ChannelRepository interface {
	Get(ctx context.Context, channelID string) (*Channel, error) // Get returns shared.ErrNotFound when absent
	Save(ctx context.Context, channel *Channel) error           // Save inserts or replaces by channel id and stamps UpdatedAt
	List(ctx context.Context) ([]*Channel, error)               // List returns every channel ordered by name
	Delete(ctx context.Context, channelID string) error         // Delete removes one channel, never its playlists or videos
}

// PlaylistRepository persists [Playlist] values keyed by playlist id.
type PlaylistRepository interface {
	Get(ctx context.Context, playlistID string) (*Playlist, error)
	Save(ctx context.Context, playlist *Playlist) error
	List(ctx context.Context) ([]*Playlist, error)
	Delete(ctx context.Context, playlistID string) error
}

// VideoRepository persists [Video] values keyed by video id and answers selection queries.
type VideoRepository interface {
	Get(ctx context.Context, videoID string) (*Video, error)
	Save(ctx context.Context, video *Video) error
	Delete(ctx context.Context, videoID string) error

	// Find returns every video matching q in the order q asks for.
	Find(ctx context.Context, q VideoQuery) ([]*Video, error)

	// Sample returns one uniformly random video matching q, or shared.ErrNoMatch.
	Sample(ctx context.Context, q VideoQuery) (*Video, error)
}

// Order selects how [VideoRepository.Find] sorts its results.
type Order int

const (
	OrderNewest       Order = iota // newest PublishedDate first
	OrderOldest                    // oldest PublishedDate first
	OrderRecentlySeen              // most recent SeenAt first
)

// VideoQuery scopes a video lookup.
//
// PlaylistID takes precedence over ChannelID when both are set.
type VideoQuery struct {
	PlaylistID string
	ChannelID  string
	UnseenOnly bool
	SeenOnly   bool
	Order      Order
	Limit      int
}

// Scope returns the query with the channel filter dropped when a playlist filter is present.
func (q VideoQuery) Scope() VideoQuery {
	if q.PlaylistID != "" {
		q.ChannelID = ""
	}
	return q
}

// stamp sets CreatedAt on first persist and always refreshes UpdatedAt.
func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
