package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/services"
	"github.com/desertthunder/ytq/internal/shared"
)

// Filters narrows the set of videos a [Selector] picks from.
//
// PlaylistID takes precedence over ChannelName when both are set.
type Filters struct {
	UnseenOnly  bool
	ChannelName string
	PlaylistID  string
}

// Ordering chooses between a random pick and a deterministic one.
type Ordering int

const (
	Random        Ordering = iota // uniformly random among matches
	Deterministic                 // oldest first when unseen only, newest first otherwise
)

// Selector picks videos to watch and tracks their watch state.
type Selector struct {
	store       *repositories.Store
	transcripts services.TranscriptFetcher
	now         func() time.Time
}

// NewSelector creates a Selector. transcripts may be nil when transcripts are never requested.
func NewSelector(store *repositories.Store, transcripts services.TranscriptFetcher) *Selector {
	return &Selector{store: store, transcripts: transcripts, now: time.Now}
}

// Pick returns one video matching f, or shared.ErrNoMatch.
func (s *Selector) Pick(ctx context.Context, f Filters, o Ordering) (*models.Video, error) {
	q, err := s.query(ctx, f)
	if err != nil {
		return nil, err
	}

	if o == Random {
		return s.store.Videos.Sample(ctx, q)
	}

	q.Order = models.OrderNewest
	if f.UnseenOnly {
		q.Order = models.OrderOldest
	}
	q.Limit = 1

	videos, err := s.store.Videos.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, shared.ErrNoMatch
	}
	return videos[0], nil
}

// List returns every video matching f, newest first.
func (s *Selector) List(ctx context.Context, f Filters) ([]*models.Video, error) {
	q, err := s.query(ctx, f)
	if err != nil {
		return nil, err
	}
	q.Order = models.OrderNewest
	return s.store.Videos.Find(ctx, q)
}

// Watched lists seen videos, most recently seen first.
func (s *Selector) Watched(ctx context.Context) ([]*models.Video, error) {
	return s.store.Videos.Find(ctx, models.VideoQuery{SeenOnly: true, Order: models.OrderRecentlySeen})
}

// MarkSeen stamps the video as watched now.
func (s *Selector) MarkSeen(ctx context.Context, videoID string) (*models.Video, error) {
	return s.store.UpdateVideo(ctx, videoID, func(v *models.Video) error {
		v.MarkSeen(s.now())
		return nil
	})
}

// MarkUnseen clears the video's watch state.
func (s *Selector) MarkUnseen(ctx context.Context, videoID string) (*models.Video, error) {
	return s.store.UpdateVideo(ctx, videoID, func(v *models.Video) error {
		v.MarkUnseen()
		return nil
	})
}

// Transcript returns the video's transcript, fetching and caching it on first use.
func (s *Selector) Transcript(ctx context.Context, videoID string, languages []string) (*models.Video, error) {
	video, err := s.store.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Transcript != "" {
		return video, nil
	}
	if s.transcripts == nil {
		return nil, fmt.Errorf("%w: transcript fetcher", shared.ErrNotImplemented)
	}

	text, err := s.transcripts.FetchTranscript(ctx, videoID, languages)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateVideo(ctx, videoID, func(v *models.Video) error {
		v.Transcript = text
		return nil
	})
}

func (s *Selector) query(ctx context.Context, f Filters) (models.VideoQuery, error) {
	q := models.VideoQuery{UnseenOnly: f.UnseenOnly}

	switch {
	case f.PlaylistID != "":
		if _, err := s.store.Playlists.Get(ctx, f.PlaylistID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return q, s.playlistNotFound(ctx, f.PlaylistID)
			}
			return q, err
		}
		q.PlaylistID = f.PlaylistID
	case f.ChannelName != "":
		channel, err := s.store.FindChannelByName(ctx, f.ChannelName)
		if err != nil {
			return q, err
		}
		q.ChannelID = channel.ChannelID
	}
	return q, nil
}

func (s *Selector) playlistNotFound(ctx context.Context, ref string) error {
	playlists, err := s.store.Playlists.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.PlaylistID)
	}
	if hint := repositories.Suggest(ref, ids); hint != "" {
		return fmt.Errorf("%w: playlist %q (did you mean %q?)", shared.ErrNotFound, ref, hint)
	}
	return fmt.Errorf("%w: playlist %q", shared.ErrNotFound, ref)
}
