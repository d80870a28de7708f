// YouTube Data API v3 [Provider] implementation
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	pageSize = 50

	deletedVideoTitle = "Deleted video"
	privateVideoTitle = "Private video"
)

// YouTubeOptions configures a [YouTubeService].
type YouTubeOptions struct {
	APIKey            string
	RequestsPerSecond float64 // zero disables rate limiting
	MaxRetries        int     // retries of transient failures, zero disables
	Endpoint          string  // overrides the API base URL
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// YouTubeService implements [Provider] on the YouTube Data API v3.
//
// Every API call waits on a shared rate limiter and transient failures (5xx, 429, transport errors)
// are retried with exponential backoff. Channel lookups are cached for the life of the process.
type YouTubeService struct {
	service    *ytapi.Service
	limiter    *rate.Limiter
	maxRetries int
	channels   *cache.Cache
	logger     *log.Logger
	newBackOff func() backoff.BackOff
}

// NewYouTubeService creates a YouTube Data API client authenticated with an API key.
func NewYouTubeService(ctx context.Context, opts YouTubeOptions) (*YouTubeService, error) {
	if opts.APIKey == "" && opts.HTTPClient == nil {
		return nil, fmt.Errorf("%w: youtube api key required", shared.ErrMissingConfig)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.HTTPClient != nil {
		// a custom client bypasses WithAPIKey, so the key rides on its transport
		client := *opts.HTTPClient
		if opts.APIKey != "" {
			base := client.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			client.Transport = &transport.APIKey{Key: opts.APIKey, Transport: base}
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(&client))
	}

	service, err := ytapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &YouTubeService{
		service:    service,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(opts.MaxRetries, 0),
		channels:   cache.New(time.Hour, 2*time.Hour),
		logger:     logger,
		newBackOff: defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// FetchChannel looks up a channel by id when the reference looks like one (UC prefix), by handle otherwise.
func (y *YouTubeService) FetchChannel(ctx context.Context, handleOrID string) (*ChannelInfo, error) {
	ref := strings.TrimSpace(handleOrID)
	if ref == "" {
		return nil, fmt.Errorf("%w: channel handle", shared.ErrMissingArgument)
	}

	if cached, ok := y.channels.Get(ref); ok {
		return cached.(*ChannelInfo), nil
	}

	var resp *ytapi.ChannelListResponse
	err := y.do(ctx, func() error {
		call := y.service.Channels.List([]string{"snippet", "contentDetails"}).Context(ctx)
		if isChannelID(ref) {
			call = call.Id(ref)
		} else {
			call = call.ForHandle(shared.NormalizeHandle(ref))
		}

		var err error
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: channel %q", shared.ErrNotFound, ref)
	}

	item := resp.Items[0]
	info := &ChannelInfo{ID: item.Id}
	if item.Snippet != nil {
		info.Name = item.Snippet.Title
		info.Handle = strings.TrimPrefix(item.Snippet.CustomUrl, "@")
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}

	y.channels.SetDefault(ref, info)
	y.channels.SetDefault(info.ID, info)
	return info, nil
}

// FetchUploadsPlaylistID resolves the uploads playlist through the (cached) channel lookup
func (y *YouTubeService) FetchUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	info, err := y.FetchChannel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if info.UploadsPlaylistID == "" {
		return "", fmt.Errorf("%w: uploads playlist for channel %s", shared.ErrNotFound, channelID)
	}
	return info.UploadsPlaylistID, nil
}

// FetchPlaylists lists the playlists of a channel, page by page
func (y *YouTubeService) FetchPlaylists(ctx context.Context, channelID string) ([]PlaylistInfo, error) {
	var playlists []PlaylistInfo

	pageToken := ""
	for {
		var resp *ytapi.PlaylistListResponse
		err := y.do(ctx, func() error {
			var err error
			resp, err = y.service.Playlists.List([]string{"snippet", "contentDetails"}).
				ChannelId(channelID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			playlists = append(playlists, toPlaylistInfo(item))
		}

		y.logger.Debug("fetched playlists page", "channel", channelID, "count", len(resp.Items))

		if pageToken = resp.NextPageToken; pageToken == "" {
			break
		}
	}

	return playlists, nil
}

// FetchPlaylist retrieves one playlist's metadata
func (y *YouTubeService) FetchPlaylist(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	var resp *ytapi.PlaylistListResponse
	err := y.do(ctx, func() error {
		var err error
		resp, err = y.service.Playlists.List([]string{"snippet", "contentDetails"}).
			Id(playlistID).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)
	}

	info := toPlaylistInfo(resp.Items[0])
	return &info, nil
}

// FetchPlaylistItems lists the items of a playlist, page by page, dropping unplayable entries
func (y *YouTubeService) FetchPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem

	pageToken := ""
	for {
		var resp *ytapi.PlaylistItemListResponse
		err := y.do(ctx, func() error {
			var err error
			resp, err = y.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			if pi, ok := toPlaylistItem(item); ok {
				items = append(items, pi)
			}
		}

		y.logger.Debug("fetched playlist items page", "playlist", playlistID, "count", len(resp.Items))

		if pageToken = resp.NextPageToken; pageToken == "" {
			break
		}
	}

	return items, nil
}

// do runs call under the rate limiter, retrying transient failures up to maxRetries times.
// API failures are reported as [shared.ErrUpstream].
func (y *YouTubeService) do(ctx context.Context, call func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(y.newBackOff(), uint64(y.maxRetries)), ctx)

	err := backoff.RetryNotify(func() error {
		if err := y.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		err := call()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		y.logger.Warn("retrying youtube request", "err", err, "wait", wait)
	})

	return upstreamError(err)
}

func upstreamError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%w: status %d: %s", shared.ErrUpstream, gerr.Code, gerr.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500 || gerr.Code == http.StatusTooManyRequests
	}
	return true
}

// isChannelID reports whether ref has the shape of a channel id (UC followed by 22 characters)
func isChannelID(ref string) bool {
	return len(ref) == 24 && strings.HasPrefix(ref, "UC")
}

func toPlaylistInfo(item *ytapi.Playlist) PlaylistInfo {
	info := PlaylistInfo{ID: item.Id}
	if item.Snippet != nil {
		info.ChannelID = item.Snippet.ChannelId
		info.Title = item.Snippet.Title
		info.Description = item.Snippet.Description
		info.PublishedDate = parseTime(item.Snippet.PublishedAt)
	}
	if item.ContentDetails != nil {
		info.VideoCount = int(item.ContentDetails.ItemCount)
	}
	return info
}

// toPlaylistItem converts an API item, reporting false for deleted, private or id-less entries
func toPlaylistItem(item *ytapi.PlaylistItem) (PlaylistItem, bool) {
	s := item.Snippet
	if s == nil || s.ResourceId == nil || s.ResourceId.VideoId == "" {
		return PlaylistItem{}, false
	}
	if s.Title == deletedVideoTitle || s.Title == privateVideoTitle {
		return PlaylistItem{}, false
	}

	pi := PlaylistItem{
		VideoID:     s.ResourceId.VideoId,
		ChannelID:   s.VideoOwnerChannelId,
		Title:       s.Title,
		Description: s.Description,
		Position:    s.Position,
		AddedDate:   parseTime(s.PublishedAt),
	}
	if s.Thumbnails != nil && s.Thumbnails.Default != nil {
		pi.Thumbnail = s.Thumbnails.Default.Url
	}
	if item.ContentDetails != nil {
		pi.PublishedDate = parseTime(item.ContentDetails.VideoPublishedAt)
	}
	if pi.PublishedDate.IsZero() {
		pi.PublishedDate = pi.AddedDate
	}
	return pi, true
}

// parseTime parses an RFC 3339 API timestamp, returning the zero time on failure
func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
