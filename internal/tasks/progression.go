package tasks

import (
	"context"
	"math"
	"sort"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/repositories"
)

// Progression summarizes how much of a playlist has been watched.
type Progression struct {
	PlaylistID           string  `json:"playlist_id"`
	Title                string  `json:"title"`
	TotalVideos          int     `json:"videos"`
	WatchedCount         int     `json:"watched_videos_count"`
	UnwatchedCount       int     `json:"unwatched_videos_count"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// Reporter computes playlist progressions from the store.
type Reporter struct {
	store *repositories.Store
}

func NewReporter(store *repositories.Store) *Reporter {
	return &Reporter{store: store}
}

// PlaylistProgression counts the playlist's entries against its seen videos.
//
// Entries whose video is no longer stored count as unwatched.
func (r *Reporter) PlaylistProgression(ctx context.Context, p *models.Playlist) (Progression, error) {
	seen, err := r.store.Videos.Find(ctx, models.VideoQuery{PlaylistID: p.PlaylistID, SeenOnly: true})
	if err != nil {
		return Progression{}, err
	}

	total := len(p.Entries)
	watched := 0
	for _, v := range seen {
		if p.HasVideo(v.VideoID) {
			watched++
		}
	}

	return Progression{
		PlaylistID:           p.PlaylistID,
		Title:                p.Title,
		TotalVideos:          total,
		WatchedCount:         watched,
		UnwatchedCount:       total - watched,
		CompletionPercentage: completion(watched, total),
	}, nil
}

// AllPlaylistProgressions reports every stored playlist, most complete first when sortByCompletion is set.
//
// Uploads playlists are skipped.
func (r *Reporter) AllPlaylistProgressions(ctx context.Context, sortByCompletion bool) ([]Progression, error) {
	playlists, err := r.store.Playlists.List(ctx)
	if err != nil {
		return nil, err
	}

	progressions := make([]Progression, 0, len(playlists))
	for _, p := range playlists {
		if p.IsUploads() {
			continue
		}
		prog, err := r.PlaylistProgression(ctx, p)
		if err != nil {
			return nil, err
		}
		progressions = append(progressions, prog)
	}

	if sortByCompletion {
		sort.SliceStable(progressions, func(i, j int) bool {
			return progressions[i].CompletionPercentage > progressions[j].CompletionPercentage
		})
	}
	return progressions, nil
}

// completion is 100*watched/total rounded to two decimals, 0 for an empty playlist.
func completion(watched, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(watched)/float64(total)*100*100) / 100
}
