package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
)

const videoColumns = `id, video_id, channel_id, title, description, link, thumbnail, transcript, published_date, seen_at, created_at, updated_at`

// VideoRepository implements [models.VideoRepository] on SQLite.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Get retrieves a video by its YouTube id
func (r *VideoRepository) Get(ctx context.Context, videoID string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = ?`

	video, err := scanVideo(r.db.QueryRowContext(ctx, query, videoID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: video %s", shared.ErrNotFound, videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}
	return video, nil
}

// Save inserts the video or replaces every stored field of an existing one
func (r *VideoRepository) Save(ctx context.Context, video *models.Video) error {
	if video.VideoID == "" {
		return fmt.Errorf("%w: video id is required", shared.ErrValidation)
	}
	if video.ID == "" {
		video.ID = shared.GenerateID()
	}
	video.Touch(time.Now())

	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			thumbnail = excluded.thumbnail,
			transcript = excluded.transcript,
			published_date = excluded.published_date,
			seen_at = excluded.seen_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		video.ID,
		video.VideoID,
		video.ChannelID,
		video.Title,
		video.Description,
		video.Link,
		video.Thumbnail,
		video.Transcript,
		nullTime(video.PublishedDate),
		nullTimePtr(video.SeenAt),
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}

	var createdAt time.Time
	err = r.db.QueryRowContext(ctx, "SELECT id, created_at FROM videos WHERE video_id = ?", video.VideoID).
		Scan(&video.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to read back video: %w", err)
	}
	video.CreatedAt = createdAt.UTC()

	return nil
}

// Delete removes the video row only. Playlist entries and channel sets keep the dangling id.
func (r *VideoRepository) Delete(ctx context.Context, videoID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE video_id = ?", videoID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: video %s", shared.ErrNotFound, videoID))
}

// Find returns the videos matching q
func (r *VideoRepository) Find(ctx context.Context, q models.VideoQuery) ([]*models.Video, error) {
	where, args := videoFilter(q)
	query := `SELECT ` + videoColumns + ` FROM videos` + where + videoOrder(q.Order)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return videos, nil
}

// Sample picks one matching video with ORDER BY RANDOM()
func (r *VideoRepository) Sample(ctx context.Context, q models.VideoQuery) (*models.Video, error) {
	where, args := videoFilter(q)
	query := `SELECT ` + videoColumns + ` FROM videos` + where + ` ORDER BY RANDOM() LIMIT 1`

	video, err := scanVideo(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sample video: %w", err)
	}
	return video, nil
}

// videoFilter builds the WHERE clause for q. Channel scope is the channel's video set.
func videoFilter(q models.VideoQuery) (string, []any) {
	q = q.Scope()

	var (
		clauses []string
		args    []any
	)

	switch {
	case q.PlaylistID != "":
		clauses = append(clauses, "video_id IN (SELECT video_id FROM playlist_videos WHERE playlist_id = ?)")
		args = append(args, q.PlaylistID)
	case q.ChannelID != "":
		clauses = append(clauses, "video_id IN (SELECT video_id FROM channel_videos WHERE channel_id = ?)")
		args = append(args, q.ChannelID)
	}

	if q.UnseenOnly {
		clauses = append(clauses, "seen_at IS NULL")
	}
	if q.SeenOnly {
		clauses = append(clauses, "seen_at IS NOT NULL")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func videoOrder(o models.Order) string {
	switch o {
	case models.OrderOldest:
		return " ORDER BY published_date IS NULL, published_date ASC, video_id"
	case models.OrderRecentlySeen:
		return " ORDER BY seen_at IS NULL, seen_at DESC, video_id"
	default:
		return " ORDER BY published_date IS NULL, published_date DESC, video_id"
	}
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		video     models.Video
		published sql.NullTime
		seenAt    sql.NullTime
	)

	err := row.Scan(
		&video.ID, &video.VideoID, &video.ChannelID, &video.Title, &video.Description,
		&video.Link, &video.Thumbnail, &video.Transcript, &published, &seenAt,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.PublishedDate = timeOrZero(published)
	video.SeenAt = timePtr(seenAt)
	video.CreatedAt = video.CreatedAt.UTC()
	video.UpdatedAt = video.UpdatedAt.UTC()
	return &video, nil
}
