package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
)

const playlistColumns = `id, playlist_id, title, description, video_count, published_date, created_at, updated_at`

// PlaylistRepository implements [models.PlaylistRepository] on SQLite.
//
// Entries live in playlist_videos and are append-only: saving a playlist never rewrites
// the position or added date of a video that is already a member.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Get retrieves a playlist and its entries in insertion order
func (r *PlaylistRepository) Get(ctx context.Context, playlistID string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE playlist_id = ?`

	playlist, err := scanPlaylist(r.db.QueryRowContext(ctx, query, playlistID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if err := r.loadEntries(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Save inserts or updates the playlist row and appends entries that are not yet stored
func (r *PlaylistRepository) Save(ctx context.Context, playlist *models.Playlist) error {
	if playlist.PlaylistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrValidation)
	}
	if playlist.ID == "" {
		playlist.ID = shared.GenerateID()
	}
	playlist.Touch(time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (` + playlistColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (playlist_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			video_count = excluded.video_count,
			published_date = excluded.published_date,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		playlist.ID,
		playlist.PlaylistID,
		playlist.Title,
		playlist.Description,
		playlist.VideoCount,
		nullTime(playlist.PublishedDate),
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT id, created_at FROM playlists WHERE playlist_id = ?", playlist.PlaylistID).
		Scan(&playlist.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to read back playlist: %w", err)
	}
	playlist.CreatedAt = createdAt.UTC()

	if len(playlist.Entries) > 0 {
		seq, err := NextSequence(ctx, tx, "playlist_videos", "playlist_id", playlist.PlaylistID)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO playlist_videos (playlist_id, video_id, seq, position, added_date)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer stmt.Close()

		for i, entry := range playlist.Entries {
			_, err := stmt.ExecContext(ctx, playlist.PlaylistID, entry.VideoID, seq+i, entry.Position, nullTime(entry.AddedDate))
			if err != nil {
				return fmt.Errorf("failed to insert playlist entry: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	return nil
}

// List retrieves all playlists, most recently published first
func (r *PlaylistRepository) List(ctx context.Context) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists ORDER BY published_date IS NULL, published_date DESC, playlist_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, playlist := range playlists {
		if err := r.loadEntries(ctx, playlist); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Delete removes the playlist and its entries. Videos and channel references are left in place.
func (r *PlaylistRepository) Delete(ctx context.Context, playlistID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE playlist_id = ?", playlistID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	if err := requireAffected(result, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_videos WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete playlist entries: %w", err)
	}

	return tx.Commit()
}

func (r *PlaylistRepository) loadEntries(ctx context.Context, playlist *models.Playlist) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT video_id, position, added_date
		FROM playlist_videos
		WHERE playlist_id = ?
		ORDER BY seq
	`, playlist.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to query playlist entries: %w", err)
	}
	defer rows.Close()

	playlist.Entries = []models.PlaylistEntry{}
	for rows.Next() {
		var (
			entry     models.PlaylistEntry
			addedDate sql.NullTime
		)
		if err := rows.Scan(&entry.VideoID, &entry.Position, &addedDate); err != nil {
			return fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entry.AddedDate = timeOrZero(addedDate)
		playlist.Entries = append(playlist.Entries, entry)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var (
		playlist  models.Playlist
		published sql.NullTime
	)

	err := row.Scan(
		&playlist.ID, &playlist.PlaylistID, &playlist.Title, &playlist.Description,
		&playlist.VideoCount, &published, &playlist.CreatedAt, &playlist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	playlist.PublishedDate = timeOrZero(published)
	playlist.CreatedAt = playlist.CreatedAt.UTC()
	playlist.UpdatedAt = playlist.UpdatedAt.UTC()
	return &playlist, nil
}
