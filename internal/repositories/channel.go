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

const channelColumns = `id, channel_id, name, handle, last_synced, created_at, updated_at`

// ChannelRepository implements [models.ChannelRepository] on SQLite.
type ChannelRepository struct {
	db *sql.DB
}

// NewChannelRepository creates a new ChannelRepository with the given database connection
func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Get retrieves a channel with its playlist and video sets
func (r *ChannelRepository) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE channel_id = ?`

	channel, err := scanChannel(r.db.QueryRowContext(ctx, query, channelID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: channel %s", shared.ErrNotFound, channelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan channel: %w", err)
	}

	if err := r.loadSets(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// Save inserts or updates the channel row and adds any new set members.
//
// Existing set members keep their original sequence.
func (r *ChannelRepository) Save(ctx context.Context, channel *models.Channel) error {
	if channel.ChannelID == "" {
		return fmt.Errorf("%w: channel id is required", shared.ErrValidation)
	}
	if channel.ID == "" {
		channel.ID = shared.GenerateID()
	}
	channel.Touch(time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO channels (` + channelColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_id) DO UPDATE SET
			name = excluded.name,
			handle = excluded.handle,
			last_synced = excluded.last_synced,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		channel.ID,
		channel.ChannelID,
		channel.Name,
		channel.Handle,
		nullTimePtr(channel.LastSynced),
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT id, created_at FROM channels WHERE channel_id = ?", channel.ChannelID).
		Scan(&channel.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to read back channel: %w", err)
	}
	channel.CreatedAt = createdAt.UTC()

	if err := insertMembers(ctx, tx, "channel_videos", "channel_id", "video_id", channel.ChannelID, channel.VideoIDs); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, "channel_playlists", "channel_id", "playlist_id", channel.ChannelID, channel.PlaylistIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit channel: %w", err)
	}
	return nil
}

// List retrieves all channels ordered by name
func (r *ChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels ORDER BY name COLLATE NOCASE, channel_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}

	var channels []*models.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, channel := range channels {
		if err := r.loadSets(ctx, channel); err != nil {
			return nil, err
		}
	}
	return channels, nil
}

// Delete removes the channel and its own membership rows.
// Playlists and videos it referenced are left in place.
func (r *ChannelRepository) Delete(ctx context.Context, channelID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM channels WHERE channel_id = ?", channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if err := requireAffected(result, fmt.Errorf("%w: channel %s", shared.ErrNotFound, channelID)); err != nil {
		return err
	}

	for _, table := range []string{"channel_videos", "channel_playlists"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE channel_id = ?", channelID); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", table, err)
		}
	}

	return tx.Commit()
}

func (r *ChannelRepository) loadSets(ctx context.Context, channel *models.Channel) error {
	videos, err := queryIDs(ctx, r.db, "SELECT video_id FROM channel_videos WHERE channel_id = ? ORDER BY seq", channel.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to load channel videos: %w", err)
	}
	playlists, err := queryIDs(ctx, r.db, "SELECT playlist_id FROM channel_playlists WHERE channel_id = ? ORDER BY seq", channel.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to load channel playlists: %w", err)
	}

	channel.VideoIDs = videos
	channel.PlaylistIDs = playlists
	return nil
}

// insertMembers adds ids to a junction table, ignoring rows that already exist.
func insertMembers(ctx context.Context, tx *sql.Tx, table, ownerColumn, memberColumn, owner string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	seq, err := NextSequence(ctx, tx, table, ownerColumn, owner)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s, %s, seq) VALUES (?, ?, ?)", table, ownerColumn, memberColumn,
	))
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, owner, id, seq+i); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", table, err)
		}
	}
	return nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	var (
		channel    models.Channel
		lastSynced sql.NullTime
	)

	err := row.Scan(
		&channel.ID, &channel.ChannelID, &channel.Name, &channel.Handle,
		&lastSynced, &channel.CreatedAt, &channel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	channel.LastSynced = timePtr(lastSynced)
	channel.CreatedAt = channel.CreatedAt.UTC()
	channel.UpdatedAt = channel.UpdatedAt.UTC()
	return &channel, nil
}
