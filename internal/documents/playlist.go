package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlaylistRepository implements [models.PlaylistRepository] on the playlists collection.
//
// Entries are embedded in the playlist document and only ever appended.
type PlaylistRepository struct {
	col *mongo.Collection
}

// NewPlaylistRepository creates a PlaylistRepository on db
func NewPlaylistRepository(db *mongo.Database) *PlaylistRepository {
	return &PlaylistRepository{col: db.Collection(ColPlaylists)}
}

func (r *PlaylistRepository) Get(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := findOne(ctx, r.col, bson.M{"playlist_id": playlistID}, &playlist, "playlist "+playlistID); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Save upserts the playlist metadata, then appends entries whose video is not yet a member.
func (r *PlaylistRepository) Save(ctx context.Context, playlist *models.Playlist) error {
	if playlist.PlaylistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrValidation)
	}
	playlist.Touch(time.Now())

	filter := bson.M{"playlist_id": playlist.PlaylistID}
	update := bson.M{
		"$set": bson.M{
			"title":          playlist.Title,
			"description":    playlist.Description,
			"video_count":    playlist.VideoCount,
			"published_date": playlist.PublishedDate.UTC(),
			"updated_at":     playlist.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        shared.GenerateID(),
			"created_at": playlist.CreatedAt,
			"entries":    bson.A{},
		},
	}

	var stored models.Playlist
	if err := r.col.FindOneAndUpdate(ctx, filter, update, upsertOptions()).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	var missing []models.PlaylistEntry
	for _, entry := range playlist.Entries {
		if stored.AddVideo(entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) > 0 {
		push := bson.M{"$push": bson.M{"entries": bson.M{"$each": missing}}}
		if _, err := r.col.UpdateOne(ctx, filter, push); err != nil {
			return fmt.Errorf("failed to append playlist entries: %w", err)
		}
	}

	*playlist = stored
	return nil
}

func (r *PlaylistRepository) List(ctx context.Context) ([]*models.Playlist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_date", Value: -1}, {Key: "playlist_id", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	var playlists []*models.Playlist
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, fmt.Errorf("failed to decode playlists: %w", err)
	}
	return playlists, nil
}

// Delete removes the playlist document and its embedded entries.
func (r *PlaylistRepository) Delete(ctx context.Context, playlistID string) error {
	return deleteOne(ctx, r.col, bson.M{"playlist_id": playlistID}, "playlist "+playlistID)
}
