package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ColChannels  = "channels"
	ColPlaylists = "playlists"
	ColVideos    = "videos"
)

const defaultDatabase = "ytq"

// Connect opens a client for uri and checks the deployment is reachable.
//
// Pool sizes of zero keep the driver defaults.
func Connect(ctx context.Context, uri string, maxPoolSize, minPoolSize uint64) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: database connection URL is empty", shared.ErrMissingConfig)
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)
	if maxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(maxPoolSize)
	}
	if minPoolSize > 0 {
		clientOptions.SetMinPoolSize(minPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to MongoDB: %v", shared.ErrStoreConnection, err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: failed to ping MongoDB: %v", shared.ErrStoreConnection, err)
	}

	return client, nil
}

// EnsureIndexes creates the natural key and ordering indexes. Existing indexes are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ColChannels: {
			{Keys: bson.D{{Key: "channel_id", Value: 1}}, Options: options.Index().SetName("channel_id_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("channel_name")},
		},
		ColPlaylists: {
			{Keys: bson.D{{Key: "playlist_id", Value: 1}}, Options: options.Index().SetName("playlist_id_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "published_date", Value: -1}}, Options: options.Index().SetName("playlist_published_date")},
		},
		ColVideos: {
			{Keys: bson.D{{Key: "video_id", Value: 1}}, Options: options.Index().SetName("video_id_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "published_date", Value: -1}}, Options: options.Index().SetName("video_published_date")},
			{Keys: bson.D{{Key: "seen_at", Value: -1}}, Options: options.Index().SetName("video_seen_at")},
			{Keys: bson.D{{Key: "channel_id", Value: 1}}, Options: options.Index().SetName("video_channel_id")},
		},
	}

	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil && !isIndexExistsError(err) {
			return fmt.Errorf("failed to create %s indexes: %w", col, err)
		}
	}
	return nil
}

// NewStore connects to uri, ensures indexes on database name and returns a store over its collections.
// Closing the store disconnects the client.
func NewStore(ctx context.Context, uri, name string, maxPoolSize, minPoolSize uint64) (*repositories.Store, error) {
	client, err := Connect(ctx, uri, maxPoolSize, minPoolSize)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = defaultDatabase
	}
	db := client.Database(name)

	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	store := repositories.NewStore(NewChannelRepository(db), NewPlaylistRepository(db), NewVideoRepository(db))
	store.OnClose(func() error { return client.Disconnect(context.Background()) })
	return store, nil
}

func isIndexExistsError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// IndexOptionsConflict, IndexKeySpecsConflict
		return cmdErr.Code == 85 || cmdErr.Code == 86
	}
	return false
}

// findOne decodes the document matching filter into out, mapping a miss to [shared.ErrNotFound].
func findOne(ctx context.Context, col *mongo.Collection, filter bson.M, out any, what string) error {
	err := col.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", what, err)
	}
	return nil
}

// deleteOne removes the single document matching filter, mapping a miss to [shared.ErrNotFound].
func deleteOne(ctx context.Context, col *mongo.Collection, filter bson.M, what string) error {
	result, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	return nil
}

// upsertOptions returns the updated document after an upsert.
func upsertOptions() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}
