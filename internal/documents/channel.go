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

// ChannelRepository implements [models.ChannelRepository] on the channels collection.
type ChannelRepository struct {
	col *mongo.Collection
}

// NewChannelRepository creates a ChannelRepository on db
func NewChannelRepository(db *mongo.Database) *ChannelRepository {
	return &ChannelRepository{col: db.Collection(ColChannels)}
}

func (r *ChannelRepository) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	var channel models.Channel
	if err := findOne(ctx, r.col, bson.M{"channel_id": channelID}, &channel, "channel "+channelID); err != nil {
		return nil, err
	}
	return &channel, nil
}

// Save upserts the channel document. Set members are added with $addToSet and never removed.
func (r *ChannelRepository) Save(ctx context.Context, channel *models.Channel) error {
	if channel.ChannelID == "" {
		return fmt.Errorf("%w: channel id is required", shared.ErrValidation)
	}
	channel.Touch(time.Now())

	update := bson.M{
		"$set": bson.M{
			"name":        channel.Name,
			"handle":      channel.Handle,
			"last_synced": channel.LastSynced,
			"updated_at":  channel.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        shared.GenerateID(),
			"created_at": channel.CreatedAt,
		},
		"$addToSet": bson.M{
			"video_ids":    bson.M{"$each": nonNil(channel.VideoIDs)},
			"playlist_ids": bson.M{"$each": nonNil(channel.PlaylistIDs)},
		},
	}

	var stored models.Channel
	err := r.col.FindOneAndUpdate(ctx, bson.M{"channel_id": channel.ChannelID}, update, upsertOptions()).Decode(&stored)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}

	*channel = stored
	return nil
}

func (r *ChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "channel_id", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}

	var channels []*models.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	return channels, nil
}

// Delete removes the channel document only.
func (r *ChannelRepository) Delete(ctx context.Context, channelID string) error {
	return deleteOne(ctx, r.col, bson.M{"channel_id": channelID}, "channel "+channelID)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
