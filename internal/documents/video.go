package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoRepository implements [models.VideoRepository] on the videos collection.
//
// Playlist and channel scopes are resolved by reading the owning document's member ids first.
type VideoRepository struct {
	col       *mongo.Collection
	channels  *mongo.Collection
	playlists *mongo.Collection
}

// NewVideoRepository creates a VideoRepository on db
func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{
		col:       db.Collection(ColVideos),
		channels:  db.Collection(ColChannels),
		playlists: db.Collection(ColPlaylists),
	}
}

func (r *VideoRepository) Get(ctx context.Context, videoID string) (*models.Video, error) {
	var video models.Video
	if err := findOne(ctx, r.col, bson.M{"video_id": videoID}, &video, "video "+videoID); err != nil {
		return nil, err
	}
	return &video, nil
}

// Save upserts every stored field of the video
func (r *VideoRepository) Save(ctx context.Context, video *models.Video) error {
	if video.VideoID == "" {
		return fmt.Errorf("%w: video id is required", shared.ErrValidation)
	}
	video.Touch(time.Now())

	update := bson.M{
		"$set": bson.M{
			"channel_id":     video.ChannelID,
			"title":          video.Title,
			"description":    video.Description,
			"link":           video.Link,
			"thumbnail":      video.Thumbnail,
			"transcript":     video.Transcript,
			"published_date": video.PublishedDate.UTC(),
			"seen_at":        video.SeenAt,
			"updated_at":     video.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        shared.GenerateID(),
			"created_at": video.CreatedAt,
		},
	}

	var stored models.Video
	err := r.col.FindOneAndUpdate(ctx, bson.M{"video_id": video.VideoID}, update, upsertOptions()).Decode(&stored)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}

	*video = stored
	return nil
}

// Delete removes the video document only
func (r *VideoRepository) Delete(ctx context.Context, videoID string) error {
	return deleteOne(ctx, r.col, bson.M{"video_id": videoID}, "video "+videoID)
}

func (r *VideoRepository) Find(ctx context.Context, q models.VideoQuery) ([]*models.Video, error) {
	filter, err := r.filter(ctx, q)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(videoSort(q.Order))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}

	videos := []*models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

// Sample picks one matching video with the $sample aggregation stage
func (r *VideoRepository) Sample(ctx context.Context, q models.VideoQuery) (*models.Video, error) {
	filter, err := r.filter(ctx, q)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample videos: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("failed to sample videos: %w", err)
		}
		return nil, shared.ErrNoMatch
	}

	var video models.Video
	if err := cursor.Decode(&video); err != nil {
		return nil, fmt.Errorf("failed to decode video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) filter(ctx context.Context, q models.VideoQuery) (bson.M, error) {
	q = q.Scope()

	var scope []string
	switch {
	case q.PlaylistID != "":
		var playlist models.Playlist
		err := r.playlists.FindOne(ctx, bson.M{"playlist_id": q.PlaylistID},
			options.FindOne().SetProjection(bson.M{"entries": 1})).Decode(&playlist)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to load playlist entries: %w", err)
		}
		scope = playlist.VideoIDs()
	case q.ChannelID != "":
		var channel models.Channel
		err := r.channels.FindOne(ctx, bson.M{"channel_id": q.ChannelID},
			options.FindOne().SetProjection(bson.M{"video_ids": 1})).Decode(&channel)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to load channel videos: %w", err)
		}
		scope = channel.VideoIDs
	}
	return videoFilter(q, scope), nil
}

// videoFilter builds the find filter for q. scope holds the playlist or channel video ids when q is scoped.
func videoFilter(q models.VideoQuery, scope []string) bson.M {
	filter := bson.M{}
	if q.PlaylistID != "" || q.ChannelID != "" {
		filter["video_id"] = bson.M{"$in": nonNil(scope)}
	}

	if q.UnseenOnly {
		filter["seen_at"] = nil
	}
	if q.SeenOnly {
		filter["seen_at"] = bson.M{"$ne": nil}
	}
	return filter
}

func videoSort(o models.Order) bson.D {
	switch o {
	case models.OrderOldest:
		return bson.D{{Key: "published_date", Value: 1}, {Key: "video_id", Value: 1}}
	case models.OrderRecentlySeen:
		return bson.D{{Key: "seen_at", Value: -1}, {Key: "video_id", Value: 1}}
	default:
		return bson.D{{Key: "published_date", Value: -1}, {Key: "video_id", Value: 1}}
	}
}
