package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// VideoList prints stored videos newest first, optionally scoped to a channel or playlist.
func (r *Runner) VideoList(ctx context.Context, cmd *cli.Command) error {
	selector, err := r.selector(ctx)
	if err != nil {
		return err
	}

	videos, err := selector.List(ctx, tasks.Filters{
		UnseenOnly:  cmd.Bool("unseen-only"),
		ChannelName: cmd.String("channel"),
		PlaylistID:  cmd.String("playlist"),
	})
	if err != nil {
		return err
	}
	return r.writeJSON(nonNil(videos), true)
}

// VideoSeen marks a video, given by id or URL, as watched.
func (r *Runner) VideoSeen(ctx context.Context, cmd *cli.Command) error {
	return r.updateWatchState(ctx, cmd, (*tasks.Selector).MarkSeen)
}

// VideoUnseen clears a video's watch state.
func (r *Runner) VideoUnseen(ctx context.Context, cmd *cli.Command) error {
	return r.updateWatchState(ctx, cmd, (*tasks.Selector).MarkUnseen)
}

func (r *Runner) updateWatchState(
	ctx context.Context,
	cmd *cli.Command,
	fn func(*tasks.Selector, context.Context, string) (*models.Video, error),
) error {
	videoID, err := shared.ExtractVideoID(cmd.StringArg("video"))
	if err != nil {
		return err
	}

	selector, err := r.selector(ctx)
	if err != nil {
		return err
	}

	video, err := fn(selector, ctx, videoID)
	if err != nil {
		return err
	}
	return r.writeJSON(video, true)
}

// VideoWatched prints watched videos, most recently seen first.
func (r *Runner) VideoWatched(ctx context.Context, cmd *cli.Command) error {
	selector, err := r.selector(ctx)
	if err != nil {
		return err
	}

	videos, err := selector.Watched(ctx)
	if err != nil {
		return err
	}
	return r.writeJSON(nonNil(videos), true)
}

// VideoTranscript prints a video's transcript, fetching it on first request.
func (r *Runner) VideoTranscript(ctx context.Context, cmd *cli.Command) error {
	videoID, err := shared.ExtractVideoID(cmd.StringArg("video"))
	if err != nil {
		return err
	}

	languages := cmd.StringSlice("lang")
	if len(languages) == 0 {
		languages = r.config.YouTube.TranscriptLanguages
	}

	selector, err := r.selector(ctx)
	if err != nil {
		return err
	}

	video, err := selector.Transcript(ctx, videoID, languages)
	if err != nil {
		return fmt.Errorf("failed to get transcript of %s: %w", videoID, err)
	}

	return r.writeJSON(map[string]string{
		"video_id":   video.VideoID,
		"title":      video.Title,
		"transcript": video.Transcript,
	}, true)
}

func nonNil(videos []*models.Video) []*models.Video {
	if videos == nil {
		return []*models.Video{}
	}
	return videos
}
