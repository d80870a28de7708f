package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Watch picks a video matching the filters, then optionally marks it watched and opens it.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	selector, err := r.selector(ctx)
	if err != nil {
		return err
	}

	ordering := tasks.Random
	if cmd.Bool("no-random") {
		ordering = tasks.Deterministic
	}

	video, err := selector.Pick(ctx, tasks.Filters{
		UnseenOnly:  cmd.Bool("unseen-only"),
		ChannelName: cmd.String("channel"),
		PlaylistID:  cmd.String("playlist"),
	}, ordering)
	if err != nil {
		return err
	}
	r.logger.Debug("picked video", "video", video.VideoID, "title", video.Title)

	if cmd.Bool("mark-as-watched") {
		if video, err = selector.MarkSeen(ctx, video.VideoID); err != nil {
			return fmt.Errorf("failed to mark video as watched: %w", err)
		}
	}

	if cmd.Bool("summary") {
		r.logger.Warn("summary generation is not available", "video", video.VideoID)
	}

	if !cmd.Bool("no-browser") {
		link := video.Link
		if link == "" {
			link = shared.VideoURL(video.VideoID)
		}
		if err := r.openBrowser(link); err != nil {
			r.logger.Warn("could not open browser", "url", link, "error", err)
		}
	}

	return r.writeJSON(video, true)
}

func (r *Runner) selector(ctx context.Context) (*tasks.Selector, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewSelector(store, r.transcripts), nil
}
