package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// channelSummary is the JSON shape of a channel in command output
type channelSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Handle     string `json:"handle"`
	Playlists  int    `json:"playlists"`
	Videos     int    `json:"videos"`
	LastSynced string `json:"last_synced,omitempty"`
}

func summarizeChannel(c *models.Channel) channelSummary {
	s := channelSummary{
		ID:        c.ChannelID,
		Name:      c.Name,
		Handle:    c.Handle,
		Playlists: len(c.PlaylistIDs),
		Videos:    len(c.VideoIDs),
	}
	if c.LastSynced != nil {
		s.LastSynced = c.LastSynced.Format(time.RFC3339)
	}
	return s
}

// ChannelAdd fetches a channel and optionally its uploads and playlists.
func (r *Runner) ChannelAdd(ctx context.Context, cmd *cli.Command) error {
	handle := cmd.StringArg("handle")
	if handle == "" {
		return fmt.Errorf("%w: channel handle", shared.ErrMissingArgument)
	}

	channel, err := r.syncChannel(ctx, handle, tasks.SyncOptions{
		Videos:    cmd.Bool("videos"),
		Playlists: cmd.Bool("playlists"),
	})
	if err != nil {
		return err
	}
	return r.writeJSON(summarizeChannel(channel), true)
}

// ChannelList prints every stored channel.
func (r *Runner) ChannelList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	channels, err := store.Channels.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	out := make([]channelSummary, 0, len(channels))
	for _, c := range channels {
		out = append(out, summarizeChannel(c))
	}
	return r.writeJSON(out, true)
}

// ChannelRemove deletes one channel, resolved by handle, name or id.
func (r *Runner) ChannelRemove(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("handle")
	if ref == "" {
		return fmt.Errorf("%w: channel handle", shared.ErrMissingArgument)
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	channel, err := store.ResolveChannel(ctx, ref)
	if err != nil {
		return err
	}
	if err := store.Channels.Delete(ctx, channel.ChannelID); err != nil {
		return fmt.Errorf("failed to remove channel: %w", err)
	}

	r.logger.Info("channel removed", "channel", channel.Name, "id", channel.ChannelID)
	return r.writeJSON(map[string]any{}, true)
}

// Sync refreshes a channel's uploads and playlists.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	handle := cmd.StringArg("handle")
	if handle == "" {
		return fmt.Errorf("%w: channel handle", shared.ErrMissingArgument)
	}

	channel, err := r.syncChannel(ctx, handle, tasks.SyncOptions{Videos: true, Playlists: true})
	if err != nil {
		return err
	}
	return r.writeJSON(summarizeChannel(channel), true)
}

// syncChannel runs the synchronizer, relaying progress to the logger.
func (r *Runner) syncChannel(ctx context.Context, handle string, opts tasks.SyncOptions) (*models.Channel, error) {
	syncer, err := r.synchronizer(ctx)
	if err != nil {
		return nil, err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.logProgress(progress)
	opts.Progress = progress

	channel, err := syncer.SyncChannel(ctx, handle, opts)
	close(progress)
	<-done

	return channel, err
}

func (r *Runner) synchronizer(ctx context.Context) (*tasks.Synchronizer, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := r.Provider(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewSynchronizer(provider, store, r.logger), nil
}

// logProgress drains progress into the logger until the channel is closed.
func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Step == 0 || update.Step == update.Total {
				r.logger.Info(update.Message, "phase", update.Phase)
			} else {
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()
	return done
}
