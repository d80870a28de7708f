package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ytq/internal/formatter"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// playlistSummary is the JSON shape of a playlist in command output.
//
// Videos is a count, or the list of titles when requested.
type playlistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Videos      any    `json:"videos"`
}

// PlaylistAdd stores a playlist given its URL.
//
// A URL that is not a playlist URL is reported as an error object on stdout, not as a failure.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := shared.ParsePlaylistURL(cmd.StringArg("url"))
	if err != nil {
		r.logger.Debug("rejected playlist url", "error", err)
		return r.writeJSON(map[string]string{"error": "Invalid playlist url"}, true)
	}

	syncer, err := r.synchronizer(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 10)
	done := r.logProgress(progress)
	playlist, err := syncer.SyncPlaylist(ctx, playlistID, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	return r.writeJSON(playlistSummary{
		ID:          playlist.PlaylistID,
		Name:        playlist.Title,
		Description: playlist.Description,
		Videos:      len(playlist.Entries),
	}, true)
}

// PlaylistList prints stored playlists, hiding channel uploads playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	playlists, err := store.Playlists.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	withVideos := cmd.Bool("videos")
	out := make([]playlistSummary, 0, len(playlists))
	for _, p := range playlists {
		if p.IsUploads() {
			continue
		}

		summary := playlistSummary{
			ID:          p.PlaylistID,
			Name:        p.Title,
			Description: p.Description,
			Videos:      len(p.Entries),
		}
		if withVideos {
			titles, err := r.playlistTitles(ctx, p)
			if err != nil {
				return err
			}
			summary.Videos = titles
		}
		out = append(out, summary)
	}
	return r.writeJSON(out, true)
}

// playlistTitles lists the titles of a playlist's stored videos in playlist order.
func (r *Runner) playlistTitles(ctx context.Context, p *models.Playlist) ([]string, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, err
	}

	export, err := tasks.NewExporter(store).Export(ctx, p.PlaylistID)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(export.Items))
	for _, item := range export.Items {
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}
	return titles, nil
}

// PlaylistRemove deletes one playlist by id or exact title.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("name")
	if ref == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	playlist, err := store.ResolvePlaylist(ctx, ref)
	if err != nil {
		return err
	}
	if err := store.Playlists.Delete(ctx, playlist.PlaylistID); err != nil {
		return fmt.Errorf("failed to remove playlist: %w", err)
	}

	r.logger.Info("playlist removed", "playlist", playlist.Title, "id", playlist.PlaylistID)
	return r.writeJSON(map[string]any{}, true)
}

// PlaylistProgress prints the watch progression of every playlist.
func (r *Runner) PlaylistProgress(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	progressions, err := tasks.NewReporter(store).AllPlaylistProgressions(ctx, cmd.Bool("sort"))
	if err != nil {
		return fmt.Errorf("failed to compute progressions: %w", err)
	}
	return r.writeJSON(progressions, true)
}

// PlaylistExport writes one playlist (or every playlist with --all) in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	output := cmd.String("output")
	exporter := tasks.NewExporter(store)

	if cmd.Bool("all") {
		return r.exportAll(ctx, exporter, cmd, format, output)
	}

	ref := cmd.StringArg("id")
	if ref == "" {
		return fmt.Errorf("%w: playlist id (or --all)", shared.ErrMissingArgument)
	}
	playlist, err := store.ResolvePlaylist(ctx, ref)
	if err != nil {
		return err
	}

	export, err := exporter.Export(ctx, playlist.PlaylistID)
	if err != nil {
		return err
	}

	data, err := formatter.Export(export, format)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	if output == "" {
		return r.writePlain("%s", data)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	r.logger.Info("playlist exported", "playlist", playlist.Title, "path", output)
	return r.writeJSON(map[string]any{"playlist": playlist.PlaylistID, "format": format, "path": output}, true)
}

func (r *Runner) exportAll(ctx context.Context, exporter *tasks.Exporter, cmd *cli.Command, format, dir string) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	playlists, err := store.Playlists.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		if !p.IsUploads() {
			ids = append(ids, p.PlaylistID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no playlists to export", shared.ErrNotFound)
	}

	progress := make(chan tasks.ProgressUpdate, len(ids)*2)
	done := r.logProgress(progress)
	result, exportErr := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: int(cmd.Int("workers")),
		Covers:     cmd.Bool("covers"),
	})
	close(progress)
	<-done
	if result == nil {
		return exportErr
	}

	if err := r.writeJSON(map[string]any{
		"format":             format,
		"output_directory":   result.OutputDirectory,
		"manifest":           result.ManifestPath,
		"total_playlists":    result.TotalPlaylists,
		"successful_exports": result.SuccessfulExports,
		"failed_exports":     result.FailedExports,
	}, true); err != nil {
		return err
	}

	switch {
	case exportErr != nil:
		return exportErr
	case result.FailedExports > 0:
		return fmt.Errorf("%d of %d playlists failed to export, see %s", result.FailedExports, result.TotalPlaylists, result.ManifestPath)
	}
	return nil
}
