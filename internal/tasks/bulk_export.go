package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/ytq/internal/formatter"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, md, txt
	OutputDir  string  // Base output directory (default: ytq_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Playlists dispatched per second, bounds cover downloads (default: 5)
	Covers     bool    // Download the first thumbnail as cover image for markdown exports
}

// PlaylistExportJob is one playlist queued for a worker. Err is set when the playlist could not be loaded.
type PlaylistExportJob struct {
	PlaylistID string
	Export     *formatter.PlaylistExport
	Err        error
}

// Exporter reads playlists and their videos from the store and writes them to disk.
type Exporter struct {
	store *repositories.Store
}

func NewExporter(store *repositories.Store) *Exporter {
	return &Exporter{store: store}
}

// Export builds the export of one stored playlist, in playlist order.
func (e *Exporter) Export(ctx context.Context, playlistID string) (*formatter.PlaylistExport, error) {
	playlist, err := e.store.Playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	videos, err := e.store.Videos.Find(ctx, models.VideoQuery{PlaylistID: playlistID})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Video, len(videos))
	for _, v := range videos {
		byID[v.VideoID] = v
	}

	export := &formatter.PlaylistExport{
		Playlist: *playlist,
		Items:    make([]formatter.ExportItem, 0, len(playlist.Entries)),
	}
	for _, entry := range playlist.Entries {
		item := formatter.ExportItem{Position: entry.Position}
		if v, ok := byID[entry.VideoID]; ok {
			item.Video = *v
		} else {
			item.Video = models.Video{VideoID: entry.VideoID, Link: shared.VideoURL(entry.VideoID)}
		}
		export.Items = append(export.Items, item)
	}
	return export, nil
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// Workers write each playlist in opts.Format, failures are recorded per playlist, and a manifest
// summarizing the run is written to the output directory.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("ytq_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan formatter.PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, playlistID := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.Export(ctx, playlistID)
			if err != nil {
				jobs <- PlaylistExportJob{PlaylistID: playlistID, Err: err}
				continue
			}

			sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.Title))
			jobs <- PlaylistExportJob{PlaylistID: playlistID, Export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- formatter.PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if job.Err != nil {
			results <- formatter.PlaylistExportResult{
				PlaylistID:   job.PlaylistID,
				PlaylistName: fmt.Sprintf("Unknown (%s)", job.PlaylistID),
				Error:        fmt.Errorf("failed to load playlist: %w", job.Err),
			}
			continue
		}
		results <- exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes a single playlist in the requested format.
func exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) formatter.PlaylistExportResult {
	result := formatter.PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Export.Playlist.Title,
		Files:        []string{},
	}

	switch opts.Format {
	case formatter.FormatCSV:
		base := filepath.Join(opts.OutputDir, j.PlaylistID)
		csvRes, err := formatter.WriteCSVExport(j.Export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.VideosFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown, "markdown":
		dir := filepath.Join(opts.OutputDir, j.PlaylistID)
		var cover string
		if opts.Covers {
			cover = j.Export.Cover()
		}
		mdRes, err := formatter.WriteMarkdownExport(j.Export, dir, cover)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case formatter.FormatText:
		path, err := formatter.WriteTextExport(j.Export, filepath.Join(opts.OutputDir, j.PlaylistID+"_videos.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(j.Export, filepath.Join(opts.OutputDir, j.PlaylistID+".json"))
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
