package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/ytq/internal/formatter"
	th "github.com/desertthunder/ytq/internal/testing"
)

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	store := th.NewSQLiteStore(t)
	seed(t, store)
	addPlaylist(t, store, "PLgap", "Gap", "c", "gone", "a")

	export, err := NewExporter(store).Export(ctx, "PLgap")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if export.Playlist.Title != "Gap" {
		t.Errorf("unexpected title %q", export.Playlist.Title)
	}
	if len(export.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(export.Items))
	}

	order := []string{export.Items[0].VideoID, export.Items[1].VideoID, export.Items[2].VideoID}
	if strings.Join(order, ",") != "c,gone,a" {
		t.Errorf("expected playlist order, got %v", order)
	}
	if export.Items[0].Title != "C" {
		t.Errorf("expected stored video fields, got %+v", export.Items[0])
	}
	if export.Items[1].Link != "https://www.youtube.com/watch?v=gone" {
		t.Errorf("dangling entry should carry a link, got %q", export.Items[1].Link)
	}

	if _, err := NewExporter(store).Export(ctx, "PLnope"); err == nil {
		t.Error("expected error for unknown playlist")
	}
}

func TestExporter_BulkExport(t *testing.T) {
	ctx := context.Background()

	formats := []struct {
		format string
		files  []string
	}{
		{formatter.FormatCSV, []string{"PLmix_videos.csv", "PLmix_metadata.json"}},
		{formatter.FormatMarkdown, []string{filepath.Join("PLmix", "README.md")}},
		{formatter.FormatText, []string{"PLmix_videos.txt"}},
		{formatter.FormatJSON, []string{"PLmix.json"}},
	}

	for _, tt := range formats {
		t.Run(tt.format, func(t *testing.T) {
			store := th.NewSQLiteStore(t)
			seed(t, store)
			dir := t.TempDir()

			result, err := NewExporter(store).BulkExport(ctx, nil, []string{"PLmix"}, BulkExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 100,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}
			if result.SuccessfulExports != 1 || result.FailedExports != 0 {
				t.Fatalf("unexpected counts: %+v", result)
			}
			for _, f := range tt.files {
				th.AssertFileExists(t, filepath.Join(dir, f))
			}
			th.AssertFileExists(t, result.ManifestPath)
		})
	}

	t.Run("PartialFailures", func(t *testing.T) {
		store := th.NewSQLiteStore(t)
		seed(t, store)
		addPlaylist(t, store, "PLother", "Other", "a")
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 20)

		result, err := NewExporter(store).BulkExport(ctx, progress, []string{"PLmix", "PLmissing", "PLother"}, BulkExportOpts{
			Format:     formatter.FormatJSON,
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  100,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		close(progress)

		if result.TotalPlaylists != 3 || result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("unexpected counts: %+v", result)
		}

		var manifest struct {
			Format    string `json:"format"`
			Playlists []struct {
				PlaylistID string `json:"playlist_id"`
				Status     string `json:"status"`
				Error      string `json:"error"`
			} `json:"playlists"`
		}
		if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.Format != "json" || len(manifest.Playlists) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		for _, p := range manifest.Playlists {
			if p.PlaylistID == "PLmissing" && (p.Status != "failed" || p.Error == "") {
				t.Errorf("expected failure entry for PLmissing, got %+v", p)
			}
		}

		updates := 0
		for u := range progress {
			if u.Phase != ExportPlaylist {
				t.Errorf("unexpected phase %s", u.Phase)
			}
			updates++
		}
		if updates == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("DefaultOutputDirectory", func(t *testing.T) {
		store := th.NewSQLiteStore(t)
		seed(t, store)
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		result, err := NewExporter(store).BulkExport(ctx, nil, []string{"PLmix"}, BulkExportOpts{RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if !strings.HasPrefix(result.OutputDirectory, "ytq_export_") {
			t.Errorf("unexpected output directory %q", result.OutputDirectory)
		}
	})

	t.Run("InvalidOutputDirectory", func(t *testing.T) {
		store := th.NewSQLiteStore(t)
		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewExporter(store).BulkExport(ctx, nil, []string{"PLmix"}, BulkExportOpts{OutputDir: filepath.Join(blocker, "out")}); err == nil {
			t.Error("expected error when the output directory cannot be created")
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		store := th.NewSQLiteStore(t)
		seed(t, store)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := NewExporter(store).BulkExport(canceled, nil, []string{"PLmix"}, BulkExportOpts{OutputDir: t.TempDir()})
		if err == nil {
			t.Fatal("expected context error")
		}
		if result == nil || result.SuccessfulExports != 0 {
			t.Errorf("nothing should be exported, got %+v", result)
		}
	})

	t.Run("CanceledMidRun", func(t *testing.T) {
		store := th.NewSQLiteStore(t)
		seed(t, store)
		running, cancel := context.WithCancel(ctx)
		defer cancel()

		ids := make([]string, 0, 60)
		for i := range 30 {
			ids = append(ids, "PLmix", fmt.Sprintf("PLmissing%d", i))
		}
		progress := make(chan ProgressUpdate, len(ids))
		go func() {
			<-progress
			cancel()
		}()

		result, err := NewExporter(store).BulkExport(running, progress, ids, BulkExportOpts{
			Format:     formatter.FormatJSON,
			OutputDir:  t.TempDir(),
			NumWorkers: 1,
			RateLimit:  1000,
		})
		if result == nil {
			t.Fatalf("expected a partial result, got error %v", err)
		}
		if result.SuccessfulExports+result.FailedExports > len(ids) {
			t.Errorf("unexpected counts: %+v", result)
		}
	})
}

func TestExporter_exportWorker(t *testing.T) {
	jobs := make(chan PlaylistExportJob, 1)
	results := make(chan formatter.PlaylistExportResult, 1)
	jobs <- PlaylistExportJob{PlaylistID: "PLgone", Err: errors.New("no such playlist")}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(1)
	NewExporter(nil).exportWorker(context.Background(), &wg, jobs, results, BulkExportOpts{OutputDir: t.TempDir()})
	wg.Wait()
	close(results)

	res, ok := <-results
	if !ok {
		t.Fatal("expected a result for the failed load")
	}
	if res.Success || res.Error == nil || !strings.Contains(res.Error.Error(), "no such playlist") {
		t.Errorf("unexpected result %+v", res)
	}
	if res.PlaylistName != "Unknown (PLgone)" {
		t.Errorf("unexpected playlist name %q", res.PlaylistName)
	}
}
