package formatter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	th "github.com/desertthunder/ytq/internal/testing"
)

func sampleExport() *PlaylistExport {
	published := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	seen := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

	return &PlaylistExport{
		Playlist: models.Playlist{
			PlaylistID:  "PLtest",
			Title:       "Test Playlist",
			Description: "A test playlist",
			VideoCount:  2,
			Entries: []models.PlaylistEntry{
				{VideoID: "vid1", Position: "0"},
				{VideoID: "vid2", Position: "1"},
			},
		},
		Items: []ExportItem{
			{
				Position: "0",
				Video: models.Video{
					VideoID:       "vid1",
					Title:         "First Video",
					Link:          "https://www.youtube.com/watch?v=vid1",
					Thumbnail:     "https://i.ytimg.com/vi/vid1/hqdefault.jpg",
					PublishedDate: published,
					SeenAt:        &seen,
				},
			},
			{
				Position: "1",
				Video: models.Video{
					VideoID: "vid2",
					Link:    "https://www.youtube.com/watch?v=vid2",
				},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	export := sampleExport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Position,Video ID,Title,Link,Published,Seen At" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "0,vid1,First Video,https://www.youtube.com/watch?v=vid1,2024-05-04,2024-06-01T08:30:00Z" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if lines[2] != "1,vid2,,https://www.youtube.com/watch?v=vid2,," {
			t.Errorf("unexpected second row: %s", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(export, "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"![Cover](cover.jpg)",
			"**Description**: A test playlist",
			"**Videos**: 2",
			"**Watched**: 1/2",
			"- [x] [First Video](https://www.youtube.com/watch?v=vid1) (2024-05-04)",
			"- [ ] [vid2](https://www.youtube.com/watch?v=vid2)\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdownWithoutCover", func(t *testing.T) {
		data, _ := ExportToMarkdown(export, "")
		if strings.Contains(string(data), "![Cover]") {
			t.Error("Markdown should not reference a cover")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Playlist: Test Playlist",
			"Description: A test playlist",
			"Videos: 2 (1 watched)",
			"1. First Video - https://www.youtube.com/watch?v=vid1 [watched]",
			"2. vid2 - https://www.youtube.com/watch?v=vid2\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(export)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		videos, ok := decoded["videos"].([]any)
		if !ok || len(videos) != 2 {
			t.Fatalf("expected 2 videos, got %v", decoded["videos"])
		}
		first := videos[0].(map[string]any)
		if first["position"] != "0" || first["video_id"] != "vid1" {
			t.Errorf("unexpected first video %v", first)
		}
	})

	t.Run("Export", func(t *testing.T) {
		tests := []struct {
			format string
			want   string
			err    bool
		}{
			{FormatCSV, "Position,Video ID", false},
			{FormatMarkdown, "# Test Playlist", false},
			{"markdown", "# Test Playlist", false},
			{FormatText, "Playlist: Test Playlist", false},
			{FormatJSON, `"playlist_id": "PLtest"`, false},
			{"", `"playlist_id": "PLtest"`, false},
			{"xml", "", true},
		}
		for _, tt := range tests {
			data, err := Export(export, tt.format)
			if tt.err {
				if err == nil {
					t.Errorf("Export(%q) expected error", tt.format)
				}
				continue
			}
			if err != nil {
				t.Errorf("Export(%q) failed: %v", tt.format, err)
				continue
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("Export(%q) missing %q", tt.format, tt.want)
			}
		}
	})

	t.Run("Cover", func(t *testing.T) {
		if got := export.Cover(); got != "https://i.ytimg.com/vi/vid1/hqdefault.jpg" {
			t.Errorf("Cover() = %q", got)
		}
		if got := (&PlaylistExport{}).Cover(); got != "" {
			t.Errorf("empty export Cover() = %q", got)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer srv.Close()

		data, err := DownloadImage(srv.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("BadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := DownloadImage(srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	export := sampleExport()

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(export, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.VideosFile != "PLtest_videos.csv" {
				t.Errorf("Expected videos file 'PLtest_videos.csv', got '%s'", result.VideosFile)
			}
			if result.MetadataFile != "PLtest_metadata.json" {
				t.Errorf("Expected metadata file 'PLtest_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.VideosFile)
			th.AssertFileExists(t, result.MetadataFile)

			metadataContent := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(metadataContent, "PLtest") || !strings.Contains(metadataContent, "Test Playlist") {
				t.Errorf("Metadata JSON missing expected fields")
			}
			if strings.Contains(metadataContent, "vid1") {
				t.Errorf("Metadata JSON should not include entries")
			}
			if len(export.Playlist.Entries) != 2 {
				t.Errorf("ToMetadataJSON must not modify the export")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")

			result, err := WriteCSVExport(export, base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.VideosFile != base+"_videos.csv" {
				t.Errorf("unexpected videos file %q", result.VideosFile)
			}
			th.AssertFileExists(t, result.VideosFile)
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpegdata"))
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "md")
			result, err := WriteMarkdownExport(export, dir, srv.URL)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "![Cover](cover.jpg)") {
				t.Error("README should reference the cover")
			}
		})

		t.Run("CoverDownloadFails", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "md")
			result, err := WriteMarkdownExport(export, dir, srv.URL)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("expected README only, got %+v", result)
			}
		})

		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(export, "", "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.Directory != "PLtest" {
				t.Errorf("expected directory PLtest, got %q", result.Directory)
			}
			th.AssertFileExists(t, filepath.Join("PLtest", "README.md"))
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteTextExport(export, "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if path != "PLtest_videos.txt" {
			t.Errorf("unexpected path %q", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		got, err := WriteJSONExport(export, path)
		if err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		if got != path {
			t.Errorf("unexpected path %q", got)
		}
		if !strings.Contains(th.MustReadFile(t, path), `"title": "First Video"`) {
			t.Error("JSON export missing video title")
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		result := &BulkExportResult{
			TotalPlaylists:    2,
			SuccessfulExports: 1,
			FailedExports:     1,
			OutputDirectory:   "exports",
			Results: []PlaylistExportResult{
				{PlaylistID: "PL1", PlaylistName: "One", Success: true, Files: []string{"PL1.json"}},
				{PlaylistID: "PL2", PlaylistName: "Two", Error: errString("store closed")},
			},
		}

		if err := WriteBulkExportManifest(result, "json", path); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		for _, want := range []string{
			`"format": "json"`,
			`"total_playlists": 2`,
			`"successful_exports": 1`,
			`"failed_exports": 1`,
			`"status": "success"`,
			`"status": "failed"`,
			`"error": "store closed"`,
		} {
			if !strings.Contains(content, want) {
				t.Errorf("manifest missing %s", want)
			}
		}
	})
}

type errString string

func (e errString) Error() string { return string(e) }
