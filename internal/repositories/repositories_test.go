package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestChannelRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save And Get", func(t *testing.T) {
		repo := NewChannelRepository(setupTestDB(t))
		channel := &models.Channel{ChannelID: "UC1", Name: "Hasheur", Handle: "Hasheur"}
		channel.AddVideo("v1")
		channel.AddVideo("v2")
		channel.AddPlaylist("PL1")

		if err := repo.Save(ctx, channel); err != nil {
			t.Fatalf("failed to save channel: %v", err)
		}
		if channel.ID == "" {
			t.Error("channel ID should be set after save")
		}

		retrieved, err := repo.Get(ctx, "UC1")
		if err != nil {
			t.Fatalf("failed to get channel: %v", err)
		}
		if retrieved.Name != "Hasheur" || retrieved.Handle != "Hasheur" {
			t.Errorf("unexpected channel %+v", retrieved)
		}
		if len(retrieved.VideoIDs) != 2 || retrieved.VideoIDs[0] != "v1" {
			t.Errorf("expected videos [v1 v2], got %v", retrieved.VideoIDs)
		}
		if len(retrieved.PlaylistIDs) != 1 {
			t.Errorf("expected 1 playlist, got %v", retrieved.PlaylistIDs)
		}
		if retrieved.LastSynced != nil {
			t.Error("last synced should be nil until a sync happens")
		}
	})

	t.Run("Save keeps identity", func(t *testing.T) {
		repo := NewChannelRepository(setupTestDB(t))
		first := &models.Channel{ChannelID: "UC1", Name: "Old"}
		if err := repo.Save(ctx, first); err != nil {
			t.Fatalf("failed to save channel: %v", err)
		}

		second := &models.Channel{ChannelID: "UC1", Name: "New", VideoIDs: []string{"v1", "v1"}}
		second.MarkSynced(time.Now())
		if err := repo.Save(ctx, second); err != nil {
			t.Fatalf("failed to re-save channel: %v", err)
		}

		if second.ID != first.ID {
			t.Errorf("expected id %s to be kept, got %s", first.ID, second.ID)
		}

		retrieved, err := repo.Get(ctx, "UC1")
		if err != nil {
			t.Fatalf("failed to get channel: %v", err)
		}
		if retrieved.Name != "New" {
			t.Errorf("expected name to be updated, got %s", retrieved.Name)
		}
		if len(retrieved.VideoIDs) != 1 {
			t.Errorf("video set should be deduplicated, got %v", retrieved.VideoIDs)
		}
		if retrieved.LastSynced == nil {
			t.Error("expected last synced to be stored")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewChannelRepository(setupTestDB(t))
		for _, c := range []*models.Channel{
			{ChannelID: "UC2", Name: "zeta"},
			{ChannelID: "UC1", Name: "Alpha"},
		} {
			if err := repo.Save(ctx, c); err != nil {
				t.Fatalf("failed to save channel: %v", err)
			}
		}

		channels, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list channels: %v", err)
		}
		if len(channels) != 2 || channels[0].Name != "Alpha" {
			t.Errorf("expected channels ordered by name, got %v", channels)
		}
	})

	t.Run("Delete does not cascade", func(t *testing.T) {
		db := setupTestDB(t)
		channels := NewChannelRepository(db)
		videos := NewVideoRepository(db)
		playlists := NewPlaylistRepository(db)

		if err := videos.Save(ctx, &models.Video{VideoID: "v1", ChannelID: "UC1"}); err != nil {
			t.Fatalf("failed to save video: %v", err)
		}
		if err := playlists.Save(ctx, &models.Playlist{PlaylistID: "PL1"}); err != nil {
			t.Fatalf("failed to save playlist: %v", err)
		}
		if err := channels.Save(ctx, &models.Channel{ChannelID: "UC1", VideoIDs: []string{"v1"}, PlaylistIDs: []string{"PL1"}}); err != nil {
			t.Fatalf("failed to save channel: %v", err)
		}

		if err := channels.Delete(ctx, "UC1"); err != nil {
			t.Fatalf("failed to delete channel: %v", err)
		}

		if _, err := channels.Get(ctx, "UC1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := videos.Get(ctx, "v1"); err != nil {
			t.Errorf("video should survive channel removal: %v", err)
		}
		if _, err := playlists.Get(ctx, "PL1"); err != nil {
			t.Errorf("playlist should survive channel removal: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM channel_videos").Scan(&count); err != nil {
			t.Fatalf("failed to count channel videos: %v", err)
		}
		if count != 0 {
			t.Errorf("channel membership rows should be removed, got %d", count)
		}
	})

	t.Run("Delete missing", func(t *testing.T) {
		repo := NewChannelRepository(setupTestDB(t))
		if err := repo.Delete(ctx, "nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Save requires id", func(t *testing.T) {
		repo := NewChannelRepository(setupTestDB(t))
		if err := repo.Save(ctx, &models.Channel{Name: "x"}); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Entries are append-only", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := &models.Playlist{PlaylistID: "PL1", Title: "Crypto", PublishedDate: date(2023, 5, 1)}
		playlist.AddVideo(models.PlaylistEntry{VideoID: "a", Position: "0", AddedDate: date(2023, 5, 2)})
		playlist.AddVideo(models.PlaylistEntry{VideoID: "b", Position: "1"})

		if err := repo.Save(ctx, playlist); err != nil {
			t.Fatalf("failed to save playlist: %v", err)
		}

		again := &models.Playlist{PlaylistID: "PL1", Title: "Crypto 2"}
		again.AddVideo(models.PlaylistEntry{VideoID: "a", Position: "9"})
		again.AddVideo(models.PlaylistEntry{VideoID: "c", Position: "2"})
		if err := repo.Save(ctx, again); err != nil {
			t.Fatalf("failed to re-save playlist: %v", err)
		}

		retrieved, err := repo.Get(ctx, "PL1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Title != "Crypto 2" {
			t.Errorf("expected title to be updated, got %s", retrieved.Title)
		}

		ids := retrieved.VideoIDs()
		if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
			t.Fatalf("expected entries [a b c], got %v", ids)
		}
		if retrieved.Entries[0].Position != "0" {
			t.Errorf("first insert should keep its position, got %s", retrieved.Entries[0].Position)
		}
		if !retrieved.Entries[0].AddedDate.Equal(date(2023, 5, 2)) {
			t.Errorf("unexpected added date %v", retrieved.Entries[0].AddedDate)
		}
		if !retrieved.Entries[1].AddedDate.IsZero() {
			t.Errorf("missing added date should stay zero, got %v", retrieved.Entries[1].AddedDate)
		}
	})

	t.Run("List and Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		for _, p := range []*models.Playlist{
			{PlaylistID: "old", PublishedDate: date(2020, 1, 1)},
			{PlaylistID: "new", PublishedDate: date(2024, 1, 1), Entries: []models.PlaylistEntry{{VideoID: "v"}}},
		} {
			if err := repo.Save(ctx, p); err != nil {
				t.Fatalf("failed to save playlist: %v", err)
			}
		}

		playlists, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 2 || playlists[0].PlaylistID != "new" {
			t.Fatalf("expected newest playlist first, got %v", playlists)
		}
		if len(playlists[0].Entries) != 1 {
			t.Errorf("list should load entries, got %v", playlists[0].Entries)
		}

		if err := repo.Delete(ctx, "new"); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if err := repo.Delete(ctx, "new"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestVideoRepository(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *sql.DB {
		t.Helper()
		db := setupTestDB(t)
		videos := NewVideoRepository(db)
		seen := date(2024, 3, 1)

		for _, v := range []*models.Video{
			{VideoID: "v1", Title: "one", PublishedDate: date(2021, 1, 1)},
			{VideoID: "v2", Title: "two", PublishedDate: date(2022, 1, 1), SeenAt: &seen},
			{VideoID: "v3", Title: "three", PublishedDate: date(2023, 1, 1), ChannelID: "UC2"},
			{VideoID: "v4", Title: "four"},
		} {
			if err := videos.Save(ctx, v); err != nil {
				t.Fatalf("failed to save video: %v", err)
			}
		}

		if err := NewPlaylistRepository(db).Save(ctx, &models.Playlist{
			PlaylistID: "PL1",
			Entries:    []models.PlaylistEntry{{VideoID: "v1"}, {VideoID: "v2"}},
		}); err != nil {
			t.Fatalf("failed to save playlist: %v", err)
		}
		if err := NewChannelRepository(db).Save(ctx, &models.Channel{ChannelID: "UC1", VideoIDs: []string{"v2", "v4"}}); err != nil {
			t.Fatalf("failed to save channel: %v", err)
		}
		return db
	}

	ids := func(videos []*models.Video) []string {
		out := make([]string, len(videos))
		for i, v := range videos {
			out[i] = v.VideoID
		}
		return out
	}

	t.Run("Get keeps watch state", func(t *testing.T) {
		repo := NewVideoRepository(seed(t))

		video, err := repo.Get(ctx, "v2")
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}
		if video.SeenAt == nil || !video.SeenAt.Equal(date(2024, 3, 1)) {
			t.Errorf("expected seen_at to round-trip, got %v", video.SeenAt)
		}
		if video.UpdatedAt.IsZero() || video.CreatedAt.IsZero() {
			t.Error("timestamps should be stamped on save")
		}

		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Find", func(t *testing.T) {
		repo := NewVideoRepository(seed(t))

		tc := []struct {
			name  string
			query models.VideoQuery
			want  []string
		}{
			{name: "all newest first", query: models.VideoQuery{}, want: []string{"v3", "v2", "v1", "v4"}},
			{name: "oldest first", query: models.VideoQuery{Order: models.OrderOldest}, want: []string{"v1", "v2", "v3", "v4"}},
			{name: "unseen only", query: models.VideoQuery{UnseenOnly: true, Order: models.OrderOldest}, want: []string{"v1", "v3", "v4"}},
			{name: "seen only", query: models.VideoQuery{SeenOnly: true, Order: models.OrderRecentlySeen}, want: []string{"v2"}},
			{name: "playlist scope", query: models.VideoQuery{PlaylistID: "PL1"}, want: []string{"v2", "v1"}},
			{name: "channel scope", query: models.VideoQuery{ChannelID: "UC1"}, want: []string{"v2", "v4"}},
			{name: "back-reference alone is outside channel scope", query: models.VideoQuery{ChannelID: "UC2"}, want: []string{}},
			{name: "playlist wins over channel", query: models.VideoQuery{PlaylistID: "PL1", ChannelID: "UC2"}, want: []string{"v2", "v1"}},
			{name: "limit", query: models.VideoQuery{Limit: 1}, want: []string{"v3"}},
			{name: "empty", query: models.VideoQuery{PlaylistID: "nope"}, want: []string{}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				videos, err := repo.Find(ctx, tt.query)
				if err != nil {
					t.Fatalf("Find() error = %v", err)
				}
				got := ids(videos)
				if len(got) != len(tt.want) {
					t.Fatalf("Find() = %v, want %v", got, tt.want)
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Fatalf("Find() = %v, want %v", got, tt.want)
					}
				}
			})
		}
	})

	t.Run("Sample", func(t *testing.T) {
		repo := NewVideoRepository(seed(t))

		for range 10 {
			video, err := repo.Sample(ctx, models.VideoQuery{PlaylistID: "PL1", UnseenOnly: true})
			if err != nil {
				t.Fatalf("Sample() error = %v", err)
			}
			if video.VideoID != "v1" {
				t.Fatalf("expected the only unseen playlist video, got %s", video.VideoID)
			}
		}

		if _, err := repo.Sample(ctx, models.VideoQuery{PlaylistID: "missing"}); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})

	t.Run("Delete leaves membership", func(t *testing.T) {
		db := seed(t)
		repo := NewVideoRepository(db)

		if err := repo.Delete(ctx, "v1"); err != nil {
			t.Fatalf("failed to delete video: %v", err)
		}

		playlist, err := NewPlaylistRepository(db).Get(ctx, "PL1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if !playlist.HasVideo("v1") {
			t.Error("dangling entry should be kept")
		}
	})
}

func TestNextSequence(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	seq, err := NextSequence(ctx, tx, "channel_videos", "channel_id", "UC1")
	if err != nil {
		t.Fatalf("NextSequence() error = %v", err)
	}
	if seq != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq)
	}

	if _, err := tx.Exec("INSERT INTO channel_videos (channel_id, video_id, seq) VALUES ('UC1', 'v', 7)"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}

	seq, err = NextSequence(ctx, tx, "channel_videos", "channel_id", "UC1")
	if err != nil {
		t.Fatalf("NextSequence() error = %v", err)
	}
	if seq != 8 {
		t.Errorf("expected sequence 8, got %d", seq)
	}
}
