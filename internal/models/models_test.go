package models

import (
	"testing"
	"time"
)

func TestPlaylistAddVideo(t *testing.T) {
	p := &Playlist{PlaylistID: "PL1"}

	if !p.AddVideo(PlaylistEntry{VideoID: "a", Position: "0"}) {
		t.Fatal("first add should succeed")
	}
	if p.AddVideo(PlaylistEntry{VideoID: "a", Position: "5"}) {
		t.Error("re-adding a member should be a no-op")
	}
	p.AddVideo(PlaylistEntry{VideoID: "b", Position: "1"})

	if len(p.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(p.Entries))
	}
	if p.Entries[0].Position != "0" {
		t.Errorf("first insert should win position, got %s", p.Entries[0].Position)
	}
	if ids := p.VideoIDs(); ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected order %v", ids)
	}
}

func TestPlaylistIsUploads(t *testing.T) {
	tc := []struct {
		title string
		want  bool
	}{
		{"Uploads from Hasheur", true},
		{"Favorites", false},
		{"My Uploads from last year", false},
	}
	for _, tt := range tc {
		if got := (&Playlist{Title: tt.title}).IsUploads(); got != tt.want {
			t.Errorf("IsUploads(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestChannelSets(t *testing.T) {
	c := &Channel{ChannelID: "UC1"}

	c.AddVideo("v1")
	c.AddVideo("v1")
	c.AddPlaylist("p1")
	c.AddPlaylist("p1")

	if len(c.VideoIDs) != 1 || len(c.PlaylistIDs) != 1 {
		t.Errorf("sets should be idempotent, got videos=%v playlists=%v", c.VideoIDs, c.PlaylistIDs)
	}
}

func TestVideoMerge(t *testing.T) {
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	v := &Video{VideoID: "v1", Title: "old", Description: "desc", SeenAt: &seen, Transcript: "hello", PublishedDate: published}

	v.Merge(&Video{VideoID: "v1", Title: "new", PublishedDate: time.Now()})

	if v.Title != "new" {
		t.Errorf("expected title to be overwritten, got %s", v.Title)
	}
	if v.Description != "desc" {
		t.Errorf("empty description should not overwrite, got %q", v.Description)
	}
	if v.SeenAt == nil || !v.SeenAt.Equal(seen) {
		t.Error("merge must not touch seen_at")
	}
	if v.Transcript != "hello" || !v.PublishedDate.Equal(published) {
		t.Error("merge must not touch transcript or published date")
	}
}

func TestVideoWatchState(t *testing.T) {
	v := &Video{VideoID: "v1"}
	if v.Seen() {
		t.Fatal("new video should be unseen")
	}

	v.MarkSeen(time.Now())
	if !v.Seen() {
		t.Error("expected video to be seen")
	}

	v.MarkUnseen()
	if v.Seen() {
		t.Error("expected video to be unseen")
	}
}

func TestVideoQueryScope(t *testing.T) {
	q := VideoQuery{PlaylistID: "PL1", ChannelID: "UC1"}.Scope()
	if q.ChannelID != "" {
		t.Error("playlist filter should take precedence over channel filter")
	}

	q = VideoQuery{ChannelID: "UC1"}.Scope()
	if q.ChannelID != "UC1" {
		t.Error("channel filter should be kept without a playlist filter")
	}
}

func TestTouch(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Channel{CreatedAt: created, UpdatedAt: created}
	now := time.Now()

	c.Touch(now)

	if !c.CreatedAt.Equal(created) {
		t.Error("touch must keep an existing created_at")
	}
	if !c.UpdatedAt.Equal(now.UTC()) {
		t.Error("touch must override updated_at")
	}
}
