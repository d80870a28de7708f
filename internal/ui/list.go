package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytq/internal/formatter"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/tasks"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = videoItem{}
)

// playlistItem wraps [models.Playlist] and its [tasks.Progression] to implement [list.Item].
type playlistItem struct {
	playlist    *models.Playlist
	progression tasks.Progression
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string {
	p := i.progression
	desc := fmt.Sprintf("%d/%d watched • %.2f%%", p.WatchedCount, p.TotalVideos, p.CompletionPercentage)
	if i.playlist.IsUploads() {
		desc = fmt.Sprintf("%s • uploads", desc)
	}
	return desc
}

// videoItem wraps a [formatter.ExportItem] to implement [list.Item].
type videoItem struct {
	item formatter.ExportItem
}

func (i videoItem) FilterValue() string { return i.name() }
func (i videoItem) Title() string {
	if i.item.Seen() {
		return styles.ok.Render("✓ ") + i.name()
	}
	return i.name()
}

func (i videoItem) Description() string {
	desc := fmt.Sprintf("#%s", i.item.Position)
	if !i.item.PublishedDate.IsZero() {
		desc = fmt.Sprintf("%s • %s", desc, i.item.PublishedDate.Format("2006-01-02"))
	}
	if i.item.Title == "" {
		desc = fmt.Sprintf("%s • %s", desc, styles.warn.Render("not stored"))
	}
	return desc
}

func (i videoItem) name() string {
	if i.item.Title != "" {
		return i.item.Title
	}
	return i.item.VideoID
}
