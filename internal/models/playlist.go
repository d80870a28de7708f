package models

import (
	"strings"
	"time"
)

// uploadsPrefix marks the synthetic uploads playlist YouTube creates for every channel.
const uploadsPrefix = "Uploads from"

// PlaylistEntry is a video's membership in a playlist.
//
// Position is kept as the string YouTube reported when the video was first added.
type PlaylistEntry struct {
	VideoID   string    `json:"video_id" bson:"video_id"`
	Position  string    `json:"position" bson:"position"`
	AddedDate time.Time `json:"added_date" bson:"added_date"`
}

// Playlist is a YouTube playlist and its append-only membership list.
type Playlist struct {
	ID            string          `json:"-" bson:"_id,omitempty"`
	PlaylistID    string          `json:"playlist_id" bson:"playlist_id"`
	Title         string          `json:"title" bson:"title"`
	Description   string          `json:"description" bson:"description"`
	VideoCount    int             `json:"video_count" bson:"video_count"`
	PublishedDate time.Time       `json:"published_date" bson:"published_date"`
	Entries       []PlaylistEntry `json:"entries" bson:"entries"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

// AddVideo appends entry unless the playlist already contains its video.
// It reports whether the entry was added.
func (p *Playlist) AddVideo(entry PlaylistEntry) bool {
	if p.HasVideo(entry.VideoID) {
		return false
	}
	p.Entries = append(p.Entries, entry)
	return true
}

// HasVideo reports whether videoID is a member of the playlist.
func (p *Playlist) HasVideo(videoID string) bool {
	for _, e := range p.Entries {
		if e.VideoID == videoID {
			return true
		}
	}
	return false
}

// VideoIDs returns member video ids in insertion order.
func (p *Playlist) VideoIDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.VideoID
	}
	return ids
}

// IsUploads reports whether the playlist is a channel's synthetic uploads list.
func (p *Playlist) IsUploads() bool {
	return strings.HasPrefix(p.Title, uploadsPrefix)
}

func (p *Playlist) Touch(now time.Time) {
	stamp(&p.CreatedAt, &p.UpdatedAt, now.UTC())
}

// Merge copies every provided mutable field of other onto p. Entries are not merged.
func (p *Playlist) Merge(other *Playlist) {
	if other.Title != "" {
		p.Title = other.Title
	}
	if other.Description != "" {
		p.Description = other.Description
	}
	if other.VideoCount != 0 {
		p.VideoCount = other.VideoCount
	}
	if !other.PublishedDate.IsZero() {
		p.PublishedDate = other.PublishedDate
	}
}
