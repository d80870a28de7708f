package models

import (
	"slices"
	"time"
)

// Channel is a YouTube channel and the ids of the playlists and videos synced from it.
type Channel struct {
	ID          string     `json:"-" bson:"_id,omitempty"`
	ChannelID   string     `json:"channel_id" bson:"channel_id"`
	Name        string     `json:"name" bson:"name"`
	Handle      string     `json:"handle" bson:"handle"`
	LastSynced  *time.Time `json:"last_synced" bson:"last_synced"`
	PlaylistIDs []string   `json:"playlist_ids" bson:"playlist_ids"`
	VideoIDs    []string   `json:"video_ids" bson:"video_ids"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// AddVideo adds videoID to the channel's video set and reports whether it was new.
func (c *Channel) AddVideo(videoID string) bool {
	if slices.Contains(c.VideoIDs, videoID) {
		return false
	}
	c.VideoIDs = append(c.VideoIDs, videoID)
	return true
}

// AddPlaylist adds playlistID to the channel's playlist set and reports whether it was new.
func (c *Channel) AddPlaylist(playlistID string) bool {
	if slices.Contains(c.PlaylistIDs, playlistID) {
		return false
	}
	c.PlaylistIDs = append(c.PlaylistIDs, playlistID)
	return true
}

// MarkSynced records now as the last successful sync.
func (c *Channel) MarkSynced(now time.Time) {
	t := now.UTC()
	c.LastSynced = &t
}

func (c *Channel) Touch(now time.Time) {
	stamp(&c.CreatedAt, &c.UpdatedAt, now.UTC())
}

// Merge copies the provided name and handle of other onto c.
func (c *Channel) Merge(other *Channel) {
	if other.Name != "" {
		c.Name = other.Name
	}
	if other.Handle != "" {
		c.Handle = other.Handle
	}
}
