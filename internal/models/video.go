package models

import (
	"time"
)

// Video is a single YouTube video and its watch state.
//
// SeenAt is nil while the video is unwatched.
type Video struct {
	ID            string     `json:"-" bson:"_id,omitempty"`
	VideoID       string     `json:"video_id" bson:"video_id"`
	ChannelID     string     `json:"channel_id,omitempty" bson:"channel_id,omitempty"`
	Title         string     `json:"title" bson:"title"`
	Description   string     `json:"description" bson:"description"`
	Link          string     `json:"link" bson:"link"`
	Thumbnail     string     `json:"thumbnail" bson:"thumbnail"`
	Transcript    string     `json:"-" bson:"transcript,omitempty"`
	PublishedDate time.Time  `json:"published_date" bson:"published_date"`
	SeenAt        *time.Time `json:"seen_at" bson:"seen_at"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// Seen reports whether the video has been watched.
func (v *Video) Seen() bool {
	return v.SeenAt != nil
}

// MarkSeen records now as the watch time.
func (v *Video) MarkSeen(now time.Time) {
	t := now.UTC()
	v.SeenAt = &t
}

// MarkUnseen clears the watch time.
func (v *Video) MarkUnseen() {
	v.SeenAt = nil
}

// Touch stamps the persistence timestamps, overriding whatever the caller set.
func (v *Video) Touch(now time.Time) {
	stamp(&v.CreatedAt, &v.UpdatedAt, now.UTC())
}

// Merge copies every provided (non-empty) mutable field of other onto v.
//
// Identity, watch state, cached transcript and publication date are left untouched.
func (v *Video) Merge(other *Video) {
	if other.Title != "" {
		v.Title = other.Title
	}
	if other.Description != "" {
		v.Description = other.Description
	}
	if other.Link != "" {
		v.Link = other.Link
	}
	if other.Thumbnail != "" {
		v.Thumbnail = other.Thumbnail
	}
	if other.ChannelID != "" {
		v.ChannelID = other.ChannelID
	}
}
