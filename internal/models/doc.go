// Package models defines the curation entities and the persistence interfaces shared by every store backend.
//
// There are three entities, each identified by the natural key YouTube assigns to it:
//   - [Channel] : a YouTube channel owning sets of playlist and video ids
//   - [Playlist] : a playlist with an ordered, deduplicated list of [PlaylistEntry] values
//   - [Video] : a single video with its watch state ([Video.SeenAt])
//
// Entities never hold pointers to each other. Relations are expressed with natural key strings
// and resolved through the repositories, so a removed entity may leave dangling ids behind.
//
// [ChannelRepository], [PlaylistRepository] and [VideoRepository] are implemented by the SQLite
// backend (internal/repositories) and the MongoDB backend (internal/documents).
package models
