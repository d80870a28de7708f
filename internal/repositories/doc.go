// Package repositories implements SQLite persistence for channels, playlists and videos.
//
// Each entity lives in its own table keyed by a surrogate uuid with a UNIQUE natural key column.
// Membership between entities is stored in junction tables that reference natural keys only,
// so deleting one side never cascades and may leave dangling ids behind.
//
// Key Implementations:
//   - [ChannelRepository] : channels plus their channel_videos and channel_playlists sets
//   - [PlaylistRepository] : playlists plus their ordered playlist_videos entries
//   - [VideoRepository] : videos, watch state, filtered listing and random sampling
//   - [Store] : backend-agnostic get-or-create and lookup helpers over any set of repositories
//
// Junction rows carry a per-owner sequence number that records insertion order.
// [NextSequence] computes it inside the transaction that inserts the rows.
package repositories
