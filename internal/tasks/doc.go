// Package tasks implements the curation workflows on top of the store and the video provider.
//
// # Core Operations
//
//  1. [Synchronizer.SyncChannel] : pull a channel into the store
//     - Resolves a handle or channel id through the provider
//     - Upserts the channel's uploads (Video.ChannelID set) and its playlists with their entries
//     - Stamps LastSynced; never touches watch state
//
//  2. [Synchronizer.SyncPlaylist] : pull a single playlist by id
//     - Links it to its owning channel when that channel is already stored
//
//  3. [Selector.Pick] : choose a video to watch
//     - Filters by playlist (preferred) or channel name, optionally unseen only
//     - Random via store-side sampling, or oldest unseen / newest first
//
//  4. [Reporter.AllPlaylistProgressions] : completion stats per playlist
//
//  5. [Exporter.BulkExport] : write stored playlists to disk with a worker pool
//
// # Progress Reporting
//
// Long-running operations accept a send-only [ProgressUpdate] channel. Updates use select with
// default so a slow or absent reader never blocks the operation.
package tasks
