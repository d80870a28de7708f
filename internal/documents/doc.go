// Package documents implements the curation store on MongoDB.
//
// Each entity is one document in its own collection (channels, playlists, videos) with a unique
// index on the natural key. Playlist entries are embedded in the playlist document and channel
// sets are embedded as arrays of ids, so membership never requires a join.
//
// The repositories satisfy the interfaces in internal/models and are wrapped into a
// [repositories.Store] by [NewStore]. Random selection uses the native $sample stage.
package documents
