// Package services defines the [Provider] interface for video platforms and implements it on the YouTube Data API v3.
//
// # Provider Interface
//
// A provider resolves channels by handle or id and lists playlists and playlist items.
// Results are plain value types ([ChannelInfo], [PlaylistInfo], [PlaylistItem]) that the
// synchronizer in internal/tasks normalizes into stored entities.
//
// # YouTube Implementation
//
// [YouTubeService] authenticates with an API key. List calls request 50 results per page and follow
// nextPageToken until it is empty. Items titled "Deleted video" or "Private video", and items without
// a resource video id, are dropped.
//
// Calls share a [rate.Limiter] and transient failures are retried with exponential backoff up to the
// configured number of retries. Channel lookups are cached in memory, so resolving the uploads playlist
// right after a channel lookup does not cost another request.
//
// # Transcripts
//
// [TranscriptService] downloads captions from the timedtext endpoint, trying each configured language in turn.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotFound] : the channel or playlist does not exist
//   - [shared.ErrUpstream] : the API answered with a non-success status or could not be reached
//   - [shared.ErrMissingConfig] : no API key was configured
package services
