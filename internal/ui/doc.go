// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses the local library in two views:
//  1. [PlaylistListView] : stored playlists with their watch progression
//  2. [VideoListView] : the videos of one playlist in playlist order
//
// Selecting a video opens it in the browser and marks it watched. A playlist can be re-synced
// from its video view, in which case [SyncView] shows progress updates relayed from the
// synchronizer over a channel, the same way the CLI logs them.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, w, r, s, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
