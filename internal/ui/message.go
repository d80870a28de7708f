package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytq/internal/formatter"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsLoaded MsgKind = iota
	MsgVideosLoaded
	MsgVideoUpdated
	MsgVideoPicked
	MsgProgressUpdate
	MsgSyncComplete
)

type playlistsLoaded struct {
	items []playlistItem
	err   error
}

type videosLoaded struct {
	export *formatter.PlaylistExport
	err    error
}

type videoResult struct {
	video *models.Video
	err   error
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(items []playlistItem, err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlistsLoaded{items, err}}
}

// videosLoadedMsg is the constructor for [MsgVideosLoaded]
func videosLoadedMsg(export *formatter.PlaylistExport, err error) Msg {
	return Msg{kind: MsgVideosLoaded, data: videosLoaded{export, err}}
}

// videoUpdatedMsg is the constructor for [MsgVideoUpdated]
func videoUpdatedMsg(video *models.Video, err error) Msg {
	return Msg{kind: MsgVideoUpdated, data: videoResult{video, err}}
}

// videoPickedMsg is the constructor for [MsgVideoPicked]
func videoPickedMsg(video *models.Video, err error) Msg {
	return Msg{kind: MsgVideoPicked, data: videoResult{video, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(err error) Msg {
	return Msg{kind: MsgSyncComplete, data: err}
}
