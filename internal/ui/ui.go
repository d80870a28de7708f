package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytq/internal/formatter"
	"github.com/desertthunder/ytq/internal/models"
	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	SyncView
)

// Options holds the collaborators of a [Model].
//
// Syncer may be nil, in which case syncing is disabled.
type Options struct {
	Store       *repositories.Store
	Selector    *tasks.Selector
	Syncer      *tasks.Synchronizer
	OpenBrowser func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        *repositories.Store
	reporter     *tasks.Reporter
	exporter     *tasks.Exporter
	selector     *tasks.Selector
	syncer       *tasks.Synchronizer
	openBrowser  func(string) error
	width        int
	height       int
	ready        bool
	playlistList list.Model
	videoList    list.Model
	selected     *formatter.PlaylistExport
	progressChan chan tasks.ProgressUpdate
	syncDone     chan error
	progress     tasks.ProgressUpdate
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		store:        opts.Store,
		reporter:     tasks.NewReporter(opts.Store),
		exporter:     tasks.NewExporter(opts.Store),
		selector:     opts.Selector,
		syncer:       opts.Syncer,
		openBrowser:  opts.OpenBrowser,
		playlistList: newList("Playlists"),
		videoList:    newList("Videos"),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// Init loads the stored playlists.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// View returns the current view.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := max(msg.Width-4, 0), max(msg.Height-8, 0)
		m.playlistList.SetSize(w, h)
		m.videoList.SetSize(w, h)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsLoaded:
		data := msg.data.(playlistsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.items))
		for i, item := range data.items {
			items[i] = item
		}
		index := m.playlistList.Index()
		cmd := m.playlistList.SetItems(items)
		if m.ready && index < len(items) {
			m.playlistList.Select(index)
		}
		m.ready = true
		return m, cmd

	case MsgVideosLoaded:
		data := msg.data.(videosLoaded)
		if data.err != nil {
			m.status = data.err.Error()
			return m, nil
		}
		m.selected = data.export
		items := make([]list.Item, len(data.export.Items))
		for i, item := range data.export.Items {
			items[i] = videoItem{item: item}
		}
		m.videoList.ResetFilter()
		m.videoList.Title = data.export.Playlist.Title
		cmd := m.videoList.SetItems(items)
		m.view = VideoListView
		return m, cmd

	case MsgVideoUpdated:
		data := msg.data.(videoResult)
		if data.err != nil {
			m.status = data.err.Error()
			return m, nil
		}
		if data.video.Seen() {
			m.status = fmt.Sprintf("watched %s", data.video.Title)
		} else {
			m.status = fmt.Sprintf("unwatched %s", data.video.Title)
		}
		return m, m.applyVideo(data.video)

	case MsgVideoPicked:
		data := msg.data.(videoResult)
		if data.err != nil {
			if errors.Is(data.err, shared.ErrNoMatch) {
				m.status = "no unseen videos left in this playlist"
			} else {
				m.status = data.err.Error()
			}
			return m, nil
		}
		m.videoList.ResetFilter()
		for i, item := range m.videoList.Items() {
			if vi, ok := item.(videoItem); ok && vi.item.VideoID == data.video.VideoID {
				m.videoList.Select(i)
				break
			}
		}
		m.status = fmt.Sprintf("picked %s", data.video.Title)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		m.progressChan = nil
		m.syncDone = nil
		m.view = VideoListView
		if err, _ := msg.data.(error); err != nil {
			m.status = fmt.Sprintf("sync failed: %v", err)
			return m, nil
		}
		m.status = "playlist synced"
		return m, m.loadVideos(m.selected.Playlist.PlaylistID)
	}
	return m, nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.status = ""
			return m, m.loadVideos(pl.playlist.PlaylistID)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.videoList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.status = ""
		return m, m.loadPlaylists()
	case key.Matches(msg, m.keys.enter):
		if vi, ok := m.videoList.SelectedItem().(videoItem); ok {
			return m, m.watch(vi.item.Video)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if vi, ok := m.videoList.SelectedItem().(videoItem); ok {
			return m, m.toggle(vi.item.Video)
		}
		return m, nil
	case key.Matches(msg, m.keys.random):
		return m, m.pick()
	case key.Matches(msg, m.keys.sync):
		if m.syncer == nil {
			m.status = "syncing needs a YouTube API key"
			return m, nil
		}
		m.view = SyncView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

// applyVideo replaces the stored copy of video in the open playlist.
func (m *Model) applyVideo(video *models.Video) tea.Cmd {
	var cmds []tea.Cmd
	for i, item := range m.videoList.Items() {
		vi, ok := item.(videoItem)
		if !ok || vi.item.VideoID != video.VideoID {
			continue
		}
		vi.item.Video = *video
		cmds = append(cmds, m.videoList.SetItem(i, vi))
		if m.selected != nil && i < len(m.selected.Items) {
			m.selected.Items[i].Video = *video
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.store.Playlists.List(m.ctx)
		if err != nil {
			return playlistsLoadedMsg(nil, err)
		}

		items := make([]playlistItem, 0, len(playlists))
		for _, p := range playlists {
			progression, err := m.reporter.PlaylistProgression(m.ctx, p)
			if err != nil {
				return playlistsLoadedMsg(nil, err)
			}
			items = append(items, playlistItem{playlist: p, progression: progression})
		}
		return playlistsLoadedMsg(items, nil)
	}
}

func (m *Model) loadVideos(playlistID string) tea.Cmd {
	return func() tea.Msg {
		export, err := m.exporter.Export(m.ctx, playlistID)
		return videosLoadedMsg(export, err)
	}
}

// watch opens the video in the browser, then marks it seen.
func (m *Model) watch(v models.Video) tea.Cmd {
	return func() tea.Msg {
		link := v.Link
		if link == "" {
			link = shared.VideoURL(v.VideoID)
		}
		if m.openBrowser != nil {
			if err := m.openBrowser(link); err != nil {
				return videoUpdatedMsg(nil, fmt.Errorf("could not open browser: %w", err))
			}
		}
		video, err := m.selector.MarkSeen(m.ctx, v.VideoID)
		return videoUpdatedMsg(video, err)
	}
}

func (m *Model) toggle(v models.Video) tea.Cmd {
	return func() tea.Msg {
		var (
			video *models.Video
			err   error
		)
		if v.Seen() {
			video, err = m.selector.MarkUnseen(m.ctx, v.VideoID)
		} else {
			video, err = m.selector.MarkSeen(m.ctx, v.VideoID)
		}
		return videoUpdatedMsg(video, err)
	}
}

func (m *Model) pick() tea.Cmd {
	if m.selected == nil {
		return nil
	}
	filters := tasks.Filters{UnseenOnly: true, PlaylistID: m.selected.Playlist.PlaylistID}
	return func() tea.Msg {
		video, err := m.selector.Pick(m.ctx, filters, tasks.Random)
		return videoPickedMsg(video, err)
	}
}

// startSync re-syncs the open playlist in the background, relaying its progress.
func (m *Model) startSync() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan error, 1)
	m.progressChan = progress
	m.syncDone = done

	playlistID := m.selected.Playlist.PlaylistID
	go func() {
		_, err := m.syncer.SyncPlaylist(m.ctx, playlistID, progress)
		done <- err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.syncDone
	return func() tea.Msg {
		if progress == nil {
			return syncCompleteMsg(nil)
		}

		update, ok := <-progress
		if !ok {
			return syncCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	return m.withStatus(m.playlistList.View(), helpKeys)
}

func (m *Model) renderVideoList() string {
	header := ""
	if m.selected != nil {
		total := len(m.selected.Items)
		watched := m.selected.Watched()
		pct := 0.0
		if total > 0 {
			pct = float64(watched) / float64(total) * 100
		}
		header = fmt.Sprintf("%s %d/%d watched\n\n", meter(pct, 20), watched, total)
	}

	watchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "watch"))
	helpKeys := []key.Binding{watchKey, m.keys.toggle, m.keys.random, m.keys.sync, m.keys.back, m.keys.quit}
	return header + m.withStatus(m.videoList.View(), helpKeys)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.SyncPlaylist:
		phase = "Fetching playlist items..."
	case tasks.SaveChannel:
		phase = "Linking playlist to its channel..."
	default:
		phase = "Contacting YouTube..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) withStatus(body string, helpKeys []key.Binding) string {
	out := body
	if m.status != "" {
		out = fmt.Sprintf("%s\n%s", out, styles.warn.Render(m.status))
	}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(helpKeys))
}
