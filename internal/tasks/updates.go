package tasks

import (
	"fmt"

	"github.com/desertthunder/ytq/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveChannel Phase = iota
	SyncUploads
	SyncPlaylists
	SyncPlaylist
	SaveChannel
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case ResolveChannel:
		return "resolve_channel"
	case SyncUploads:
		return "sync_uploads"
	case SyncPlaylists:
		return "sync_playlists"
	case SyncPlaylist:
		return "sync_playlist"
	case SaveChannel:
		return "save_channel"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func resolveChannelUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveChannel,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving channel %s...", ref),
	}
}

func foundChannelUpdate(ch *models.Channel) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveChannel,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found channel: %s (%s)", ch.Name, ch.ChannelID),
		Data:    ch,
	}
}

func uploadsUpdate(step, total int, v *models.Video) ProgressUpdate {
	if v == nil {
		return ProgressUpdate{
			Phase:   SyncUploads,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("Syncing %d uploads...", total),
		}
	}
	return ProgressUpdate{
		Phase:   SyncUploads,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, v.Title),
	}
}

func playlistsUpdate(step, total int, p *models.Playlist) ProgressUpdate {
	if p == nil {
		return ProgressUpdate{
			Phase:   SyncPlaylists,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("Syncing %d playlists...", total),
		}
	}
	return ProgressUpdate{
		Phase:   SyncPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d videos)", step, total, p.Title, len(p.Entries)),
		Data:    p,
	}
}

func playlistSyncedUpdate(p *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist synced: %s (%d videos)", p.Title, len(p.Entries)),
		Data:    p,
	}
}

func saveChannelUpdate(ch *models.Channel) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveChannel,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved %s: %d videos, %d playlists", ch.Name, len(ch.VideoIDs), len(ch.PlaylistIDs)),
		Data:    ch,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
