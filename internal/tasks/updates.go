package tasks

import (
	"fmt"

	"github.com/acervomestre/acervo/internal/models"
)

// Phase names the stage of a bulk export a [ProgressUpdate] belongs to.
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchPlaylist
	ExportPlaylist
	WriteManifest
)

var phaseNames = [...]string{
	FetchPlaylists: "fetch_playlists",
	FetchPlaylist:  "fetch_playlist",
	ExportPlaylist: "export_playlist",
	WriteManifest:  "write_manifest",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return ""
	}
	return phaseNames[p]
}

// ProgressUpdate is one event of a running bulk export. Step counts from 1 within Total.
//
// Data carries the fetched [*models.Playlist] in FetchPlaylist and the manifest path in
// WriteManifest; it is nil otherwise.
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
	Data    any
}

func progressf(phase Phase, step, total int, format string, args ...any) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: fmt.Sprintf(format, args...)}
}

func fetchingPlaylistsUpdate(total int) ProgressUpdate {
	return progressf(FetchPlaylists, 0, total, "Buscando %d playlists...", total)
}

func fetchedPlaylistUpdate(step, total int, p *models.Playlist) ProgressUpdate {
	u := progressf(FetchPlaylist, step, total, "Exportando %s (%d recursos)...", p.Title, p.Count())
	u.Data = p
	return u
}

func exportCompletedUpdate(step, total int, title string, files int) ProgressUpdate {
	return progressf(ExportPlaylist, step, total, "✓ %s (%d arquivos)", title, files)
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return progressf(ExportPlaylist, step, total, "✗ %s: %v", title, err)
}

func manifestUpdate(path string) ProgressUpdate {
	u := progressf(WriteManifest, 1, 1, "Manifesto gravado em %s", path)
	u.Data = path
	return u
}
