package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/acervomestre/acervo/internal/formatter"
	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultExportWorkers = 5
	maxExportWorkers     = 10
	defaultExportRate    = 5.0
)

// Export formats accepted by [Exporter.BulkExport].
var ExportFormats = []string{"json", "csv", "markdown", "txt"}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: acervo_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, max 10)
	RateLimit  float64 // Playlist fetches per second (default: 5)
}

// PlaylistExportJob is one fetched playlist waiting to be written.
type PlaylistExportJob struct {
	PlaylistID int
	Playlist   *models.Playlist
}

// PlaylistExportResult is the outcome of one playlist.
type PlaylistExportResult struct {
	PlaylistID int
	Title      string
	Success    bool
	Files      []string
	Error      error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

// Exporter writes playlists fetched from a catalog to disk.
type Exporter struct {
	catalog services.Catalog
	now     func() time.Time
}

// NewExporter creates an exporter over catalog.
func NewExporter(catalog services.Catalog) *Exporter {
	return &Exporter{catalog: catalog, now: time.Now}
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// Fetches are paced by a rate limiter and handed to a pool of writers. Partial failures are
// recorded per playlist and summarized in manifest.json inside the output directory.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if !slices.Contains(ExportFormats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("acervo_export_%d", e.now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultExportWorkers
	}
	if opts.NumWorkers > maxExportWorkers {
		opts.NumWorkers = maxExportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultExportRate
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// Producer: fetch each playlist, rate limited. Fetch failures skip the writers.
	var producer sync.WaitGroup
	producer.Add(1)
	go func() {
		defer producer.Done()
		defer close(jobs)
		sendProgress(prog, fetchingPlaylistsUpdate(len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			p, err := e.catalog.GetPlaylist(ctx, id)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID: id,
					Title:      fmt.Sprintf("Desconhecida (%d)", id),
					Error:      fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			jobs <- PlaylistExportJob{PlaylistID: id, Playlist: p}
			sendProgress(prog, fetchedPlaylistUpdate(i+1, len(ids), p))
		}
	}()

	go func() {
		producer.Wait()
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Title, res.Error))
		}
	}

	slices.SortStableFunc(result.Results, func(a, b PlaylistExportResult) int {
		return slices.Index(ids, a.PlaylistID) - slices.Index(ids, b.PlaylistID)
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "manifest.json")
	if err := formatter.WriteManifest(e.manifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

func (e *Exporter) manifest(r *BulkExportResult, format string) formatter.Manifest {
	m := formatter.Manifest{
		ExportedAt: e.now().UTC(),
		Format:     format,
		Total:      r.TotalPlaylists,
		Successful: r.SuccessfulExports,
		Failed:     r.FailedExports,
		Playlists:  make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			PlaylistID: res.PlaylistID,
			Title:      res.Title,
			Success:    res.Success,
			Files:      res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- PlaylistExportResult{PlaylistID: job.PlaylistID, Title: job.Playlist.Title, Error: ctx.Err()}
			continue
		default:
		}

		results <- exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes one playlist in the requested format.
func exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID: j.PlaylistID,
		Title:      j.Playlist.Title,
		Files:      []string{},
	}
	base := strconv.Itoa(j.Playlist.ID)

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.Playlist, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}

	case "markdown":
		mdRes, err := formatter.WriteMarkdownExport(j.Playlist, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case "txt":
		path, err := formatter.WriteTextExport(j.Playlist, filepath.Join(opts.OutputDir, base+"_recursos.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		jsonPath := filepath.Join(opts.OutputDir, base+".json")
		data, err := shared.MarshalJSON(j.Playlist, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
	}

	result.Success = true
	return result
}
