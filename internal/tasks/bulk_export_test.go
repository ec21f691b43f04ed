package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/acervomestre/acervo/internal/formatter"
	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	th "github.com/acervomestre/acervo/internal/testing"
)

func exportCatalog(n int) (*fakeCatalog, []int) {
	f := newFakeCatalog()
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, i)
		p := th.PlaylistOf(i, fmt.Sprintf("Playlist %d", i), th.Upload(i*10+1, "Apostila"), th.Note(i*10+2, "Resumo", "# Resumo"))
		p.Description = fmt.Sprintf("Playlist de teste %d", i)
		f.playlists = append(f.playlists, p)
	}
	return f, ids
}

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		playlistCount  int
		validateResult func(t *testing.T, result *BulkExportResult, dir string)
	}{
		{
			name:          "single playlist json export",
			format:        "json",
			playlistCount: 1,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				th.AssertFileExists(t, filepath.Join(dir, "1.json"))
				var p models.Playlist
				if err := json.Unmarshal([]byte(th.MustReadFile(t, filepath.Join(dir, "1.json"))), &p); err != nil {
					t.Fatalf("invalid JSON export: %v", err)
				}
				if len(p.Items) != 2 {
					t.Errorf("expected 2 items, got %d", len(p.Items))
				}
			},
		},
		{
			name:          "multiple playlists csv export",
			format:        "csv",
			playlistCount: 3,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
				th.AssertFileExists(t, filepath.Join(dir, "2_recursos.csv"))
			},
		},
		{
			name:          "text export",
			format:        "txt",
			playlistCount: 2,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				th.AssertFileExists(t, filepath.Join(dir, "2_recursos.txt"))
			},
		},
		{
			name:          "markdown export",
			format:        "markdown",
			playlistCount: 1,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				th.AssertFileExists(t, filepath.Join(dir, "1", "README.md"))
				th.AssertFileExists(t, filepath.Join(dir, "1", "notas", "12.md"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			f, ids := exportCatalog(tt.playlistCount)

			result, err := NewExporter(f).BulkExport(context.Background(), nil, ids, BulkExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}
			if result.SuccessfulExports != tt.playlistCount || result.FailedExports != 0 {
				t.Errorf("expected %d successes, got %d/%d", tt.playlistCount, result.SuccessfulExports, result.FailedExports)
			}
			if len(result.Results) != tt.playlistCount {
				t.Errorf("expected %d results, got %d", tt.playlistCount, len(result.Results))
			}
			th.AssertFileExists(t, result.ManifestPath)
			tt.validateResult(t, result, dir)
		})
	}
}

func TestBulkExport_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	f, _ := exportCatalog(2)

	result, err := NewExporter(f).BulkExport(context.Background(), nil, []int{1, 99, 2}, BulkExportOpts{
		Format:    "csv",
		OutputDir: dir,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}
	if result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Fatalf("expected 2/1, got %d/%d", result.SuccessfulExports, result.FailedExports)
	}

	failed := result.Results[1]
	if failed.PlaylistID != 99 || failed.Success || !errors.Is(failed.Error, shared.ErrNotFound) {
		t.Errorf("unexpected failed result %+v", failed)
	}

	var m formatter.Manifest
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &m); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if m.Format != "csv" || m.Total != 3 || m.Failed != 1 || len(m.Playlists) != 3 {
		t.Errorf("unexpected manifest %+v", m)
	}
	if m.Playlists[0].PlaylistID != 1 || m.Playlists[2].PlaylistID != 2 {
		t.Error("manifest entries should follow the requested order")
	}
	if !strings.Contains(m.Playlists[1].Error, "not found") {
		t.Errorf("expected error text in manifest, got %q", m.Playlists[1].Error)
	}
}

func TestBulkExport_Options(t *testing.T) {
	t.Run("Unknown Format", func(t *testing.T) {
		f, ids := exportCatalog(1)
		_, err := NewExporter(f).BulkExport(context.Background(), nil, ids, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Nil Catalog", func(t *testing.T) {
		_, err := NewExporter(nil).BulkExport(context.Background(), nil, []int{1}, BulkExportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Default Output Directory", func(t *testing.T) {
		t.Chdir(t.TempDir())
		f, ids := exportCatalog(1)
		e := NewExporter(f)
		e.now = func() time.Time { return time.Unix(1700000000, 0) }

		result, err := e.BulkExport(context.Background(), nil, ids, BulkExportOpts{RateLimit: 1000, NumWorkers: 50})
		if err != nil {
			t.Fatal(err)
		}
		if result.OutputDirectory != "acervo_export_1700000000" {
			t.Errorf("unexpected output dir %s", result.OutputDirectory)
		}
		th.AssertFileExists(t, filepath.Join(result.OutputDirectory, "1.json"))
	})

	t.Run("Unwritable Output Directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		os.WriteFile(file, []byte("x"), 0644)
		f, ids := exportCatalog(1)
		if _, err := NewExporter(f).BulkExport(context.Background(), nil, ids, BulkExportOpts{OutputDir: filepath.Join(file, "out")}); err == nil {
			t.Error("expected error creating output directory")
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f, ids := exportCatalog(3)
		if _, err := NewExporter(f).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestBulkExport_Progress(t *testing.T) {
	f, ids := exportCatalog(3)
	prog := make(chan ProgressUpdate, 32)

	_, err := NewExporter(f).BulkExport(context.Background(), prog, ids, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
	if err != nil {
		t.Fatal(err)
	}
	close(prog)

	phases := map[Phase]int{}
	for u := range prog {
		phases[u.Phase]++
	}
	if phases[FetchPlaylists] != 1 || phases[FetchPlaylist] != 3 || phases[ExportPlaylist] != 3 || phases[WriteManifest] != 1 {
		t.Errorf("unexpected phase counts %v", phases)
	}

	t.Run("Full Channel Never Blocks", func(t *testing.T) {
		f, ids := exportCatalog(3)
		full := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			NewExporter(f).BulkExport(context.Background(), full, ids, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("export blocked on an unread progress channel")
		}
	})
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		FetchPlaylists: "fetch_playlists",
		FetchPlaylist:  "fetch_playlist",
		ExportPlaylist: "export_playlist",
		WriteManifest:  "write_manifest",
		Phase(42):      "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
