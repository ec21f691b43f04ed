package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	th "github.com/acervomestre/acervo/internal/testing"
)

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		ID:          7,
		Title:       "Revisão para o ENEM",
		Description: "Materiais de revisão",
		Visibility:  models.VisibilityPublic,
		AuthorName:  "Prof. Ana",
		Items: []models.PlaylistItem{
			{Order: 2, Resource: models.Resource{
				ID: 12, Title: "Site de exercícios", Structure: models.StructureURL,
				ExternalURL: "https://example.com/exercicios", Likes: 3, Views: 40, Downloads: 0,
				Tags: []models.Tag{{ID: 1, Name: "Matemática"}},
			}},
			{Order: 1, Resource: models.Resource{
				ID: 10, Title: "Apostila", Structure: models.StructureUpload, MimeType: "application/pdf",
				AccessLink: "/static/apostila.pdf", Likes: 9, Views: 120, Downloads: 33,
				Tags:   []models.Tag{{ID: 1, Name: "Matemática"}, {ID: 2, Name: "Física"}},
				Author: &models.Author{ID: 1, Name: "Prof. Ana"},
			}},
			{Order: 3, Resource: models.Resource{
				ID: 15, Title: "Resumo", Structure: models.StructureNote, Content: "# Resumo\n\nTexto",
			}},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header + 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Ordem,ID,Título,Tipo,Tags,Curtidas,Visualizações,Downloads" {
			t.Errorf("unexpected headers %v", records[0])
		}

		first := records[1]
		if first[0] != "1" || first[1] != "10" || first[3] != "PDF" || first[4] != "Matemática; Física" || first[7] != "33" {
			t.Errorf("unexpected first row %v", first)
		}
		if records[2][3] != "LINK" || records[3][3] != "NOTA" {
			t.Errorf("unexpected types %s %s", records[2][3], records[3][3])
		}
	})

	t.Run("ExportToCSV Empty", func(t *testing.T) {
		data, err := ExportToCSV(&models.Playlist{ID: 1, Title: "Vazia"})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("expected only the header line, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(samplePlaylist(), "notas")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Revisão para o ENEM",
			"**Autor**: Prof. Ana",
			"**Recursos**: 3",
			"**Visibilidade**: Público",
			"1. [Apostila](/static/apostila.pdf) `PDF` Matemática, Física",
			"2. [Site de exercícios](https://example.com/exercicios) `LINK`",
			"3. [Resumo](notas/15.md) `NOTA`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Notes Dir", func(t *testing.T) {
		data, _ := ExportToMarkdown(samplePlaylist(), "")
		if !strings.Contains(string(data), "3. Resumo `NOTA`") {
			t.Errorf("expected plain note title, got:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Playlist: Revisão para o ENEM\n") {
			t.Errorf("unexpected text header: %s", output)
		}
		if !strings.Contains(output, "1. [PDF] Apostila (Prof. Ana)") {
			t.Errorf("text missing first item: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(*samplePlaylist())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if _, ok := decoded["recursos"]; ok {
			t.Error("metadata should not include items")
		}
		if decoded["quantidade_recursos"] != float64(3) {
			t.Errorf("expected count 3, got %v", decoded["quantidade_recursos"])
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "7")

		res, err := WriteCSVExport(samplePlaylist(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		th.AssertFileExists(t, res.ItemsFile)
		th.AssertFileExists(t, res.MetadataFile)
		if !strings.HasSuffix(res.ItemsFile, "7_recursos.csv") {
			t.Errorf("unexpected items file %s", res.ItemsFile)
		}
	})

	t.Run("WriteCSVExport Default Path", func(t *testing.T) {
		t.Chdir(t.TempDir())

		res, err := WriteCSVExport(samplePlaylist(), "")
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if res.ItemsFile != "7_recursos.csv" {
			t.Errorf("unexpected default file %s", res.ItemsFile)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "playlist")

		res, err := WriteMarkdownExport(samplePlaylist(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		note := filepath.Join(dir, "notas", "15.md")
		th.AssertFileExists(t, note)
		if got := th.MustReadFile(t, note); got != "# Resumo\n\nTexto" {
			t.Errorf("unexpected note content %q", got)
		}
		if len(res.Files) != 2 {
			t.Errorf("expected note + README, got %v", res.Files)
		}
	})

	t.Run("WriteMarkdownExport Unwritable", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		os.WriteFile(file, []byte("x"), 0644)

		if _, err := WriteMarkdownExport(samplePlaylist(), filepath.Join(file, "sub")); err == nil {
			t.Error("expected error when output dir is below a file")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		got, err := WriteTextExport(samplePlaylist(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		m := Manifest{
			ExportedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Format:     "csv",
			Total:      2,
			Successful: 1,
			Failed:     1,
			Playlists: []ManifestEntry{
				{PlaylistID: 1, Title: "A", Success: true, Files: []string{"1_recursos.csv"}},
				{PlaylistID: 2, Success: false, Error: "not found"},
			},
		}

		if err := WriteManifest(m, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		var decoded Manifest
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &decoded); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if decoded.Failed != 1 || decoded.Playlists[1].Error != "not found" {
			t.Errorf("unexpected manifest %+v", decoded)
		}
	})
}
