// package formatter exports playlists and their ordered resources to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
)

// CSVHeaders are the columns written by [ExportToCSV].
var CSVHeaders = []string{"Ordem", "ID", "Título", "Tipo", "Tags", "Curtidas", "Visualizações", "Downloads"}

// OrderedItems returns the playlist items sorted by their ordem field.
func OrderedItems(p *models.Playlist) []models.PlaylistItem {
	items := slices.Clone(p.Items)
	slices.SortStableFunc(items, func(a, b models.PlaylistItem) int { return a.Order - b.Order })
	return items
}

// ExportToCSV converts a playlist to CSV, one row per item in playlist order.
func ExportToCSV(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range OrderedItems(p) {
		r := item.Resource
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.ID),
			r.Title,
			models.Classify(r.Structure, r.MimeType).Label,
			strings.Join(r.TagNames(), "; "),
			strconv.Itoa(r.Likes),
			strconv.Itoa(r.Views),
			strconv.Itoa(r.Downloads),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to a Markdown document. Notes are linked to notesDir
// when it is non-empty.
func ExportToMarkdown(p *models.Playlist, notesDir string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Title)

	if p.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", p.Description)
	}

	if p.AuthorName != "" {
		fmt.Fprintf(&buf, "**Autor**: %s\n", p.AuthorName)
	}
	fmt.Fprintf(&buf, "**Recursos**: %d\n", p.Count())
	fmt.Fprintf(&buf, "**Visibilidade**: %s\n\n", p.Visibility.Label())

	buf.WriteString("## Recursos\n\n")
	for i, item := range OrderedItems(p) {
		r := item.Resource
		d := models.Classify(r.Structure, r.MimeType)

		title := r.Title
		switch {
		case r.Structure == models.StructureNote && notesDir != "":
			title = fmt.Sprintf("[%s](%s)", r.Title, filepath.ToSlash(filepath.Join(notesDir, noteFileName(r))))
		case r.Link() != "":
			title = fmt.Sprintf("[%s](%s)", r.Title, r.Link())
		}

		fmt.Fprintf(&buf, "%d. %s `%s`", i+1, title, d.Label)
		if tags := r.TagNames(); len(tags) > 0 {
			fmt.Fprintf(&buf, " %s", strings.Join(tags, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text.
func ExportToText(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&buf, "Descrição: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Recursos: %d\n\n", p.Count())

	for i, item := range OrderedItems(p) {
		card := models.ResourceCard(item.Resource)
		fmt.Fprintf(&buf, "%d. [%s] %s (%s)\n", i+1, card.Descriptor.Label, card.Title, card.Author)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without items)
func ToMetadataJSON(p models.Playlist) ([]byte, error) {
	p.ResourceCount = p.Count()
	p.Items = nil
	return shared.MarshalJSON(p, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the playlist ID as the base filename & creates {base}_recursos.csv and {base}_metadata.json
func WriteCSVExport(p *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = strconv.Itoa(p.ID)
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_recursos.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(*p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Creates {dir}/README.md, plus {dir}/notas/{id}.md holding the content of every note.
func WriteMarkdownExport(p *models.Playlist, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = strconv.Itoa(p.ID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	notesDir := ""
	for _, item := range OrderedItems(p) {
		r := item.Resource
		if r.Structure != models.StructureNote || r.Content == "" {
			continue
		}
		if notesDir == "" {
			notesDir = "notas"
			if err := os.MkdirAll(filepath.Join(outputDir, notesDir), 0755); err != nil {
				return nil, fmt.Errorf("failed to create notes directory: %w", err)
			}
		}
		notePath := filepath.Join(outputDir, notesDir, noteFileName(r))
		if err := os.WriteFile(notePath, []byte(r.Content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write note %d: %w", r.ID, err)
		}
		result.Files = append(result.Files, notePath)
	}

	mdData, err := ExportToMarkdown(p, notesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_recursos.txt as the filename.
func WriteTextExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%d_recursos.txt", p.ID)
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// ManifestEntry records the outcome of one playlist in a bulk export.
type ManifestEntry struct {
	PlaylistID int      `json:"playlist_id"`
	Title      string   `json:"titulo"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	ExportedAt time.Time       `json:"exported_at"`
	Format     string          `json:"format"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Playlists  []ManifestEntry `json:"playlists"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func noteFileName(r models.Resource) string {
	return fmt.Sprintf("%d.md", r.ID)
}
