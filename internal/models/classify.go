package models

import "strings"

// Kind is the display category of a card.
type Kind string

const (
	KindNote     Kind = "note"
	KindLink     Kind = "link"
	KindPDF      Kind = "pdf"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindPlaylist Kind = "playlist"
)

// Descriptor is everything a view needs to render the type of a resource.
type Descriptor struct {
	Kind      Kind
	Label     string // short badge text
	LongLabel string
	Icon      string
	Color     string
}

var descriptors = map[Kind]Descriptor{
	KindNote:     {Kind: KindNote, Label: "NOTA", LongLabel: "Anotação", Icon: "document", Color: "red"},
	KindLink:     {Kind: KindLink, Label: "LINK", LongLabel: "Link Externo", Icon: "link", Color: "gray"},
	KindPDF:      {Kind: KindPDF, Label: "PDF", LongLabel: "Documento PDF", Icon: "download", Color: "green"},
	KindVideo:    {Kind: KindVideo, Label: "Vídeo", LongLabel: "Vídeo", Icon: "video", Color: "purple"},
	KindDocument: {Kind: KindDocument, Label: "Documento", LongLabel: "Arquivo", Icon: "file", Color: "blue"},
	KindPlaylist: {Kind: KindPlaylist, Label: "Playlist", LongLabel: "Playlist", Icon: "list", Color: "teal"},
}

// Classify maps the structure and mime type of a resource to its descriptor.
// It is a pure function of its two arguments. Mime matching is case-sensitive.
func Classify(structure Structure, mimeType string) Descriptor {
	switch structure {
	case StructureNote:
		return descriptors[KindNote]
	case StructureURL:
		return descriptors[KindLink]
	case StructureUpload:
		switch {
		case strings.Contains(mimeType, "pdf"):
			return descriptors[KindPDF]
		case strings.Contains(mimeType, "video"):
			return descriptors[KindVideo]
		}
	}
	return descriptors[KindDocument]
}

// PlaylistDescriptor is the descriptor used for playlist cards.
func PlaylistDescriptor() Descriptor {
	return descriptors[KindPlaylist]
}
