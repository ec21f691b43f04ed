package models

import "strconv"

// Card is the browse view-model shared by the resource and playlist carousels.
type Card struct {
	ID            string // prefixed, "res-12" or "pl-3"
	RealID        int
	Title         string
	Description   string
	Author        string
	Subject       string
	Tags          []string
	Descriptor    Descriptor
	Likes         int
	Views         int
	Downloads     int
	IsPlaylist    bool
	Featured      bool
	ResourceCount int
	Visibility    string
}

// ResourceCard builds the card of a resource.
func ResourceCard(r Resource) Card {
	tags := r.TagNames()
	subject := defaultTopic
	if len(tags) > 0 && tags[0] != "" {
		subject = tags[0]
	}

	return Card{
		ID:          "res-" + strconv.Itoa(r.ID),
		RealID:      r.ID,
		Title:       r.Title,
		Description: r.Description,
		Author:      firstNonEmpty(r.Owner(), defaultAuthor),
		Subject:     subject,
		Tags:        tags,
		Descriptor:  Classify(r.Structure, r.MimeType),
		Likes:       r.Likes,
		Views:       r.Views,
		Downloads:   r.Downloads,
		Featured:    r.Featured,
		Visibility:  r.Visibility.Label(),
	}
}

// PlaylistCard builds the card of a playlist summary.
func PlaylistCard(p Playlist) Card {
	return Card{
		ID:            "pl-" + strconv.Itoa(p.ID),
		RealID:        p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Author:        firstNonEmpty(p.AuthorName, defaultAuthor),
		Subject:       "Playlist",
		Tags:          []string{},
		Descriptor:    PlaylistDescriptor(),
		IsPlaylist:    true,
		ResourceCount: p.Count(),
		Visibility:    p.Visibility.Label(),
	}
}

// ResourceCards maps every resource to its card.
func ResourceCards(resources []Resource) []Card {
	cards := make([]Card, 0, len(resources))
	for _, r := range resources {
		cards = append(cards, ResourceCard(r))
	}
	return cards
}

// PlaylistCards maps every playlist to its card.
func PlaylistCards(playlists []Playlist) []Card {
	cards := make([]Card, 0, len(playlists))
	for _, p := range playlists {
		cards = append(cards, PlaylistCard(p))
	}
	return cards
}
