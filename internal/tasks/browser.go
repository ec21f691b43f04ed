package tasks

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// Section is one carousel of the home view.
type Section int

const (
	SectionHighlighted Section = iota
	SectionRecent
	SectionMostLiked
	SectionResults
)

func (s Section) String() string {
	switch s {
	case SectionHighlighted:
		return "Destaques"
	case SectionRecent:
		return "Recentes"
	case SectionMostLiked:
		return "Mais Curtidos"
	case SectionResults:
		return "Resultados"
	default:
		return ""
	}
}

// Home holds the derived sections shown when no search is active.
type Home struct {
	Highlighted []models.Card
	Recent      []models.Card
	MostLiked   []models.Card
}

// Derive builds the home sections from one resource listing and one playlist listing.
//
// Highlighted lists playlists first, then featured resources. Recent sorts by id descending.
// MostLiked sorts by likes descending, keeping listing order between ties.
func Derive(resources []models.Resource, playlists []models.Playlist) Home {
	cards := models.ResourceCards(resources)

	highlighted := models.PlaylistCards(playlists)
	for _, c := range cards {
		if c.Featured {
			highlighted = append(highlighted, c)
		}
	}

	recent := slices.Clone(cards)
	slices.SortStableFunc(recent, func(a, b models.Card) int { return b.RealID - a.RealID })

	liked := slices.Clone(cards)
	slices.SortStableFunc(liked, func(a, b models.Card) int { return b.Likes - a.Likes })

	return Home{Highlighted: highlighted, Recent: recent, MostLiked: liked}
}

// BrowserOptions tunes the listings fetched by a [Browser].
type BrowserOptions struct {
	PageSize      int // resources per listing, default 100
	HomePlaylists int // playlists per listing, default 20
	WindowSize    int
	Logger        *log.Logger
}

// Snapshot is the raw result of one browser fetch.
type Snapshot struct {
	Query        string
	Tags         []models.Tag
	TagsErr      error
	Resources    []models.Resource
	Playlists    []models.Playlist
	PlaylistsErr error
}

// Browser is the state of the home view: tag filters, a search query and the carousels.
//
// Fetch only reads from the catalog so it can run off the UI goroutine; every other method
// mutates the browser and belongs to a single goroutine.
type Browser struct {
	catalog services.Catalog
	opts    BrowserOptions
	logger  *log.Logger

	Tags      []models.Tag
	Selected  string // selected tag name, empty when none
	Query     string
	Home      Home
	Results   []models.Card
	Loading   bool
	Searching bool

	windows [SectionResults + 1]Window
	latest  Token
}

// NewBrowser creates a browser over catalog.
func NewBrowser(catalog services.Catalog, opts BrowserOptions) *Browser {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.HomePlaylists <= 0 {
		opts.HomePlaylists = 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	b := &Browser{catalog: catalog, opts: opts, logger: logger}
	for i := range b.windows {
		b.windows[i] = NewWindow(opts.WindowSize)
	}
	return b
}

// SetQuery replaces the search query and clears the tag selection. Any non-empty query,
// blanks included, switches to search mode.
func (b *Browser) SetQuery(query string) {
	b.Selected = ""
	b.Query = query
}

// SelectTag selects name as filter and query, or clears both when name is already selected.
func (b *Browser) SelectTag(name string) {
	if b.Selected == name {
		b.Selected = ""
		b.Query = ""
		return
	}
	b.Selected = name
	b.Query = name
}

// Begin starts a fetch for the current query and returns its token.
func (b *Browser) Begin() Token {
	b.latest = newToken()
	b.Loading = true
	b.Searching = b.Query != ""
	for i := range b.windows {
		b.windows[i].Reset()
	}
	return b.latest
}

// Fetch loads tags and content for query.
//
// A tag or playlist failure is recorded in the snapshot; a resource failure is returned.
func (b *Browser) Fetch(ctx context.Context, query string) (*Snapshot, error) {
	snap := &Snapshot{Query: query}

	snap.Tags, snap.TagsErr = b.catalog.ListTags(ctx)
	if snap.TagsErr != nil {
		b.logger.Warn("failed to load tags", "error", snap.TagsErr)
	}

	resources, err := b.catalog.ListResources(ctx, services.ListOptions{Page: 1, PerPage: b.opts.PageSize, NoCache: true})
	if err != nil {
		return snap, err
	}
	snap.Resources = resources

	if query != "" {
		return snap, nil
	}

	snap.Playlists, snap.PlaylistsErr = b.catalog.ListPlaylists(ctx, services.ListOptions{Page: 1, PerPage: b.opts.HomePlaylists})
	if snap.PlaylistsErr != nil {
		b.logger.Warn("failed to load playlists", "error", snap.PlaylistsErr)
		snap.Playlists = nil
	}
	return snap, nil
}

// Apply stores the result of the fetch identified by token.
//
// Results of any fetch other than the latest are dropped with [shared.ErrStaleResponse].
func (b *Browser) Apply(token Token, snap *Snapshot, err error) error {
	if token != b.latest {
		return shared.ErrStaleResponse
	}
	b.Loading = false

	if snap != nil && snap.TagsErr == nil {
		b.Tags = snap.Tags
	}
	if err != nil {
		return err
	}

	if snap.Query == "" {
		b.Home = Derive(snap.Resources, snap.Playlists)
		b.Results = nil
		return nil
	}
	b.Results = FilterCards(models.ResourceCards(snap.Resources), snap.Query)
	return nil
}

// Load runs a full fetch for the current query.
func (b *Browser) Load(ctx context.Context) error {
	token := b.Begin()
	snap, err := b.Fetch(ctx, b.Query)
	return b.Apply(token, snap, err)
}

// Search sets query, clears the tag selection and reloads.
func (b *Browser) Search(ctx context.Context, query string) error {
	b.SetQuery(query)
	return b.Load(ctx)
}

// ToggleTag toggles the tag filter and reloads.
func (b *Browser) ToggleTag(ctx context.Context, name string) error {
	b.SelectTag(name)
	return b.Load(ctx)
}

// Sections lists the carousels currently on screen.
func (b *Browser) Sections() []Section {
	if b.Searching {
		return []Section{SectionResults}
	}
	return []Section{SectionHighlighted, SectionRecent, SectionMostLiked}
}

// Cards returns every card of section.
func (b *Browser) Cards(s Section) []models.Card {
	switch s {
	case SectionHighlighted:
		return b.Home.Highlighted
	case SectionRecent:
		return b.Home.Recent
	case SectionMostLiked:
		return b.Home.MostLiked
	case SectionResults:
		return b.Results
	default:
		return nil
	}
}

func (b *Browser) window(s Section) *Window {
	if s < 0 || int(s) >= len(b.windows) {
		s = SectionHighlighted
	}
	return &b.windows[s]
}

// Window returns a copy of the paging state of section.
func (b *Browser) Window(s Section) Window { return *b.window(s) }

func (b *Browser) Next(s Section)         { b.window(s).Next(len(b.Cards(s))) }
func (b *Browser) Prev(s Section)         { b.window(s).Prev() }
func (b *Browser) CanNext(s Section) bool { return b.window(s).CanNext(len(b.Cards(s))) }
func (b *Browser) CanPrev(s Section) bool { return b.window(s).CanPrev() }

// Visible returns the cards of section inside its window.
func (b *Browser) Visible(s Section) []models.Card {
	return Visible(*b.window(s), b.Cards(s))
}
