package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	ResourceView
	PlaylistView
	AdminView
	TagsView
	ProfileView
)

func (v ViewState) String() string {
	switch v {
	case HomeView:
		return "Início"
	case ResourceView:
		return "Recurso"
	case PlaylistView:
		return "Playlist"
	case AdminView:
		return "Usuários"
	case TagsView:
		return "Tags"
	case ProfileView:
		return "Perfil"
	default:
		return ""
	}
}

// Identity is the signed-in user as seen by the views.
type Identity interface {
	User() *models.User
	Staff() bool
}

// Options are the dependencies of a [Model]. BaseURL resolves relative access links.
type Options struct {
	Catalog   services.Catalog
	Identity  Identity
	BaseURL   string
	Logger    *log.Logger
	Browser   tasks.BrowserOptions
	CacheSize int
	CacheTTL  time.Duration
}

type pickerKind int

const (
	pickNone pickerKind = iota
	pickTag
	pickPlaylist
)

// confirmation is a pending y/n question. yes runs inside Update.
type confirmation struct {
	prompt string
	yes    func() tea.Cmd
}

// Model represents the TUI application state.
type Model struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	token  tasks.Token
	view   ViewState
	stack  []ViewState

	catalog  services.Catalog
	baseURL  string
	identity Identity
	logger   *log.Logger
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int

	loading bool
	notice  string
	err     error
	confirm *confirmation

	browser *tasks.Browser
	fetch   tasks.Token
	focus   int
	cursor  int
	search  textinput.Model
	typing  bool
	picker  list.Model
	picking pickerKind

	cache      *tasks.ResourceCache
	resourceID int
	resource   *models.Resource
	like       *tasks.Like

	playlistID int
	reorder    *tasks.Reorder
	item       int

	users      *tasks.Users
	filter     textinput.Model
	userCursor int

	tags      *tasks.Tags
	tagInput  textinput.Model
	tagCursor int

	profile       *tasks.Profile
	profileCursor int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts.Browser.Logger = logger

	search := textinput.New()
	search.Placeholder = "Buscar por título, tag ou tipo"
	search.Prompt = "/ "

	filter := textinput.New()
	filter.Placeholder = "Filtrar por nome ou e-mail"
	filter.Prompt = "/ "

	tagInput := textinput.New()
	tagInput.Placeholder = "Nome da nova tag"
	tagInput.Prompt = "+ "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return &Model{
		parent:   ctx,
		view:     HomeView,
		catalog:  opts.Catalog,
		baseURL:  opts.BaseURL,
		identity: opts.Identity,
		logger:   logger,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  sp,
		browser:  tasks.NewBrowser(opts.Catalog, opts.Browser),
		search:   search,
		filter:   filter,
		tagInput: tagInput,
		cache:    tasks.NewResourceCache(opts.Catalog, opts.CacheSize, opts.CacheTTL),
		users:    tasks.NewUsers(opts.Catalog),
		tags:     tasks.NewTags(opts.Catalog),
	}
}

func newToken() tasks.Token { return tasks.Token(uuid.NewString()) }

// Init loads the home view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.switchTo(HomeView), m.spinner.Tick)
}

// View returns the current view state.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case HomeView:
		b.WriteString(m.renderHome())
	case ResourceView:
		b.WriteString(m.renderResource())
	case PlaylistView:
		b.WriteString(m.renderPlaylist())
	case AdminView:
		b.WriteString(m.renderAdmin())
	case TagsView:
		b.WriteString(m.renderTags())
	case ProfileView:
		b.WriteString(m.renderProfile())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.picking != pickNone {
			m.picker.SetSize(max(msg.Width-4, 20), max(msg.Height-8, 10))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		if msg.token != m.token {
			m.logger.Debug("dropping stale message", "kind", msg.kind)
			return m, nil
		}
		m.loading = false
		return m.handleMsg(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHomeLoaded:
		m.onHomeLoaded(msg.data.(homeLoaded))
	case MsgResourceLoaded:
		m.onResourceLoaded(msg.data.(resourceLoaded))
	case MsgLikeSettled:
		m.onLikeSettled(msg.data.(likeSettled))
	case MsgPlaylistLoaded:
		m.onPlaylistLoaded(msg.data.(playlistLoaded))
	case MsgOrderSaved:
		m.onOrderSaved(msg.data.(playlistLoaded))
	case MsgUsersLoaded, MsgUserToggled:
		m.onUsersLoaded(msg.data.(usersLoaded))
	case MsgTagsLoaded:
		m.onTagsLoaded(msg.data.(tagsLoaded))
	case MsgTagCreated, MsgTagDeleted:
		m.onTagChanged(msg.kind, msg.data.(tagChanged))
	case MsgProfileLoaded:
		m.onProfileLoaded(msg.data.(profileLoaded))
	case MsgPickerLoaded:
		m.onPickerLoaded(msg.data.(pickerLoaded))
	case MsgDone:
		return m, m.onDone(msg.data.(done))
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.yes):
			c := m.confirm
			m.confirm = nil
			return m, c.yes()
		case key.Matches(msg, m.keys.no):
			m.confirm = nil
		}
		return m, nil
	}

	if m.picking != pickNone {
		return m.updatePicker(msg)
	}
	if m.typing {
		return m.updateInput(msg)
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.home):
		return m, m.switchTo(HomeView)
	case key.Matches(msg, m.keys.profile):
		return m, m.switchTo(ProfileView)
	case key.Matches(msg, m.keys.users):
		return m, m.switchStaff(AdminView)
	case key.Matches(msg, m.keys.tagAdmin):
		return m, m.switchStaff(TagsView)
	case key.Matches(msg, m.keys.back) && m.view != HomeView:
		return m, m.back()
	case key.Matches(msg, m.keys.reload):
		return m, m.load()
	}

	switch m.view {
	case HomeView:
		return m, m.homeKeys(msg)
	case ResourceView:
		return m, m.resourceKeys(msg)
	case PlaylistView:
		return m, m.playlistKeys(msg)
	case AdminView:
		return m, m.adminKeys(msg)
	case TagsView:
		return m, m.tagsKeys(msg)
	case ProfileView:
		return m, m.profileKeys(msg)
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

// navigate leaves the current view, cancelling its requests, and loads v.
func (m *Model) navigate(v ViewState) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	// replies to the old token are dropped, so nothing may keep waiting on them
	if m.reorder != nil && m.reorder.Saving {
		m.reorder.EndSave(nil)
	}
	if m.like != nil && m.like.InFlight {
		m.like = nil
	}
	m.ctx, m.cancel = context.WithCancel(m.parent)
	m.token = newToken()
	m.view = v
	m.err = nil
	m.confirm = nil
	m.picking = pickNone
	m.typing = false
	return m.load()
}

func (m *Model) open(v ViewState) tea.Cmd {
	m.stack = append(m.stack, m.view)
	return m.navigate(v)
}

func (m *Model) back() tea.Cmd {
	if len(m.stack) == 0 {
		return m.navigate(HomeView)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return m.navigate(v)
}

func (m *Model) switchTo(v ViewState) tea.Cmd {
	m.stack = nil
	return m.navigate(v)
}

func (m *Model) switchStaff(v ViewState) tea.Cmd {
	if m.identity == nil || !m.identity.Staff() {
		m.err = shared.NewValidationError("perfil", "Acesso restrito a gestores e coordenadores.", shared.ErrForbidden)
		return nil
	}
	return m.switchTo(v)
}

// load starts the fetch of the current view.
func (m *Model) load() tea.Cmd {
	m.loading = true
	ctx, token, catalog := m.ctx, m.token, m.catalog

	switch m.view {
	case HomeView:
		return m.loadHome()

	case ResourceView:
		cache, id := m.cache, m.resourceID
		return func() tea.Msg {
			r, err := cache.Get(ctx, id)
			return resourceLoadedMsg(token, r, err)
		}

	case PlaylistView:
		id := m.playlistID
		return func() tea.Msg {
			p, err := catalog.GetPlaylist(ctx, id)
			return playlistLoadedMsg(MsgPlaylistLoaded, token, p, err)
		}

	case AdminView:
		m.users = tasks.NewUsers(catalog)
		return func() tea.Msg {
			users, err := tasks.FetchUsers(ctx, catalog)
			return usersLoadedMsg(MsgUsersLoaded, token, 0, users, err)
		}

	case TagsView:
		m.tags = tasks.NewTags(catalog)
		return func() tea.Msg {
			tags, err := catalog.ListTags(ctx)
			return tagsLoadedMsg(token, tags, err)
		}

	case ProfileView:
		user := m.currentUser()
		if user == nil {
			m.loading = false
			m.err = shared.ErrNotAuthenticated
			return nil
		}
		return func() tea.Msg {
			p := tasks.NewProfile(catalog, *user)
			err := p.Load(ctx)
			return profileLoadedMsg(token, p, err)
		}
	}

	m.loading = false
	return nil
}

func (m *Model) onDone(d done) tea.Cmd {
	if d.err != nil {
		m.setErr(d.err)
		return nil
	}
	m.notice = d.notice
	switch {
	case d.back:
		notice := d.notice
		cmd := m.back()
		m.notice = notice
		return cmd
	case d.reload:
		return m.load()
	}
	return nil
}

// run wraps a mutation into a command producing [MsgDone].
func (m *Model) run(d done, fn func(ctx context.Context) error) tea.Cmd {
	ctx, token := m.ctx, m.token
	return func() tea.Msg {
		d.err = fn(ctx)
		return doneMsg(token, d)
	}
}

func (m *Model) ask(prompt string, yes func() tea.Cmd) {
	m.confirm = &confirmation{prompt: prompt, yes: yes}
}

func (m *Model) setErr(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Warn("request failed", "view", m.view, "error", err)
	m.err = err
}

func (m *Model) currentUser() *models.User {
	if m.identity == nil {
		return nil
	}
	return m.identity.User()
}

// input returns the text input of the current view.
func (m *Model) input() *textinput.Model {
	switch m.view {
	case AdminView:
		return &m.filter
	case TagsView:
		return &m.tagInput
	default:
		return &m.search
	}
}

func (m *Model) focusInput() tea.Cmd {
	m.typing = true
	return m.input().Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.input()
	switch msg.String() {
	case "esc":
		m.typing = false
		in.Blur()
		if m.view == TagsView {
			in.Reset()
		}
		return m, nil
	case "enter":
		m.typing = false
		in.Blur()
		return m, m.submitInput(in.Value())
	}

	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if m.view == AdminView {
		m.userCursor = 0
	}
	return m, cmd
}

func (m *Model) submitInput(value string) tea.Cmd {
	switch m.view {
	case HomeView:
		m.browser.SetQuery(value)
		m.focus, m.cursor = 0, 0
		return m.loadHome()
	case TagsView:
		return m.addTag(value)
	}
	return nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q":
			m.picking = pickNone
			return m, nil
		case "enter":
			return m, m.pick()
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) pick() tea.Cmd {
	kind := m.picking
	m.picking = pickNone

	switch item := m.picker.SelectedItem().(type) {
	case tagItem:
		if kind == pickTag {
			m.browser.SelectTag(item.tag.Name)
			m.focus, m.cursor = 0, 0
			return m.loadHome()
		}
	case playlistItem:
		if kind == pickPlaylist && m.resource != nil {
			catalog, playlistID, resourceID := m.catalog, item.playlist.ID, m.resource.ID
			return m.run(done{notice: "Recurso adicionado à playlist!"}, func(ctx context.Context) error {
				return tasks.AddToPlaylist(ctx, catalog, playlistID, resourceID)
			})
		}
	}
	return nil
}

func (m *Model) renderHeader() string {
	title := "Acervo Mestre · " + m.view.String()
	if u := m.currentUser(); u != nil {
		title += fmt.Sprintf(" · %s (%s)", u.Name, u.Role)
	}
	if m.loading {
		title += " " + m.spinner.View()
	}
	return styles.title.Render(title)
}

func (m *Model) renderFooter() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render(shared.UserMessage(m.err)))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(styles.ok.Render(m.notice))
		b.WriteString("\n")
	}
	if m.confirm != nil {
		b.WriteString(styles.warn.Render(m.confirm.prompt + " (y/n)"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) helpKeys() []key.Binding {
	k := m.keys
	var bindings []key.Binding
	switch m.view {
	case HomeView:
		bindings = []key.Binding{k.section, k.prevPage, k.nextPage, k.left, k.right, k.search, k.tags, k.enter}
	case ResourceView:
		bindings = []key.Binding{k.like, k.open, k.pick, k.del, k.back}
	case PlaylistView:
		bindings = []key.Binding{k.up, k.down, k.moveUp, k.moveDown, k.save, k.remove, k.enter, k.back}
	case AdminView:
		bindings = []key.Binding{k.up, k.down, k.search, k.toggle}
	case TagsView:
		bindings = []key.Binding{k.up, k.down, k.add, k.del}
	case ProfileView:
		bindings = []key.Binding{k.up, k.down, k.enter, k.del}
	}
	bindings = append(bindings, k.home, k.profile)
	if m.identity != nil && m.identity.Staff() {
		bindings = append(bindings, k.users, k.tagAdmin)
	}
	return append(bindings, k.quit)
}
