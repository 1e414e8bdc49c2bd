package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/pagination"
	"github.com/desertthunder/shopx/internal/services"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/desertthunder/shopx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	VideoListView
	CategoryListView
	FormView
	ConfirmView
)

// SessionStore persists the signed-in session.
type SessionStore interface {
	Get() (*models.Session, error)
	Set(models.Session) error
	Clear() error
}

// ViewStore persists the video list mode.
type ViewStore interface {
	Get() (models.ViewMode, error)
	Set(models.ViewMode) error
}

// Deps are the collaborators of a [Model].
type Deps struct {
	Engine   *tasks.CatalogEngine
	Auth     services.Authenticator
	Sessions SessionStore
	Views    ViewStore
	Notices  <-chan tasks.Notice
	Logger   *log.Logger
}

// pendingDelete is the entity awaiting confirmation.
type pendingDelete struct {
	entity string
	id     int64
	label  string
	back   ViewState
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	view    ViewState
	session *models.Session
	width   int
	height  int

	username textinput.Model
	password textinput.Model
	loginErr string

	mode      models.ViewMode
	cursor    int
	filtering bool
	query     textinput.Model
	loading   bool

	categoryList list.Model

	form     *formModel
	formBack ViewState
	saving   bool

	confirm *pendingDelete

	notice   *tasks.Notice
	help     help.Model
	keys     keyMap
	quitting bool
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	query := textinput.New()
	query.Prompt = "/"
	query.Placeholder = "search titles and tags"

	categoryList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	categoryList.Title = "Categories"
	categoryList.SetShowHelp(false)

	m := &Model{
		ctx:          ctx,
		deps:         deps,
		logger:       shared.WithLogger(logger, "component", "ui"),
		view:         LoginView,
		username:     username,
		password:     password,
		query:        query,
		categoryList: categoryList,
		mode:         models.ViewCards,
		help:         help.New(),
		keys:         newKeyMap(),
	}

	if deps.Views != nil {
		if mode, err := deps.Views.Get(); err == nil {
			m.mode = mode
		}
	}
	if deps.Sessions != nil {
		if sess, err := deps.Sessions.Get(); err == nil && sess != nil {
			m.session = sess
			m.view = VideoListView
		}
	}
	if m.view == LoginView {
		m.username.Focus()
	}
	return m
}

// Init loads the video list when a session is already stored and starts listening for notices.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForNotice()}
	if m.view == VideoListView {
		cmds = append(cmds, m.loadVideos())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.categoryList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case VideoListView:
			return m.handleVideoKeys(msg)
		case CategoryListView:
			return m.handleCategoryKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case loginMsg:
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			m.password.SetValue("")
			return m, nil
		}
		m.session = msg.session
		m.loginErr = ""
		m.username.Blur()
		m.password.Blur()
		m.view = VideoListView
		return m, m.loadVideos()

	case videosLoadedMsg:
		return m, m.applyVideos(msg)

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.setNotice(tasks.Notice{Level: tasks.LevelError, Title: "Error", Message: msg.err.Error()})
			return m, nil
		}
		m.refreshCategories()
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err == nil {
			m.afterWrite()
		}
		if msg.form == nil || msg.form != m.form {
			return m, nil
		}
		if msg.err != nil {
			m.form.fail(msg.err)
			return m, nil
		}
		m.form = nil
		m.view = m.formBack
		return m, nil

	case deletedMsg:
		m.confirm = nil
		if msg.err == nil {
			m.afterWrite()
		}
		return m, nil

	case noticeMsg:
		n := tasks.Notice(msg)
		m.setNotice(n)
		return m, m.waitForNotice()
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case VideoListView:
		body = m.renderVideos()
	case CategoryListView:
		body = m.renderCategories()
	case FormView:
		body = m.renderForm()
	case ConfirmView:
		body = m.renderConfirm()
	}

	if status := m.renderNotice(); status != "" {
		body = fmt.Sprintf("%s\n\n%s", body, status)
	}
	return body
}

func (m *Model) setNotice(n tasks.Notice) {
	m.notice = &n
	if n.Level == tasks.LevelError {
		m.logger.Warn("notice", "title", n.Title, "message", n.Message)
	}
}

// afterWrite refreshes view state from the lists the engine reloaded.
func (m *Model) afterWrite() {
	m.clampCursor()
	m.refreshCategories()
}

func (m *Model) refreshCategories() {
	m.categoryList.SetItems(categoryItems(m.deps.Engine.Categories.Items()))
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		if m.username.Focused() {
			m.username.Blur()
			return m, m.password.Focus()
		}
		m.password.Blur()
		return m, m.username.Focus()
	case "enter":
		if m.username.Focused() {
			m.username.Blur()
			return m, m.password.Focus()
		}
		return m, m.login(m.username.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleVideoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKeys(msg)
	}

	videos := m.deps.Engine.Videos
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.down):
		m.cursor = min(m.cursor+1, max(0, len(videos.Visible())-1))
	case key.Matches(msg, m.keys.prevPage):
		return m, m.navigate(videos.Prev)
	case key.Matches(msg, m.keys.nextPage):
		return m, m.navigate(videos.Next)
	case key.Matches(msg, m.keys.first):
		return m, m.navigate(videos.First)
	case key.Matches(msg, m.keys.last):
		return m, m.navigate(videos.Last)
	case key.Matches(msg, m.keys.pageSize):
		return m, m.navigate(func() bool { return videos.SetPageSize(nextPageSize(videos.PageState().PageSize)) })
	case key.Matches(msg, m.keys.toggle):
		m.toggleView()
	case key.Matches(msg, m.keys.filter):
		m.filtering = true
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.category):
		m.cycleCategoryFilter()
	case key.Matches(msg, m.keys.switchTo):
		m.view = CategoryListView
		return m, m.loadCategories()
	case key.Matches(msg, m.keys.create):
		return m, m.openForm(forms.NewCreate(forms.VideoSchema), VideoListView)
	case key.Matches(msg, m.keys.edit):
		if v, ok := m.selectedVideo(); ok {
			return m, m.openForm(forms.NewEdit(forms.VideoSchema, v.ID, forms.VideoRecord(v)), VideoListView)
		}
	case key.Matches(msg, m.keys.remove):
		if v, ok := m.selectedVideo(); ok {
			m.confirm = &pendingDelete{entity: "video", id: v.ID, label: v.Title, back: VideoListView}
			m.view = ConfirmView
		}
	case key.Matches(msg, m.keys.open):
		if v, ok := m.selectedVideo(); ok {
			return m, m.openLink(v.AmazonLink)
		}
	case key.Matches(msg, m.keys.reload):
		return m, m.loadVideos()
	case key.Matches(msg, m.keys.logout):
		m.logout()
	}
	return m, nil
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filtering = false
		m.query.Blur()
		if msg.String() == "esc" {
			m.query.SetValue("")
			m.deps.Engine.Videos.SetQuery("")
		}
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.deps.Engine.Videos.SetQuery(m.query.Value())
	m.clampCursor()
	return m, cmd
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.categoryList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.categoryList, cmd = m.categoryList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.switchTo), key.Matches(msg, m.keys.back):
		m.view = VideoListView
		return m, m.loadVideos()
	case key.Matches(msg, m.keys.create):
		return m, m.openForm(forms.NewCreate(forms.CategorySchema), CategoryListView)
	case key.Matches(msg, m.keys.edit):
		if c, ok := m.selectedCategory(); ok {
			return m, m.openForm(forms.NewEdit(forms.CategorySchema, c.ID, forms.CategoryRecord(c)), CategoryListView)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if c, ok := m.selectedCategory(); ok {
			m.confirm = &pendingDelete{entity: "category", id: c.ID, label: c.Name, back: CategoryListView}
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.loadCategories()
	}

	var cmd tea.Cmd
	m.categoryList, cmd = m.categoryList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.view = m.formBack
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.form = nil
		m.view = m.formBack
		return m, nil
	case m.saving:
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submitForm()
	case key.Matches(msg, m.keys.next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.form.move(-1)
	}
	return m, m.form.update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.view = VideoListView
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.yes):
		pending := *m.confirm
		m.view = pending.back
		return m, m.deleteEntity(pending)
	case key.Matches(msg, m.keys.no):
		m.view = m.confirm.back
		m.confirm = nil
	}
	return m, nil
}

// navigate applies a page move and loads the new page when the move was accepted. Rejected moves change nothing.
func (m *Model) navigate(move func() bool) tea.Cmd {
	if !move() {
		return nil
	}
	m.cursor = 0
	return m.loadVideos()
}

func nextPageSize(current int) int {
	i := slices.Index(pagination.PageSizes, current)
	return pagination.PageSizes[(i+1)%len(pagination.PageSizes)]
}

func (m *Model) toggleView() {
	m.mode = m.mode.Toggle()
	if m.deps.Views == nil {
		return
	}
	if err := m.deps.Views.Set(m.mode); err != nil {
		m.logger.Warn("failed to save view mode", "error", err)
	}
}

// cycleCategoryFilter steps through no filter and each loaded category.
func (m *Model) cycleCategoryFilter() {
	videos := m.deps.Engine.Videos
	cats := videos.Categories()
	_, current := videos.Filters()

	next := int64(0)
	if current == 0 {
		if len(cats) > 0 {
			next = cats[0].ID
		}
	} else {
		for i, c := range cats {
			if c.ID == current && i+1 < len(cats) {
				next = cats[i+1].ID
			}
		}
	}
	videos.SetCategoryFilter(next)
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.deps.Engine.Videos.Visible())
	m.cursor = max(0, min(m.cursor, n-1))
}

func (m *Model) selectedVideo() (models.Video, bool) {
	visible := m.deps.Engine.Videos.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return models.Video{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) selectedCategory() (models.Category, bool) {
	item, ok := m.categoryList.SelectedItem().(categoryItem)
	if !ok {
		return models.Category{}, false
	}
	return item.category, true
}

func (m *Model) openForm(s *forms.Session, back ViewState) tea.Cmd {
	cats := m.deps.Engine.Videos.Categories()
	if len(cats) == 0 {
		cats = m.deps.Engine.Categories.Items()
	}
	m.form = newForm(s, cats, m.width)
	m.formBack = back
	m.view = FormView
	return m.form.init()
}

func (m *Model) logout() {
	if m.deps.Sessions != nil {
		if err := m.deps.Sessions.Clear(); err != nil {
			m.logger.Warn("failed to clear session", "error", err)
		}
	}
	m.session = nil
	m.view = LoginView
	m.username.SetValue("")
	m.password.SetValue("")
	m.username.Focus()
}

// applyVideos installs a finished load. Loads superseded by a newer request are dropped.
func (m *Model) applyVideos(msg videosLoadedMsg) tea.Cmd {
	videos := m.deps.Engine.Videos
	if !videos.Current(msg.req.Seq) {
		m.logger.Debug("dropping stale video load", "seq", msg.req.Seq, "page", msg.req.Page)
		return nil
	}
	m.loading = false

	if msg.err != nil {
		videos.Fail(msg.req)
		m.setNotice(tasks.Notice{Level: tasks.LevelError, Title: "Error", Message: msg.err.Error()})
		return nil
	}

	if !videos.Apply(msg.load) {
		return nil
	}
	m.clampCursor()

	if state := videos.PageState(); state.CurrentPage != msg.req.Page && state.TotalPages > 0 {
		return m.loadVideos()
	}
	return nil
}

func (m *Model) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := m.deps.Auth.Authenticate(m.ctx, username, password)
		if err != nil {
			return loginMsg{err: err}
		}
		if m.deps.Sessions != nil {
			if err := m.deps.Sessions.Set(*sess); err != nil {
				return loginMsg{err: err}
			}
		}
		return loginMsg{session: sess}
	}
}

// loadVideos issues a request for the current page. The returned command carries the request sequence so a
// slower, older response cannot overwrite a newer one.
func (m *Model) loadVideos() tea.Cmd {
	videos := m.deps.Engine.Videos
	req := videos.Begin()
	m.loading = true
	return func() tea.Msg {
		load, err := videos.Fetch(m.ctx, req)
		return videosLoadedMsg{req: req, load: load, err: err}
	}
}

func (m *Model) loadCategories() tea.Cmd {
	return func() tea.Msg {
		return categoriesLoadedMsg{err: m.deps.Engine.Categories.Load(m.ctx)}
	}
}

// submitForm syncs the inputs and takes the payload on the update loop. The save command only sees that payload,
// and the form ignores edits until the save finishes. Local errors stay on the form and issue no request.
func (m *Model) submitForm() tea.Cmd {
	if m.saving {
		return nil
	}
	if err := m.form.sync(); err != nil {
		m.form.fail(err)
		return nil
	}
	payload, err := m.form.session.Payload()
	if err != nil {
		m.form.fail(err)
		return nil
	}

	m.saving = true
	form := m.form
	engine := m.deps.Engine
	return func() tea.Msg {
		var (
			res *tasks.SaveResult
			err error
		)
		if payload.Entity() == forms.CategorySchema.Entity {
			res, err = engine.SubmitCategory(m.ctx, payload)
		} else {
			res, err = engine.SubmitVideo(m.ctx, payload)
		}
		return savedMsg{form: form, result: res, err: err}
	}
}

func (m *Model) deleteEntity(p pendingDelete) tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		var err error
		if p.entity == "category" {
			err = engine.DeleteCategory(m.ctx, p.id)
		} else {
			err = engine.DeleteVideo(m.ctx, p.id)
		}
		return deletedMsg{entity: p.entity, err: err}
	}
}

func (m *Model) openLink(url string) tea.Cmd {
	return func() tea.Msg {
		if err := shared.OpenBrowser(url); err != nil {
			return noticeMsg(tasks.Notice{Level: tasks.LevelError, Title: "Error", Message: err.Error()})
		}
		return nil
	}
}

// waitForNotice blocks on the engine's notice channel.
func (m *Model) waitForNotice() tea.Cmd {
	if m.deps.Notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.deps.Notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("shopx admin")
	body := fmt.Sprintf("%s\n%s\n%s", title, m.username.View(), m.password.View())
	if m.loginErr != "" {
		body += "\n\n" + styles.err.Render(m.loginErr)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.next, m.keys.back})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderVideos() string {
	videos := m.deps.Engine.Videos
	state := videos.PageState()
	visible := videos.Visible()

	var b strings.Builder
	header := "Videos"
	if m.session != nil {
		header = fmt.Sprintf("Videos · %s", m.session.Username)
	}
	b.WriteString(styles.title.Render(header))
	b.WriteString("\n")

	query, catID := videos.Filters()
	if m.filtering {
		b.WriteString(m.query.View() + "\n")
	} else if query != "" || catID != 0 {
		filters := []string{}
		if query != "" {
			filters = append(filters, fmt.Sprintf("search %q", query))
		}
		if catID != 0 {
			filters = append(filters, "category "+videos.CategoryName(&catID))
		}
		b.WriteString(styles.help.Render("Filtered by "+strings.Join(filters, ", ")) + "\n")
	}

	switch {
	case !videos.Loaded() && m.loading:
		b.WriteString("Loading videos...\n")
	default:
		b.WriteString(formatter.Videos(m.mode, visible, videos.Categories(), max(m.width, 80)))
		b.WriteString("\n")
		if v, ok := m.selectedVideo(); ok {
			b.WriteString(styles.selected.Render(fmt.Sprintf("› #%d %s", v.ID, v.Title)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatter.PageBar(state, videos.Tokens()))
	b.WriteString("\n")
	b.WriteString(formatter.Summary(len(visible), state.TotalItems, "videos"))
	b.WriteString(styles.help.Render(fmt.Sprintf(" · %d per page · %s view", state.PageSize, m.mode)))
	b.WriteString("\n\n")

	if m.help.ShowAll {
		b.WriteString(m.help.View(m.keys))
	} else {
		b.WriteString(m.help.ShortHelpView([]key.Binding{
			m.keys.prevPage, m.keys.nextPage, m.keys.toggle, m.keys.create, m.keys.edit, m.keys.remove, m.keys.help, m.keys.quit,
		}))
	}
	return b.String()
}

func (m *Model) renderCategories() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.create, m.keys.edit, m.keys.remove, m.keys.switchTo, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.categoryList.View(), helpView)
}

func (m *Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	body := m.form.view()
	if m.saving {
		body += "\n" + styles.warn.Render("Saving...")
	}
	return fmt.Sprintf("%s\n%s", body, m.help.ShortHelpView(m.keys.formKeys()))
}

func (m *Model) renderConfirm() string {
	if m.confirm == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete %s %q?", m.confirm.entity, m.confirm.label))
	info := styles.warn.Render("This cannot be undone.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	text := m.notice.String()
	switch m.notice.Level {
	case tasks.LevelError:
		return styles.err.Render(text)
	case tasks.LevelSuccess:
		return styles.ok.Render(text)
	default:
		return styles.As(text, "#626262")
	}
}
