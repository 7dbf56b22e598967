package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/odlove/tealeaf/internal/prefs"
	"github.com/odlove/tealeaf/internal/session"
	"github.com/odlove/tealeaf/internal/social"
	"github.com/odlove/tealeaf/internal/store"
)

// Deps are the collaborators the screen renders and drives.
type Deps struct {
	Store   *store.Store
	Session *session.Session
	Actions *social.Actions

	Prefs     prefs.Prefs
	PrefsPath string
}

type refreshMsg struct{ err error }
type actionMsg struct{ err error }
type threadMsg store.ThreadEntity

// postsMsg carries its watch so a delivery from an already-replaced
// subscription can be recognized and not re-armed.
type postsMsg struct {
	watch *store.PostsWatch
	posts []store.PostEntity
}

// Model is the bubbletea model for the thread screen.
type Model struct {
	deps  Deps
	theme Theme
	keys  keyMap
	help  help.Model
	spin  spinner.Model
	vp    viewport.Model

	width  int
	height int
	ready  bool

	thread store.ThreadEntity
	posts  []store.PostEntity
	snap   session.Snapshot

	selected int
	notice   string

	threadWatch *store.ThreadWatch
	postsWatch  *store.PostsWatch
}

// New builds the thread screen model.
func New(deps Deps) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{
		deps:  deps,
		theme: themeByName(deps.Prefs.Theme),
		keys:  defaultKeys(),
		help:  help.New(),
		spin:  sp,
	}
}

// Init starts the thread watch and kicks off the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadInitialCmd())
}

func (m Model) loadInitialCmd() tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		return refreshMsg{err: sess.LoadInitial(context.Background(), 1, 0)}
	}
}

func (m Model) loadMoreCmd() tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		return refreshMsg{err: sess.LoadMore(context.Background())}
	}
}

func (m Model) loadPreviousCmd() tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		return refreshMsg{err: sess.LoadPrevious(context.Background())}
	}
}

func (m Model) loadLatestCmd() tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		return refreshMsg{err: sess.LoadLatest(context.Background())}
	}
}

func (m Model) agreeCmd(p store.PostEntity) tea.Cmd {
	actions := m.deps.Actions
	threadID := m.snap.ThreadID
	return func() tea.Msg {
		if p.Floor == 1 {
			return actionMsg{err: actions.AgreeThread(context.Background(), threadID)}
		}
		return actionMsg{err: actions.AgreePost(context.Background(), threadID, p.ID)}
	}
}

func (m Model) favoriteCmd(markPostID int64) tea.Cmd {
	actions := m.deps.Actions
	snap := m.snap
	bookmarked := m.thread.Meta.CollectStatus == store.Collected
	return func() tea.Msg {
		if bookmarked {
			return actionMsg{err: actions.RemoveFavorite(context.Background(), snap.ThreadID, snap.Forum.ID, snap.Anti.TBS)}
		}
		return actionMsg{err: actions.AddFavorite(context.Background(), snap.ThreadID, markPostID)}
	}
}

// awaitThreadCmd re-arms after every delivery so the watch keeps flowing
// into the program.
func awaitThreadCmd(w *store.ThreadWatch) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-w.C
		if !ok {
			return nil
		}
		return threadMsg(e)
	}
}

func awaitPostsCmd(w *store.PostsWatch) tea.Cmd {
	return func() tea.Msg {
		ps, ok := <-w.C
		if !ok {
			return nil
		}
		return postsMsg{watch: w, posts: ps}
	}
}

// resubscribe points the watches at the session's current window.
func (m *Model) resubscribe() tea.Cmd {
	var cmds []tea.Cmd
	if m.threadWatch == nil {
		m.threadWatch = m.deps.Store.WatchThread(m.snap.ThreadID)
		cmds = append(cmds, awaitThreadCmd(m.threadWatch))
	}
	if m.postsWatch != nil {
		m.postsWatch.Close()
	}
	m.postsWatch = m.deps.Store.WatchPosts(m.snap.ThreadID, m.snap.PostIDs)
	cmds = append(cmds, awaitPostsCmd(m.postsWatch))
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		headerLines := 3
		footerLines := 2
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerLines-footerLines)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerLines - footerLines
		}
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		m.snap = m.deps.Session.Snapshot()
		m.notice = ""
		if msg.err != nil && m.snap.Status != session.StatusError {
			m.notice = msg.err.Error()
		}
		m.posts = m.deps.Store.Posts(m.snap.ThreadID, m.snap.PostIDs)
		m.clampSelection()
		m.syncViewport()
		if m.snap.Status == session.StatusLoaded {
			return m, m.resubscribe()
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil

	case threadMsg:
		m.thread = store.ThreadEntity(msg)
		m.syncViewport()
		return m, awaitThreadCmd(m.threadWatch)

	case postsMsg:
		if msg.watch != m.postsWatch {
			return m, nil
		}
		m.posts = msg.posts
		m.clampSelection()
		m.syncViewport()
		return m, awaitPostsCmd(m.postsWatch)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeWatches()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.posts)-1 {
			m.selected++
		}
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.More):
		return m, m.loadMoreCmd()

	case key.Matches(msg, m.keys.Previous):
		return m, m.loadPreviousCmd()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadLatestCmd()

	case key.Matches(msg, m.keys.Agree):
		if p, ok := m.selectedPost(); ok {
			return m, m.agreeCmd(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		mark := m.snap.FirstPostID
		if p, ok := m.selectedPost(); ok {
			mark = p.ID
		}
		return m, m.favoriteCmd(mark)

	case key.Matches(msg, m.keys.ToggleSort):
		return m.toggleSort()

	case key.Matches(msg, m.keys.ToggleAuthor):
		return m.toggleAuthor()
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) toggleSort() (tea.Model, tea.Cmd) {
	mode := m.snap.Sort.Toggle()
	m.deps.Session.SetSort(mode)
	m.deps.Prefs.Sort = prefs.SortName(mode)
	m.savePrefs()
	return m, m.loadInitialCmd()
}

func (m Model) toggleAuthor() (tea.Model, tea.Cmd) {
	m.deps.Prefs.SeeAuthorOnly = !m.deps.Prefs.SeeAuthorOnly
	m.deps.Session.SetSeeAuthorOnly(m.deps.Prefs.SeeAuthorOnly)
	m.savePrefs()
	return m, m.loadInitialCmd()
}

// savePrefs is best effort; a read-only home dir should not break the UI.
func (m Model) savePrefs() {
	_ = prefs.Save(m.deps.PrefsPath, m.deps.Prefs)
}

func (m Model) selectedPost() (store.PostEntity, bool) {
	if m.selected < 0 || m.selected >= len(m.posts) {
		return store.PostEntity{}, false
	}
	return m.posts[m.selected], true
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.posts) {
		m.selected = len(m.posts) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) closeWatches() {
	if m.threadWatch != nil {
		m.threadWatch.Close()
	}
	if m.postsWatch != nil {
		m.postsWatch.Close()
	}
}
