package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/odlove/tealeaf/internal/forum"
	"github.com/odlove/tealeaf/internal/logging"
	"github.com/odlove/tealeaf/internal/store"
)

// Status is the top-level screen state. Sub-flows (more, previous,
// latest, reply) never change it once Loaded.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

// Config fixes a session's thread and view parameters.
type Config struct {
	ThreadID int64
	ForumID  int64

	SeeAuthorOnly bool
	Sort          forum.SortMode

	// SourceTag and Mark shape the fetch for mention and favorite entry
	// points; both are empty/false for plain navigation.
	SourceTag string
	Mark      bool
}

// Session owns one screen's window over a thread. All methods are safe
// for concurrent use; the window only ever reflects complete, validated
// pages.
type Session struct {
	loader *Loader
	cfg    Config

	mu  sync.Mutex
	seq uint64

	status Status
	err    error

	loadingMore     bool
	loadingPrevious bool
	loadingLatest   bool
	loadingReply    bool

	postIDs []int64
	known   map[int64]struct{}

	firstPostID int64
	lastFloor   int

	currentPageMin int
	currentPageMax int
	totalPages     int
	hasMore        bool
	hasPrevious    bool
	nextCursor     int64

	latestBatch []int64

	anti  forum.AntiBlock
	forum forum.ForumBlock
}

// NewSession builds an idle session over the loader.
func NewSession(l *Loader, cfg Config) *Session {
	return &Session{
		loader: l,
		cfg:    cfg,
		known:  make(map[int64]struct{}),
	}
}

// Snapshot is an immutable copy of the session's window and flags.
type Snapshot struct {
	Status Status
	Err    error

	ThreadID    int64
	FirstPostID int64
	PostIDs     []int64
	LatestBatch []int64

	HasMore          bool
	HasPrevious      bool
	NextCursorPostID int64
	CurrentPageMin   int
	CurrentPageMax   int
	TotalPages       int

	LoadingMore     bool
	LoadingPrevious bool
	LoadingLatest   bool
	LoadingReply    bool

	Sort          forum.SortMode
	SeeAuthorOnly bool
	Anti          forum.AntiBlock
	Forum         forum.ForumBlock
}

// Snapshot returns a copy of the current window state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Status:           s.status,
		Err:              s.err,
		ThreadID:         s.cfg.ThreadID,
		FirstPostID:      s.firstPostID,
		PostIDs:          slices.Clone(s.postIDs),
		LatestBatch:      slices.Clone(s.latestBatch),
		HasMore:          s.hasMore,
		HasPrevious:      s.hasPrevious,
		NextCursorPostID: s.nextCursor,
		CurrentPageMin:   s.currentPageMin,
		CurrentPageMax:   s.currentPageMax,
		TotalPages:       s.totalPages,
		LoadingMore:      s.loadingMore,
		LoadingPrevious:  s.loadingPrevious,
		LoadingLatest:    s.loadingLatest,
		LoadingReply:     s.loadingReply,
		Sort:             s.cfg.Sort,
		SeeAuthorOnly:    s.cfg.SeeAuthorOnly,
		Anti:             s.anti,
		Forum:            s.forum,
	}
}

// SetSort changes the sort mode. The caller is expected to follow with
// LoadInitial; the existing window keeps its old order until then.
func (s *Session) SetSort(m forum.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Sort = m
}

// SetSeeAuthorOnly toggles the author-only filter. The caller is expected
// to follow with LoadInitial.
func (s *Session) SetSeeAuthorOnly(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SeeAuthorOnly = v
}

func (s *Session) query() forum.PageQuery {
	return forum.PageQuery{
		ThreadID:      s.cfg.ThreadID,
		ForumID:       s.cfg.ForumID,
		SeeAuthorOnly: s.cfg.SeeAuthorOnly,
		Sort:          s.cfg.Sort,
		SourceTag:     s.cfg.SourceTag,
		Mark:          s.cfg.Mark,
	}
}

// LoadInitial fetches the given page and replaces the window with it.
// A non-zero targetPostID anchors the page on that post. If a newer
// LoadInitial is issued before this one returns, the stale result is
// dropped and ErrSuperseded reported.
func (s *Session) LoadInitial(ctx context.Context, page int, targetPostID int64) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = StatusLoading
	s.err = nil
	q := s.query()
	q.Page = page
	q.PostID = targetPostID
	s.mu.Unlock()

	pg, err := s.loader.FetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return ErrSuperseded
	}
	if err != nil {
		s.status = StatusError
		s.err = err
		s.resetWindowLocked()
		return err
	}
	s.applyInitialLocked(pg)
	return nil
}

// LoadMore fetches the page after the window's forward edge and appends
// its unseen posts. No-op while another LoadMore is in flight or when the
// server reported no further pages. Failure clears the in-flight flag and
// nothing else.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusLoaded || s.loadingMore || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loadingMore = true
	q := s.query()
	q.Page = s.currentPageMax + 1
	q.PostID = s.nextCursor
	s.mu.Unlock()

	pg, err := s.loader.FetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingMore = false
	if err != nil {
		logging.Warn.Printf("load more failed for thread %d: %v", s.cfg.ThreadID, err)
		return err
	}
	newIDs := s.claimNewLocked(pg.Posts)
	s.postIDs = append(s.postIDs, newIDs...)
	s.advanceForwardLocked(pg)
	return nil
}

// LoadPrevious fetches the page before the window's backward edge and
// prepends its unseen posts, preserving their page order.
func (s *Session) LoadPrevious(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusLoaded || s.loadingPrevious || !s.hasPrevious {
		s.mu.Unlock()
		return nil
	}
	s.loadingPrevious = true
	q := s.query()
	q.Page = s.currentPageMin - 1
	if q.Page < 1 {
		q.Page = 1
	}
	q.Backward = true
	s.mu.Unlock()

	pg, err := s.loader.FetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingPrevious = false
	if err != nil {
		logging.Warn.Printf("load previous failed for thread %d: %v", s.cfg.ThreadID, err)
		return err
	}
	newIDs := s.claimNewLocked(pg.Posts)
	s.postIDs = append(newIDs, s.postIDs...)
	s.hasPrevious = pg.Info.HasPrevious != 0
	if pg.Info.CurrentPage > 0 && pg.Info.CurrentPage < s.currentPageMin {
		s.currentPageMin = pg.Info.CurrentPage
	}
	if pg.Info.TotalPages > 0 {
		s.totalPages = pg.Info.TotalPages
	}
	return nil
}

// LoadLatest asks the server for posts newer than the newest the window
// knows. Finding nothing new is success and leaves the window untouched.
func (s *Session) LoadLatest(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusLoaded || s.loadingLatest {
		s.mu.Unlock()
		return nil
	}
	s.loadingLatest = true
	watermark := newestKnownID(s.postIDs)
	q := s.query()
	q.Page = s.currentPageMax
	q.PostID = watermark
	q.LastPostID = watermark
	s.mu.Unlock()

	pg, err := s.loader.FetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingLatest = false
	if errors.Is(err, ErrEmptyPage) {
		return nil
	}
	if err != nil {
		logging.Warn.Printf("load latest failed for thread %d: %v", s.cfg.ThreadID, err)
		return err
	}
	newIDs := s.claimNewLocked(pg.Posts)
	if len(newIDs) == 0 {
		return nil
	}
	if s.cfg.Sort == forum.SortDesc {
		slices.Reverse(newIDs)
		s.postIDs = append(newIDs, s.postIDs...)
	} else {
		s.postIDs = append(s.postIDs, newIDs...)
	}
	s.advanceForwardLocked(pg)
	return nil
}

// LoadMyReply fetches the page anchored on the caller's just-created post
// and splices it in when it extends the window contiguously. A batch that
// does not touch the window's edge is parked in LatestBatch for the
// screen to surface separately instead of punching a gap into the window.
func (s *Session) LoadMyReply(ctx context.Context, postID int64) error {
	s.mu.Lock()
	if s.status != StatusLoaded || s.loadingReply {
		s.mu.Unlock()
		return nil
	}
	s.loadingReply = true
	q := s.query()
	q.PostID = postID
	s.mu.Unlock()

	pg, err := s.loader.FetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingReply = false
	if err != nil {
		logging.Warn.Printf("load reply failed for thread %d: %v", s.cfg.ThreadID, err)
		return err
	}

	fetched := repliesOf(pg.Posts)
	if len(fetched) == 0 {
		return nil
	}
	contiguous := fetched[0].Floor == s.lastFloor+1 ||
		pg.Info.CurrentPage == s.currentPageMax
	if !contiguous {
		if batch := unseenIDs(fetched, s.known); len(batch) > 0 {
			s.latestBatch = idsOf(fetched)
		}
		return nil
	}
	newIDs := s.claimNewLocked(pg.Posts)
	if s.cfg.Sort == forum.SortDesc {
		slices.Reverse(newIDs)
		s.postIDs = append(newIDs, s.postIDs...)
	} else {
		s.postIDs = append(s.postIDs, newIDs...)
	}
	s.advanceForwardLocked(pg)
	return nil
}

// ClearLatestBatch drops the parked out-of-window batch, typically after
// the screen has shown it.
func (s *Session) ClearLatestBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestBatch = nil
}

func (s *Session) applyInitialLocked(pg *Page) {
	s.status = StatusLoaded
	s.err = nil
	s.postIDs = pg.PostIDs()
	s.known = make(map[int64]struct{}, len(s.postIDs))
	for _, id := range s.postIDs {
		s.known[id] = struct{}{}
	}
	s.firstPostID = 0
	s.lastFloor = 0
	for _, p := range pg.Posts {
		if p.Floor == 1 {
			s.firstPostID = p.ID
		}
		if p.Floor > s.lastFloor {
			s.lastFloor = p.Floor
		}
	}
	s.currentPageMin = pg.Info.CurrentPage
	s.currentPageMax = pg.Info.CurrentPage
	s.totalPages = pg.Info.TotalPages
	s.hasMore = pg.Info.HasMore != 0
	s.hasPrevious = pg.Info.HasPrevious != 0
	s.nextCursor = nextCursorPostID(pg.CursorIDs, s.known, s.cfg.Sort)
	s.latestBatch = nil
	s.anti = pg.Anti
	s.forum = pg.Forum
}

func (s *Session) resetWindowLocked() {
	s.postIDs = nil
	s.known = make(map[int64]struct{})
	s.firstPostID = 0
	s.lastFloor = 0
	s.currentPageMin = 0
	s.currentPageMax = 0
	s.totalPages = 0
	s.hasMore = false
	s.hasPrevious = false
	s.nextCursor = 0
	s.latestBatch = nil
}

// advanceForwardLocked folds a forward-edge page's pagination and cursor
// into the window.
func (s *Session) advanceForwardLocked(pg *Page) {
	if pg.Info.CurrentPage > s.currentPageMax {
		s.currentPageMax = pg.Info.CurrentPage
	}
	if pg.Info.TotalPages > 0 {
		s.totalPages = pg.Info.TotalPages
	}
	s.hasMore = pg.Info.HasMore != 0
	s.nextCursor = nextCursorPostID(pg.CursorIDs, s.known, s.cfg.Sort)
}

// claimNewLocked filters a fetched sequence down to ids the window does
// not hold yet, skipping the floor-1 post, and marks them known. Floors
// advance s.lastFloor.
func (s *Session) claimNewLocked(posts []store.PostEntity) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		if p.Floor == 1 {
			continue
		}
		if _, ok := s.known[p.ID]; ok {
			continue
		}
		s.known[p.ID] = struct{}{}
		ids = append(ids, p.ID)
		if p.Floor > s.lastFloor {
			s.lastFloor = p.Floor
		}
	}
	return ids
}

// nextCursorPostID derives the anchor for the next forward fetch from the
// server's page-order id list. Descending order always anchors on the
// first id; ascending anchors on the last id not already in the window,
// or 0 when the window has consumed them all.
func nextCursorPostID(cursorIDs []int64, known map[int64]struct{}, sort forum.SortMode) int64 {
	if len(cursorIDs) == 0 {
		return 0
	}
	if sort == forum.SortDesc {
		return cursorIDs[0]
	}
	var last int64
	for _, id := range cursorIDs {
		if _, ok := known[id]; !ok {
			last = id
		}
	}
	return last
}

// newestKnownID is the watermark for "load latest": ids grow with
// posting time, so the largest known id is the newest post the window has.
func newestKnownID(ids []int64) int64 {
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max
}

func repliesOf(posts []store.PostEntity) []store.PostEntity {
	out := make([]store.PostEntity, 0, len(posts))
	for _, p := range posts {
		if p.Floor != 1 {
			out = append(out, p)
		}
	}
	return out
}

func idsOf(posts []store.PostEntity) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func unseenIDs(posts []store.PostEntity, known map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		if _, ok := known[p.ID]; !ok {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
