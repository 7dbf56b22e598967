package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/odlove/tealeaf/internal/forum"
	"github.com/odlove/tealeaf/internal/store"
)

// ErrEmptyPage marks a fetch that succeeded but carried no posts. For
// "load latest" this means "nothing new" and must not surface as an
// error; for other flows it is fatal for that request.
var ErrEmptyPage = errors.New("page has no posts")

// ErrSuperseded marks an initial load whose result was discarded because
// a newer initial load was issued for the same session.
var ErrSuperseded = errors.New("request superseded")

// ValidationError is a page response missing a required block. The fetch
// fails as a whole; the cache is left untouched.
type ValidationError struct {
	Block string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("page response missing %s block", e.Block)
}

// Page is the validated, cache-synchronized result of one fetch.
type Page struct {
	Thread store.ThreadEntity
	Forum  forum.ForumBlock
	Anti   forum.AntiBlock
	Info   forum.PageInfo

	// Posts is the derived sequence: the floor-1 post first when the
	// response carried one, then the remaining posts in fetch order.
	Posts []store.PostEntity

	// CursorIDs is the server's id list for this page (the thread
	// summary's pids), parsed in page order.
	CursorIDs []int64
}

// PostIDs returns the ids of Posts in order.
func (p *Page) PostIDs() []int64 {
	ids := make([]int64, len(p.Posts))
	for i, post := range p.Posts {
		ids[i] = post.ID
	}
	return ids
}

// Loader turns raw page responses into validated Pages and mirrors every
// successful fetch into the cache store.
type Loader struct {
	fetcher forum.PageFetcher
	store   *store.Store
}

// NewLoader builds a Loader over the given fetcher and store.
func NewLoader(f forum.PageFetcher, s *store.Store) *Loader {
	return &Loader{fetcher: f, store: s}
}

// FetchPage fetches one page, validates it, and upserts the thread and
// its posts into the store. Validation failures leave the cache untouched.
func (l *Loader) FetchPage(ctx context.Context, q forum.PageQuery) (*Page, error) {
	resp, err := l.fetcher.FetchPage(ctx, q)
	if err != nil {
		return nil, err
	}
	page, err := buildPage(resp, q.ThreadID)
	if err != nil {
		return nil, err
	}
	l.store.UpsertThreads([]store.ThreadEntity{page.Thread})
	l.store.UpsertPosts(q.ThreadID, page.Posts)
	return page, nil
}

// buildPage validates the response and derives the post sequence. The
// declared thread id is always corrected to the requested one: a zero or
// placeholder id in the payload must never become the cache key.
func buildPage(resp *forum.PageResponse, threadID int64) (*Page, error) {
	if resp == nil || resp.Data == nil {
		return nil, &ValidationError{Block: "data"}
	}
	data := resp.Data
	if len(data.Posts) == 0 && data.FirstFloorPost == nil {
		return nil, ErrEmptyPage
	}
	if data.Page == nil {
		return nil, &ValidationError{Block: "page"}
	}
	if data.Thread == nil || data.Thread.Author == nil {
		return nil, &ValidationError{Block: "thread author"}
	}
	if data.Forum == nil {
		return nil, &ValidationError{Block: "forum"}
	}
	if data.Anti == nil {
		return nil, &ValidationError{Block: "anti"}
	}

	users := make(map[int64]forum.UserInfo, len(data.UserList))
	for _, u := range data.UserList {
		users[u.ID] = u
	}
	threadAuthor := *data.Thread.Author

	first, rest := splitFirstFloor(data, threadAuthor, users)
	posts := make([]store.PostEntity, 0, len(rest)+1)
	if first != nil {
		posts = append(posts, store.PostFromInfo(*first, threadID))
	}
	for _, info := range rest {
		posts = append(posts, store.PostFromInfo(info, threadID))
	}

	thread := store.ThreadFromInfo(*data.Thread)
	thread.ThreadID = threadID

	return &Page{
		Thread:    thread,
		Forum:     *data.Forum,
		Anti:      *data.Anti,
		Info:      *data.Page,
		Posts:     posts,
		CursorIDs: parseCursorIDs(data.Thread.PostIDs),
	}, nil
}

// splitFirstFloor separates the head post from the rest. The head comes
// from the post list when it is there, otherwise from the separately
// carried first-floor block, attributed to the thread author.
func splitFirstFloor(data *forum.PageData, threadAuthor forum.UserInfo, users map[int64]forum.UserInfo) (*forum.PostInfo, []forum.PostInfo) {
	var first *forum.PostInfo
	rest := make([]forum.PostInfo, 0, len(data.Posts))
	for _, info := range data.Posts {
		info = resolveAuthor(info, users)
		if info.Floor == 1 && first == nil {
			cp := info
			first = &cp
			continue
		}
		if info.Floor == 1 {
			continue
		}
		rest = append(rest, info)
	}
	if first == nil && data.FirstFloorPost != nil {
		cp := *data.FirstFloorPost
		if cp.Author == nil {
			cp.Author = &threadAuthor
			cp.AuthorID = threadAuthor.ID
		}
		first = &cp
	}
	return first, rest
}

func resolveAuthor(info forum.PostInfo, users map[int64]forum.UserInfo) forum.PostInfo {
	if info.Author != nil {
		return info
	}
	if u, ok := users[info.AuthorID]; ok {
		cp := u
		info.Author = &cp
	}
	return info
}

func parseCursorIDs(pids string) []int64 {
	if strings.TrimSpace(pids) == "" {
		return nil
	}
	parts := strings.Split(pids, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
