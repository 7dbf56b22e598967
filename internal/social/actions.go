package social

import (
	"context"
	"fmt"
	"strconv"

	"github.com/odlove/tealeaf/internal/forum"
	"github.com/odlove/tealeaf/internal/logging"
	"github.com/odlove/tealeaf/internal/store"
)

// Actions is the set of optimistic mutations over one mutator and store.
type Actions struct {
	mut   forum.Mutator
	store *store.Store
}

// New builds Actions over the given mutator and store.
func New(mut forum.Mutator, st *store.Store) *Actions {
	return &Actions{mut: mut, store: st}
}

// AgreeThread toggles the agree state of a cached thread. No-op while a
// mutation for the thread is already in flight.
func (a *Actions) AgreeThread(ctx context.Context, threadID int64) error {
	cur, ok := a.store.GetThread(threadID)
	if !ok {
		return fmt.Errorf("thread %d not cached", threadID)
	}
	if a.store.IsThreadUpdating(threadID) {
		return nil
	}
	a.store.MarkThreadUpdating(threadID)
	defer a.store.MarkThreadUpdated(threadID)

	prev := cur.Meta
	agreeing := !prev.HasAgreed
	a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
		m.HasAgreed = agreeing
		m.AgreeCount = shiftCount(m.AgreeCount, agreeing)
		return m
	})

	err := a.mut.Agree(ctx, forum.AgreeRequest{
		ThreadID:  strconv.FormatInt(threadID, 10),
		PostID:    strconv.FormatInt(cur.FirstPostID, 10),
		HasAgreed: leavingState(prev.HasAgreed),
		ObjType:   forum.ObjTypeThread,
	})
	if err != nil {
		logging.Warn.Printf("agree thread %d failed, rolling back: %v", threadID, err)
		a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
			m.HasAgreed = prev.HasAgreed
			m.AgreeCount = prev.AgreeCount
			return m
		})
		return err
	}
	return nil
}

// AgreePost toggles the agree state of a cached post.
func (a *Actions) AgreePost(ctx context.Context, threadID, postID int64) error {
	cur, ok := a.store.GetPost(threadID, postID)
	if !ok {
		return fmt.Errorf("post %d/%d not cached", threadID, postID)
	}
	if a.store.IsPostUpdating(threadID, postID) {
		return nil
	}
	a.store.MarkPostUpdating(threadID, postID)
	defer a.store.MarkPostUpdated(threadID, postID)

	prev := cur.Meta
	agreeing := !prev.HasAgreed
	a.store.UpdatePostMeta(threadID, postID, func(m store.PostMeta) store.PostMeta {
		m.HasAgreed = agreeing
		m.AgreeCount = shiftCount(m.AgreeCount, agreeing)
		return m
	})

	err := a.mut.Agree(ctx, forum.AgreeRequest{
		ThreadID:  strconv.FormatInt(threadID, 10),
		PostID:    strconv.FormatInt(postID, 10),
		HasAgreed: leavingState(prev.HasAgreed),
		ObjType:   forum.ObjTypePost,
	})
	if err != nil {
		logging.Warn.Printf("agree post %d/%d failed, rolling back: %v", threadID, postID, err)
		a.store.UpdatePostMeta(threadID, postID, func(m store.PostMeta) store.PostMeta {
			m.HasAgreed = prev.HasAgreed
			m.AgreeCount = prev.AgreeCount
			return m
		})
		return err
	}
	return nil
}

// AddFavorite bookmarks a cached thread, anchored at markPostID.
func (a *Actions) AddFavorite(ctx context.Context, threadID, markPostID int64) error {
	cur, ok := a.store.GetThread(threadID)
	if !ok {
		return fmt.Errorf("thread %d not cached", threadID)
	}
	if a.store.IsThreadUpdating(threadID) {
		return nil
	}
	a.store.MarkThreadUpdating(threadID)
	defer a.store.MarkThreadUpdated(threadID)

	prev := cur.Meta
	a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
		m.CollectStatus = store.Collected
		m.CollectMarkPostID = markPostID
		return m
	})

	if err := a.mut.AddFavorite(ctx, threadID, markPostID); err != nil {
		logging.Warn.Printf("favorite thread %d failed, rolling back: %v", threadID, err)
		a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
			m.CollectStatus = prev.CollectStatus
			m.CollectMarkPostID = prev.CollectMarkPostID
			return m
		})
		return err
	}
	return nil
}

// RemoveFavorite drops a thread bookmark. tbs is the anti-spam token from
// the most recent page fetch.
func (a *Actions) RemoveFavorite(ctx context.Context, threadID, forumID int64, tbs string) error {
	cur, ok := a.store.GetThread(threadID)
	if !ok {
		return fmt.Errorf("thread %d not cached", threadID)
	}
	if a.store.IsThreadUpdating(threadID) {
		return nil
	}
	a.store.MarkThreadUpdating(threadID)
	defer a.store.MarkThreadUpdated(threadID)

	prev := cur.Meta
	a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
		m.CollectStatus = store.CollectNone
		m.CollectMarkPostID = 0
		return m
	})

	if err := a.mut.RemoveFavorite(ctx, threadID, forumID, tbs); err != nil {
		logging.Warn.Printf("unfavorite thread %d failed, rolling back: %v", threadID, err)
		a.store.UpdateThreadMeta(threadID, func(m store.ThreadMeta) store.ThreadMeta {
			m.CollectStatus = prev.CollectStatus
			m.CollectMarkPostID = prev.CollectMarkPostID
			return m
		})
		return err
	}
	return nil
}

// MoveFavoriteMark re-anchors an existing bookmark, typically to the
// reader's current position. The add endpoint doubles as the update call.
func (a *Actions) MoveFavoriteMark(ctx context.Context, threadID, markPostID int64) error {
	cur, ok := a.store.GetThread(threadID)
	if !ok {
		return fmt.Errorf("thread %d not cached", threadID)
	}
	if cur.Meta.CollectStatus != store.Collected {
		return fmt.Errorf("thread %d is not bookmarked", threadID)
	}
	return a.AddFavorite(ctx, threadID, markPostID)
}

// leavingState encodes the pre-toggle agree state the endpoint expects.
func leavingState(hasAgreed bool) int {
	if hasAgreed {
		return 1
	}
	return 0
}

func shiftCount(n int, up bool) int {
	if up {
		return n + 1
	}
	if n > 0 {
		return n - 1
	}
	return 0
}
