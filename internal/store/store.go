package store

import (
	"sort"
	"sync"
	"time"
)

const (
	defaultMaxThreads        = 1000
	defaultMaxPostsPerThread = 5000
	defaultWatchGrace        = 5 * time.Second
)

// PostKey addresses a post, whose id is only unique within its thread.
type PostKey struct {
	ThreadID int64
	PostID   int64
}

// Options configure a Store. Zero values fall back to defaults.
type Options struct {
	MaxThreads        int
	MaxPostsPerThread int

	// WatchGrace is how long per-key watch bookkeeping survives after the
	// last watcher closes.
	WatchGrace time.Duration

	// Now overrides the clock used for eviction ordering. Tests only.
	Now func() time.Time
}

// Store is the process-wide thread/post cache. See the package
// documentation for the concurrency and merge contracts.
type Store struct {
	mu      sync.RWMutex
	threads map[int64]ThreadEntity
	posts   map[int64]map[int64]PostEntity

	updatingThreads map[int64]struct{}
	updatingPosts   map[PostKey]struct{}

	maxThreads int
	maxPosts   int
	now        func() time.Time

	watch watchHub
}

// New builds an empty Store.
func New(opts Options) *Store {
	if opts.MaxThreads <= 0 {
		opts.MaxThreads = defaultMaxThreads
	}
	if opts.MaxPostsPerThread <= 0 {
		opts.MaxPostsPerThread = defaultMaxPostsPerThread
	}
	if opts.WatchGrace <= 0 {
		opts.WatchGrace = defaultWatchGrace
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		threads:         make(map[int64]ThreadEntity),
		posts:           make(map[int64]map[int64]PostEntity),
		updatingThreads: make(map[int64]struct{}),
		updatingPosts:   make(map[PostKey]struct{}),
		maxThreads:      opts.MaxThreads,
		maxPosts:        opts.MaxPostsPerThread,
		now:             opts.Now,
	}
	s.watch.init(opts.WatchGrace)
	return s
}

// UpsertThreads merge-or-inserts a batch of thread entities. Entities
// without a positive ThreadID are skipped — a placeholder id must never
// become a cache key. Exceeding capacity evicts the globally oldest
// touched entry, one per insert.
func (s *Store) UpsertThreads(entities []ThreadEntity) {
	if len(entities) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[int64]ThreadEntity, len(s.threads)+len(entities))
	for k, v := range s.threads {
		next[k] = v
	}
	published := make([]ThreadEntity, 0, len(entities))
	for _, in := range entities {
		if in.ThreadID <= 0 {
			continue
		}
		merged := in
		if cur, ok := next[in.ThreadID]; ok {
			merged = MergeThread(cur, in)
		}
		merged.Touched = s.now()
		next[in.ThreadID] = merged
		published = append(published, merged)
		if len(next) > s.maxThreads {
			evictOldestThread(next)
		}
	}
	s.threads = next
	for _, e := range published {
		if _, ok := next[e.ThreadID]; ok {
			s.watch.publishThread(e.ThreadID, e)
		}
	}
}

// UpsertPosts replace-or-inserts posts under threadID. The per-thread
// capacity bound evicts the oldest touched posts of that thread only.
func (s *Store) UpsertPosts(threadID int64, posts []PostEntity) {
	if threadID <= 0 || len(posts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[int64]map[int64]PostEntity, len(s.posts)+1)
	for k, v := range s.posts {
		next[k] = v
	}
	tp := make(map[int64]PostEntity, len(next[threadID])+len(posts))
	for k, v := range next[threadID] {
		tp[k] = v
	}
	for _, p := range posts {
		if p.ID <= 0 {
			continue
		}
		p.ThreadID = threadID
		p.Touched = s.now()
		tp[p.ID] = p
	}
	if over := len(tp) - s.maxPosts; over > 0 {
		evictOldestPosts(tp, over)
	}
	next[threadID] = tp
	s.posts = next
	s.watch.publishPosts(threadID, tp)
}

// GetThread returns the cached entity for threadID, if any.
func (s *Store) GetThread(threadID int64) (ThreadEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.threads[threadID]
	return e, ok
}

// GetPost returns the cached post, if any.
func (s *Store) GetPost(threadID, postID int64) (PostEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[threadID][postID]
	return p, ok
}

// Posts projects the given post ids, in order, skipping ids not cached.
func (s *Store) Posts(threadID int64, ids []int64) []PostEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return projectPosts(s.posts[threadID], ids)
}

// UpdateThreadMeta atomically replaces the thread's meta with fn(current).
// A meta-only write never creates a bare entity: absent id is a no-op.
func (s *Store) UpdateThreadMeta(threadID int64, fn func(ThreadMeta) ThreadMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.threads[threadID]
	if !ok {
		return
	}
	cur.Meta = fn(cur.Meta)
	cur.Touched = s.now()

	next := make(map[int64]ThreadEntity, len(s.threads))
	for k, v := range s.threads {
		next[k] = v
	}
	next[threadID] = cur
	s.threads = next
	s.watch.publishThread(threadID, cur)
}

// UpdatePostMeta atomically replaces the post's meta with fn(current).
// No-op when the post is absent.
func (s *Store) UpdatePostMeta(threadID, postID int64, fn func(PostMeta) PostMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[threadID][postID]
	if !ok {
		return
	}
	cur.Meta = fn(cur.Meta)
	cur.Touched = s.now()

	next := make(map[int64]map[int64]PostEntity, len(s.posts))
	for k, v := range s.posts {
		next[k] = v
	}
	tp := make(map[int64]PostEntity, len(next[threadID]))
	for k, v := range next[threadID] {
		tp[k] = v
	}
	tp[postID] = cur
	next[threadID] = tp
	s.posts = next
	s.watch.publishPosts(threadID, tp)
}

// MarkThreadUpdating records an in-flight mutation for threadID. Purely a
// UI affordance against double submission, not a lock.
func (s *Store) MarkThreadUpdating(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatingThreads[threadID] = struct{}{}
}

// MarkThreadUpdated clears the in-flight marker for threadID.
func (s *Store) MarkThreadUpdated(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updatingThreads, threadID)
}

// IsThreadUpdating reports whether a mutation is in flight for threadID.
func (s *Store) IsThreadUpdating(threadID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.updatingThreads[threadID]
	return ok
}

// MarkPostUpdating records an in-flight mutation for a post.
func (s *Store) MarkPostUpdating(threadID, postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatingPosts[PostKey{threadID, postID}] = struct{}{}
}

// MarkPostUpdated clears the in-flight marker for a post.
func (s *Store) MarkPostUpdated(threadID, postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updatingPosts, PostKey{threadID, postID})
}

// IsPostUpdating reports whether a mutation is in flight for the post.
func (s *Store) IsPostUpdating(threadID, postID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.updatingPosts[PostKey{threadID, postID}]
	return ok
}

// WatchThread returns a live view of one thread: the current value (when
// cached) immediately, then every distinct change in write order.
func (s *Store) WatchThread(threadID int64) *ThreadWatch {
	// Registering under the read lock excludes writers, so the seed value
	// and the subscription cannot miss or duplicate an update in between.
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.threads[threadID]
	return s.watch.addThreadWatch(threadID, cur, ok)
}

// WatchPosts returns a live view of the projection of the given post ids,
// starting with the current projection.
func (s *Store) WatchPosts(threadID int64, ids []int64) *PostsWatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := projectPosts(s.posts[threadID], ids)
	return s.watch.addPostsWatch(threadID, ids, cur)
}

func projectPosts(tp map[int64]PostEntity, ids []int64) []PostEntity {
	out := make([]PostEntity, 0, len(ids))
	for _, id := range ids {
		if p, ok := tp[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func evictOldestThread(m map[int64]ThreadEntity) {
	var oldest int64
	var oldestAt time.Time
	first := true
	for id, e := range m {
		if first || e.Touched.Before(oldestAt) {
			oldest, oldestAt, first = id, e.Touched, false
		}
	}
	if !first {
		delete(m, oldest)
	}
}

func evictOldestPosts(tp map[int64]PostEntity, n int) {
	type aged struct {
		id int64
		at time.Time
	}
	all := make([]aged, 0, len(tp))
	for id, p := range tp {
		all = append(all, aged{id, p.Touched})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	for i := 0; i < n && i < len(all); i++ {
		delete(tp, all[i].id)
	}
}
