package store

import (
	"slices"
	"sync"
	"time"
)

// ThreadWatch is a live view of one thread entity. Receive from C; Close
// when the screen goes away.
type ThreadWatch struct {
	C      <-chan ThreadEntity
	cancel func()
}

// Close detaches the watch. C is closed once pending values drain.
func (w *ThreadWatch) Close() { w.cancel() }

// PostsWatch is a live view of an ordered post-id projection.
type PostsWatch struct {
	C      <-chan []PostEntity
	cancel func()
}

// Close detaches the watch. C is closed once pending values drain.
func (w *PostsWatch) Close() { w.cancel() }

// pipe is one subscription's delivery machinery: an ordered queue drained
// by its own goroutine. Publishers only append, so a slow or absent
// consumer can never block a store write. Consecutive equal values are
// dropped, which keeps re-publication of unchanged projections silent.
type pipe[T any] struct {
	out  chan T
	done chan struct{}
	wake chan struct{}

	mu     sync.Mutex
	queue  []T
	last   T
	seeded bool
	closed bool

	eq func(a, b T) bool
}

func newPipe[T any](eq func(a, b T) bool) *pipe[T] {
	p := &pipe[T]{
		out:  make(chan T),
		done: make(chan struct{}),
		wake: make(chan struct{}, 1),
		eq:   eq,
	}
	go p.forward()
	return p
}

func (p *pipe[T]) publish(v T) {
	p.mu.Lock()
	if p.closed || (p.seeded && p.eq(p.last, v)) {
		p.mu.Unlock()
		return
	}
	p.last = v
	p.seeded = true
	p.queue = append(p.queue, v)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *pipe[T]) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.done)
}

func (p *pipe[T]) forward() {
	defer close(p.out)
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			v := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			select {
			case p.out <- v:
			case <-p.done:
				return
			}
		}
	}
}

type postsPipe struct {
	ids []int64
	p   *pipe[[]PostEntity]
}

// watchHub tracks the per-key watcher lists. Empty key slots linger for a
// grace period after the last watcher closes so a quick navigate-away-and-
// back does not churn timers and allocations; cached entities are never
// affected by this teardown.
type watchHub struct {
	mu      sync.Mutex
	grace   time.Duration
	threads map[int64][]*pipe[ThreadEntity]
	posts   map[int64][]*postsPipe
	timers  map[watchKey]*time.Timer
}

type watchKey struct {
	threadID int64
	posts    bool
}

func (h *watchHub) init(grace time.Duration) {
	h.grace = grace
	h.threads = make(map[int64][]*pipe[ThreadEntity])
	h.posts = make(map[int64][]*postsPipe)
	h.timers = make(map[watchKey]*time.Timer)
}

func (h *watchHub) addThreadWatch(threadID int64, cur ThreadEntity, seed bool) *ThreadWatch {
	p := newPipe[ThreadEntity](func(a, b ThreadEntity) bool { return a == b })
	if seed {
		p.publish(cur)
	}
	h.mu.Lock()
	h.cancelTeardown(watchKey{threadID, false})
	h.threads[threadID] = append(h.threads[threadID], p)
	h.mu.Unlock()

	return &ThreadWatch{
		C: p.out,
		cancel: func() {
			p.close()
			h.dropThreadWatch(threadID, p)
		},
	}
}

func (h *watchHub) addPostsWatch(threadID int64, ids []int64, cur []PostEntity) *PostsWatch {
	pp := &postsPipe{
		ids: slices.Clone(ids),
		p:   newPipe[[]PostEntity](slices.Equal[[]PostEntity]),
	}
	pp.p.publish(cur)
	h.mu.Lock()
	h.cancelTeardown(watchKey{threadID, true})
	h.posts[threadID] = append(h.posts[threadID], pp)
	h.mu.Unlock()

	return &PostsWatch{
		C: pp.p.out,
		cancel: func() {
			pp.p.close()
			h.dropPostsWatch(threadID, pp)
		},
	}
}

func (h *watchHub) publishThread(threadID int64, e ThreadEntity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.threads[threadID] {
		p.publish(e)
	}
}

func (h *watchHub) publishPosts(threadID int64, tp map[int64]PostEntity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, pp := range h.posts[threadID] {
		pp.p.publish(projectPosts(tp, pp.ids))
	}
}

func (h *watchHub) dropThreadWatch(threadID int64, p *pipe[ThreadEntity]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.threads[threadID]
	for i, q := range list {
		if q == p {
			h.threads[threadID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.threads[threadID]) == 0 {
		h.scheduleTeardown(watchKey{threadID, false})
	}
}

func (h *watchHub) dropPostsWatch(threadID int64, pp *postsPipe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.posts[threadID]
	for i, q := range list {
		if q == pp {
			h.posts[threadID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.posts[threadID]) == 0 {
		h.scheduleTeardown(watchKey{threadID, true})
	}
}

// scheduleTeardown arms the grace timer for a now-empty key slot. Caller
// holds h.mu.
func (h *watchHub) scheduleTeardown(k watchKey) {
	if t, ok := h.timers[k]; ok {
		t.Stop()
	}
	h.timers[k] = time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.timers, k)
		if k.posts {
			if len(h.posts[k.threadID]) == 0 {
				delete(h.posts, k.threadID)
			}
		} else {
			if len(h.threads[k.threadID]) == 0 {
				delete(h.threads, k.threadID)
			}
		}
	})
}

// cancelTeardown disarms a pending grace timer on re-watch. Caller holds
// h.mu.
func (h *watchHub) cancelTeardown(k watchKey) {
	if t, ok := h.timers[k]; ok {
		t.Stop()
		delete(h.timers, k)
	}
}
