package store

import (
	"fmt"
	"testing"
	"time"
)

// testClock ticks one second per call so eviction order is deterministic.
func testClock() func() time.Time {
	base := time.Unix(1_700_000_000, 0)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func thread(id int64, title string) ThreadEntity {
	return ThreadEntity{ThreadID: id, Title: title, Presence: FieldTitle}
}

func post(id int64, floor int) PostEntity {
	return PostEntity{ID: id, Floor: floor}
}

func TestUpsertThreadsMergesExisting(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	s.UpsertThreads([]ThreadEntity{thread(77, "night train")})
	s.UpsertThreads([]ThreadEntity{{
		ThreadID:   77,
		ReplyCount: 12,
		Presence:   FieldReplyCount,
	}})

	got, ok := s.GetThread(77)
	if !ok {
		t.Fatalf("thread 77 missing")
	}
	if got.Title != "night train" || got.ReplyCount != 12 {
		t.Fatalf("merge lost fields: %+v", got)
	}
}

func TestUpsertThreadsSkipsPlaceholderIDs(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	s.UpsertThreads([]ThreadEntity{thread(0, "ghost"), thread(-3, "ghost")})
	if _, ok := s.GetThread(0); ok {
		t.Fatalf("zero id cached")
	}
	if _, ok := s.GetThread(-3); ok {
		t.Fatalf("negative id cached")
	}
}

func TestUpsertThreadsEvictsOldestTouched(t *testing.T) {
	t.Parallel()
	s := New(Options{MaxThreads: 3, Now: testClock()})
	s.UpsertThreads([]ThreadEntity{thread(1, "a"), thread(2, "b"), thread(3, "c")})

	// Touch 1 so 2 becomes the oldest entry.
	s.UpsertThreads([]ThreadEntity{thread(1, "a2")})
	s.UpsertThreads([]ThreadEntity{thread(4, "d")})

	if _, ok := s.GetThread(2); ok {
		t.Fatalf("oldest thread survived eviction")
	}
	for _, id := range []int64{1, 3, 4} {
		if _, ok := s.GetThread(id); !ok {
			t.Fatalf("thread %d evicted wrongly", id)
		}
	}
}

func TestUpsertThreadsBatchOverCapacityStaysBounded(t *testing.T) {
	t.Parallel()
	const limit = 5
	s := New(Options{MaxThreads: limit, Now: testClock()})
	batch := make([]ThreadEntity, 0, limit*3)
	for i := 1; i <= limit*3; i++ {
		batch = append(batch, thread(int64(i), fmt.Sprintf("t%d", i)))
	}
	s.UpsertThreads(batch)

	alive := 0
	for i := 1; i <= limit*3; i++ {
		if _, ok := s.GetThread(int64(i)); ok {
			alive++
		}
	}
	if alive != limit {
		t.Fatalf("cache holds %d threads, want %d", alive, limit)
	}
	if _, ok := s.GetThread(int64(limit * 3)); !ok {
		t.Fatalf("newest insert evicted")
	}
}

func TestUpsertPostsEvictionIsPerThread(t *testing.T) {
	t.Parallel()
	s := New(Options{MaxPostsPerThread: 2, Now: testClock()})
	s.UpsertPosts(1, []PostEntity{post(10, 1), post(11, 2)})
	s.UpsertPosts(2, []PostEntity{post(20, 1), post(21, 2)})
	s.UpsertPosts(1, []PostEntity{post(12, 3)})

	if _, ok := s.GetPost(1, 10); ok {
		t.Fatalf("oldest post of thread 1 survived")
	}
	if _, ok := s.GetPost(1, 12); !ok {
		t.Fatalf("new post of thread 1 missing")
	}
	for _, id := range []int64{20, 21} {
		if _, ok := s.GetPost(2, id); !ok {
			t.Fatalf("thread 2 lost post %d to thread 1's bound", id)
		}
	}
}

func TestUpsertPostsForcesThreadID(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	stray := post(10, 2)
	stray.ThreadID = 999
	s.UpsertPosts(77, []PostEntity{stray})

	got, ok := s.GetPost(77, 10)
	if !ok {
		t.Fatalf("post missing under requested thread")
	}
	if got.ThreadID != 77 {
		t.Fatalf("post thread id = %d, want 77", got.ThreadID)
	}
}

func TestPostsProjectsInGivenOrder(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	s.UpsertPosts(77, []PostEntity{post(10, 1), post(11, 2), post(12, 3)})

	got := s.Posts(77, []int64{12, 999, 10})
	if len(got) != 2 || got[0].ID != 12 || got[1].ID != 10 {
		t.Fatalf("projection = %+v", got)
	}
}

func TestUpdateThreadMetaAppliesAndNoopsWhenAbsent(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	s.UpsertThreads([]ThreadEntity{thread(77, "t")})

	s.UpdateThreadMeta(77, func(m ThreadMeta) ThreadMeta {
		m.HasAgreed = true
		m.AgreeCount++
		return m
	})
	got, _ := s.GetThread(77)
	if !got.Meta.HasAgreed || got.Meta.AgreeCount != 1 {
		t.Fatalf("meta = %+v", got.Meta)
	}

	s.UpdateThreadMeta(404, func(m ThreadMeta) ThreadMeta {
		m.AgreeCount = 99
		return m
	})
	if _, ok := s.GetThread(404); ok {
		t.Fatalf("meta update created a bare entity")
	}
}

func TestUpdatePostMetaAppliesAndNoopsWhenAbsent(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})
	s.UpsertPosts(77, []PostEntity{post(10, 2)})

	s.UpdatePostMeta(77, 10, func(m PostMeta) PostMeta {
		m.HasAgreed = true
		m.AgreeCount = 4
		return m
	})
	got, _ := s.GetPost(77, 10)
	if !got.Meta.HasAgreed || got.Meta.AgreeCount != 4 {
		t.Fatalf("meta = %+v", got.Meta)
	}

	s.UpdatePostMeta(77, 404, func(m PostMeta) PostMeta {
		m.AgreeCount = 99
		return m
	})
	if _, ok := s.GetPost(77, 404); ok {
		t.Fatalf("meta update created a bare post")
	}
}

func TestUpdatingMarkers(t *testing.T) {
	t.Parallel()
	s := New(Options{Now: testClock()})

	s.MarkThreadUpdating(77)
	if !s.IsThreadUpdating(77) {
		t.Fatalf("thread marker not set")
	}
	s.MarkThreadUpdated(77)
	if s.IsThreadUpdating(77) {
		t.Fatalf("thread marker not cleared")
	}

	s.MarkPostUpdating(77, 10)
	if !s.IsPostUpdating(77, 10) {
		t.Fatalf("post marker not set")
	}
	if s.IsPostUpdating(77, 11) {
		t.Fatalf("marker leaked to sibling post")
	}
	s.MarkPostUpdated(77, 10)
	if s.IsPostUpdating(77, 10) {
		t.Fatalf("post marker not cleared")
	}
}
