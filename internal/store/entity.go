package store

import (
	"time"

	"github.com/odlove/tealeaf/internal/forum"
)

// Presence is a bitset recording which mergeable fields a source actually
// carried. A cleared bit means "not carried", which is different from a
// carried zero.
type Presence uint32

const (
	FieldFirstPostID Presence = 1 << iota
	FieldTitle
	FieldReplyCount
	FieldViewCount
	FieldCreateTime
	FieldLastReplyTime
	FieldAuthor
	FieldForum
	FieldAbstract
	FieldMedia
	FieldHasAgreed
	FieldAgreeCount
	FieldCollectStatus
	FieldCollectMark
)

// Has reports whether every bit in f is set.
func (p Presence) Has(f Presence) bool { return p&f == f }

// CollectStatus is a thread's bookmark state for the current user.
type CollectStatus int

const (
	CollectNone CollectStatus = iota
	Collected
)

// ThreadMeta is the mutable-by-replacement social state of a thread. It is
// logically independent of the content snapshot and survives content
// merges untouched unless the incoming source carried its counters.
type ThreadMeta struct {
	HasAgreed         bool
	AgreeCount        int
	CollectStatus     CollectStatus
	CollectMarkPostID int64
}

// ThreadEntity is the cached snapshot of one thread. Exactly one entity
// exists per thread id at any time.
type ThreadEntity struct {
	ThreadID    int64
	FirstPostID int64

	Title         string
	ReplyCount    int
	ViewCount     int
	CreateTime    int64
	LastReplyTime int64

	AuthorID   int64
	AuthorName string

	ForumID   int64
	ForumName string

	Abstract   string
	MediaCount int

	Meta     ThreadMeta
	Presence Presence

	// Touched orders eviction only; it carries no domain meaning.
	Touched time.Time
}

// PostMeta is the mutable-by-replacement social state of a post.
type PostMeta struct {
	HasAgreed  bool
	AgreeCount int
}

// PostEntity is the cached snapshot of one post. Post ids are only unique
// within their thread.
type PostEntity struct {
	ID       int64
	ThreadID int64
	Floor    int
	Time     int64

	AuthorID   int64
	AuthorName string

	Content       string
	SubReplyCount int

	Meta    PostMeta
	Touched time.Time
}

// ThreadFromInfo maps a wire thread summary to an entity, recording a
// presence bit for every field the source carried. The caller is
// responsible for correcting a zero ThreadID to the requested id before
// the entity reaches the cache.
func ThreadFromInfo(info forum.ThreadInfo) ThreadEntity {
	e := ThreadEntity{ThreadID: info.ID}
	if info.FirstPostID != nil {
		e.FirstPostID = *info.FirstPostID
		e.Presence |= FieldFirstPostID
	}
	if info.Title != nil {
		e.Title = *info.Title
		e.Presence |= FieldTitle
	}
	if info.ReplyCount != nil {
		e.ReplyCount = *info.ReplyCount
		e.Presence |= FieldReplyCount
	}
	if info.ViewCount != nil {
		e.ViewCount = *info.ViewCount
		e.Presence |= FieldViewCount
	}
	if info.CreateTime != nil {
		e.CreateTime = *info.CreateTime
		e.Presence |= FieldCreateTime
	}
	if info.LastReplyTime != nil {
		e.LastReplyTime = *info.LastReplyTime
		e.Presence |= FieldLastReplyTime
	}
	if info.Author != nil {
		e.AuthorID = info.Author.ID
		e.AuthorName = info.Author.Name
		e.Presence |= FieldAuthor
	} else if info.AuthorID != nil {
		e.AuthorID = *info.AuthorID
		e.Presence |= FieldAuthor
	}
	if info.ForumID != nil || info.ForumName != nil {
		if info.ForumID != nil {
			e.ForumID = *info.ForumID
		}
		if info.ForumName != nil {
			e.ForumName = *info.ForumName
		}
		e.Presence |= FieldForum
	}
	if info.Abstract != nil {
		e.Abstract = *info.Abstract
		e.Presence |= FieldAbstract
	}
	if info.MediaCount != nil {
		e.MediaCount = *info.MediaCount
		e.Presence |= FieldMedia
	}
	if info.HasAgreed != nil {
		e.Meta.HasAgreed = *info.HasAgreed != 0
		e.Presence |= FieldHasAgreed
	}
	if info.AgreeCount != nil {
		e.Meta.AgreeCount = *info.AgreeCount
		e.Presence |= FieldAgreeCount
	}
	if info.CollectStatus != nil {
		if *info.CollectStatus != 0 {
			e.Meta.CollectStatus = Collected
		}
		e.Presence |= FieldCollectStatus
	}
	if info.CollectMarkPost != nil {
		e.Meta.CollectMarkPostID = *info.CollectMarkPost
		e.Presence |= FieldCollectMark
	}
	return e
}

// PostFromInfo maps a wire post to an entity. threadID wins over the id
// declared in the payload so a post can never land under the wrong thread.
func PostFromInfo(info forum.PostInfo, threadID int64) PostEntity {
	e := PostEntity{
		ID:            info.ID,
		ThreadID:      threadID,
		Floor:         info.Floor,
		Time:          info.Time,
		AuthorID:      info.AuthorID,
		Content:       info.Content,
		SubReplyCount: info.SubReplyCount,
		Meta: PostMeta{
			HasAgreed:  info.HasAgreed != 0,
			AgreeCount: info.AgreeCount,
		},
	}
	if info.Author != nil {
		e.AuthorName = info.Author.Name
		if e.AuthorID == 0 {
			e.AuthorID = info.Author.ID
		}
	}
	return e
}
