package store

import (
	"testing"

	"github.com/odlove/tealeaf/internal/forum"
)

func fullThread(id int64) ThreadEntity {
	return ThreadEntity{
		ThreadID:      id,
		FirstPostID:   10,
		Title:         "original title",
		ReplyCount:    41,
		ViewCount:     900,
		CreateTime:    1000,
		LastReplyTime: 2000,
		AuthorID:      9,
		AuthorName:    "ann",
		ForumID:       5,
		ForumName:     "trains",
		Abstract:      "first words",
		MediaCount:    2,
		Meta: ThreadMeta{
			HasAgreed:     true,
			AgreeCount:    7,
			CollectStatus: Collected,
		},
		Presence: FieldFirstPostID | FieldTitle | FieldReplyCount | FieldViewCount |
			FieldCreateTime | FieldLastReplyTime | FieldAuthor | FieldForum |
			FieldAbstract | FieldMedia | FieldHasAgreed | FieldAgreeCount |
			FieldCollectStatus,
	}
}

func TestMergeThreadKeepsFieldsTheSourceDidNotCarry(t *testing.T) {
	t.Parallel()
	cached := fullThread(77)
	incoming := ThreadEntity{
		ThreadID:   77,
		ReplyCount: 42,
		Presence:   FieldReplyCount,
	}

	got := MergeThread(cached, incoming)
	if got.ReplyCount != 42 {
		t.Fatalf("reply count = %d, want 42", got.ReplyCount)
	}
	if got.Title != "original title" || got.AuthorName != "ann" {
		t.Fatalf("uncarried fields lost: %+v", got)
	}
	if got.Meta != cached.Meta {
		t.Fatalf("meta disturbed by content-only merge: %+v", got.Meta)
	}
}

func TestMergeThreadCarriedZeroWins(t *testing.T) {
	t.Parallel()
	cached := fullThread(77)
	incoming := ThreadEntity{
		ThreadID: 77,
		Title:    "",
		Presence: FieldTitle,
	}

	got := MergeThread(cached, incoming)
	if got.Title != "" {
		t.Fatalf("carried empty title lost to cached value %q", got.Title)
	}
}

func TestMergeThreadNegativeAgreeCountIgnored(t *testing.T) {
	t.Parallel()
	cached := fullThread(77)
	incoming := ThreadEntity{
		ThreadID: 77,
		Meta:     ThreadMeta{AgreeCount: -1},
		Presence: FieldAgreeCount,
	}

	got := MergeThread(cached, incoming)
	if got.Meta.AgreeCount != 7 {
		t.Fatalf("agree count = %d, want cached 7", got.Meta.AgreeCount)
	}
}

func TestMergeThreadIdempotent(t *testing.T) {
	t.Parallel()
	cached := fullThread(77)
	incoming := ThreadEntity{
		ThreadID: 77,
		Title:    "renamed",
		Meta:     ThreadMeta{HasAgreed: false},
		Presence: FieldTitle | FieldHasAgreed,
	}

	once := MergeThread(cached, incoming)
	twice := MergeThread(once, incoming)
	if once != twice {
		t.Fatalf("merge not idempotent:\n once %+v\ntwice %+v", once, twice)
	}
}

func TestMergeThreadPresenceUnion(t *testing.T) {
	t.Parallel()
	cached := ThreadEntity{ThreadID: 77, Title: "t", Presence: FieldTitle}
	incoming := ThreadEntity{ThreadID: 77, ReplyCount: 3, Presence: FieldReplyCount}

	got := MergeThread(cached, incoming)
	if !got.Presence.Has(FieldTitle | FieldReplyCount) {
		t.Fatalf("presence = %b, want union", got.Presence)
	}
}

func TestThreadFromInfoRecordsPresencePerPointer(t *testing.T) {
	t.Parallel()
	title := "t"
	agreed := 0
	info := forum.ThreadInfo{ID: 77, Title: &title, HasAgreed: &agreed}

	e := ThreadFromInfo(info)
	if !e.Presence.Has(FieldTitle) || !e.Presence.Has(FieldHasAgreed) {
		t.Fatalf("carried fields missing presence: %b", e.Presence)
	}
	if e.Presence.Has(FieldReplyCount) {
		t.Fatalf("absent field gained presence")
	}
	if e.Meta.HasAgreed {
		t.Fatalf("carried zero has_agree mapped to true")
	}
}
