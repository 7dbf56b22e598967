package store

// MergeThread folds an incoming thread entity into a cached one. Fields the
// incoming source carried (per its Presence) replace the cached values,
// including legitimate zeros; fields it did not carry keep the cached
// values. The result's presence is the union of both.
func MergeThread(cached, incoming ThreadEntity) ThreadEntity {
	out := cached
	p := incoming.Presence

	if p.Has(FieldFirstPostID) {
		out.FirstPostID = incoming.FirstPostID
	}
	if p.Has(FieldTitle) {
		out.Title = incoming.Title
	}
	if p.Has(FieldReplyCount) {
		out.ReplyCount = incoming.ReplyCount
	}
	if p.Has(FieldViewCount) {
		out.ViewCount = incoming.ViewCount
	}
	if p.Has(FieldCreateTime) {
		out.CreateTime = incoming.CreateTime
	}
	if p.Has(FieldLastReplyTime) {
		out.LastReplyTime = incoming.LastReplyTime
	}
	if p.Has(FieldAuthor) {
		out.AuthorID = incoming.AuthorID
		out.AuthorName = incoming.AuthorName
	}
	if p.Has(FieldForum) {
		out.ForumID = incoming.ForumID
		out.ForumName = incoming.ForumName
	}
	if p.Has(FieldAbstract) {
		out.Abstract = incoming.Abstract
	}
	if p.Has(FieldMedia) {
		out.MediaCount = incoming.MediaCount
	}

	out.Meta = mergeThreadMeta(cached.Meta, incoming.Meta, p)
	out.Presence = cached.Presence | p
	return out
}

// mergeThreadMeta applies only the meta counters the incoming source
// explicitly carried. Everything else is owned by UpdateThreadMeta.
func mergeThreadMeta(cached, incoming ThreadMeta, p Presence) ThreadMeta {
	out := cached
	if p.Has(FieldHasAgreed) {
		out.HasAgreed = incoming.HasAgreed
	}
	if p.Has(FieldAgreeCount) && incoming.AgreeCount >= 0 {
		out.AgreeCount = incoming.AgreeCount
	}
	if p.Has(FieldCollectStatus) {
		out.CollectStatus = incoming.CollectStatus
	}
	if p.Has(FieldCollectMark) {
		out.CollectMarkPostID = incoming.CollectMarkPostID
	}
	return out
}
