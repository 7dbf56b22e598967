// Package store is the in-memory cache shared by every screen of the app.
//
// # Overview
//
// The store holds two bounded maps — threads by id, and posts by id within
// a thread — plus the "updating" marker sets the UI uses to disable
// double-submission. It is a best-effort, process-lifetime accelerator:
// entries appear on the first successful fetch or optimistic write and
// leave only under capacity pressure. Nothing here is a source of truth.
//
// # Merge policy
//
// Thread summaries reach the cache from two differently shaped sources.
// List feeds carry preview fields (abstract, media) but weak counters;
// detail pages carry authoritative counters but omit the preview fields.
// Every ThreadEntity therefore records which fields its source actually
// populated (Presence). Merging is field by field: a field the incoming
// source carried wins, a field it did not carry keeps the cached value.
// A present zero is a legitimate value and does overwrite.
//
// Meta (agree/favorite state) is never touched by a content merge except
// for the counter fields a detail fetch explicitly carried; otherwise it
// changes only through UpdateThreadMeta/UpdatePostMeta.
//
// # Concurrency model
//
// Writers clone the affected map, apply the change, and publish the new
// map under a write lock; readers take a snapshot reference under a read
// lock and never observe a partially applied write. For a single key,
// updates reach every watcher in write order; across keys there is no
// ordering guarantee.
//
// Watches deliver the current value immediately and every subsequent
// distinct change. Delivery is decoupled from writers: each watch owns a
// queue drained by its own goroutine, so a slow consumer never blocks a
// write. When the last watcher of a key closes, the per-key bookkeeping is
// torn down after a grace period (default 5s); the cached entities are
// unaffected.
package store
