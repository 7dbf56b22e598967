// Package forum talks to the discussion-forum HTTP API.
//
// # Overview
//
// The package owns the two remote contracts the rest of the app depends on:
//
//   - the page-fetch service: one paginated thread-detail endpoint that
//     returns page info, a thread summary, forum and anti-spam blocks, a
//     user list and the post list for the requested page
//   - the mutation service: the agree/favorite toggle endpoints
//
// Both are exposed behind small interfaces (PageFetcher, Mutator) so the
// session and social packages can be tested against fakes.
//
// # Wire shapes
//
// Thread summaries arrive from two differently shaped sources: list feeds
// carry rich preview fields but weak social counters, detail pages carry
// authoritative counters but omit preview fields. Optional summary fields
// are therefore pointers; a nil pointer means "this source did not carry
// the field", which is distinct from a present zero. The store relies on
// that distinction when merging.
//
// # Error taxonomy
//
// Transport and decode failures are returned wrapped; a response with a
// non-zero error code becomes an *APIError. The client never retries —
// retry policy belongs to the caller.
package forum
