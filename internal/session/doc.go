// Package session reconciles paginated thread fetches into one gapless,
// duplicate-free post window per screen.
//
// # Overview
//
// Two types split the work:
//
//   - Loader validates a raw page response, resolves post authors from the
//     page's user list, derives the ordered post sequence and the cursor
//     id list, and feeds everything into the shared cache store as a side
//     effect of being fetched.
//   - Session owns one screen's window over a thread: the ordered post-id
//     list plus cursor state. Initial, forward ("more"), backward
//     ("previous"), "latest since watermark" and "my new reply" fetches
//     all merge into that window without duplicates or floor-1 repeats.
//
// The window belongs exclusively to its screen; the cache store keeps only
// lookup-by-id, never order. Rendering is a projection: store.Posts with
// the window's id list.
//
// # Failure semantics
//
// Only an initial-load failure clears the screen to an error state. A
// failed more/previous/latest sub-flow clears its in-progress flag and
// leaves the loaded window intact. A "load latest" that finds nothing new
// is success, not an error, even though the server signals it on the same
// channel as a malformed page. A superseded initial load (a newer one was
// issued) never applies its result.
package session
