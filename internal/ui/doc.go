// Package ui renders a thread as a scrollable terminal screen.
//
// The screen never owns data. It renders the session's window projected
// through the cache store, and it hears about cache changes through the
// store's watch channels, so an optimistic mutation or a background
// refresh repaints without any explicit plumbing from the caller.
package ui
