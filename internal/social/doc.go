// Package social performs user-triggered write calls with optimistic
// cache updates.
//
// Every action follows the same protocol: snapshot the affected meta,
// write the predicted outcome to the cache so the screen flips
// immediately, then make the network call. On failure the snapshot is
// restored exactly, so a concurrent page refresh cannot be clobbered by
// an arithmetic undo. While a call is in flight the store's updating
// marker is set for the target, which screens use to suppress double
// submission.
//
// The agree endpoint is a toggle and expects the state being left, not
// the state being requested.
package social
