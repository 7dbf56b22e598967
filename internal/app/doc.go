// Package app wires configuration, the API client, the cache store, the
// thread session and the UI together, and owns the background refresh
// poller.
package app
