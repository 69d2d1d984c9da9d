// Package tidal provides a Go client for the target catalog API,
// covering everything playlist migration needs: session discovery,
// playlist listing and creation, ordered item snapshots, optimistic
// concurrency for adds and deletes via entity tags, description
// updates, and track search. Expired access tokens are refreshed once
// per failing request and the rotated tokens are persisted back to the
// configuration file.
package tidal
