// Package synced wraps any IStore with a reader-biased RWMutex
// (xsync.RBMutex), turning the single-threaded dense engine into a store
// that is safe for concurrent use. Read operations take a cheap per-CPU
// reader token; mutations and Load take the exclusive lock.
//
// Iteration is handled by snapshotting: Keys/Values/Items materialize the
// occupied slots under the read lock and return a sequence over the
// snapshot, so consumers never hold a lock while iterating and never
// observe a half-applied mutation.
//
// This is the layer the RPC server puts between its transports and the
// engine.
package synced
