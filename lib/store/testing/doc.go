// Package testing provides a shared test and benchmark suite for IStore
// implementations. Every implementation (dense, synced, rpc client) hooks
// the suite up with a one-line factory in its own _interface_test.go, so
// the contract is verified once and enforced everywhere.
//
// The suite covers the behavioral properties of the store contract: value
// round trips, zero-as-deletion, the occupancy counter staying equal to a
// full scan under arbitrary interleavings, ascending iteration, boundary
// keys, strict vs lenient handling of invalid input, and the persistence
// round trip.
package testing
