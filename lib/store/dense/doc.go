// Package dense implements the in-memory engine behind the store interface:
// a direct-addressed array of 4-bit values packed two per byte, fronted by a
// cached occupancy counter.
//
// Design points:
//
//   - Keys are array indices. There is no hashing and no per-key metadata;
//     a store of capacity N costs ceil(N/2) bytes plus a counter, and every
//     operation on a single key is O(1).
//   - A value of zero marks an absent key. The engine keeps the number of
//     non-zero slots in a counter that is adjusted on every write, so Len()
//     never scans. The only full scan happens after Load, which replaces the
//     backing bytes wholesale.
//   - Validation mode is chosen at construction. In strict mode invalid keys
//     and values fail with a typed *store.Error; in lenient mode they are
//     logged, counted in metrics and ignored.
//
// Thread-safety: the engine itself is single-threaded. Wrap it with the
// synced package for concurrent use (the RPC server does this).
package dense
