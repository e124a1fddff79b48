// Package socket implements the stream-socket transport for the RPC system,
// covering both TCP and Unix domain sockets behind one core implementation.
// The protocol-specific part is reduced to small connector types (dial,
// listen, socket options); framing, multiplexing and retries are shared.
//
// The package focuses on:
//   - Frame-based message protocol with storeID and requestID tracking
//   - Request multiplexing: many in-flight requests share one connection,
//     responses are correlated by requestID
//   - Round-robin load balancing over multiple connections and endpoints
//   - Retries with exponential backoff and jitter, plus reconnection logic
//   - Buffer pooling on the server to reduce GC pressure
//   - A per-connection worker semaphore bounding server concurrency
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport uses atomic
//	operations and mutexes, the server creates a dedicated goroutine per
//	connection.
package socket
