// Package transport defines the interfaces between the RPC layer and the
// network. A server transport accepts requests and hands the raw payload to
// a registered handler together with the store ID it is addressed to; a
// client transport sends a payload to a store ID and returns the response.
//
// Both sides treat the payload as opaque bytes - serialization is the
// serializer package's concern, which keeps transports and wire formats
// freely combinable.
//
// Implementations:
//   - socket: stream sockets (TCP and Unix domain) with a binary frame
//     protocol, request multiplexing and connection pooling
//   - http: plain HTTP POST, one request per call, for environments where
//     only HTTP passes
package transport
