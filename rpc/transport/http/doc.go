// Package http implements the RPC transport over plain HTTP. Requests are
// POSTed to /{storeID} with the serialized message as the body; the response
// body carries the serialized reply.
//
// Compared to the socket transport there is no multiplexing and no custom
// framing - each call is one HTTP round trip. This costs throughput but
// works through proxies and load balancers, and the payloads stay
// inspectable with standard HTTP tooling (especially combined with the JSON
// serializer).
package http
