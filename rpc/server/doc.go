// Package server implements the RPC server for the numstore system. It
// hosts any number of independent stores keyed by ID, routes incoming
// requests to them, and translates between wire messages and store calls.
//
// The package focuses on:
//   - Server-side handling of all store operations over RPC
//   - Adapter pattern to decouple store logic from RPC mechanisms
//   - Concurrent-safe hosting: every engine is wrapped with the synced
//     decorator before a transport touches it
//   - Optional persistence: stores are restored from the data directory at
//     startup and written back on SIGINT/SIGTERM
//   - Optional Prometheus metrics exposition
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against a
//     store.IStore.
//
//   - NewStoreServerAdapter: Factory function creating the adapter that
//     translates RPC requests to store.IStore method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Stores: []common.StoreDef{
//	    {ID: 0, Capacity: 1_000_000, Mode: store.ModeStrict},
//	    {ID: 1, Capacity: 4096, Mode: store.ModeLenient},
//	  },
//	  Endpoint:      "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  socket.NewTCPServerTransport(16),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently. The Serve method is not thread-safe and should be called
//	only once.
package server
