// Package client provides the client side of the numstore RPC system: a
// store.IStore implementation whose operations execute on a remote server.
//
// Because the remote store satisfies the same interface as a local one, code
// written against store.IStore works unchanged over the network. The only
// differences are:
//   - Save/Load/SaveFile/LoadFile fail with UnsupportedOperation -
//     persistence is owned by the server process and its data directory
//   - the iteration operations return a snapshot taken at request time, not
//     a live view
//
// Usage Example:
//
//	s, err := client.NewRPCStore(
//	  0,
//	  common.ClientConfig{
//	    Endpoints:     []string{"localhost:8080"},
//	    TimeoutSecond: 5,
//	    RetryCount:    3,
//	  },
//	  socket.NewTCPClientTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//	  log.Fatalf("connect: %v", err)
//	}
//	defer s.Close()
//
//	if err := s.Set(42, 7); err != nil {
//	  log.Fatalf("set: %v", err)
//	}
//
// Thread Safety:
//
//	The returned store is safe for concurrent use; requests are multiplexed
//	over the transport's connection pool.
package client
