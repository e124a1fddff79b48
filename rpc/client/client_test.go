package client

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/serializer"
	"github.com/anydict/numstore/rpc/server"
	"github.com/anydict/numstore/rpc/transport/socket"
)

// startTestServer spins up a full RPC server on a unix socket and returns
// the socket path. The server goroutine is left running until the test
// binary exits; the socket lives in a per-test temp dir.
func startTestServer(t *testing.T, stores []common.StoreDef) string {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "numstore.sock")
	config := common.ServerConfig{
		Stores:        stores,
		Endpoint:      socketPath,
		TimeoutSecond: 5,
		LogLevel:      "error",
	}

	s := server.NewRPCServer(
		config,
		socket.NewUnixServerTransport(4),
		serializer.NewBinarySerializer(),
	)
	go func() {
		if err := s.Serve(); err != nil {
			t.Errorf("server: %v", err)
		}
	}()

	// wait for the socket to appear
	for i := 0; i < 100; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			return socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server socket never appeared")
	return ""
}

func connect(t *testing.T, socketPath string, storeID uint64) store.IStore {
	t.Helper()

	s, err := NewRPCStore(
		storeID,
		common.ClientConfig{
			Endpoints:     []string{socketPath},
			TimeoutSecond: 5,
			RetryCount:    2,
		},
		socket.NewUnixClientTransport(),
		serializer.NewBinarySerializer(),
	)
	if err != nil {
		t.Fatalf("NewRPCStore: %v", err)
	}
	return s
}

// TestRemoteStoreEndToEnd exercises the full operation set against a real
// server over a unix socket.
func TestRemoteStoreEndToEnd(t *testing.T) {
	socketPath := startTestServer(t, []common.StoreDef{
		{ID: 0, Capacity: 10, Mode: store.ModeStrict},
	})

	s := connect(t, socketPath, 0)
	defer s.Close()

	if s.Capacity() != 10 {
		t.Errorf("Capacity = %d, want 10", s.Capacity())
	}

	// Set / Get / Has
	if err := s.Set(3, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(5, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, found, err := s.Get(3); err != nil || !found || v != 7 {
		t.Errorf("Get(3) = (%d, %t, %v), want (7, true, nil)", v, found, err)
	}
	if found, err := s.Has(5); err != nil || !found {
		t.Errorf("Has(5) = (%t, %v), want (true, nil)", found, err)
	}
	if v, found, err := s.Get(8); err != nil || found || v != 0 {
		t.Errorf("Get(8) = (%d, %t, %v), want absent", v, found, err)
	}

	// Len / IsEmpty
	if n, err := s.Len(); err != nil || n != 2 {
		t.Errorf("Len = (%d, %v), want (2, nil)", n, err)
	}
	if empty, err := s.IsEmpty(); err != nil || empty {
		t.Errorf("IsEmpty = (%t, %v), want (false, nil)", empty, err)
	}

	// Iteration
	seq, err := s.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var keys []uint64
	var values []uint8
	for k, v := range seq {
		keys = append(keys, k)
		values = append(values, v)
	}
	if len(keys) != 2 || keys[0] != 3 || keys[1] != 5 {
		t.Errorf("Items keys = %v, want [3 5]", keys)
	}
	if values[0] != 7 || values[1] != 2 {
		t.Errorf("Items values = %v, want [7 2]", values)
	}

	// Pop / Delete
	if v, found, err := s.Pop(3); err != nil || !found || v != 7 {
		t.Errorf("Pop(3) = (%d, %t, %v), want (7, true, nil)", v, found, err)
	}
	if err := s.Delete(5); err != nil {
		t.Errorf("Delete(5): %v", err)
	}

	// Clear
	s.Set(1, 1)
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Len after Clear = %d, want 0", n)
	}

	// Info
	info, err := s.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Capacity != 10 || info.StoreType != store.ImplRPC {
		t.Errorf("info = %+v, want capacity 10, type rpc", info)
	}
}

// TestRemoteStoreTypedErrors checks that strict-mode store errors keep their
// code across the wire.
func TestRemoteStoreTypedErrors(t *testing.T) {
	socketPath := startTestServer(t, []common.StoreDef{
		{ID: 0, Capacity: 6, Mode: store.ModeStrict},
	})

	s := connect(t, socketPath, 0)
	defer s.Close()

	if err := s.Set(6, 1); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Set(capacity): got %v, want KeyOutOfRange", err)
	}
	if err := s.Set(0, 16); store.CodeOf(err) != store.ErrCInvalidValue {
		t.Errorf("Set(0, 16): got %v, want InvalidValue", err)
	}
	if err := s.Delete(0); store.CodeOf(err) != store.ErrCKeyNotFound {
		t.Errorf("Delete absent: got %v, want KeyNotFound", err)
	}
}

// TestRemoteStoreLenient checks that a lenient remote store swallows invalid
// operations the same way a local one does.
func TestRemoteStoreLenient(t *testing.T) {
	socketPath := startTestServer(t, []common.StoreDef{
		{ID: 7, Capacity: 6, Mode: store.ModeLenient},
	})

	s := connect(t, socketPath, 7)
	defer s.Close()

	if err := s.Set(6, 1); err != nil {
		t.Errorf("lenient Set(capacity): %v, want nil", err)
	}
	if err := s.Delete(3); err != nil {
		t.Errorf("lenient Delete absent: %v, want nil", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Len = %d after ignored operations, want 0", n)
	}
}

// TestRemoteStoreUnsupported checks the operations a remote store refuses.
func TestRemoteStoreUnsupported(t *testing.T) {
	socketPath := startTestServer(t, []common.StoreDef{
		{ID: 0, Capacity: 4, Mode: store.ModeStrict},
	})

	s := connect(t, socketPath, 0)
	defer s.Close()

	var buf bytes.Buffer
	if err := s.Save(&buf); store.CodeOf(err) != store.ErrCUnsupportedOperation {
		t.Errorf("Save: got %v, want UnsupportedOperation", err)
	}
	if err := s.Load(&buf); store.CodeOf(err) != store.ErrCUnsupportedOperation {
		t.Errorf("Load: got %v, want UnsupportedOperation", err)
	}
	if s.SupportsFeature(store.FeatureSave) {
		t.Error("SupportsFeature(Save) = true, want false")
	}
	if !s.SupportsFeature(store.FeatureSet | store.FeatureIterate) {
		t.Error("SupportsFeature(Set|Iterate) = false, want true")
	}
}

// TestUnknownStoreID checks that connecting to a store the server does not
// host fails at connect time.
func TestUnknownStoreID(t *testing.T) {
	socketPath := startTestServer(t, []common.StoreDef{
		{ID: 0, Capacity: 4, Mode: store.ModeStrict},
	})

	_, err := NewRPCStore(
		99,
		common.ClientConfig{
			Endpoints:     []string{socketPath},
			TimeoutSecond: 5,
		},
		socket.NewUnixClientTransport(),
		serializer.NewBinarySerializer(),
	)
	if err == nil {
		t.Fatal("NewRPCStore with unknown store ID succeeded, want error")
	}
}
