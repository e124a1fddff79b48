package socket

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anydict/numstore/rpc/common"
)

// TestFrameRoundTrip tests the frame codec over an in-memory connection
func TestFrameRoundTrip(t *testing.T) {
	cases := []struct {
		storeID   uint64
		requestID uint64
		data      []byte
	}{
		{0, 1, []byte("hello")},
		{42, 99, nil},
		{1 << 40, 1 << 50, bytes.Repeat([]byte{0xab}, 100*1024)},
	}

	for i, c := range cases {
		client, server := net.Pipe()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := writeFrame(client, c.storeID, c.requestID, c.data); err != nil {
				t.Errorf("case %d: writeFrame: %v", i, err)
			}
			client.Close()
		}()

		storeID, requestID, data, err := readFrame(server, make([]byte, 1024))
		if err != nil {
			t.Fatalf("case %d: readFrame: %v", i, err)
		}
		if storeID != c.storeID || requestID != c.requestID {
			t.Errorf("case %d: header = (%d, %d), want (%d, %d)",
				i, storeID, requestID, c.storeID, c.requestID)
		}
		if !bytes.Equal(data, c.data) && !(len(data) == 0 && len(c.data) == 0) {
			t.Errorf("case %d: payload mismatch (%d bytes, want %d)", i, len(data), len(c.data))
		}

		wg.Wait()
		server.Close()
	}
}

// TestUnixEndToEnd runs a request through a real Unix socket server transport
func TestUnixEndToEnd(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "rpc.sock")

	serverCfg := common.ServerConfig{
		Endpoint:      socketPath,
		TimeoutSecond: 5,
	}

	// echo handler that tags the response with the store ID
	srv := NewUnixServerTransport(4)
	srv.RegisterHandler(func(storeID uint64, req []byte) []byte {
		return []byte(fmt.Sprintf("%d:%s", storeID, req))
	})
	go func() {
		if err := srv.Listen(serverCfg); err != nil {
			t.Errorf("Listen: %v", err)
		}
	}()

	// wait for the socket file to appear
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server socket never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	client := NewUnixClientTransport()
	if err := client.Connect(common.ClientConfig{
		Endpoints:     []string{socketPath},
		TimeoutSecond: 5,
		RetryCount:    3,
	}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	resp, err := client.Send(7, []byte("ping"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp) != "7:ping" {
		t.Errorf("response = %q, want %q", resp, "7:ping")
	}

	// concurrent requests multiplexed over the same connections
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := fmt.Sprintf("%d:req-%d", n, n)
			resp, err := client.Send(uint64(n), []byte(fmt.Sprintf("req-%d", n)))
			if err != nil {
				t.Errorf("Send %d: %v", n, err)
				return
			}
			if string(resp) != want {
				t.Errorf("response %d = %q, want %q", n, resp, want)
			}
		}(i)
	}
	wg.Wait()
}

// TestClientCloseDuringRequests closes the transport while requests are in
// flight. The shutdown flag is read by every reader goroutine concurrently
// with Close, so this must stay clean under the race detector; sends racing
// the shutdown may fail, they just must not panic.
func TestClientCloseDuringRequests(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "rpc.sock")

	srv := NewUnixServerTransport(4)
	srv.RegisterHandler(func(storeID uint64, req []byte) []byte {
		return req
	})
	go func() {
		if err := srv.Listen(common.ServerConfig{Endpoint: socketPath, TimeoutSecond: 5}); err != nil {
			t.Errorf("Listen: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server socket never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	client := NewUnixClientTransport()
	if err := client.Connect(common.ClientConfig{
		Endpoints:     []string{socketPath},
		TimeoutSecond: 1,
		RetryCount:    1,
	}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = client.Send(uint64(n), []byte("payload"))
		}(i)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	wg.Wait()
}
