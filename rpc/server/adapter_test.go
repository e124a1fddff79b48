package server

import (
	"testing"

	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/lib/store/dense"
	"github.com/anydict/numstore/rpc/common"
)

func newTestStore(t *testing.T) store.IStore {
	t.Helper()
	s, err := dense.New(10, store.ModeStrict)
	if err != nil {
		t.Fatalf("dense.New: %v", err)
	}
	return s
}

// TestAdapterRoundTrip drives the full operation set through the adapter
func TestAdapterRoundTrip(t *testing.T) {
	adapter := NewStoreServerAdapter()
	s := newTestStore(t)
	defer s.Close()

	// Set
	resp := adapter.Handle(common.NewSetRequest(3, 7), s)
	if resp.GetError() != nil {
		t.Fatalf("Set: %v", resp.GetError())
	}
	adapter.Handle(common.NewSetRequest(5, 2), s)

	// Get
	resp = adapter.Handle(common.NewGetRequest(3), s)
	if resp.Value != 7 || !resp.Ok || resp.GetError() != nil {
		t.Errorf("Get = (%d, %t, %v), want (7, true, nil)", resp.Value, resp.Ok, resp.GetError())
	}

	// Has
	resp = adapter.Handle(common.NewHasRequest(5), s)
	if !resp.Ok {
		t.Error("Has(5) = false, want true")
	}

	// Len
	resp = adapter.Handle(common.NewLenRequest(), s)
	if resp.Count != 2 {
		t.Errorf("Len = %d, want 2", resp.Count)
	}

	// Items
	resp = adapter.Handle(common.NewItemsRequest(), s)
	if len(resp.Keys) != 2 || resp.Keys[0] != 3 || resp.Keys[1] != 5 {
		t.Errorf("Items keys = %v, want [3 5]", resp.Keys)
	}
	if len(resp.Values) != 2 || resp.Values[0] != 7 || resp.Values[1] != 2 {
		t.Errorf("Items values = %v, want [7 2]", resp.Values)
	}

	// Pop
	resp = adapter.Handle(common.NewPopRequest(3), s)
	if resp.Value != 7 || !resp.Ok {
		t.Errorf("Pop = (%d, %t), want (7, true)", resp.Value, resp.Ok)
	}

	// Delete
	resp = adapter.Handle(common.NewDeleteRequest(5), s)
	if resp.GetError() != nil {
		t.Errorf("Delete: %v", resp.GetError())
	}

	// Info
	resp = adapter.Handle(common.NewInfoRequest(), s)
	info, err := common.InfoFromResponse(resp)
	if err != nil {
		t.Fatalf("InfoFromResponse: %v", err)
	}
	if info.Capacity != 10 || info.Occupied != 0 {
		t.Errorf("info = %+v, want capacity 10, occupied 0", info)
	}

	// Clear
	adapter.Handle(common.NewSetRequest(1, 1), s)
	resp = adapter.Handle(common.NewClearRequest(), s)
	if resp.GetError() != nil {
		t.Errorf("Clear: %v", resp.GetError())
	}
	resp = adapter.Handle(common.NewLenRequest(), s)
	if resp.Count != 0 {
		t.Errorf("Len after Clear = %d, want 0", resp.Count)
	}
}

// TestAdapterErrors tests that typed errors survive the adapter
func TestAdapterErrors(t *testing.T) {
	adapter := NewStoreServerAdapter()
	s := newTestStore(t)
	defer s.Close()

	// out-of-range key
	resp := adapter.Handle(common.NewSetRequest(10, 1), s)
	if store.CodeOf(resp.GetError()) != store.ErrCKeyOutOfRange {
		t.Errorf("Set(capacity): got %v, want KeyOutOfRange", resp.GetError())
	}

	// delete absent key
	resp = adapter.Handle(common.NewDeleteRequest(0), s)
	if store.CodeOf(resp.GetError()) != store.ErrCKeyNotFound {
		t.Errorf("Delete absent: got %v, want KeyNotFound", resp.GetError())
	}

	// nil store
	resp = adapter.Handle(common.NewGetRequest(0), nil)
	if resp.MsgType != common.MsgTError {
		t.Errorf("nil store: MsgType = %v, want error", resp.MsgType)
	}

	// unsupported message type
	resp = adapter.Handle(&common.Message{MsgType: common.MsgTUnknown}, s)
	if resp.MsgType != common.MsgTError {
		t.Errorf("unknown type: MsgType = %v, want error", resp.MsgType)
	}
}
