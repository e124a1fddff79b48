package server

import (
	"fmt"

	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/rpc/common"
)

func NewStoreServerAdapter() IRPCServerAdapter {
	return &storeServerAdapterImpl{}
}

type storeServerAdapterImpl struct{}

// Handle translates one request message into the matching IStore call. The
// iteration operations materialize their sequences into the response; the
// wire format has no streaming, and a nibble store's full key set is small
// enough to ship in one message.
func (adapter *storeServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTSet:
		err := s.Set(req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTGet:
		val, ok, err := s.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTDelete:
		err := s.Delete(req.Key)
		return common.NewDeleteResponse(err)
	case common.MsgTPop:
		val, ok, err := s.Pop(req.Key)
		return common.NewPopResponse(val, ok, err)
	case common.MsgTHas:
		ok, err := s.Has(req.Key)
		return common.NewHasResponse(ok, err)
	case common.MsgTLen:
		n, err := s.Len()
		return common.NewLenResponse(n, err)
	case common.MsgTClear:
		err := s.Clear()
		return common.NewClearResponse(err)
	case common.MsgTKeys:
		keys, err := materializeKeys(s)
		return common.NewKeysResponse(keys, err)
	case common.MsgTValues:
		values, err := materializeValues(s)
		return common.NewValuesResponse(values, err)
	case common.MsgTItems:
		keys, values, err := materializeItems(s)
		return common.NewItemsResponse(keys, values, err)
	case common.MsgTInfo:
		info, err := s.GetInfo()
		return common.NewInfoResponse(info, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC StoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

func materializeKeys(s store.IStore) ([]uint64, error) {
	seq, err := s.Keys()
	if err != nil {
		return nil, err
	}
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	keys := make([]uint64, 0, n)
	for k := range seq {
		keys = append(keys, k)
	}
	return keys, nil
}

func materializeValues(s store.IStore) ([]uint8, error) {
	seq, err := s.Values()
	if err != nil {
		return nil, err
	}
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	values := make([]uint8, 0, n)
	for v := range seq {
		values = append(values, v)
	}
	return values, nil
}

func materializeItems(s store.IStore) ([]uint64, []uint8, error) {
	seq, err := s.Items()
	if err != nil {
		return nil, nil, err
	}
	n, err := s.Len()
	if err != nil {
		return nil, nil, err
	}
	keys := make([]uint64, 0, n)
	values := make([]uint8, 0, n)
	for k, v := range seq {
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}
