package client

import (
	"io"
	"iter"

	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/serializer"
	"github.com/anydict/numstore/rpc/transport"
)

// supportedFeatures are the features a remote store exposes. Persistence
// happens on the server (the data directory belongs to the server process),
// so Save/Load are not part of the remote surface.
const supportedFeatures = store.FeatureSet |
	store.FeatureGet |
	store.FeatureDelete |
	store.FeaturePop |
	store.FeatureHas |
	store.FeatureIterate |
	store.FeatureClear

// rpcClientAdapter bundles everything a remote call needs: the target store
// ID, the client config, and the transport/serializer pair.
type rpcClientAdapter struct {
	storeID    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// rpcStore implements store.IStore against a remote server.
// (docu see interface.go)
type rpcStore struct {
	rpcClientAdapter
	capacity uint64
}

// NewRPCStore connects to a remote numstore server and returns a store.IStore
// backed by the store with the given ID. The capacity is fetched once at
// connection time; it is fixed for the lifetime of a store, so caching it is
// safe.
//
// Usage:
//
//	s, err := client.NewRPCStore(
//		0,
//		common.ClientConfig{Endpoints: []string{"localhost:8080"}, TimeoutSecond: 5},
//		socket.NewTCPClientTransport(),
//		serializer.NewBinarySerializer(),
//	)
func NewRPCStore(
	storeID uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	s := &rpcStore{
		rpcClientAdapter: rpcClientAdapter{
			storeID:    storeID,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Probe the remote store; this both validates the store ID and caches
	// the capacity.
	info, err := s.GetInfo()
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	s.capacity = info.Capacity

	logger.Debug("connected to remote store",
		"storeID", storeID, "capacity", s.capacity)

	return s, nil
}

// invoke sends one request to the remote store this client is bound to
func (s *rpcStore) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(s.storeID, req, s.transport, s.serializer)
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

func (s *rpcStore) Set(key uint64, value uint8) error {
	_, err := s.invoke(common.NewSetRequest(key, value))
	return err
}

func (s *rpcStore) Delete(key uint64) error {
	_, err := s.invoke(common.NewDeleteRequest(key))
	return err
}

func (s *rpcStore) Pop(key uint64) (uint8, bool, error) {
	resp, err := s.invoke(common.NewPopRequest(key))
	if err != nil {
		return 0, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (s *rpcStore) Clear() error {
	_, err := s.invoke(common.NewClearRequest())
	return err
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

func (s *rpcStore) Get(key uint64) (uint8, bool, error) {
	resp, err := s.invoke(common.NewGetRequest(key))
	if err != nil {
		return 0, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (s *rpcStore) Has(key uint64) (bool, error) {
	resp, err := s.invoke(common.NewHasRequest(key))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (s *rpcStore) Len() (uint64, error) {
	resp, err := s.invoke(common.NewLenRequest())
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *rpcStore) IsEmpty() (bool, error) {
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// --------------------------------------------------------------------------
// Iteration Operations
// --------------------------------------------------------------------------

/*
	The remote side materializes its sequences into the response message, so
	iteration over an RPC store is a snapshot taken at request time. The
	returned sequences just replay the received slices.
*/

func (s *rpcStore) Keys() (iter.Seq[uint64], error) {
	resp, err := s.invoke(common.NewKeysRequest())
	if err != nil {
		return nil, err
	}
	keys := resp.Keys
	return func(yield func(uint64) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}, nil
}

func (s *rpcStore) Values() (iter.Seq[uint8], error) {
	resp, err := s.invoke(common.NewValuesRequest())
	if err != nil {
		return nil, err
	}
	values := resp.Values
	return func(yield func(uint8) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}, nil
}

func (s *rpcStore) Items() (iter.Seq2[uint64, uint8], error) {
	resp, err := s.invoke(common.NewItemsRequest())
	if err != nil {
		return nil, err
	}
	keys, values := resp.Keys, resp.Values
	if len(keys) != len(values) {
		return nil, store.NewErrorf(store.ErrCInternalError,
			"items response has %d keys but %d values", len(keys), len(values))
	}
	return func(yield func(uint64, uint8) bool) {
		for i, k := range keys {
			if !yield(k, values[i]) {
				return
			}
		}
	}, nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

func (s *rpcStore) Save(_ io.Writer) error {
	return store.NewError(store.ErrCUnsupportedOperation,
		"Save is not supported on a remote store, persistence happens on the server")
}

func (s *rpcStore) Load(_ io.Reader) error {
	return store.NewError(store.ErrCUnsupportedOperation,
		"Load is not supported on a remote store, persistence happens on the server")
}

func (s *rpcStore) SaveFile(_ string) error {
	return store.NewError(store.ErrCUnsupportedOperation,
		"SaveFile is not supported on a remote store, persistence happens on the server")
}

func (s *rpcStore) LoadFile(_ string) error {
	return store.NewError(store.ErrCUnsupportedOperation,
		"LoadFile is not supported on a remote store, persistence happens on the server")
}

// --------------------------------------------------------------------------
// Meta Operations
// --------------------------------------------------------------------------

func (s *rpcStore) Capacity() uint64 {
	return s.capacity
}

func (s *rpcStore) GetInfo() (store.StoreInfo, error) {
	resp, err := s.invoke(common.NewInfoRequest())
	if err != nil {
		return store.StoreInfo{}, err
	}
	info, err := common.InfoFromResponse(resp)
	if err != nil {
		return store.StoreInfo{}, err
	}

	info.StoreType = store.ImplRPC
	info.SupportedFeatures = nil
	for f := store.FeatureSet; f <= store.FeatureLoad; f <<= 1 {
		if supportedFeatures&f != 0 {
			info.SupportedFeatures = append(info.SupportedFeatures, f)
		}
	}
	info.Metadata = map[string]interface{}{
		"endpoints": s.config.Endpoints,
		"store_id":  s.storeID,
	}
	return info, nil
}

func (s *rpcStore) SupportsFeature(feature store.Feature) bool {
	return supportedFeatures&feature == feature
}

func (s *rpcStore) Close() error {
	return s.transport.Close()
}
