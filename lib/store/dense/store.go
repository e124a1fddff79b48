package dense

import (
	"iter"
	"log/slog"

	"github.com/anydict/numstore/lib/nibble"
	"github.com/anydict/numstore/lib/store"
)

// --------------------------------------------------------------------------
// Core dense store structure
// --------------------------------------------------------------------------

// supportedFeatures lists everything the dense engine implements.
const supportedFeatures = store.FeatureSet |
	store.FeatureGet |
	store.FeatureDelete |
	store.FeaturePop |
	store.FeatureHas |
	store.FeatureIterate |
	store.FeatureClear |
	store.FeatureSave |
	store.FeatureLoad

// denseImpl implements store.IStore on a packed nibble buffer.
type denseImpl struct {
	buf      *nibble.Buffer // Packed slots, two per byte
	occupied uint64         // Live count of non-zero slots
	mode     store.Mode     // Strict or lenient validation
	logger   *slog.Logger
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// New creates a dense store with the given capacity and validation mode.
// The store starts empty (every key absent) and never resizes.
//
// Thread-safety: this function is not thread-safe and should only be called
// once during initialization.
func New(capacity uint64, mode store.Mode) (store.IStore, error) {
	buf, err := nibble.NewBuffer(capacity)
	if err != nil {
		return nil, store.NewErrorf(store.ErrCInternalError, "create buffer: %v", err)
	}
	return &denseImpl{
		buf:    buf,
		mode:   mode,
		logger: slog.Default().With("component", "dense", "capacity", capacity),
	}, nil
}

// violation handles an invalid operation according to the store mode. In
// strict mode the error is returned as-is; in lenient mode it is logged,
// counted and swallowed (the caller then returns zero values).
func (d *denseImpl) violation(op string, e *store.Error) error {
	metricRejection(e.Code).Inc()
	if d.mode == store.ModeStrict {
		return e
	}
	d.logger.Warn("operation ignored", "op", op, "code", e.Code.String(), "msg", e.Msg)
	return nil
}

// checkKey validates a key against the capacity.
func (d *denseImpl) checkKey(op string, key uint64) (ok bool, err error) {
	if key >= d.buf.Capacity() {
		err = d.violation(op, store.NewErrorf(store.ErrCKeyOutOfRange,
			"key %d out of range [0, %d)", key, d.buf.Capacity()))
		return false, err
	}
	return true, nil
}

// --------------------------------------------------------------------------
// Core IStore Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set stores value for key and keeps the occupancy counter in sync: the
// counter moves only on a transition between zero and non-zero, so
// overwriting a value or re-writing zero over an absent key is count-neutral.
// (docu see interface.go)
func (d *denseImpl) Set(key uint64, value uint8) error {
	metricSet.Inc()
	if ok, err := d.checkKey("set", key); !ok {
		return err
	}
	if value > store.MaxValue {
		return d.violation("set", store.NewErrorf(store.ErrCInvalidValue,
			"value %d out of range [0, %d]", value, store.MaxValue))
	}

	old, _ := d.buf.Get(key)
	if err := d.buf.Set(key, value); err != nil {
		return store.NewErrorf(store.ErrCInternalError, "set slot %d: %v", key, err)
	}

	switch {
	case old == 0 && value != 0:
		d.occupied++
	case old != 0 && value == 0:
		d.occupied--
	}
	return nil
}

// Delete removes the value for key. Unlike Set(key, 0), deleting an absent
// key is a KeyNotFound violation.
// (docu see interface.go)
func (d *denseImpl) Delete(key uint64) error {
	metricDelete.Inc()
	if ok, err := d.checkKey("delete", key); !ok {
		return err
	}

	old, _ := d.buf.Get(key)
	if old == 0 {
		return d.violation("delete", store.NewErrorf(store.ErrCKeyNotFound,
			"key %d not found", key))
	}

	if err := d.buf.Set(key, 0); err != nil {
		return store.NewErrorf(store.ErrCInternalError, "clear slot %d: %v", key, err)
	}
	d.occupied--
	return nil
}

// Pop removes and returns the value for key. Popping an absent key is not an
// error, the boolean reports it instead.
// (docu see interface.go)
func (d *denseImpl) Pop(key uint64) (uint8, bool, error) {
	metricPop.Inc()
	if ok, err := d.checkKey("pop", key); !ok {
		return 0, false, err
	}

	old, _ := d.buf.Get(key)
	if old == 0 {
		return 0, false, nil
	}

	if err := d.buf.Set(key, 0); err != nil {
		return 0, false, store.NewErrorf(store.ErrCInternalError, "clear slot %d: %v", key, err)
	}
	d.occupied--
	return old, true, nil
}

// Clear zero-fills the buffer and resets the counter.
// (docu see interface.go)
func (d *denseImpl) Clear() error {
	metricClear.Inc()
	d.buf.Reset()
	d.occupied = 0
	return nil
}

// --------------------------------------------------------------------------
// Core IStore Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get returns the value for key.
// (docu see interface.go)
func (d *denseImpl) Get(key uint64) (uint8, bool, error) {
	metricGet.Inc()
	if ok, err := d.checkKey("get", key); !ok {
		return 0, false, err
	}
	v, _ := d.buf.Get(key)
	return v, v != 0, nil
}

// Has returns whether key holds a non-zero value.
// (docu see interface.go)
func (d *denseImpl) Has(key uint64) (bool, error) {
	metricHas.Inc()
	if ok, err := d.checkKey("has", key); !ok {
		return false, err
	}
	v, _ := d.buf.Get(key)
	return v != 0, nil
}

// Len returns the cached occupancy counter in constant time.
// (docu see interface.go)
func (d *denseImpl) Len() (uint64, error) {
	return d.occupied, nil
}

// IsEmpty returns whether no key holds a value.
// (docu see interface.go)
func (d *denseImpl) IsEmpty() (bool, error) {
	return d.occupied == 0, nil
}

// --------------------------------------------------------------------------
// Core IStore Interface Methods - Iteration
// --------------------------------------------------------------------------

// Keys returns a lazy sequence over all occupied keys in ascending order.
// (docu see interface.go)
func (d *denseImpl) Keys() (iter.Seq[uint64], error) {
	return func(yield func(uint64) bool) {
		for k := uint64(0); k < d.buf.Capacity(); k++ {
			if v, _ := d.buf.Get(k); v != 0 {
				if !yield(k) {
					return
				}
			}
		}
	}, nil
}

// Values returns a lazy sequence over the values of all occupied keys.
// (docu see interface.go)
func (d *denseImpl) Values() (iter.Seq[uint8], error) {
	return func(yield func(uint8) bool) {
		for k := uint64(0); k < d.buf.Capacity(); k++ {
			if v, _ := d.buf.Get(k); v != 0 {
				if !yield(v) {
					return
				}
			}
		}
	}, nil
}

// Items returns a lazy sequence over (key, value) pairs of all occupied keys.
// (docu see interface.go)
func (d *denseImpl) Items() (iter.Seq2[uint64, uint8], error) {
	return func(yield func(uint64, uint8) bool) {
		for k := uint64(0); k < d.buf.Capacity(); k++ {
			if v, _ := d.buf.Get(k); v != 0 {
				if !yield(k, v) {
					return
				}
			}
		}
	}, nil
}

// --------------------------------------------------------------------------
// Core IStore Interface Methods - Metadata
// --------------------------------------------------------------------------

// Capacity returns the fixed number of key slots.
// (docu see interface.go)
func (d *denseImpl) Capacity() uint64 {
	return d.buf.Capacity()
}

// GetInfo returns metadata about the store.
// (docu see interface.go)
func (d *denseImpl) GetInfo() (store.StoreInfo, error) {
	features := make([]store.Feature, 0, 9)
	for f := store.FeatureSet; f <= store.FeatureLoad; f <<= 1 {
		if d.SupportsFeature(f) {
			features = append(features, f)
		}
	}
	return store.StoreInfo{
		Capacity:          d.buf.Capacity(),
		Occupied:          d.occupied,
		Mode:              d.mode.String(),
		SizeBytes:         len(d.buf.Bytes()),
		StoreType:         store.ImplDense,
		SupportedFeatures: features,
		Metadata: map[string]interface{}{
			"format_version": formatVersion,
			"max_value":      store.MaxValue,
		},
	}, nil
}

// SupportsFeature checks if the engine supports the specified feature.
// (docu see interface.go)
func (d *denseImpl) SupportsFeature(feature store.Feature) bool {
	return feature&supportedFeatures == feature
}

// Close is a no-op, the engine holds no external resources.
// (docu see interface.go)
func (d *denseImpl) Close() error {
	return nil
}
