package serializer

import (
	"testing"

	"github.com/anydict/numstore/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	largeKeys := make([]uint64, 10000)
	largeValues := make([]uint8, 10000)
	for i := range largeKeys {
		largeKeys[i] = uint64(i * 3)
		largeValues[i] = uint8(i%15 + 1)
	}

	return map[string]common.Message{
		"Empty": {
			MsgType: common.MsgTSuccess,
		},
		"SetRequest": {
			MsgType: common.MsgTSet,
			Key:     123456789,
			Value:   7,
		},
		"GetResponse": {
			MsgType: common.MsgTGet,
			Value:   15,
			Ok:      true,
		},
		"LenResponse": {
			MsgType: common.MsgTLen,
			Count:   1 << 30,
		},
		"SmallItems": {
			MsgType: common.MsgTItems,
			Keys:    []uint64{0, 5, 9},
			Values:  []uint8{1, 2, 3},
		},
		"LargeItems": {
			MsgType: common.MsgTItems,
			Keys:    largeKeys,
			Values:  largeValues,
		},
		"ErrorMessage": {
			MsgType: common.MsgTError,
			Err:     "StoreError (code KeyOutOfRange): key 18446744073709551615 out of range [0, 1048576)",
			ErrCode: 4,
		},
	}
}

// BenchmarkSerialize measures serialization speed for each format and message shape
func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		serializer := factory()
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"/"+msgName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := serializer.Serialize(msg); err != nil {
						b.Fatalf("Serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize measures deserialization speed for each format and message shape
func BenchmarkDeserialize(b *testing.B) {
	for name, factory := range testSerializers {
		serializer := factory()
		for msgName, msg := range benchmarkMessages() {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Serialize: %v", err)
			}
			b.Run(name+"/"+msgName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					var result common.Message
					if err := serializer.Deserialize(data, &result); err != nil {
						b.Fatalf("Deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkRoundTrip measures a full serialize+deserialize cycle with the
// binary format, the production default
func BenchmarkRoundTrip(b *testing.B) {
	serializer := NewBinarySerializer()
	msg := common.Message{
		MsgType: common.MsgTSet,
		Key:     42,
		Value:   9,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		data, err := serializer.Serialize(msg)
		if err != nil {
			b.Fatalf("Serialize: %v", err)
		}
		var result common.Message
		if err := serializer.Deserialize(data, &result); err != nil {
			b.Fatalf("Deserialize: %v", err)
		}
	}
}
