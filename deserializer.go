package ddsreader

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// DeserializerAdapter decodes a payload to D for one or more
// RepresentationIdentifier tags. Implementations may be vtables, generic
// parameters, or explicit function tables; this package expresses it as
// an interface satisfied by a generic parameter.
type DeserializerAdapter[D any] interface {
	SupportedEncodings() []RepresentationIdentifier
	FromBytes(data []byte, repr RepresentationIdentifier) (D, error)
}

// SeedDeserializerAdapter is the seeded counterpart used by
// TryTakeOneSeed: the caller's seed threads through value decoding only.
type SeedDeserializerAdapter[D any, S any] interface {
	SupportedEncodings() []RepresentationIdentifier
	FromBytesSeed(seed S, data []byte, repr RepresentationIdentifier) (D, error)
}

// KeyFromBytes decodes a key of type K. Key decoding is always stateless,
// even when the value side uses a seed.
type KeyFromBytes[K any] interface {
	KeyFromBytes(data []byte, repr RepresentationIdentifier) (K, error)
}

// findEncoding reports whether repr is among the supported encodings.
func findEncoding(supported []RepresentationIdentifier, repr RepresentationIdentifier) bool {
	for _, s := range supported {
		if s == repr {
			return true
		}
	}
	return false
}

// dispatchDecode implements the deserialization dispatch rules for all
// three CacheChange payload variants, shared by both TryTakeOne and
// TryTakeOneSeed via the decodeValue closure each supplies.
func dispatchDecode[K KeyHasher, D Keyed[K]](
	cc CacheChange,
	hashKeys HashKeyStore[K],
	supportedEncodings []RepresentationIdentifier,
	decodeValue func([]byte, RepresentationIdentifier) (D, error),
	ka KeyFromBytes[K],
) (Sample[D, K], error) {
	var zero Sample[D, K]

	switch cc.kind {
	case payloadData:
		if !findEncoding(supportedEncodings, cc.dataRepr) {
			return zero, fmt.Errorf("Unknown representation id %d.", cc.dataRepr)
		}
		value, err := decodeValue(cc.dataBytes, cc.dataRepr)
		if err != nil {
			return zero, fmt.Errorf("Failed to deserialize sample bytes: %w", err)
		}
		sample := NewValueSample[D, K](value)
		hashKeys.Remember(value.Key().HashKey(), value.Key())
		return sample, nil

	case payloadDisposeByKey:
		key, err := ka.KeyFromBytes(cc.keyBytes, cc.keyRepr)
		if err != nil {
			return zero, fmt.Errorf("Failed to deserialize key: %w", err)
		}
		sample := NewDisposeSample[D, K](key)
		hashKeys.Remember(key.HashKey(), key)
		return sample, nil

	case payloadDisposeByKeyHash:
		key, ok := hashKeys.Resolve(context.Background(), cc.keyHash)
		if !ok {
			return zero, fmt.Errorf("Tried to dispose with unknown key hash: %s", cc.keyHash)
		}
		return NewDisposeSample[D, K](key), nil
	}

	return zero, fmt.Errorf("unrecognized cache change payload kind")
}

// MsgpackAdapter is the reference DeserializerAdapter shipped with this
// package, using github.com/vmihailenco/msgpack/v5 and the ReprMsgpack
// wire tag.
type MsgpackAdapter[D any] struct{}

func (MsgpackAdapter[D]) SupportedEncodings() []RepresentationIdentifier {
	return []RepresentationIdentifier{ReprMsgpack}
}

func (MsgpackAdapter[D]) FromBytes(data []byte, repr RepresentationIdentifier) (D, error) {
	var v D
	if repr != ReprMsgpack {
		return v, fmt.Errorf("msgpack adapter cannot handle representation id %d", repr)
	}
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// MsgpackKeyAdapter is the reference KeyFromBytes implementation pairing
// with MsgpackAdapter.
type MsgpackKeyAdapter[K any] struct{}

func (MsgpackKeyAdapter[K]) KeyFromBytes(data []byte, repr RepresentationIdentifier) (K, error) {
	var k K
	if repr != ReprMsgpack {
		return k, fmt.Errorf("msgpack key adapter cannot handle representation id %d", repr)
	}
	if err := msgpack.Unmarshal(data, &k); err != nil {
		return k, err
	}
	return k, nil
}

// CompressedAdapter decorates another DeserializerAdapter with zstd
// framing (github.com/klauspost/compress/zstd), advertising
// ReprMsgpackCompressed and decompressing before delegating to Inner.
// It advertises only ReprMsgpackCompressed: a reader decoding with it
// rejects plain payloads as an unknown representation id, so plain and
// compressed payloads of the same Go type are decoded with
// MsgpackAdapter and CompressedAdapter respectively.
type CompressedAdapter[D any] struct {
	Inner DeserializerAdapter[D]
}

func (c CompressedAdapter[D]) SupportedEncodings() []RepresentationIdentifier {
	return []RepresentationIdentifier{ReprMsgpackCompressed}
}

func (c CompressedAdapter[D]) FromBytes(data []byte, repr RepresentationIdentifier) (D, error) {
	var zero D
	if repr != ReprMsgpackCompressed {
		return zero, fmt.Errorf("compressed adapter cannot handle representation id %d", repr)
	}
	plain, err := decompressZstd(data)
	if err != nil {
		return zero, fmt.Errorf("failed to decompress payload: %w", err)
	}
	inner := c.Inner.SupportedEncodings()
	if len(inner) == 0 {
		return zero, fmt.Errorf("inner adapter advertises no supported encodings")
	}
	return c.Inner.FromBytes(plain, inner[0])
}

// compressZstd and decompressZstd are small helpers used by
// CompressedAdapter and by tests constructing compressed payloads.
func compressZstd(plain []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(plain, nil), nil
}

func decompressZstd(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}
