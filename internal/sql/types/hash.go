package types

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"
	"time"
)

// ValueHasher computes a 64-bit hash of a value of one concrete type.
// Hashers agree with the type's Compare: equal values hash equally.
type ValueHasher func(v Value) uint64

const nullHash = uint64(0x9e3779b97f4a7c15)

var (
	hasherMu       sync.Mutex
	hasherRegistry = make(map[string]ValueHasher)
)

// HasherFor returns the hasher for the given type. Hashers are built once
// per distinct type and reused; composite types compose their element
// hashers at construction time rather than dispatching per call.
func HasherFor(t DataType) ValueHasher {
	hasherMu.Lock()
	defer hasherMu.Unlock()
	return hasherForLocked(t)
}

func hasherForLocked(t DataType) ValueHasher {
	name := t.Name()
	if h, ok := hasherRegistry[name]; ok {
		return h
	}
	h := buildHasher(t)
	hasherRegistry[name] = h
	return h
}

func buildHasher(t DataType) ValueHasher {
	switch t := t.(type) {
	case booleanType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			if v.Data.(bool) {
				return hashBytes([]byte{1})
			}
			return hashBytes([]byte{0})
		}
	case integerType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			return hashUint64(uint64(int64(v.Data.(int32))))
		}
	case bigintType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			return hashUint64(uint64(v.Data.(int64)))
		}
	case doubleType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			f := v.Data.(float64)
			if f == 0 {
				f = 0 // collapse -0.0 and +0.0
			}
			return hashUint64(math.Float64bits(f))
		}
	case textType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			return hashBytes([]byte(v.Data.(string)))
		}
	case timestampType:
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			return hashUint64(uint64(v.Data.(time.Time).UnixNano()))
		}
	case ArrayType:
		elemHasher := buildHasher(t.Elem)
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			elems := v.Data.([]Value)
			h := hashUint64(uint64(len(elems)))
			for _, e := range elems {
				h = combineHash(h, elemHasher(e))
			}
			return h
		}
	case RowType:
		fieldHashers := make([]ValueHasher, len(t.Fields))
		for i, f := range t.Fields {
			fieldHashers[i] = buildHasher(f)
		}
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			fields := v.Data.([]Value)
			h := hashUint64(uint64(len(fields)))
			for i, f := range fields {
				h = combineHash(h, fieldHashers[i](f))
			}
			return h
		}
	default:
		// Unknown and any future types hash on the rendered value.
		return func(v Value) uint64 {
			if v.Null {
				return nullHash
			}
			return hashBytes([]byte(v.String()))
		}
	}
}

func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

func hashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return hashBytes(b[:])
}

func combineHash(a, b uint64) uint64 {
	return a*31 + b
}
