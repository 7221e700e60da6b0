// Package interop converts between VPack values and MessagePack, for
// interoperating with systems that speak msgpack instead of VPack. It
// uses github.com/vmihailenco/msgpack/v5, the msgpack library already in
// the module's dependency graph.
package interop

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vparc/vpack"
	"github.com/vparc/vpack/slice"
)

// ToMsgpack encodes s as MessagePack bytes.
func ToMsgpack(s slice.Slice) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *msgpack.Encoder, s slice.Slice) error {
	switch s.Kind() {
	case slice.KindNull:
		return enc.EncodeNil()
	case slice.KindBool:
		v, err := s.BoolValue()
		if err != nil {
			return err
		}
		return enc.EncodeBool(v)
	case slice.KindDouble:
		v, err := s.DoubleValue()
		if err != nil {
			return err
		}
		return enc.EncodeFloat64(v)
	case slice.KindInt, slice.KindSmallInt:
		v, err := s.IntValue()
		if err != nil {
			return err
		}
		return enc.EncodeInt64(v)
	case slice.KindUInt:
		v, err := s.UIntValue()
		if err != nil {
			return err
		}
		return enc.EncodeUint64(v)
	case slice.KindUTCDate:
		v, err := s.UTCDateValue()
		if err != nil {
			return err
		}
		return enc.EncodeInt64(v)
	case slice.KindString:
		v, err := s.StringValue()
		if err != nil {
			return err
		}
		return enc.EncodeString(v)
	case slice.KindBinary:
		v, err := s.BinaryValue()
		if err != nil {
			return err
		}
		return enc.EncodeBytes(v)
	case slice.KindArray:
		return encodeArray(enc, s)
	case slice.KindObject:
		return encodeObject(enc, s)
	default:
		return fmt.Errorf("interop: cannot represent kind %v in MessagePack", s.Kind())
	}
}

func encodeArray(enc *msgpack.Encoder, s slice.Slice) error {
	n, err := s.Length()
	if err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		el, err := s.At(i)
		if err != nil {
			return err
		}
		if err := encodeValue(enc, el); err != nil {
			return err
		}
	}
	return nil
}

func encodeObject(enc *msgpack.Encoder, s slice.Slice) error {
	n, err := s.Length()
	if err != nil {
		return err
	}
	if err := enc.EncodeMapLen(n); err != nil {
		return err
	}
	return s.ForEachEntry(func(key string, val slice.Slice) error {
		if err := enc.EncodeString(key); err != nil {
			return err
		}
		return encodeValue(enc, val)
	})
}

// FromMsgpack decodes one MessagePack-encoded value from data and feeds
// it into b, using msgpack's own generic decode (map[string]interface{},
// []interface{}, and the usual scalar Go types) rather than hand-rolled
// wire-format walking.
func FromMsgpack(b *vpack.Builder, data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	return buildAny(b, v)
}

func buildAny(b *vpack.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		return b.Add(vpack.Null())
	case bool:
		return b.Add(vpack.Bool(t))
	case string:
		return b.Add(vpack.String(t))
	case []byte:
		return b.Add(vpack.Binary(t))
	case int8:
		return b.Add(vpack.Int(int64(t)))
	case int16:
		return b.Add(vpack.Int(int64(t)))
	case int32:
		return b.Add(vpack.Int(int64(t)))
	case int64:
		return b.Add(vpack.Int(t))
	case int:
		return b.Add(vpack.Int(int64(t)))
	case uint8:
		return b.Add(vpack.UInt(uint64(t)))
	case uint16:
		return b.Add(vpack.UInt(uint64(t)))
	case uint32:
		return b.Add(vpack.UInt(uint64(t)))
	case uint64:
		return b.Add(vpack.UInt(t))
	case float32:
		return b.Add(vpack.Double(float64(t)))
	case float64:
		return b.Add(vpack.Double(t))
	case []any:
		return buildArray(b, t)
	case map[string]any:
		return buildObject(b, t)
	default:
		return fmt.Errorf("interop: unsupported msgpack value of type %T", v)
	}
}

func buildArray(b *vpack.Builder, items []any) error {
	if err := b.OpenArray(false); err != nil {
		return err
	}
	for _, item := range items {
		if err := buildAny(b, item); err != nil {
			return err
		}
	}
	return b.Close()
}

func buildObject(b *vpack.Builder, m map[string]any) error {
	if err := b.OpenObject(false); err != nil {
		return err
	}
	for k, v := range m {
		if err := b.Key(k); err != nil {
			return err
		}
		if err := buildAny(b, v); err != nil {
			return err
		}
	}
	return b.Close()
}
