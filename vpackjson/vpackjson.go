// Package vpackjson converts between VPack values and JSON text: Dump
// walks a slice.Slice and writes JSON, Build feeds parsed JSON tokens
// into an open vpack.Builder. Neither is part of the builder's core
// design — they are the "external collaborators" the format spec
// excludes from the builder's own complexity budget, kept here as a
// separate package so the core stays free of an encoding/json import.
package vpackjson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/vparc/vpack"
	"github.com/vparc/vpack/slice"
)

// DumpString renders s as a JSON string.
func DumpString(s slice.Slice) (string, error) {
	var buf bytes.Buffer
	if err := Dump(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dump writes s to w as JSON. Binary values are base64-encoded strings,
// matching encoding/json's own []byte convention; External, Illegal,
// MinKey, MaxKey, BCD and Custom have no JSON representation and are
// reported as errors rather than silently coerced.
func Dump(w io.Writer, s slice.Slice) error {
	switch s.Kind() {
	case slice.KindNull:
		return writeString(w, "null")
	case slice.KindBool:
		v, err := s.BoolValue()
		if err != nil {
			return err
		}
		if v {
			return writeString(w, "true")
		}
		return writeString(w, "false")
	case slice.KindDouble:
		v, err := s.DoubleValue()
		if err != nil {
			return err
		}
		return writeString(w, strconv.FormatFloat(v, 'g', -1, 64))
	case slice.KindInt, slice.KindSmallInt:
		v, err := s.IntValue()
		if err != nil {
			return err
		}
		return writeString(w, strconv.FormatInt(v, 10))
	case slice.KindUInt:
		v, err := s.UIntValue()
		if err != nil {
			return err
		}
		return writeString(w, strconv.FormatUint(v, 10))
	case slice.KindUTCDate:
		v, err := s.UTCDateValue()
		if err != nil {
			return err
		}
		return writeString(w, strconv.FormatInt(v, 10))
	case slice.KindString:
		v, err := s.StringValue()
		if err != nil {
			return err
		}
		return writeJSON(w, v)
	case slice.KindBinary:
		v, err := s.BinaryValue()
		if err != nil {
			return err
		}
		return writeJSON(w, base64.StdEncoding.EncodeToString(v))
	case slice.KindArray:
		return dumpArray(w, s)
	case slice.KindObject:
		return dumpObject(w, s)
	default:
		return fmt.Errorf("vpackjson: cannot represent kind %v as JSON", s.Kind())
	}
}

func dumpArray(w io.Writer, s slice.Slice) error {
	n, err := s.Length()
	if err != nil {
		return err
	}
	if err := writeString(w, "["); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := writeString(w, ","); err != nil {
				return err
			}
		}
		el, err := s.At(i)
		if err != nil {
			return err
		}
		if err := Dump(w, el); err != nil {
			return err
		}
	}
	return writeString(w, "]")
}

func dumpObject(w io.Writer, s slice.Slice) error {
	if err := writeString(w, "{"); err != nil {
		return err
	}
	first := true
	err := s.ForEachEntry(func(key string, val slice.Slice) error {
		if !first {
			if err := writeString(w, ","); err != nil {
				return err
			}
		}
		first = false
		if err := writeJSON(w, key); err != nil {
			return err
		}
		if err := writeString(w, ":"); err != nil {
			return err
		}
		return Dump(w, val)
	})
	if err != nil {
		return err
	}
	return writeString(w, "}")
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func writeJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// Build parses one JSON value from data and feeds it into b: as the
// document's sole top-level value, as the next array element, or as an
// object's value following a preceding Key call — whichever the
// builder's current state calls for.
func Build(b *vpack.Builder, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := buildValue(b, dec); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("vpackjson: trailing data after JSON value")
	}
	return nil
}

func buildValue(b *vpack.Builder, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return buildToken(b, dec, tok)
}

func buildToken(b *vpack.Builder, dec *json.Decoder, tok json.Token) error {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return buildObject(b, dec)
		case '[':
			return buildArray(b, dec)
		default:
			return fmt.Errorf("vpackjson: unexpected delimiter %q", t)
		}
	case nil:
		return b.Add(vpack.Null())
	case bool:
		return b.Add(vpack.Bool(t))
	case json.Number:
		return addNumber(b, t)
	case string:
		return b.Add(vpack.String(t))
	default:
		return fmt.Errorf("vpackjson: unexpected token %v (%T)", tok, tok)
	}
}

func buildObject(b *vpack.Builder, dec *json.Decoder) error {
	if err := b.OpenObject(false); err != nil {
		return err
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("vpackjson: expected object key, got %v", keyTok)
		}
		if err := b.Key(key); err != nil {
			return err
		}
		if err := buildValue(b, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // consumes '}'
		return err
	}
	return b.Close()
}

func buildArray(b *vpack.Builder, dec *json.Decoder) error {
	if err := b.OpenArray(false); err != nil {
		return err
	}
	for dec.More() {
		if err := buildValue(b, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // consumes ']'
		return err
	}
	return b.Close()
}

func addNumber(b *vpack.Builder, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		return b.Add(vpack.Int(i))
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("vpackjson: invalid number %q: %w", n, err)
	}
	return b.Add(vpack.Double(f))
}
