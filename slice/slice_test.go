package slice_test

import (
	"sort"
	"testing"

	"github.com/vparc/vpack"
	"github.com/vparc/vpack/slice"
)

// headCompactObject is the compact-object head byte.
const headCompactObject = 0x14

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    vpack.Value
		want any
	}{
		{"null", vpack.Null(), nil},
		{"bool-true", vpack.Bool(true), true},
		{"bool-false", vpack.Bool(false), false},
		{"double", vpack.Double(3.5), 3.5},
		{"int", vpack.Int(-12345), int64(-12345)},
		{"uint", vpack.UInt(999999), uint64(999999)},
		{"smallint", vpack.SmallInt(7), int64(7)},
		{"string", vpack.String("hello world"), "hello world"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := vpack.New(vpack.Options{})
			if err := b.Add(c.v); err != nil {
				t.Fatal(err)
			}
			s := slice.New(b.Bytes())
			switch want := c.want.(type) {
			case nil:
				if !s.IsNull() {
					t.Fatal("IsNull() = false")
				}
			case bool:
				got, err := s.BoolValue()
				if err != nil || got != want {
					t.Fatalf("BoolValue() = %v, %v; want %v", got, err, want)
				}
			case float64:
				got, err := s.DoubleValue()
				if err != nil || got != want {
					t.Fatalf("DoubleValue() = %v, %v; want %v", got, err, want)
				}
			case int64:
				got, err := s.IntValue()
				if err != nil || got != want {
					t.Fatalf("IntValue() = %v, %v; want %v", got, err, want)
				}
			case uint64:
				got, err := s.UIntValue()
				if err != nil || got != want {
					t.Fatalf("UIntValue() = %v, %v; want %v", got, err, want)
				}
			case string:
				got, err := s.StringValue()
				if err != nil || got != want {
					t.Fatalf("StringValue() = %q, %v; want %q", got, err, want)
				}
			}
		})
	}
}

func TestArrayRoundTrip(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	want := []string{"one", "two", "three", "four", "five"}
	for _, s := range want {
		if err := b.Add(vpack.String(s)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	s := slice.New(b.Bytes())
	if !s.IsArray() {
		t.Fatal("IsArray() = false")
	}
	n, err := s.Length()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(want) {
		t.Fatalf("Length() = %d, want %d", n, len(want))
	}
	for i, w := range want {
		el, err := s.At(i)
		if err != nil {
			t.Fatal(err)
		}
		got, err := el.StringValue()
		if err != nil || got != w {
			t.Fatalf("At(%d) = %q, %v; want %q", i, got, err, w)
		}
	}
}

func TestObjectRoundTrip_GetAndForEach(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{"alpha": 1, "beta": 2, "gamma": 3, "delta": 4}
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := b.Key(k); err != nil {
			t.Fatal(err)
		}
		if err := b.Add(vpack.Int(want[k])); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	s := slice.New(b.Bytes())
	if !s.IsObject() {
		t.Fatal("IsObject() = false")
	}
	for k, wantV := range want {
		v, ok, err := s.Get(k)
		if err != nil || !ok {
			t.Fatalf("Get(%q): ok=%v err=%v", k, ok, err)
		}
		got, err := v.IntValue()
		if err != nil || got != wantV {
			t.Fatalf("Get(%q) = %d, %v; want %d", k, got, err, wantV)
		}
	}
	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing): ok=%v err=%v", ok, err)
	}

	seen := make(map[string]int64)
	err := s.ForEachEntry(func(key string, val slice.Slice) error {
		v, err := val.IntValue()
		if err != nil {
			return err
		}
		seen[key] = v
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != len(want) {
		t.Fatalf("ForEachEntry visited %d entries, want %d", len(seen), len(want))
	}
	for k, v := range want {
		if seen[k] != v {
			t.Fatalf("ForEachEntry: seen[%q] = %d, want %d", k, seen[k], v)
		}
	}
}

// TestCompactObjectRoundTrip_MultiplePairs exercises the compact-object
// reader with more than one key/value pair: the trailing count field
// counts pairs, not sub-values, so a reader that steps two-at-a-time
// through it stops early and drops every pair past the first.
func TestCompactObjectRoundTrip_MultiplePairs(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenObject(true); err != nil {
		t.Fatal(err)
	}
	want := []struct {
		key string
		val int64
	}{
		{"a", 1},
		{"b", 2},
		{"c", 3},
	}
	for _, kv := range want {
		if err := b.Key(kv.key); err != nil {
			t.Fatal(err)
		}
		if err := b.Add(vpack.Int(kv.val)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	buf := b.Bytes()
	if buf[0] != headCompactObject {
		t.Fatalf("head = 0x%02x, want compact object 0x%02x", buf[0], headCompactObject)
	}

	s := slice.New(buf)
	for _, kv := range want {
		v, ok, err := s.Get(kv.key)
		if err != nil || !ok {
			t.Fatalf("Get(%q): ok=%v err=%v", kv.key, ok, err)
		}
		got, err := v.IntValue()
		if err != nil || got != kv.val {
			t.Fatalf("Get(%q) = %d, %v; want %d", kv.key, got, err, kv.val)
		}
	}

	seen := make(map[string]int64)
	err := s.ForEachEntry(func(key string, val slice.Slice) error {
		v, err := val.IntValue()
		if err != nil {
			return err
		}
		seen[key] = v
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != len(want) {
		t.Fatalf("ForEachEntry visited %d entries, want %d", len(seen), len(want))
	}
	for _, kv := range want {
		if seen[kv.key] != kv.val {
			t.Fatalf("ForEachEntry: seen[%q] = %d, want %d", kv.key, seen[kv.key], kv.val)
		}
	}
}

// TestWideNoTableArrayRoundTrip covers a no-table array (single element,
// then two equal-size elements) whose encoded size exceeds 255 bytes: the
// writer leaves the header's reserved bytes zero-padded instead of moving
// the payload down for offset widths above 1, so the reader must skip the
// padding rather than assume the payload starts right after the length
// field.
func TestWideNoTableArrayRoundTrip(t *testing.T) {
	big := func(n int, fill byte) string {
		s := make([]byte, n)
		for i := range s {
			s[i] = fill + byte(i%26)
		}
		return string(s)
	}

	t.Run("single", func(t *testing.T) {
		b := vpack.New(vpack.Options{})
		if err := b.OpenArray(false); err != nil {
			t.Fatal(err)
		}
		want := big(300, 'a')
		if err := b.Add(vpack.String(want)); err != nil {
			t.Fatal(err)
		}
		if err := b.Close(); err != nil {
			t.Fatal(err)
		}
		s := slice.New(b.Bytes())
		n, err := s.Length()
		if err != nil || n != 1 {
			t.Fatalf("Length() = %d, %v; want 1", n, err)
		}
		el, err := s.At(0)
		if err != nil {
			t.Fatal(err)
		}
		got, err := el.StringValue()
		if err != nil || got != want {
			t.Fatalf("At(0) = %q, %v; want %q", got, err, want)
		}
	})

	t.Run("constant-stride pair", func(t *testing.T) {
		b := vpack.New(vpack.Options{})
		if err := b.OpenArray(false); err != nil {
			t.Fatal(err)
		}
		want := []string{big(200, 'A'), big(200, 'B')}
		for _, w := range want {
			if err := b.Add(vpack.String(w)); err != nil {
				t.Fatal(err)
			}
		}
		if err := b.Close(); err != nil {
			t.Fatal(err)
		}
		s := slice.New(b.Bytes())
		n, err := s.Length()
		if err != nil || n != len(want) {
			t.Fatalf("Length() = %d, %v; want %d", n, err, len(want))
		}
		for i, w := range want {
			el, err := s.At(i)
			if err != nil {
				t.Fatal(err)
			}
			got, err := el.StringValue()
			if err != nil || got != w {
				t.Fatalf("At(%d) = %q, %v; want %q", i, got, err, w)
			}
		}
	})
}

func TestEmptyContainers(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	s := slice.New(b.Bytes())
	n, err := s.Length()
	if err != nil || n != 0 {
		t.Fatalf("Length() = %d, %v; want 0", n, err)
	}

	b2 := vpack.New(vpack.Options{})
	if err := b2.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b2.Close(); err != nil {
		t.Fatal(err)
	}
	s2 := slice.New(b2.Bytes())
	visited := 0
	if err := s2.ForEachEntry(func(string, slice.Slice) error { visited++; return nil }); err != nil {
		t.Fatal(err)
	}
	if visited != 0 {
		t.Fatalf("ForEachEntry on empty object visited %d entries, want 0", visited)
	}
}

func TestNestedRoundTrip(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Key("items"); err != nil {
		t.Fatal(err)
	}
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 3; i++ {
		if err := b.Add(vpack.Int(i * 10)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	s := slice.New(b.Bytes())
	items, ok, err := s.Get("items")
	if err != nil || !ok {
		t.Fatalf("Get(items): ok=%v err=%v", ok, err)
	}
	n, err := items.Length()
	if err != nil || n != 3 {
		t.Fatalf("Length() = %d, %v; want 3", n, err)
	}
	for i := 0; i < 3; i++ {
		el, err := items.At(i)
		if err != nil {
			t.Fatal(err)
		}
		got, err := el.IntValue()
		if err != nil || got != int64(i*10) {
			t.Fatalf("At(%d) = %d, %v; want %d", i, got, err, i*10)
		}
	}
}
