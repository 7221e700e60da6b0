package interop

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vparc/vpack"
	"github.com/vparc/vpack/slice"
)

func TestToMsgpack_MatchesLibraryEncoding(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Key("name"); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(vpack.String("ada")); err != nil {
		t.Fatal(err)
	}
	if err := b.Key("nums"); err != nil {
		t.Fatal(err)
	}
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int64{1, 2, 3} {
		if err := b.Add(vpack.Int(n)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := ToMsgpack(slice.New(b.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := msgpack.Unmarshal(raw, &got); err != nil {
		t.Fatalf("library could not decode our output: %v", err)
	}
	if got["name"] != "ada" {
		t.Fatalf("name = %v", got["name"])
	}
	nums, ok := got["nums"].([]any)
	if !ok || len(nums) != 3 {
		t.Fatalf("nums = %v", got["nums"])
	}
}

func TestFromMsgpack_ThenDump(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{
		"a": int64(1),
		"b": []any{true, false, nil},
		"c": "hello",
	})
	if err != nil {
		t.Fatal(err)
	}

	b := vpack.New(vpack.Options{})
	if err := FromMsgpack(b, raw); err != nil {
		t.Fatal(err)
	}

	s := slice.New(b.Bytes())
	if s.Kind() != slice.KindObject {
		t.Fatalf("Kind() = %v, want Object", s.Kind())
	}
	a, ok, err := s.Get("a")
	if err != nil || !ok {
		t.Fatalf("Get(a): ok=%v err=%v", ok, err)
	}
	if v, err := a.IntValue(); err != nil || v != 1 {
		t.Fatalf("a = %v, %v", v, err)
	}
	c, ok, err := s.Get("c")
	if err != nil || !ok {
		t.Fatalf("Get(c): ok=%v err=%v", ok, err)
	}
	if v, err := c.StringValue(); err != nil || v != "hello" {
		t.Fatalf("c = %q, %v", v, err)
	}
}

func TestRoundTrip_StringArray(t *testing.T) {
	b := vpack.New(vpack.Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"x", "y", "z"} {
		if err := b.Add(vpack.String(s)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := ToMsgpack(slice.New(b.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	b2 := vpack.New(vpack.Options{})
	if err := FromMsgpack(b2, raw); err != nil {
		t.Fatal(err)
	}
	s2 := slice.New(b2.Bytes())
	n, err := s2.Length()
	if err != nil || n != 3 {
		t.Fatalf("Length() = %d, %v", n, err)
	}
	for i, want := range []string{"x", "y", "z"} {
		el, err := s2.At(i)
		if err != nil {
			t.Fatal(err)
		}
		got, err := el.StringValue()
		if err != nil || got != want {
			t.Fatalf("At(%d) = %q, want %q (err=%v)", i, got, want, err)
		}
	}
}
