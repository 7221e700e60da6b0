package vpack

import (
	"errors"
	"testing"
)

func TestEmptyArray(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	want := []byte{headEmptyArray}
	if string(b.Bytes()) != string(want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
	if !b.IsClosed() {
		t.Fatal("IsClosed() = false after top-level Close")
	}
}

func TestEmptyObject(t *testing.T) {
	b := New(Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	want := []byte{headEmptyObject}
	if string(b.Bytes()) != string(want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
}

// TestArrayOfSmallInts_ConstantStride reproduces the documented [1,2]
// scenario: constant-stride children close without an offset table.
func TestArrayOfSmallInts_ConstantStride(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(SmallInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(SmallInt(2)); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x02, 0x04, 0x31, 0x32}
	if string(b.Bytes()) != string(want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
}

func TestLongString(t *testing.T) {
	b := New(Options{})
	s := make([]byte, 300)
	for i := range s {
		s[i] = byte('a' + i%26)
	}
	if err := b.Add(String(string(s))); err != nil {
		t.Fatal(err)
	}
	buf := b.Bytes()
	if buf[0] != headStringLong {
		t.Fatalf("head = 0x%02x, want 0x%02x", buf[0], headStringLong)
	}
	n := getFixedLE(buf[1:9], 8)
	if n != 300 {
		t.Fatalf("length field = %d, want 300", n)
	}
	if string(buf[9:]) != string(s) {
		t.Fatal("payload mismatch")
	}
}

// TestWideNoTableArray_SingleLargeElement covers the single-child no-table
// array whose total size exceeds 255 bytes: the writer picks an offset
// width above 1, leaves the reserved header bytes zero-padded rather than
// moving the payload down, and the reader has to find it by skipping the
// padding.
func TestWideNoTableArray_SingleLargeElement(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	s := make([]byte, 300)
	for i := range s {
		s[i] = byte('a' + i%26)
	}
	if err := b.Add(String(string(s))); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	buf := b.Bytes()
	if buf[0] < headArrayBase || buf[0] >= headArrayIndexedBase {
		t.Fatalf("head = 0x%02x, want a no-table array head", buf[0])
	}

	sl, err := b.Slice()
	if err != nil {
		t.Fatal(err)
	}
	n, err := sl.Length()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Length() = %d, want 1", n)
	}
	el, err := sl.At(0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := el.StringValue()
	if err != nil || got != string(s) {
		t.Fatalf("At(0) = %q, %v; want %q", got, err, s)
	}
}

// TestWideNoTableArray_ConstantStrideLargeElements covers the
// constant-stride no-table array (two children, equal size) whose total
// size exceeds 255 bytes.
func TestWideNoTableArray_ConstantStrideLargeElements(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	want := make([]string, 2)
	for i := range want {
		s := make([]byte, 200)
		for j := range s {
			s[j] = byte('A' + (i+j)%26)
		}
		want[i] = string(s)
		if err := b.Add(String(want[i])); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	buf := b.Bytes()
	if buf[0] < headArrayBase || buf[0] >= headArrayIndexedBase {
		t.Fatalf("head = 0x%02x, want a no-table array head", buf[0])
	}

	sl, err := b.Slice()
	if err != nil {
		t.Fatal(err)
	}
	n, err := sl.Length()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Length() = %d, want 2", n)
	}
	for i, w := range want {
		el, err := sl.At(i)
		if err != nil {
			t.Fatal(err)
		}
		got, err := el.StringValue()
		if err != nil || got != w {
			t.Fatalf("At(%d) = %q, %v; want %q", i, got, err, w)
		}
	}
}

func TestSmallIntOutOfRange(t *testing.T) {
	b := New(Options{})
	err := b.Add(SmallInt(10))
	if !errors.Is(err, ErrKindNumberOutOfRange) {
		t.Fatalf("err = %v, want NumberOutOfRange", err)
	}
	err = b.Add(SmallInt(-7))
	if !errors.Is(err, ErrKindNumberOutOfRange) {
		t.Fatalf("err = %v, want NumberOutOfRange", err)
	}
}

func TestKeyWithoutOpenObject(t *testing.T) {
	b := New(Options{})
	err := b.Key("a")
	if !errors.Is(err, ErrKindBuilderNeedOpenObject) {
		t.Fatalf("err = %v, want BuilderNeedOpenObject", err)
	}
}

func TestKeyInsideArray(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	err := b.Key("a")
	if !errors.Is(err, ErrKindBuilderNeedOpenObject) {
		t.Fatalf("err = %v, want BuilderNeedOpenObject", err)
	}
}

func TestDoubleKeyWithoutValue(t *testing.T) {
	b := New(Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Key("a"); err != nil {
		t.Fatal(err)
	}
	err := b.Key("b")
	if !errors.Is(err, ErrKindBuilderKeyAlreadyWritten) {
		t.Fatalf("err = %v, want BuilderKeyAlreadyWritten", err)
	}
}

func TestValueWithoutKey(t *testing.T) {
	b := New(Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	err := b.Add(Int(1))
	if !errors.Is(err, ErrKindBuilderUnexpectedValue) {
		t.Fatalf("err = %v, want BuilderUnexpectedValue", err)
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	b := New(Options{})
	err := b.Close()
	if !errors.Is(err, ErrKindBuilderNeedOpenCompound) {
		t.Fatalf("err = %v, want BuilderNeedOpenCompound", err)
	}
}

func TestSecondTopLevelValue(t *testing.T) {
	b := New(Options{})
	if err := b.Add(Int(1)); err != nil {
		t.Fatal(err)
	}
	err := b.Add(Int(2))
	if !errors.Is(err, ErrKindBuilderUnexpectedValue) {
		t.Fatalf("err = %v, want BuilderUnexpectedValue", err)
	}
}

func TestRemoveLast_ThenReAdd_ByteIdentical(t *testing.T) {
	b1 := New(Options{})
	if err := b1.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if err := b1.Add(String("keep")); err != nil {
		t.Fatal(err)
	}
	if err := b1.Add(String("discard-me")); err != nil {
		t.Fatal(err)
	}
	if err := b1.RemoveLast(); err != nil {
		t.Fatal(err)
	}
	if err := b1.Add(String("replacement")); err != nil {
		t.Fatal(err)
	}
	if err := b1.Close(); err != nil {
		t.Fatal(err)
	}

	b2 := New(Options{})
	if err := b2.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if err := b2.Add(String("keep")); err != nil {
		t.Fatal(err)
	}
	if err := b2.Add(String("replacement")); err != nil {
		t.Fatal(err)
	}
	if err := b2.Close(); err != nil {
		t.Fatal(err)
	}

	if string(b1.Bytes()) != string(b2.Bytes()) {
		t.Fatalf("got % x, want % x", b1.Bytes(), b2.Bytes())
	}
}

func TestRemoveLast_EmptyIndex(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	err := b.RemoveLast()
	if !errors.Is(err, ErrKindBuilderNeedSubvalue) {
		t.Fatalf("err = %v, want BuilderNeedSubvalue", err)
	}
}

func TestExternalDisallowed(t *testing.T) {
	b := New(Options{DisallowExternals: true})
	err := b.AddExternal([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if !errors.Is(err, ErrKindBuilderExternalsDisallowed) {
		t.Fatalf("err = %v, want BuilderExternalsDisallowed", err)
	}
}

func TestExternalAllowedByDefault(t *testing.T) {
	b := New(Options{})
	if err := b.AddExternal([]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("zero-value Options should allow externals: %v", err)
	}
}

func TestReset(t *testing.T) {
	b := New(Options{})
	if err := b.Add(Int(42)); err != nil {
		t.Fatal(err)
	}
	b.Reset()
	if !b.IsEmpty() {
		t.Fatal("IsEmpty() = false after Reset")
	}
	if !b.IsClosed() {
		t.Fatal("IsClosed() = false after Reset")
	}
	if err := b.Add(String("fresh")); err != nil {
		t.Fatal(err)
	}
}

func TestNestedContainers(t *testing.T) {
	b := New(Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	if err := b.Key("items"); err != nil {
		t.Fatal(err)
	}
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 5; i++ {
		if err := b.Add(Int(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil { // close array
		t.Fatal(err)
	}
	if err := b.Close(); err != nil { // close object
		t.Fatal(err)
	}
	if !b.IsClosed() {
		t.Fatal("IsClosed() = false after closing all frames")
	}

	s, err := b.Slice()
	if err != nil {
		t.Fatal(err)
	}
	items, ok, err := s.Get("items")
	if err != nil || !ok {
		t.Fatalf("Get(items): ok=%v err=%v", ok, err)
	}
	n, err := items.Length()
	if err != nil || n != 5 {
		t.Fatalf("Length() = %d, %v; want 5", n, err)
	}
}

func TestSlice_BeforeCloseFails(t *testing.T) {
	b := New(Options{})
	if err := b.OpenArray(false); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Slice(); !errors.Is(err, ErrKindBuilderNeedOpenCompound) {
		t.Fatalf("Slice() before Close = %v, want ErrKindBuilderNeedOpenCompound", err)
	}
}
