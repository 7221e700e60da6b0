package vpack

import (
	"errors"
	"testing"
)

func TestIntWidth_NarrowestFit(t *testing.T) {
	cases := []struct {
		v    int64
		want int
	}{
		{0, 1}, {127, 1}, {-128, 1},
		{128, 2}, {-129, 2}, {32767, 2},
		{32768, 3}, {-32769, 3},
		{1 << 40, 6}, {-(1 << 40), 6},
	}
	for _, c := range cases {
		if got := intWidth(c.v); got != c.want {
			t.Fatalf("intWidth(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestUintWidth_NarrowestFit(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1}, {255, 1},
		{256, 2}, {65535, 2},
		{65536, 3}, {1<<32 - 1, 4},
		{1 << 32, 5},
	}
	for _, c := range cases {
		if got := uintWidth(c.v); got != c.want {
			t.Fatalf("uintWidth(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestAddInt_HeadEncodesWidth(t *testing.T) {
	b := New(Options{})
	if err := b.Add(Int(200)); err != nil {
		t.Fatal(err)
	}
	buf := b.Bytes()
	wantHead := byte(headIntBase + 1) // width 2
	if buf[0] != wantHead {
		t.Fatalf("head = 0x%02x, want 0x%02x", buf[0], wantHead)
	}
	v := int64(getFixedLE(buf[1:3], 2))
	// sign-extend from 16 bits
	v = int64(int16(v))
	if v != 200 {
		t.Fatalf("decoded %d, want 200", v)
	}
}

func TestAddBinary_HeadEncodesWidth(t *testing.T) {
	b := New(Options{})
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i)
	}
	if err := b.Add(Binary(data)); err != nil {
		t.Fatal(err)
	}
	buf := b.Bytes()
	if buf[0] != headBinaryBase+1 {
		t.Fatalf("head = 0x%02x, want 0x%02x", buf[0], headBinaryBase+1)
	}
	n := getFixedLE(buf[1:2], 1)
	if n != 10 {
		t.Fatalf("length field = %d, want 10", n)
	}
	if string(buf[2:]) != string(data) {
		t.Fatal("payload mismatch")
	}
}

func TestAddString_ShortForm(t *testing.T) {
	b := New(Options{})
	if err := b.Add(String("hi")); err != nil {
		t.Fatal(err)
	}
	buf := b.Bytes()
	if buf[0] != headStringShortBase+2 {
		t.Fatalf("head = 0x%02x, want 0x%02x", buf[0], headStringShortBase+2)
	}
	if string(buf[1:]) != "hi" {
		t.Fatal("payload mismatch")
	}
}

func TestBCDNotImplemented(t *testing.T) {
	b := New(Options{})
	err := b.Add(BCD())
	if !errors.Is(err, ErrKindNotImplemented) {
		t.Fatalf("err = %v, want NotImplemented", err)
	}
}
