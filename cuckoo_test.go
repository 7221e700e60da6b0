package vpack

import "testing"

func TestFastMod_StaysInRange(t *testing.T) {
	for _, small := range []bool{true, false} {
		for _, nrSlots := range []int{1, 3, 17, 1000, 1 << 20} {
			for _, h := range []uint64{0, 1, 0xffffffffffffffff, 0x9e3779b97f4a7c15} {
				m := fastMod(h, nrSlots, small)
				if m < 0 || m >= nrSlots {
					t.Fatalf("fastMod(%d, %d, %v) = %d, out of range", h, nrSlots, small, m)
				}
			}
		}
	}
}

func TestCuckooSearchLimit(t *testing.T) {
	if got := cuckooSearchLimit(100); got != 300 {
		t.Fatalf("cuckooSearchLimit(100) = %d, want 300", got)
	}
	if got := cuckooSearchLimit(399); got != 399*3 {
		t.Fatalf("cuckooSearchLimit(399) = %d, want %d", got, 399*3)
	}
	got := cuckooSearchLimit(400)
	want := 1200 + 20 // sqrt(400) = 20
	if got != want {
		t.Fatalf("cuckooSearchLimit(400) = %d, want %d", got, want)
	}
}

func TestEvictionRand_IsDeterministic(t *testing.T) {
	r1 := newEvictionRand()
	r2 := newEvictionRand()
	for i := 0; i < 50; i++ {
		a, b := r1.next3(), r2.next3()
		if a != b {
			t.Fatalf("draw %d: %d != %d, want two independently seeded rngs to agree", i, a, b)
		}
		if a < 0 || a > 2 {
			t.Fatalf("draw %d = %d, want in [0,2]", i, a)
		}
	}
}

func TestComputeCuckooHash_AllKeysReachable(t *testing.T) {
	b := New(Options{})
	if err := b.OpenObject(false); err != nil {
		t.Fatal(err)
	}
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	for i, k := range keys {
		if err := b.Key(k); err != nil {
			t.Fatal(err)
		}
		if err := b.Add(Int(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	frame := &b.stack[len(b.stack)-1]
	ht, nrSlots, _, err := b.computeCuckooHash(frame.tos, frame.index)
	if err != nil {
		t.Fatal(err)
	}
	if nrSlots < len(keys) {
		t.Fatalf("nrSlots = %d, want >= %d", nrSlots, len(keys))
	}
	seen := make(map[int]bool)
	for _, off := range ht {
		if off == 0 {
			continue
		}
		seen[off] = true
	}
	if len(seen) != len(keys) {
		t.Fatalf("table holds %d distinct entries, want %d", len(seen), len(keys))
	}
	for _, rel := range frame.index {
		if !seen[rel] {
			t.Fatalf("key at relative offset %d missing from table", rel)
		}
	}
}
