package vpack

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// xxh64Seeded computes XXH64 of data as if seeded, by hashing a fixed
// 8-byte little-endian seed prefix followed by data. cespare/xxhash/v2's
// public API exposes New/Write/Sum64 but no seed parameter, so this is
// how the three independent per-slot hashes are derived from seedTable.
func xxh64Seeded(data []byte, seed uint64) uint64 {
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], seed)
	d := xxhash.New()
	d.Write(seedBuf[:])
	d.Write(data)
	return d.Sum64()
}

// fastMod maps a 64-bit hash into [0, nrSlots). When nrSlots is small
// enough (<= 2^24) a Lemire-style multiply-shift over the low 32 bits of
// h stands in for the remainder operation; otherwise a plain modulo is
// used, matching the "small vs not small" split.
func fastMod(h uint64, nrSlots int, small bool) int {
	if small {
		return int((uint64(uint32(h)) * uint64(nrSlots)) >> 32)
	}
	return int(h % uint64(nrSlots))
}

func cuckooSearchLimit(nrSlots int) int {
	if nrSlots < 400 {
		return nrSlots * 3
	}
	return 1200 + int(math.Sqrt(float64(nrSlots)))
}

// evictionRand produces the uniform {0,1,2} draws used to pick which of
// three occupied slots a cuckoo insertion evicts. It is seeded with a
// fixed constant so that two builders presented with the same keys in
// the same order and retry history reach the same table layout.
type evictionRand struct {
	r *rand.Rand
}

func newEvictionRand() *evictionRand {
	return &evictionRand{r: rand.New(rand.NewPCG(123456789, 123456789))}
}

func (e *evictionRand) next3() int {
	return e.r.IntN(3)
}

// computeCuckooHash builds the 3-way cuckoo hash table over the keys at
// the given relative offsets (tos-relative), retrying with an
// incremented seed and eventually a larger table on failure. It returns
// the finished table (0 = empty slot), the table size, and the seed byte
// that produced it.
func (b *Builder) computeCuckooHash(tos int, index []int) (ht []int, nrSlots int, seed byte, err error) {
	n := len(index)
	nrSlots = n + (3*n)/20 + 1
	rng := newEvictionRand()

	for {
		small := nrSlots <= 0x1000000
		searchLimit := cuckooSearchLimit(nrSlots)

		s := byte(0)
		for {
			table := make([]int, nrSlots)
			ok := true
			for _, keyRelOff := range index {
				placed, derr := b.cuckooInsert(table, nrSlots, small, s, rng, keyRelOff, searchLimit, tos)
				if derr != nil {
					return nil, 0, 0, derr
				}
				if !placed {
					ok = false
					break
				}
			}
			if ok {
				return table, nrSlots, s, nil
			}
			s++
			if s == 0 {
				break
			}
		}
		nrSlots = nrSlots * 110 / 100
	}
}

// cuckooInsert places the key at keyRelOff into table, evicting and
// re-placing displaced keys as needed. Uniqueness against already-placed
// keys is checked candidate by candidate, in probe order, on the very
// first attempt of this call: an occupied earlier candidate is compared
// against the incoming name before the next candidate is even probed,
// so a duplicate is caught even when a later candidate turns out to be
// empty. Later attempts within the same insert (which only occur after
// at least one eviction) do not repeat the check.
func (b *Builder) cuckooInsert(table []int, nrSlots int, small bool, seed byte, rng *evictionRand, keyRelOff int, searchLimit int, tos int) (bool, error) {
	checkUniqueness := b.opts.CheckAttributeUniqueness
	curOff := keyRelOff
	curName, _, err := findAttrName(b.buf, tos+curOff)
	if err != nil {
		return false, err
	}

	var positions [3]int
	for attempt := 0; attempt <= searchLimit; attempt++ {
		placed := false
		for i := 0; i < 3; i++ {
			h := xxh64Seeded(curName, seedTable[seed][i])
			positions[i] = fastMod(h, nrSlots, small)

			if table[positions[i]] == 0 {
				table[positions[i]] = curOff
				placed = true
				break
			}

			if checkUniqueness {
				otherName, _, err := findAttrName(b.buf, tos+table[positions[i]])
				if err != nil {
					return false, err
				}
				if bytes.Equal(otherName, curName) {
					return false, builderErrf(ErrDuplicateAttributeName, "duplicate attribute name %q", curName)
				}
			}
		}
		if placed {
			return true, nil
		}
		checkUniqueness = false

		evictIdx := positions[rng.next3()]
		evictedOff := table[evictIdx]
		table[evictIdx] = curOff
		curOff = evictedOff
		curName, _, err = findAttrName(b.buf, tos+curOff)
		if err != nil {
			return false, err
		}
	}
	return false, nil
}
