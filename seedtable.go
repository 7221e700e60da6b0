package vpack

// seedTable holds, for each possible per-build seed byte, the three XXH64
// seeds used to compute a key's three candidate cuckoo-table positions
// (seedTable[seed][0..2]). It is fixed for the lifetime of the process:
// every Builder using the same seed byte hashes identically, which is
// what lets an independent reader re-derive the same table layout from
// the seed stored in the object header.
//
// The table is generated once at init time with splitmix64, seeded from a
// fixed constant, rather than hand-transcribed as a 768-entry literal.
var seedTable [256][3]uint64

func init() {
	var state uint64 = 0x9e3779b97f4a7c15
	next := func() uint64 {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	for i := range seedTable {
		seedTable[i][0] = next()
		seedTable[i][1] = next()
		seedTable[i][2] = next()
	}
}
