package journal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/vparc/vpack/mmap"
)

// Segments returns every segment file belonging to a journal opened with
// FileName prefix/suffix fileName (e.g. "j*.wal"), oldest first.
func Segments(dir, fileName string) ([]string, error) {
	prefix, suffix, _ := cutStar(fileName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ent := range ents {
		if !ent.Type().IsRegular() {
			continue
		}
		n := ent.Name()
		if len(n) >= len(prefix)+len(suffix) && hasPrefixSuffix(n, prefix, suffix) {
			names = append(names, filepath.Join(dir, n))
		}
	}
	sort.Strings(names)
	return names, nil
}

func hasPrefixSuffix(s, prefix, suffix string) bool {
	return len(s) >= len(prefix)+len(suffix) &&
		s[:len(prefix)] == prefix &&
		s[len(s)-len(suffix):] == suffix
}

func cutStar(pattern string) (prefix, suffix string, ok bool) {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' {
			return pattern[:i], pattern[i+1:], true
		}
	}
	return pattern, "", false
}

// ReadSegment mmaps path and replays every fully-committed record it
// contains, in order. It assumes the segment was written with one
// WriteRecord followed immediately by one Commit per record (true of
// walog.Log, which is the only intended caller): each record is
// [uvarint sizeAndFlags][uvarint tsDelta][data][8-byte checksum
// trailer]. Replay stops, without error, at the first record that fails
// its checksum or runs past EOF — the tail of a segment being written
// concurrently, or truncated by a crash, is simply not returned. The file
// is left unchanged.
func ReadSegment(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(st.Size())
	if size < segmentHeaderSize {
		return nil, nil
	}

	data, err := mmap.Mmap(f, 0, size, 0)
	if err != nil {
		return nil, err
	}
	defer mmap.Munmap(data)

	hbuf := data[:segmentHeaderSize]
	checksum := xxhash.Sum64(hbuf[:segmentHeaderSize-8])
	var h segmentHeader
	if _, err := binary.Decode(hbuf, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("journal: decode segment header: %w", err)
	}
	if h.Magic != magic || h.Checksum != checksum {
		return nil, nil
	}

	var hash xxhash.Digest
	hash.Reset()
	hash.Write(hbuf)

	var records [][]byte
	pos := segmentHeaderSize
	for {
		sizeAndFlags, n1 := binary.Uvarint(data[pos:])
		if n1 <= 0 {
			break
		}
		tsDelta, n2 := binary.Uvarint(data[pos+n1:])
		if n2 <= 0 {
			break
		}
		headerLen := n1 + n2
		size := int(sizeAndFlags >> recordFlagShift)
		_ = tsDelta

		recStart := pos + headerLen
		recEnd := recStart + size
		trailerEnd := recEnd + 8
		if trailerEnd > len(data) {
			break
		}

		hash.Write(data[pos:recEnd])
		want := hash.Sum64()
		var wantBuf [8]byte
		binary.LittleEndian.PutUint64(wantBuf[:], want)
		wantBuf[0] |= recordFlagCommit

		trailer := data[recEnd:trailerEnd]
		if trailer[0] != wantBuf[0] || string(trailer[1:]) != string(wantBuf[1:]) {
			break
		}
		hash.Write(trailer)

		records = append(records, append([]byte(nil), data[recStart:recEnd]...))
		pos = trailerEnd
	}
	return records, nil
}
