// Package walog is an append-only, checksummed log of built VPack
// documents. It is a thin, VPack-specific facade over vpack/journal's
// segment-file WAL: every Append is its own commit, so vpack/journal's
// exported segment reader can replay a log without tracking record
// boundaries itself. Each Open writes to one new segment file; segments
// are not rotated by size.
package walog

import (
	"github.com/vparc/vpack/journal"
)

// Options configures a Log. DebugName and MaxFileSize are forwarded to
// the underlying journal.Options, which stores MaxFileSize but does not
// rotate segments by size.
type Options struct {
	DebugName   string
	MaxFileSize int64
}

// Log durably appends built VPack documents (Builder.Bytes results) to
// segment files under dir.
type Log struct {
	dir string
	j   *journal.Journal
}

const fileNamePattern = "wal-*.seg"

// Open opens or creates a Log rooted at dir and starts accepting writes.
func Open(dir string, opts Options) (*Log, error) {
	j := journal.New(dir, journal.Options{
		FileName:    fileNamePattern,
		MaxFileSize: opts.MaxFileSize,
		DebugName:   opts.DebugName,
	})
	j.StartWriting()
	return &Log{dir: dir, j: j}, nil
}

// Append durably writes doc as the next record in the log, committing
// immediately so it becomes visible to Replay.
func (l *Log) Append(doc []byte) error {
	if err := l.j.WriteRecord(0, doc); err != nil {
		return err
	}
	return l.j.Commit()
}

// Close stops accepting writes and releases the current segment file.
func (l *Log) Close() error {
	return l.j.FinishWriting()
}

// Replay reads back every committed document across all segment files,
// oldest first, stopping at the first corrupted or incomplete record in
// each segment (see journal.ReadSegment).
func (l *Log) Replay() ([][]byte, error) {
	segs, err := journal.Segments(l.dir, fileNamePattern)
	if err != nil {
		return nil, err
	}
	var docs [][]byte
	for _, seg := range segs {
		recs, err := journal.ReadSegment(seg)
		if err != nil {
			return nil, err
		}
		docs = append(docs, recs...)
	}
	return docs, nil
}
