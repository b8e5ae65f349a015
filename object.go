package dedupe

import (
	"io"
	"time"
)

// Object is the metadata plus stream view spec.md §6's Get returns:
// {key, length, created_utc, stream}.
type Object struct {
	Key        string
	Length     int64
	CreatedUTC time.Time

	// Stream is nil from GetMetadata; populated from Get/GetStream.
	Stream SeekableStream
}

// SeekableStream is the virtual, seekable view over an object's bytes
// spec.md §4.6/§9 describes: state is {engine ref, ordered map,
// position, cached chunk}, Read is synchronous and may block inside a
// blob-backend fetch.
type SeekableStream interface {
	io.Reader
	io.Seeker
	io.Closer

	// Length is the object's total byte length.
	Length() int64
}

// EnumerationResult is ListObjects' return shape, spec.md §6: the
// matching object metadata plus the echoed pagination parameters.
type EnumerationResult struct {
	Objects    []ObjectInfo
	Prefix     string
	StartIndex int64
	MaxResults int64
	Total      int64
}

// ObjectInfo is one enumerated object's metadata (no stream).
type ObjectInfo struct {
	Key        string
	Length     int64
	ChunkCount int64
	CreatedUTC time.Time
}

// IndexStatistics is IndexStats' return shape, spec.md §3/§6.
type IndexStatistics struct {
	Objects       int64
	Chunks        int64
	LogicalBytes  int64
	PhysicalBytes int64
	RatioX        float64
	RatioPct      float64
}
