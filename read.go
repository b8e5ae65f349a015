package dedupe

import (
	"context"
	"errors"

	"github.com/jchristn/dedupe/internal/catalog"
)

// Get returns the object's metadata and a seekable stream over its
// bytes, or ErrNotFound.
func (e *Engine) Get(ctx context.Context, key string) (*Object, error) {
	obj, entries, err := e.cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translateCatalogErr(err)
	}
	return &Object{
		Key:        obj.Key,
		Length:     obj.OriginalLength,
		CreatedUTC: obj.CreatedUTC,
		Stream:     e.newStream(obj.OriginalLength, entries),
	}, nil
}

// GetMetadata returns the object's metadata without a stream, or
// ErrNotFound.
func (e *Engine) GetMetadata(ctx context.Context, key string) (*Object, error) {
	obj, _, err := e.cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translateCatalogErr(err)
	}
	return &Object{Key: obj.Key, Length: obj.OriginalLength, CreatedUTC: obj.CreatedUTC}, nil
}

// GetStream returns just the seekable stream view over an object's
// bytes, or ErrNotFound.
func (e *Engine) GetStream(ctx context.Context, key string) (SeekableStream, error) {
	obj, entries, err := e.cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translateCatalogErr(err)
	}
	return e.newStream(obj.OriginalLength, entries), nil
}

// GetFull materializes an object's full byte contents by reading the
// stream from 0 to length in one pass.
func (e *Engine) GetFull(ctx context.Context, key string) ([]byte, error) {
	stream, err := e.GetStream(ctx, key)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	buf := make([]byte, stream.Length())
	if _, err := readFullAt(stream, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readFullAt(stream SeekableStream, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		m, err := stream.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

// Exists reports whether key names a live object.
func (e *Engine) Exists(ctx context.Context, key string) (bool, error) {
	_, _, err := e.cat.LookupObject(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}
	return false, translateCatalogErr(err)
}
