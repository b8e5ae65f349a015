package xl

import (
	"context"
	"errors"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/catalog"
)

// Get returns an object's metadata and a seekable stream over its bytes
// within the named container.
func (p *Pool) Get(ctx context.Context, containerName, containerIndexPath, key string) (*dedupe.Object, error) {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return nil, err
	}

	obj, entries, err := cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return &dedupe.Object{
		Key:        obj.Key,
		Length:     obj.OriginalLength,
		CreatedUTC: obj.CreatedUTC,
		Stream:     p.newStream(obj.OriginalLength, entries),
	}, nil
}

// GetMetadata returns an object's metadata without a stream.
func (p *Pool) GetMetadata(ctx context.Context, containerName, containerIndexPath, key string) (*dedupe.Object, error) {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return nil, err
	}

	obj, _, err := cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return &dedupe.Object{Key: obj.Key, Length: obj.OriginalLength, CreatedUTC: obj.CreatedUTC}, nil
}

// GetStream returns just the seekable stream view over an object's
// bytes within the named container.
func (p *Pool) GetStream(ctx context.Context, containerName, containerIndexPath, key string) (dedupe.SeekableStream, error) {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return nil, err
	}

	obj, entries, err := cat.LookupObject(ctx, key)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return p.newStream(obj.OriginalLength, entries), nil
}

// Exists reports whether key names a live object in the named
// container.
func (p *Pool) Exists(ctx context.Context, containerName, containerIndexPath, key string) (bool, error) {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return false, err
	}

	_, _, err = cat.LookupObject(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}
	return false, translatePoolErr(err)
}
