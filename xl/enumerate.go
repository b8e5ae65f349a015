package xl

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	dedupe "github.com/jchristn/dedupe"
)

const maxListResults = 100

// ListObjects is the per-container "list" operation (list with --cname):
// objects matching prefix within one container.
func (p *Pool) ListObjects(ctx context.Context, containerName, containerIndexPath, prefix string, startIndex, maxResults int64) (dedupe.EnumerationResult, error) {
	if startIndex < 0 {
		return dedupe.EnumerationResult{}, fmt.Errorf("%w: start index must not be negative", dedupe.ErrInvalidArgument)
	}
	if maxResults <= 0 || maxResults > maxListResults {
		return dedupe.EnumerationResult{}, fmt.Errorf("%w: max results must be in [1, %d]", dedupe.ErrInvalidArgument, maxListResults)
	}

	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return dedupe.EnumerationResult{}, err
	}

	keys, total, err := cat.Enumerate(ctx, prefix, startIndex, maxResults)
	if err != nil {
		return dedupe.EnumerationResult{}, translatePoolErr(err)
	}

	objects := make([]dedupe.ObjectInfo, 0, len(keys))
	for _, key := range keys {
		obj, entries, err := cat.LookupObject(ctx, key)
		if err != nil {
			return dedupe.EnumerationResult{}, translatePoolErr(err)
		}
		objects = append(objects, dedupe.ObjectInfo{
			Key:        obj.Key,
			Length:     obj.OriginalLength,
			ChunkCount: int64(len(entries)),
			CreatedUTC: obj.CreatedUTC,
		})
	}

	return dedupe.EnumerationResult{
		Objects:    objects,
		Prefix:     prefix,
		StartIndex: startIndex,
		MaxResults: maxResults,
		Total:      total,
	}, nil
}

// ContainerObjects pairs a container's name with its matching objects,
// for cross-container enumeration (ListObjectsAcrossContainers).
type ContainerObjects struct {
	Container string
	Result    dedupe.EnumerationResult
	Err       error
}

// ListObjectsAcrossContainers is the "olist" cross-container fan-out:
// every registered container is queried concurrently via errgroup for
// objects matching prefix, respecting the pool-before-container lock
// order (the container list is read from the pool up front; each
// goroutine then resolves and queries its own container catalog).
func (p *Pool) ListObjectsAcrossContainers(ctx context.Context, prefix string, startIndex, maxResults int64) ([]ContainerObjects, error) {
	containers, err := p.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ContainerObjects, len(containers))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range containers {
		i, c := i, c
		g.Go(func() error {
			res, err := p.ListObjects(gctx, c.Name, c.IndexPath, prefix, startIndex, maxResults)
			results[i] = ContainerObjects{Container: c.Name, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Container < results[j].Container })
	return results, nil
}

// ContainerExistsResult pairs a container's name with an existence
// check's outcome, for ExistsAcrossContainers.
type ContainerExistsResult struct {
	Container string
	Exists    bool
	Err       error
}

// ExistsAcrossContainers is the "oexists" cross-container fan-out:
// checks whether key exists in any registered container, concurrently.
func (p *Pool) ExistsAcrossContainers(ctx context.Context, key string) ([]ContainerExistsResult, error) {
	containers, err := p.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ContainerExistsResult, len(containers))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range containers {
		i, c := i, c
		g.Go(func() error {
			ok, err := p.Exists(gctx, c.Name, c.IndexPath, key)
			results[i] = ContainerExistsResult{Container: c.Name, Exists: ok, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Container < results[j].Container })
	return results, nil
}
