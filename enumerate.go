package dedupe

import (
	"context"
	"fmt"
)

// maxListResults is the ceiling spec.md §6 places on a single
// ListObjects call's MaxResults.
const maxListResults = 100

// ListObjects returns live objects whose key begins with prefix,
// windowed by [startIndex, startIndex+maxResults) over the lexically
// ordered full match set.
func (e *Engine) ListObjects(ctx context.Context, prefix string, startIndex, maxResults int64) (EnumerationResult, error) {
	if startIndex < 0 {
		return EnumerationResult{}, fmt.Errorf("%w: start index must not be negative", ErrInvalidArgument)
	}
	if maxResults <= 0 || maxResults > maxListResults {
		return EnumerationResult{}, fmt.Errorf("%w: max results must be in [1, %d]", ErrInvalidArgument, maxListResults)
	}

	keys, total, err := e.cat.Enumerate(ctx, prefix, startIndex, maxResults)
	if err != nil {
		return EnumerationResult{}, translateCatalogErr(err)
	}

	objects := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		obj, entries, err := e.cat.LookupObject(ctx, key)
		if err != nil {
			return EnumerationResult{}, translateCatalogErr(err)
		}
		objects = append(objects, ObjectInfo{
			Key:        obj.Key,
			Length:     obj.OriginalLength,
			ChunkCount: int64(len(entries)),
			CreatedUTC: obj.CreatedUTC,
		})
	}

	return EnumerationResult{
		Objects:    objects,
		Prefix:     prefix,
		StartIndex: startIndex,
		MaxResults: maxResults,
		Total:      total,
	}, nil
}
