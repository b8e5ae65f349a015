package dedupe

import "context"

// IndexStats returns aggregate catalog statistics: object/chunk counts,
// logical vs physical byte totals, and the resulting dedup ratio
// (spec.md §3/§6).
func (e *Engine) IndexStats(ctx context.Context) (IndexStatistics, error) {
	stats, err := e.cat.Statistics(ctx)
	if err != nil {
		return IndexStatistics{}, translateCatalogErr(err)
	}
	return IndexStatistics{
		Objects:       stats.Objects,
		Chunks:        stats.Chunks,
		LogicalBytes:  stats.LogicalBytes,
		PhysicalBytes: stats.PhysicalBytes,
		RatioX:        stats.RatioX,
		RatioPct:      stats.RatioPct,
	}, nil
}
