package xl

import (
	"context"

	dedupe "github.com/jchristn/dedupe"
)

// IndexStats returns aggregate statistics for one container: object
// count and logical bytes come from the container catalog; chunk count
// and physical bytes come from the pool catalog, since chunk identity is
// global (spec.md §4.9). The ratios compare the container's logical
// bytes against the whole pool's physical bytes.
func (p *Pool) IndexStats(ctx context.Context, containerName, containerIndexPath string) (dedupe.IndexStatistics, error) {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return dedupe.IndexStatistics{}, err
	}

	containerStats, err := cat.Statistics(ctx)
	if err != nil {
		return dedupe.IndexStatistics{}, translatePoolErr(err)
	}

	poolStats, err := p.pool.Statistics(ctx)
	if err != nil {
		return dedupe.IndexStatistics{}, translatePoolErr(err)
	}

	stats := dedupe.IndexStatistics{
		Objects:       containerStats.Objects,
		Chunks:        poolStats.Chunks,
		LogicalBytes:  containerStats.LogicalBytes,
		PhysicalBytes: poolStats.PhysicalBytes,
	}
	if stats.PhysicalBytes > 0 {
		stats.RatioX = float64(stats.LogicalBytes) / float64(stats.PhysicalBytes)
		stats.RatioPct = (1 - float64(stats.PhysicalBytes)/float64(stats.LogicalBytes)) * 100
	}
	return stats, nil
}

// PoolStats returns aggregate statistics across the whole pool: every
// registered container's object/logical-byte totals, plus the pool's
// global chunk count and physical bytes.
func (p *Pool) PoolStats(ctx context.Context) (dedupe.IndexStatistics, error) {
	poolStats, err := p.pool.Statistics(ctx)
	if err != nil {
		return dedupe.IndexStatistics{}, translatePoolErr(err)
	}

	containers, err := p.ListContainers(ctx)
	if err != nil {
		return dedupe.IndexStatistics{}, err
	}

	var objects, logicalBytes int64
	for _, c := range containers {
		cat, err := p.containerCatalog(ctx, c.Name, c.IndexPath)
		if err != nil {
			return dedupe.IndexStatistics{}, err
		}
		s, err := cat.Statistics(ctx)
		if err != nil {
			return dedupe.IndexStatistics{}, translatePoolErr(err)
		}
		objects += s.Objects
		logicalBytes += s.LogicalBytes
	}

	stats := dedupe.IndexStatistics{
		Objects:       objects,
		Chunks:        poolStats.Chunks,
		LogicalBytes:  logicalBytes,
		PhysicalBytes: poolStats.PhysicalBytes,
	}
	if stats.PhysicalBytes > 0 {
		stats.RatioX = float64(stats.LogicalBytes) / float64(stats.PhysicalBytes)
		stats.RatioPct = (1 - float64(stats.PhysicalBytes)/float64(stats.LogicalBytes)) * 100
	}
	return stats, nil
}
