package xl

import (
	"context"

	"github.com/jchristn/dedupe/internal/catalog"
)

// ContainerInfo is one registered container's descriptor.
type ContainerInfo struct {
	Name      string
	IndexPath string
}

// RegisterContainer creates a new container catalog at indexPath
// (sharing the pool's chunking configuration) and records its
// descriptor in the pool. Fails with ErrContainerAlreadyExists if name
// is already registered.
func (p *Pool) RegisterContainer(ctx context.Context, name, indexPath string) error {
	c, err := catalog.Create(indexPath, p.pool.Config(), p.logger)
	if err != nil {
		return translatePoolErr(err)
	}

	if err := p.pool.RegisterContainer(ctx, name, indexPath); err != nil {
		c.Close()
		return translatePoolErr(err)
	}

	p.mu.Lock()
	p.containers[name] = c
	p.mu.Unlock()
	return nil
}

// RemoveContainer deletes every object in the named container (applying
// §4.7 delete semantics per object, so shared chunks stay live in the
// pool for as long as any other object references them), then removes
// the container's descriptor from the pool.
func (p *Pool) RemoveContainer(ctx context.Context, name string) error {
	cat, err := p.containerCatalogByName(ctx, name)
	if err != nil {
		return err
	}

	for {
		keys, _, err := cat.Enumerate(ctx, "", 0, 100)
		if err != nil {
			return translatePoolErr(err)
		}
		if len(keys) == 0 {
			break
		}
		for _, key := range keys {
			if err := p.deleteObject(ctx, cat, key); err != nil {
				return err
			}
		}
	}

	p.mu.Lock()
	if c, ok := p.containers[name]; ok {
		c.Close()
		delete(p.containers, name)
	}
	p.mu.Unlock()

	if err := p.pool.RemoveContainer(ctx, name); err != nil {
		return translatePoolErr(err)
	}
	return nil
}

// ContainerExists reports whether name is registered in the pool.
func (p *Pool) ContainerExists(ctx context.Context, name string) (bool, error) {
	ok, err := p.pool.ContainerExists(ctx, name)
	if err != nil {
		return false, translatePoolErr(err)
	}
	return ok, nil
}

// ListContainers returns every registered container descriptor,
// ordered by name. This is the "clist" CLI operation.
func (p *Pool) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	descs, err := p.pool.ListContainers(ctx)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	out := make([]ContainerInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, ContainerInfo{Name: d.Name, IndexPath: d.IndexPath})
	}
	return out, nil
}

func (p *Pool) containerCatalogByName(ctx context.Context, name string) (*catalog.Catalog, error) {
	desc, err := p.pool.LookupContainer(ctx, name)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return p.containerCatalog(ctx, desc.Name, desc.IndexPath)
}
