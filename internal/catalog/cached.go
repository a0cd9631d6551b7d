package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/repository"
)

// absent marks a key known to be missing from the catalog.
var absent = []byte("null")

// Cached decorates a CatalogRepository with read-through caching of single
// assembly and material lookups. Cache failures fall back to the repository.
type Cached struct {
	repo        repository.CatalogRepository
	cache       Cache
	ttl         time.Duration
	negativeTTL time.Duration
	log         *slog.Logger
}

var _ repository.CatalogRepository = (*Cached)(nil)

func NewCached(repo repository.CatalogRepository, cache Cache, ttl time.Duration, log *slog.Logger) *Cached {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{repo: repo, cache: cache, ttl: ttl, negativeTTL: ttl / 10, log: log}
}

func assemblyKey(code string) string { return "assembly:" + code }
func materialKey(id string) string   { return "material:" + id }

func (c *Cached) GetAssembly(ctx context.Context, code string) (*entity.Assembly, error) {
	return readThrough(ctx, c, assemblyKey(code), "assembly", code, c.repo.GetAssembly)
}

func (c *Cached) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	return readThrough(ctx, c, materialKey(id), "material", id, c.repo.GetMaterial)
}

func readThrough[T any](ctx context.Context, c *Cached, key, kind, id string, load func(context.Context, string) (*T, error)) (*T, error) {
	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && bytes.Equal(raw, absent):
		return nil, common.NotFound(kind, id)
	case err == nil:
		var v T
		if jerr := json.Unmarshal(raw, &v); jerr == nil {
			return &v, nil
		}
		c.log.Warn("catalog.cache.decode_failed", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		c.log.Warn("catalog.cache.get_failed", "key", key, "error", err)
	}

	v, err := load(ctx, id)
	if common.IsNotFound(err) {
		c.store(ctx, key, absent, c.negativeTTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if b, jerr := json.Marshal(v); jerr == nil {
		c.store(ctx, key, b, c.ttl)
	}
	return v, nil
}

func (c *Cached) store(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, val, ttl); err != nil {
		c.log.Warn("catalog.cache.set_failed", "key", key, "error", err)
	}
}

func (c *Cached) invalidate(ctx context.Context, key string) {
	if err := c.cache.Delete(ctx, key); err != nil {
		c.log.Warn("catalog.cache.delete_failed", "key", key, "error", err)
	}
}

func (c *Cached) ListAssemblies(ctx context.Context) ([]entity.Assembly, error) {
	return c.repo.ListAssemblies(ctx)
}

func (c *Cached) ListMaterials(ctx context.Context) ([]entity.Material, error) {
	return c.repo.ListMaterials(ctx)
}

func (c *Cached) UpsertAssembly(ctx context.Context, a *entity.Assembly) error {
	if err := c.repo.UpsertAssembly(ctx, a); err != nil {
		return err
	}
	c.invalidate(ctx, assemblyKey(a.Code))
	return nil
}

func (c *Cached) UpsertMaterial(ctx context.Context, m *entity.Material) error {
	if err := c.repo.UpsertMaterial(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, materialKey(m.ID))
	return nil
}
