package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/version"

	"golang.org/x/sync/singleflight"
)

const (
	TypeVanilla = "vanilla"
	TypeForge   = "forge"

	defaultCacheTTL = 10 * time.Minute
)

type Config struct {
	ManifestURL string
	ForgeAPIURL string
	Java        JavaResolver
	CacheTTL    time.Duration
	Client      *http.Client
}

type cacheEntry struct {
	versions []version.Version
	fetched  time.Time
}

// Catalog answers version queries for every supported server type. Upstream
// calls for the same key are collapsed and cached for CacheTTL.
type Catalog struct {
	vanilla *VanillaLoader
	forge   *ForgeLoader

	ttl   time.Duration
	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewCatalog(cfg Config, log *slog.Logger) *Catalog {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Java == nil {
		cfg.Java = fixedJava("java")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "loader")

	return &Catalog{
		vanilla: NewVanillaLoader(cfg.ManifestURL, cfg.Client, log),
		forge:   NewForgeLoader(cfg.ForgeAPIURL, cfg.Java, cfg.Client, log),
		ttl:     cfg.CacheTTL,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Catalog) ForType(serverType string) (ServerLoader, error) {
	switch serverType {
	case TypeVanilla:
		return c.vanilla, nil
	case TypeForge:
		return c.forge, nil
	default:
		return nil, fmt.Errorf("%w: server type '%s' not supported", domain.ErrInvalid, serverType)
	}
}

func (c *Catalog) SupportedTypes() []string {
	return []string{TypeVanilla, TypeForge}
}

func (c *Catalog) MCVersions(ctx context.Context) ([]version.Version, error) {
	return c.cached("mc", func() ([]version.Version, error) {
		return c.vanilla.ReleaseVersions(ctx)
	})
}

func (c *Catalog) ForgeVersions(ctx context.Context, mc version.Version) ([]version.Version, error) {
	return c.cached("forge/"+mc.String(), func() ([]version.Version, error) {
		return c.forge.LoaderVersions(ctx, mc)
	})
}

func (c *Catalog) cached(key string, fetch func() ([]version.Version, error)) ([]version.Version, error) {
	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && c.now().Sub(entry.fetched) < c.ttl {
		c.mu.Unlock()
		return append([]version.Version(nil), entry.versions...), nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		versions, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = cacheEntry{versions: versions, fetched: c.now()}
		c.mu.Unlock()
		return versions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]version.Version(nil), v.([]version.Version)...), nil
}
