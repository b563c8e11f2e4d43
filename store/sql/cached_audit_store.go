package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-cryptoproviders/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const lookupAuditCacheKeyPrefix = "go-cryptoproviders::lookup_audit::v1"

// CachedLookupAuditStore serves List from a cache. Writes bump a generation
// that is part of every key, so pages cached before a Record or Prune are
// never returned again and expire on the cache TTL.
type CachedLookupAuditStore struct {
	base       core.AuditStore
	cache      repositorycache.CacheService
	chainName  string
	generation atomic.Uint64
}

func NewCachedLookupAuditStore(
	base core.AuditStore,
	cacheService repositorycache.CacheService,
	chainName string,
) (*CachedLookupAuditStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base lookup audit store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: lookup audit cache service is required")
	}
	if chainName = strings.TrimSpace(chainName); chainName == "" {
		chainName = core.DefaultConfig().ChainName
	}
	return &CachedLookupAuditStore{base: base, cache: cacheService, chainName: chainName}, nil
}

// LookupAuditCacheKey returns
// go-cryptoproviders::lookup_audit::v1::<chain>::<generation>::<filter>
// where every segment is URL-path escaped.
func LookupAuditCacheKey(chainName string, generation uint64, filter core.AuditFilter) string {
	segments := []string{
		lookupAuditCacheKeyPrefix,
		url.PathEscape(chainName),
		strconv.FormatUint(generation, 10),
		url.PathEscape(strings.TrimSpace(filter.Category)),
		url.PathEscape(string(filter.Outcome)),
		formatFilterTime(filter.From),
		formatFilterTime(filter.To),
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PerPage),
	}
	return strings.Join(segments, "::")
}

func (s *CachedLookupAuditStore) Record(ctx context.Context, event core.LookupEvent) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.Record(ctx, event); err != nil {
		return err
	}
	s.generation.Add(1)
	return nil
}

func (s *CachedLookupAuditStore) List(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if err := s.ready(); err != nil {
		return core.AuditPage{}, err
	}
	key := LookupAuditCacheKey(s.chainName, s.generation.Load(), filter)
	page, err := repositorycache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (core.AuditPage, error) {
		return s.base.List(ctx, filter)
	})
	if err != nil {
		return core.AuditPage{}, err
	}
	page.Items = slices.Clone(page.Items)
	return page, nil
}

func (s *CachedLookupAuditStore) Prune(ctx context.Context, policy core.AuditRetentionPolicy) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	deleted, err := s.base.Prune(ctx, policy)
	if deleted > 0 {
		s.generation.Add(1)
	}
	return deleted, err
}

func (s *CachedLookupAuditStore) ready() error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached lookup audit store is not configured")
	}
	return nil
}

func formatFilterTime(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatInt(value.UTC().UnixNano(), 10)
}
