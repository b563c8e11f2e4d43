package sqlstore

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-cryptoproviders/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the SQL lookup audit store. Pass it to
// core.WithRepositoryFactory together with core.WithPersistenceClient.
type RepositoryFactory struct {
	db        *bun.DB
	chainName string
	listCache repositorycache.CacheService

	auditStore  *LookupAuditStore
	cachedStore *CachedLookupAuditStore
}

type FactoryOption func(*RepositoryFactory)

func WithFactoryChainName(name string) FactoryOption {
	return func(f *RepositoryFactory) {
		f.chainName = name
	}
}

// WithListCache serves audit List calls through cacheService.
func WithListCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.listCache = cacheService
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(factory)
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildAuditStore(client, ""); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildAuditStore(db, ""); err != nil {
		return nil, err
	}
	return factory, nil
}

// BuildAuditStore returns the audit store for chainName. An empty chainName
// falls back to WithFactoryChainName, then to the default chain. The store is
// reused while the chain name stays the same.
func (f *RepositoryFactory) BuildAuditStore(persistenceClient any, chainName string) (core.AuditStore, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	chainName = f.resolveChainName(chainName)
	if f.auditStore != nil && f.auditStore.ChainName() == chainName {
		if f.cachedStore != nil {
			return f.cachedStore, nil
		}
		return f.auditStore, nil
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	store, err := NewLookupAuditStore(f.db, WithChainName(chainName))
	if err != nil {
		return nil, err
	}
	f.auditStore, f.cachedStore = store, nil
	if f.listCache == nil {
		return store, nil
	}
	cached, err := NewCachedLookupAuditStore(store, f.listCache, chainName)
	if err != nil {
		return nil, err
	}
	f.cachedStore = cached
	return cached, nil
}

func (f *RepositoryFactory) resolveChainName(chainName string) string {
	if chainName = strings.TrimSpace(chainName); chainName != "" {
		return chainName
	}
	if f.chainName = strings.TrimSpace(f.chainName); f.chainName != "" {
		return f.chainName
	}
	return core.DefaultConfig().ChainName
}

func (f *RepositoryFactory) AuditStore() *LookupAuditStore {
	if f == nil {
		return nil
	}
	return f.auditStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
