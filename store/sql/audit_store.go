package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-cryptoproviders/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultAuditPerPage = 25

// LookupAuditStore persists lookup events in crypto_lookup_audit.
type LookupAuditStore struct {
	db        *bun.DB
	repo      repository.Repository[*lookupAuditRecord]
	chainName string
	now       func() time.Time
}

type LookupAuditStoreOption func(*LookupAuditStore)

// WithChainName tags recorded rows and scopes reads and prunes to one chain.
func WithChainName(name string) LookupAuditStoreOption {
	return func(s *LookupAuditStore) {
		s.chainName = strings.TrimSpace(name)
	}
}

func WithClock(now func() time.Time) LookupAuditStoreOption {
	return func(s *LookupAuditStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLookupAuditStore(db *bun.DB, opts ...LookupAuditStoreOption) (*LookupAuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*lookupAuditRecord](db, lookupAuditHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid lookup audit repository wiring: %w", err)
		}
	}
	store := &LookupAuditStore{
		db:        db,
		repo:      repo,
		chainName: core.DefaultConfig().ChainName,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	if store.chainName == "" {
		return nil, fmt.Errorf("sqlstore: chain name is required")
	}
	return store, nil
}

func (s *LookupAuditStore) ChainName() string {
	if s == nil {
		return ""
	}
	return s.chainName
}

func (s *LookupAuditStore) Record(ctx context.Context, event core.LookupEvent) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: lookup audit store is not configured")
	}
	category := strings.TrimSpace(event.Category)
	requested := strings.TrimSpace(event.RequestedAlgorithm)
	if category == "" || requested == "" {
		return fmt.Errorf("sqlstore: lookup audit requires category and requested algorithm")
	}
	id := strings.TrimSpace(event.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := event.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	outcome := strings.TrimSpace(string(event.Outcome))
	if outcome == "" {
		outcome = string(core.LookupOutcomeResolved)
	}

	record := &lookupAuditRecord{
		ID:                 id,
		ChainName:          s.chainName,
		Category:           category,
		RequestedAlgorithm: requested,
		ResolvedAlgorithm:  strings.TrimSpace(event.ResolvedAlgorithm),
		ProviderName:       strings.TrimSpace(event.ProviderName),
		Outcome:            outcome,
		CreatedAt:          createdAt,
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *LookupAuditStore) List(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if s == nil || s.repo == nil {
		return core.AuditPage{}, fmt.Errorf("sqlstore: lookup audit store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultAuditPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
		repository.SelectBy("chain_name", "=", s.chainName),
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		selectors = append(selectors, repository.SelectBy("category", "=", category))
	}
	if outcome := strings.TrimSpace(string(filter.Outcome)); outcome != "" {
		selectors = append(selectors, repository.SelectBy("outcome", "=", outcome))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.AuditPage{}, err
	}
	items := make([]core.LookupEvent, 0, len(records))
	for _, record := range records {
		items = append(items, lookupAuditRecordToDomain(record))
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return core.AuditPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}

// Prune deletes rows older than the policy TTL, then the oldest rows above
// the row cap.
func (s *LookupAuditStore) Prune(ctx context.Context, policy core.AuditRetentionPolicy) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lookup audit store is not configured")
	}
	deleted := 0

	if policy.TTL > 0 {
		cutoff := s.now().UTC().Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*lookupAuditRecord)(nil)).
			Where("chain_name = ?", s.chainName).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += int(affected)
	}

	if policy.RowCap > 0 {
		total, err := s.db.NewSelect().
			Model((*lookupAuditRecord)(nil)).
			Where("chain_name = ?", s.chainName).
			Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.RowCap
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM crypto_lookup_audit WHERE id IN (SELECT id FROM crypto_lookup_audit WHERE chain_name = ? ORDER BY created_at ASC LIMIT ?)",
				s.chainName,
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += int(affected)
		}
	}

	return deleted, nil
}

func lookupAuditRecordToDomain(record *lookupAuditRecord) core.LookupEvent {
	if record == nil {
		return core.LookupEvent{}
	}
	return core.LookupEvent{
		ID:                 record.ID,
		Category:           record.Category,
		RequestedAlgorithm: record.RequestedAlgorithm,
		ResolvedAlgorithm:  record.ResolvedAlgorithm,
		ProviderName:       record.ProviderName,
		Outcome:            core.LookupOutcome(record.Outcome),
		CreatedAt:          record.CreatedAt,
	}
}
