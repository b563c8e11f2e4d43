package core

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAuditStore keeps lookup events in process memory.
type MemoryAuditStore struct {
	mu     sync.RWMutex
	events []LookupEvent
	now    func() time.Time
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{now: time.Now}
}

func (s *MemoryAuditStore) Record(_ context.Context, event LookupEvent) error {
	if s == nil {
		return nil
	}
	event = normalizeLookupEvent(event, s.now)
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) (AuditPage, error) {
	if s == nil {
		return AuditPage{}, nil
	}
	page, perPage, offset := normalizePaging(filter.Page, filter.PerPage)

	s.mu.RLock()
	matched := make([]LookupEvent, 0, len(s.events))
	for _, event := range s.events {
		if matchesAuditFilter(event, filter) {
			matched = append(matched, event)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	items := []LookupEvent{}
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
		items = append(items, matched[offset:end]...)
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return AuditPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}

func (s *MemoryAuditStore) Prune(_ context.Context, policy AuditRetentionPolicy) (int, error) {
	if s == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.events)
	if policy.TTL > 0 {
		cutoff := s.now().UTC().Add(-policy.TTL)
		kept := s.events[:0]
		for _, event := range s.events {
			if !event.CreatedAt.Before(cutoff) {
				kept = append(kept, event)
			}
		}
		s.events = kept
	}
	if policy.RowCap > 0 && len(s.events) > policy.RowCap {
		sort.SliceStable(s.events, func(i, j int) bool {
			return s.events[i].CreatedAt.Before(s.events[j].CreatedAt)
		})
		s.events = append([]LookupEvent(nil), s.events[len(s.events)-policy.RowCap:]...)
	}
	return before - len(s.events), nil
}

func normalizeLookupEvent(event LookupEvent, now func() time.Time) LookupEvent {
	event.ID = strings.TrimSpace(event.ID)
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Category = strings.TrimSpace(event.Category)
	event.RequestedAlgorithm = strings.TrimSpace(event.RequestedAlgorithm)
	event.ResolvedAlgorithm = strings.TrimSpace(event.ResolvedAlgorithm)
	event.ProviderName = strings.TrimSpace(event.ProviderName)
	if event.Outcome == "" {
		event.Outcome = LookupOutcomeResolved
	}
	if event.CreatedAt.IsZero() {
		if now == nil {
			now = time.Now
		}
		event.CreatedAt = now()
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return event
}

func matchesAuditFilter(event LookupEvent, filter AuditFilter) bool {
	if category := strings.TrimSpace(filter.Category); category != "" && !strings.EqualFold(category, event.Category) {
		return false
	}
	if filter.Outcome != "" && filter.Outcome != event.Outcome {
		return false
	}
	if filter.From != nil && event.CreatedAt.Before(filter.From.UTC()) {
		return false
	}
	if filter.To != nil && event.CreatedAt.After(filter.To.UTC()) {
		return false
	}
	return true
}

func normalizePaging(page int, perPage int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 25
	}
	return page, perPage, (page - 1) * perPage
}

func hoursToDuration(hours int) time.Duration {
	if hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}
