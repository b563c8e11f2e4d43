package core

import (
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"
)

// ServiceFactory builds a fresh instance of the algorithm a Service describes.
type ServiceFactory func() (any, error)

// MacConstructor is the instance type produced by Mac services.
type MacConstructor func(key []byte) (hash.Hash, error)

type Service struct {
	Category   string
	Algorithm  string
	Provider   string
	Aliases    []string
	Approved   bool
	Attributes map[string]string

	factory ServiceFactory
}

type ServiceOption func(*Service)

func WithAliases(aliases ...string) ServiceOption {
	return func(s *Service) {
		for _, alias := range aliases {
			if trimmed := strings.TrimSpace(alias); trimmed != "" {
				s.Aliases = append(s.Aliases, trimmed)
			}
		}
	}
}

func WithApproved(approved bool) ServiceOption {
	return func(s *Service) {
		s.Approved = approved
	}
}

func WithAttribute(key string, value string) ServiceOption {
	return func(s *Service) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if s.Attributes == nil {
			s.Attributes = map[string]string{}
		}
		s.Attributes[key] = strings.TrimSpace(value)
	}
}

func NewService(category string, algorithm string, provider string, factory ServiceFactory, opts ...ServiceOption) *Service {
	svc := &Service{
		Category:  strings.TrimSpace(category),
		Algorithm: strings.TrimSpace(algorithm),
		Provider:  strings.TrimSpace(provider),
		factory:   factory,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(svc)
	}
	return svc
}

func (s *Service) NewInstance() (any, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	if s.factory == nil {
		return nil, fmt.Errorf("core: service %s/%s from %s has no factory", s.Category, s.Algorithm, s.Provider)
	}
	return s.factory()
}

// Names returns the canonical algorithm name followed by its aliases.
func (s *Service) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string{s.Algorithm}, s.Aliases...)
}

func (s *Service) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Provider + ": " + s.Category + "." + s.Algorithm
}

func NewSecureRandom(svc *Service) (SecureRandom, error) {
	if svc == nil {
		return nil, fmt.Errorf("core: secure random service is required")
	}
	if svc.Category != CategorySecureRandom {
		return nil, fmt.Errorf("core: service %s is not a %s service", svc, CategorySecureRandom)
	}
	instance, err := svc.NewInstance()
	if err != nil {
		return nil, err
	}
	random, ok := instance.(SecureRandom)
	if !ok {
		return nil, fmt.Errorf("core: service %s produced %T, not a secure random", svc, instance)
	}
	return random, nil
}

func NewDigest(svc *Service) (hash.Hash, error) {
	if svc == nil {
		return nil, fmt.Errorf("core: digest service is required")
	}
	if svc.Category != CategoryMessageDigest {
		return nil, fmt.Errorf("core: service %s is not a %s service", svc, CategoryMessageDigest)
	}
	instance, err := svc.NewInstance()
	if err != nil {
		return nil, err
	}
	digest, ok := instance.(hash.Hash)
	if !ok {
		return nil, fmt.Errorf("core: service %s produced %T, not a digest", svc, instance)
	}
	return digest, nil
}

func NewMac(svc *Service, key []byte) (hash.Hash, error) {
	if svc == nil {
		return nil, fmt.Errorf("core: mac service is required")
	}
	if svc.Category != CategoryMac {
		return nil, fmt.Errorf("core: service %s is not a %s service", svc, CategoryMac)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("core: mac key is required")
	}
	instance, err := svc.NewInstance()
	if err != nil {
		return nil, err
	}
	constructor, ok := instance.(MacConstructor)
	if !ok {
		return nil, fmt.Errorf("core: service %s produced %T, not a mac constructor", svc, instance)
	}
	return constructor(key)
}

// DisplayName is the string form of a provider used in logs and in names
// built on top of other providers.
func DisplayName(provider Provider) string {
	if provider == nil {
		return ""
	}
	if stringer, ok := provider.(fmt.Stringer); ok {
		if value := strings.TrimSpace(stringer.String()); value != "" {
			return value
		}
	}
	return provider.Name() + " version " + provider.Version()
}

func DescribeProvider(provider Provider, position int) ProviderInfo {
	if provider == nil {
		return ProviderInfo{Position: position}
	}
	return ProviderInfo{
		Position:    position,
		Name:        provider.Name(),
		Version:     provider.Version(),
		Info:        provider.Info(),
		DisplayName: DisplayName(provider),
	}
}

// ServiceTable indexes services by category and algorithm name. Keys are
// matched case-insensitively and aliases resolve to their canonical service.
type ServiceTable struct {
	mu       sync.RWMutex
	services map[string]*Service
	order    []string
}

func NewServiceTable() *ServiceTable {
	return &ServiceTable{services: map[string]*Service{}}
}

func (t *ServiceTable) Put(svc *Service) error {
	if t == nil {
		return fmt.Errorf("core: service table is nil")
	}
	if svc == nil {
		return fmt.Errorf("core: service is nil")
	}
	if svc.Category == "" || svc.Algorithm == "" {
		return fmt.Errorf("core: service category and algorithm are required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	primary := serviceKey(svc.Category, svc.Algorithm)
	if _, exists := t.services[primary]; !exists {
		t.order = append(t.order, primary)
	}
	t.services[primary] = svc
	for _, alias := range svc.Aliases {
		t.services[serviceKey(svc.Category, alias)] = svc
	}
	return nil
}

func (t *ServiceTable) Get(category string, algorithm string) *Service {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.services[serviceKey(category, algorithm)]
}

func (t *ServiceTable) List() []*Service {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Service, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.services[key])
	}
	return out
}

// Algorithms returns the sorted canonical algorithm names for a category.
func (t *ServiceTable) Algorithms(category string) []string {
	out := []string{}
	for _, svc := range t.List() {
		if strings.EqualFold(svc.Category, category) {
			out = append(out, svc.Algorithm)
		}
	}
	sort.Strings(out)
	return out
}

func serviceKey(category string, algorithm string) string {
	return strings.ToUpper(strings.TrimSpace(category)) + "." + strings.ToUpper(strings.TrimSpace(algorithm))
}
