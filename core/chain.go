package core

import (
	"fmt"
	"strings"
	"sync"
)

// ProviderChain is an ordered list of providers. Lookups walk the chain from
// position 1 and return the first service found.
type ProviderChain struct {
	mu        sync.RWMutex
	providers []Provider
}

func NewProviderChain(providers ...Provider) (*ProviderChain, error) {
	chain := &ProviderChain{}
	for _, provider := range providers {
		if _, err := chain.Add(provider); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

func (c *ProviderChain) Add(provider Provider) (int, error) {
	return c.Insert(provider, 0)
}

// Insert places provider at the 1-based position. Positions outside
// [1, len+1] append to the end of the chain.
func (c *ProviderChain) Insert(provider Provider, position int) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("core: provider chain is nil")
	}
	if provider == nil {
		return 0, fmt.Errorf("core: provider is nil")
	}
	name := strings.TrimSpace(provider.Name())
	if name == "" {
		return 0, fmt.Errorf("core: provider name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(name) >= 0 {
		return 0, fmt.Errorf("core: provider already registered: %s", name)
	}
	if position < 1 || position > len(c.providers)+1 {
		c.providers = append(c.providers, provider)
		return len(c.providers), nil
	}
	idx := position - 1
	c.providers = append(c.providers, nil)
	copy(c.providers[idx+1:], c.providers[idx:])
	c.providers[idx] = provider
	return position, nil
}

func (c *ProviderChain) Remove(name string) bool {
	if c == nil {
		return false
	}
	name = strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(name)
	if idx < 0 {
		return false
	}
	c.providers = append(c.providers[:idx], c.providers[idx+1:]...)
	return true
}

func (c *ProviderChain) Get(name string) (Provider, bool) {
	if c == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.indexOf(name)
	if idx < 0 {
		return nil, false
	}
	return c.providers[idx], true
}

func (c *ProviderChain) List() []Provider {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Provider(nil), c.providers...)
}

func (c *ProviderChain) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.providers)
}

// Lookup asks each provider in order with the caller's strings unchanged, so
// exact-match providers such as the compatibility shim see what was asked.
func (c *ProviderChain) Lookup(category string, algorithm string) (*Service, error) {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(algorithm) == "" {
		return nil, fmt.Errorf("core: category and algorithm are required")
	}
	for _, provider := range c.List() {
		if svc := provider.Service(category, algorithm); svc != nil {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", ErrNoSuchAlgorithm, algorithm, category)
}

func (c *ProviderChain) indexOf(name string) int {
	for idx, provider := range c.providers {
		if provider.Name() == name {
			return idx
		}
	}
	return -1
}
