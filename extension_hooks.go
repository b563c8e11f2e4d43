package cryptoproviders

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-cryptoproviders/core"
)

// ProviderPack is a named set of downstream providers appended to the chain
// after the built-in ones.
type ProviderPack struct {
	Name      string
	Providers []core.Provider
}

type CommandQueryBundleFactory func(runtime CommandQueryRuntime) (any, error)

// ExtensionHooks collects provider packs and command/query bundles from
// downstream modules. Both are applied in name order.
type ExtensionHooks struct {
	mu      sync.RWMutex
	packs   namedEntries[ProviderPack]
	bundles namedEntries[CommandQueryBundleFactory]
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{}
}

func (h *ExtensionHooks) RegisterProviderPack(pack ProviderPack) error {
	if h == nil {
		return fmt.Errorf("cryptoproviders: extension hooks are nil")
	}
	pack.Name = strings.TrimSpace(pack.Name)
	if pack.Name == "" {
		return fmt.Errorf("cryptoproviders: provider pack name is required")
	}
	if len(pack.Providers) == 0 {
		return fmt.Errorf("cryptoproviders: provider pack %q has no providers", pack.Name)
	}
	if slices.Contains(pack.Providers, nil) {
		return fmt.Errorf("cryptoproviders: provider pack %q contains nil provider", pack.Name)
	}
	pack.Providers = slices.Clone(pack.Providers)

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.packs.add("provider pack", pack.Name, pack)
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(name string, factory CommandQueryBundleFactory) error {
	if h == nil {
		return fmt.Errorf("cryptoproviders: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("cryptoproviders: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("cryptoproviders: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bundles.add("command/query bundle", name, factory)
}

// ApplyProviderPacks appends every pack's providers to registry. A name
// collision with a provider already in the chain aborts the remaining packs.
func (h *ExtensionHooks) ApplyProviderPacks(registry core.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("cryptoproviders: registry is required")
	}
	for _, pack := range h.ProviderPacks() {
		for _, provider := range pack.Providers {
			if _, err := registry.Add(provider); err != nil {
				return fmt.Errorf("cryptoproviders: apply provider pack %q: %w", pack.Name, err)
			}
		}
	}
	return nil
}

func (h *ExtensionHooks) BuildCommandQueryBundles(runtime CommandQueryRuntime) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if runtime == nil {
		return nil, fmt.Errorf("cryptoproviders: command/query runtime is required")
	}

	h.mu.RLock()
	factories := h.bundles.sorted()
	h.mu.RUnlock()

	out := make(map[string]any, len(factories))
	for _, entry := range factories {
		bundle, err := entry.value(runtime)
		if err != nil {
			return nil, err
		}
		out[entry.name] = bundle
	}
	return out, nil
}

func (h *ExtensionHooks) ProviderPacks() []ProviderPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := h.packs.sorted()
	out := make([]ProviderPack, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ProviderPack{
			Name:      entry.name,
			Providers: slices.Clone(entry.value.Providers),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := h.bundles.sorted()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.name)
	}
	return names
}

type namedEntry[T any] struct {
	name  string
	value T
}

// namedEntries is not safe for concurrent use; ExtensionHooks guards it.
type namedEntries[T any] struct {
	byName map[string]T
}

func (n *namedEntries[T]) add(kind string, name string, value T) error {
	if n.byName == nil {
		n.byName = map[string]T{}
	}
	if _, exists := n.byName[name]; exists {
		return fmt.Errorf("cryptoproviders: %s %q already registered", kind, name)
	}
	n.byName[name] = value
	return nil
}

func (n *namedEntries[T]) sorted() []namedEntry[T] {
	out := make([]namedEntry[T], 0, len(n.byName))
	for name, value := range n.byName {
		out = append(out, namedEntry[T]{name: name, value: value})
	}
	slices.SortFunc(out, func(a, b namedEntry[T]) int {
		return strings.Compare(a.name, b.name)
	})
	return out
}
