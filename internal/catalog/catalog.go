// Package catalog manages registration and lookup of runnable actions so
// transports (CLI, REST, MCP) can invoke them by name.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/budu/mu-action/pkg/action"
)

// Catalog manages action registration and lookup.
type Catalog struct {
	mu      sync.RWMutex
	actions map[string]action.Runnable
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		actions: make(map[string]action.Runnable),
	}
}

// Register registers an action in the catalog.
// Returns an error if an action with the same name already exists.
func (c *Catalog) Register(a action.Runnable) error {
	if a == nil {
		return fmt.Errorf("cannot register nil action")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := a.Name()
	if name == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if _, exists := c.actions[name]; exists {
		return fmt.Errorf("action '%s' is already registered", name)
	}

	c.actions[name] = a
	return nil
}

// MustRegister registers an action and panics on error.
func (c *Catalog) MustRegister(a action.Runnable) {
	if err := c.Register(a); err != nil {
		panic(err)
	}
}

// Unregister removes an action from the catalog.
func (c *Catalog) Unregister(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.actions[name]; !exists {
		return fmt.Errorf("action '%s' is not registered", name)
	}
	delete(c.actions, name)
	return nil
}

// Get retrieves an action by name.
func (c *Catalog) Get(name string) (action.Runnable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, exists := c.actions[name]
	if !exists {
		return nil, fmt.Errorf("action '%s' not found", name)
	}
	return a, nil
}

// Has checks if an action exists in the catalog.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.actions[name]
	return exists
}

// List returns all registered actions sorted by name.
func (c *Catalog) List() []action.Runnable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]action.Runnable, 0, len(c.actions))
	for _, a := range c.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns all registered action names sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.actions))
	for name := range c.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered actions.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.actions)
}

// Clear removes all actions from the catalog.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = make(map[string]action.Runnable)
}

// DefaultCatalog is the global default catalog.
var DefaultCatalog = New()

// Register registers an action in the default catalog.
func Register(a action.Runnable) error {
	return DefaultCatalog.Register(a)
}

// MustRegister registers an action in the default catalog and panics on
// error.
func MustRegister(a action.Runnable) {
	DefaultCatalog.MustRegister(a)
}

// Get retrieves an action from the default catalog.
func Get(name string) (action.Runnable, error) {
	return DefaultCatalog.Get(name)
}

// Has checks if an action exists in the default catalog.
func Has(name string) bool {
	return DefaultCatalog.Has(name)
}
