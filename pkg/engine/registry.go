package engine

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Definition{}
)

// Register makes a definition available by name. Cipher packages call it
// from init; registering the same name twice panics.
func Register(def *Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[def.Name]; dup {
		panic("engine: Register called twice for cipher " + def.Name)
	}
	registry[def.Name] = def
}

// Lookup returns the definition registered under name.
func Lookup(name string) (*Definition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCipher)
	}
	return def, nil
}

// Names lists the registered ciphers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
