// File: adapters/context_adapter.go
// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe, propagation-aware api.Context implementation, used to carry
// request-scoped metadata (caller uid, correlation id) alongside calls into
// the core, as cmd/mlos-demo does, without depending on an internal session
// package. The context package itself does not use it.

package adapters

import (
	"sync"
	"time"

	"github.com/momentics/mlos-sub000/api"
)

type contextEntry struct {
	value      any
	propagated bool
	expiry     time.Time
}

// contextStore implements api.Context.
type contextStore struct {
	mu    sync.RWMutex
	store map[string]contextEntry
}

var _ api.Context = (*contextStore)(nil)

func newContextStore() *contextStore {
	return &contextStore{store: make(map[string]contextEntry)}
}

func (c *contextStore) Set(key string, value any, propagated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = contextEntry{value: value, propagated: propagated}
}

func (c *contextStore) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[key]
	if !ok {
		return nil, false
	}
	if !e.expiry.IsZero() && time.Now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

func (c *contextStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

func (c *contextStore) Clone() api.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make(map[string]contextEntry, len(c.store))
	for k, v := range c.store {
		cp[k] = v
	}
	return &contextStore{store: cp}
}

func (c *contextStore) WithExpiration(key string, ttlNanos int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.store[key]; ok {
		e.expiry = time.Now().Add(time.Duration(ttlNanos))
		c.store[key] = e
	}
}

func (c *contextStore) IsPropagated(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[key]
	return ok && e.propagated
}

func (c *contextStore) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := time.Now()
	keys := make([]string, 0, len(c.store))
	for k, v := range c.store {
		if v.expiry.IsZero() || v.expiry.After(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ContextAdapter implements api.ContextFactory by producing new context stores.
type ContextAdapter struct{}

// NewContextAdapter returns an instance of the context factory.
func NewContextAdapter() api.ContextFactory {
	return &ContextAdapter{}
}

// NewContext returns a new, empty Context.
func (a *ContextAdapter) NewContext() api.Context {
	return newContextStore()
}
