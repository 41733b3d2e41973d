// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storefront

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/bookstore/internal/platform/constants"
)

// Registry maps visitor ids to open workspaces.
//
// # Lifecycle
//
// Workspaces are created on first use and evicted once idle for longer than
// the idle TTL. Eviction only drops memory: the persisted session stays in
// the store, so a returning visitor is restored by a fresh workspace.
type Registry struct {
	deps    Dependencies
	idleTTL time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates a registry and starts its janitor. The janitor stops
// when ctx is done or [Registry.Close] is called.
func NewRegistry(ctx context.Context, deps Dependencies, idleTTL time.Duration) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	registry := &Registry{
		deps:       deps,
		idleTTL:    idleTTL,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		workspaces: make(map[string]*Workspace),
	}

	go registry.janitor(constants.WorkspaceSweepInterval)
	return registry
}

// SetClock replaces the time source (tests).
func (registry *Registry) SetClock(now func() time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.now = now
}

// Get returns the opened workspace of visitorID, creating it if needed.
func (registry *Registry) Get(ctx context.Context, visitorID string) (*Workspace, error) {
	registry.mu.Lock()
	workspace, found := registry.workspaces[visitorID]
	if !found {
		workspace = NewWorkspace(registry.ctx, visitorID, registry.deps)
		registry.workspaces[visitorID] = workspace
	}
	workspace.lastSeen.Store(registry.now().UnixNano())
	registry.mu.Unlock()

	if err := workspace.Open(ctx); err != nil {
		return nil, err
	}
	return workspace, nil
}

// Len reports how many workspaces are in memory.
func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.workspaces)
}

// Sweep evicts workspaces idle for longer than the idle TTL and returns how
// many were removed.
func (registry *Registry) Sweep() int {
	registry.mu.Lock()
	cutoff := registry.now().Add(-registry.idleTTL)
	var evicted []*Workspace
	for id, workspace := range registry.workspaces {
		if workspace.LastSeen().Before(cutoff) {
			evicted = append(evicted, workspace)
			delete(registry.workspaces, id)
		}
	}
	registry.mu.Unlock()

	for _, workspace := range evicted {
		workspace.Close()
	}
	if len(evicted) > 0 {
		registry.deps.Logger.Debug("idle workspaces evicted", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Close stops the janitor and closes every workspace.
func (registry *Registry) Close() {
	registry.cancel()

	registry.mu.Lock()
	workspaces := registry.workspaces
	registry.workspaces = make(map[string]*Workspace)
	registry.mu.Unlock()

	for _, workspace := range workspaces {
		workspace.Close()
	}
}

func (registry *Registry) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			registry.Sweep()
		case <-registry.ctx.Done():
			return
		}
	}
}
