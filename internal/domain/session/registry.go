// Package session maps cashier sessions onto their workspaces.
//
// The engine itself is single-session and lock-free; this registry is the
// boundary where concurrent HTTP requests are serialized per session.
package session

import (
	"sync"

	"tillpoint/internal/domain/queue"
	"tillpoint/pkg/refgen"
)

// Handle owns one session's workspace and serializes access to it.
type Handle struct {
	mu sync.Mutex
	ws *queue.Workspace
}

// Do runs fn with exclusive access to the workspace. User actions within a
// session are processed one at a time, matching the engine's model.
func (h *Handle) Do(fn func(ws *queue.Workspace) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.ws)
}

// Registry holds one Handle per open session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Handle
	refs     *refgen.Generator
}

// NewRegistry creates an empty registry.
func NewRegistry(refs *refgen.Generator) *Registry {
	return &Registry{
		sessions: make(map[string]*Handle),
		refs:     refs,
	}
}

// Get returns the handle for a session, creating the workspace on first
// use. A fresh workspace starts with an empty active draft.
func (r *Registry) Get(sessionID string) *Handle {
	r.mu.RLock()
	h, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.sessions[sessionID]; ok {
		return h
	}
	h = &Handle{ws: queue.NewWorkspace(r.refs)}
	r.sessions[sessionID] = h
	return h
}

// Close drops a session and its workspace, parked drafts included.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
