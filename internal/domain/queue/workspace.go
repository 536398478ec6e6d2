// Package queue manages the per-session workspace: the one active draft and
// the pending queue of parked drafts, addressable by draft ID.
package queue

import (
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/draft"
	"tillpoint/pkg/refgen"
)

// Entry is a parked draft held in the pending queue.
type Entry struct {
	DraftID  id.ID        `json:"draftId"`
	Draft    *draft.Draft `json:"draft"`
	Label    string       `json:"label"`
	ParkedAt time.Time    `json:"parkedAt"`
}

// Workspace is the engine state for one cashier session. Exactly one draft
// is active at a time; all others are parked in the queue. All mutations go
// through the operations below, never ad-hoc field updates.
//
// The workspace itself holds no locks: a session processes one user action
// at a time. Serialization across concurrent HTTP requests for the same
// session is the registry's job.
type Workspace struct {
	refs    *refgen.Generator
	active  *draft.Draft
	entries map[id.ID]*Entry
	order   []id.ID
}

// NewWorkspace creates a workspace with a fresh empty active draft.
func NewWorkspace(refs *refgen.Generator) *Workspace {
	return &Workspace{
		refs:    refs,
		active:  draft.New(refs.InvoiceNumber()),
		entries: make(map[id.ID]*Entry),
	}
}

// Active returns the currently edited draft.
func (w *Workspace) Active() *draft.Draft {
	return w.active
}

// Pending returns the parked drafts in park order.
func (w *Workspace) Pending() []*Entry {
	out := make([]*Entry, 0, len(w.order))
	for _, draftID := range w.order {
		out = append(out, w.entries[draftID])
	}
	return out
}

// QueueLen returns the number of parked drafts.
func (w *Workspace) QueueLen() int {
	return len(w.entries)
}

// Park moves the active draft into the pending queue under the given label
// and starts a fresh empty draft with a new invoice number.
//
// Parking an empty draft is refused: there is nothing to hold for the
// customer, and the fresh draft would be indistinguishable from the parked
// one.
func (w *Workspace) Park(label string) error {
	if w.active.IsEmpty() {
		return apperror.NewEmptyDraft("park")
	}

	w.parkActive(label)
	w.active = draft.New(w.refs.InvoiceNumber())
	return nil
}

// Resume removes a parked draft from the queue and makes it active,
// restoring its exact line set and invoice number.
//
// If the current active draft is non-empty it is implicitly parked first
// under its own invoice number. The user never loses unsaved work by
// switching drafts; an empty active draft is simply dropped.
func (w *Workspace) Resume(draftID id.ID) error {
	entry, ok := w.entries[draftID]
	if !ok {
		return apperror.NewNotFound("parked draft", draftID.String())
	}

	if !w.active.IsEmpty() {
		w.parkActive(w.active.Number)
	}

	w.remove(draftID)
	w.active = entry.Draft
	return nil
}

// Discard permanently removes a parked draft. The active draft is
// unaffected.
func (w *Workspace) Discard(draftID id.ID) error {
	if _, ok := w.entries[draftID]; !ok {
		return apperror.NewNotFound("parked draft", draftID.String())
	}
	w.remove(draftID)
	return nil
}

// CompleteCommit replaces the just-committed active draft with a fresh
// empty one and returns it. Call only after the commit service reported
// success; the committed draft object is discarded.
func (w *Workspace) CompleteCommit() *draft.Draft {
	w.active = draft.New(w.refs.InvoiceNumber())
	return w.active
}

func (w *Workspace) parkActive(label string) {
	entry := &Entry{
		DraftID:  w.active.ID,
		Draft:    w.active,
		Label:    label,
		ParkedAt: time.Now().UTC(),
	}
	w.entries[entry.DraftID] = entry
	w.order = append(w.order, entry.DraftID)
}

func (w *Workspace) remove(draftID id.ID) {
	delete(w.entries, draftID)
	for i, other := range w.order {
		if other == draftID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			return
		}
	}
}
