// Package registry holds the component model of the pattern library and the
// registry that publishes a fresh catalog after every discovery pass.
package registry

import (
	"reflect"
	"sync"
	"time"
)

// ComponentRegistry manages the current catalog
type ComponentRegistry struct {
	catalog  *Catalog
	mutex    sync.RWMutex
	watchers []chan ComponentEvent
}

// ComponentEvent represents a change in the component registry
type ComponentEvent struct {
	Type      EventType
	Component *Component
	Timestamp time.Time
}

// EventType represents the type of component event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewComponentRegistry creates a new component registry holding an empty catalog
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		catalog:  Build(Manifest{}),
		watchers: make([]chan ComponentEvent, 0),
	}
}

// Publish replaces the current catalog and notifies watchers of every
// component that was added, changed or removed. It returns the number of
// events emitted.
func (r *ComponentRegistry) Publish(catalog *Catalog) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.catalog
	r.catalog = catalog

	now := time.Now()
	var events []ComponentEvent

	for _, comp := range catalog.Components() {
		old, existed := previous.Get(comp.ID)
		switch {
		case !existed:
			events = append(events, ComponentEvent{Type: EventTypeAdded, Component: comp, Timestamp: now})
		case !reflect.DeepEqual(old.Variants, comp.Variants):
			events = append(events, ComponentEvent{Type: EventTypeUpdated, Component: comp, Timestamp: now})
		}
	}

	for _, comp := range previous.Components() {
		if _, still := catalog.Get(comp.ID); !still {
			events = append(events, ComponentEvent{Type: EventTypeRemoved, Component: comp, Timestamp: now})
		}
	}

	for _, event := range events {
		for _, watcher := range r.watchers {
			select {
			case watcher <- event:
			default:
				// Skip if channel is full
			}
		}
	}

	return len(events)
}

// Catalog returns the current catalog. Catalogs are never mutated after
// publication, so callers may keep using the value without locking.
func (r *ComponentRegistry) Catalog() *Catalog {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.catalog
}

// Get retrieves a component by ID
func (r *ComponentRegistry) Get(id string) (*Component, bool) {
	return r.Catalog().Get(id)
}

// Watch returns a channel that receives component events
func (r *ComponentRegistry) Watch() <-chan ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ComponentRegistry) UnWatch(ch <-chan ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of components in the current catalog
func (r *ComponentRegistry) Count() int {
	return r.Catalog().Len()
}
