// Package listeners wires click handling onto the toggle buttons of a page.
package listeners

import (
	"errors"
	"sync"

	"golang.org/x/net/html"
)

// Event is delivered to listeners by Dispatch.
type Event struct {
	Type   string
	Target *html.Node
}

// Listener is a handler registered on a node. Listeners are compared by
// identity: registering the same *Listener twice on a node is a no-op and
// Remove only removes that exact instance.
type Listener struct {
	fn func(Event) error
}

// NewListener wraps fn.
func NewListener(fn func(Event) error) *Listener {
	return &Listener{fn: fn}
}

// Registry holds the listeners attached to nodes.
type Registry struct {
	mutex     sync.RWMutex
	listeners map[*html.Node]map[string][]*Listener
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[*html.Node]map[string][]*Listener)}
}

// Add registers l for events of type typ on node.
func (r *Registry) Add(node *html.Node, typ string, l *Listener) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	byType, ok := r.listeners[node]
	if !ok {
		byType = make(map[string][]*Listener)
		r.listeners[node] = byType
	}
	for _, existing := range byType[typ] {
		if existing == l {
			return
		}
	}
	byType[typ] = append(byType[typ], l)
}

// Remove unregisters l. Removing a listener that was never added does nothing.
func (r *Registry) Remove(node *html.Node, typ string, l *Listener) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	byType := r.listeners[node]
	list := byType[typ]
	for i, existing := range list {
		if existing != l {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(byType, typ)
		} else {
			byType[typ] = list
		}
		break
	}
	if len(byType) == 0 {
		delete(r.listeners, node)
	}
}

// Dispatch calls every listener of typ on node in registration order and
// returns their joined errors.
func (r *Registry) Dispatch(node *html.Node, typ string) error {
	r.mutex.RLock()
	list := append([]*Listener(nil), r.listeners[node][typ]...)
	r.mutex.RUnlock()

	var errs []error
	ev := Event{Type: typ, Target: node}
	for _, l := range list {
		if err := l.fn(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of listeners of typ on node.
func (r *Registry) Count(node *html.Node, typ string) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.listeners[node][typ])
}

// Nodes returns the number of nodes holding at least one listener.
func (r *Registry) Nodes() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.listeners)
}
