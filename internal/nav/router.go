package nav

import (
	"log/slog"
	"sync"
)

// Navigator moves the application between views.
type Navigator interface {
	Navigate(route Route) Route
}

// AuthSource reports whether a session is present.
type AuthSource interface {
	IsAuthenticated() bool
}

// Listener is called after every navigation with the resolved route.
type Listener func(Route)

// Router holds the current route and a back stack. Every navigation passes
// through Resolve.
type Router struct {
	auth      AuthSource
	listeners map[int]Listener
	stack     []Route
	current   Route
	nextID    int
	mu        sync.Mutex
}

// NewRouter creates a router positioned at the home view.
func NewRouter(auth AuthSource) *Router {
	return &Router{
		auth:      auth,
		current:   To(Home),
		listeners: make(map[int]Listener),
	}
}

// SetAuth replaces the authentication source. Used when the session is
// created after the router.
func (r *Router) SetAuth(auth AuthSource) {
	r.mu.Lock()
	r.auth = auth
	r.mu.Unlock()
}

// Navigate moves to route, or to login when the route is protected and no
// session exists. It returns the route actually shown.
func (r *Router) Navigate(route Route) Route {
	r.mu.Lock()
	authenticated := r.auth != nil && r.auth.IsAuthenticated()
	resolved := Resolve(route, authenticated)
	if resolved != r.current {
		r.stack = append(r.stack, r.current)
		r.current = resolved
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	if resolved != route {
		slog.Debug("Route redirected", "requested", route.Path(), "resolved", resolved.Path())
	}
	for _, fn := range listeners {
		fn(resolved)
	}
	return resolved
}

// Back returns to the previous route, re-checking the guard. With an empty
// stack it stays put and returns false.
func (r *Router) Back() (Route, bool) {
	r.mu.Lock()
	if len(r.stack) == 0 {
		current := r.current
		r.mu.Unlock()
		return current, false
	}
	prev := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	authenticated := r.auth != nil && r.auth.IsAuthenticated()
	r.current = Resolve(prev, authenticated)
	current := r.current
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(current)
	}
	return current, true
}

// Current returns the route being shown.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers fn for navigation events and returns a function that
// removes it.
func (r *Router) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// must hold r.mu.
func (r *Router) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		out = append(out, fn)
	}
	return out
}
