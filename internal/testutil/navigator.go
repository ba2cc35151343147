package testutil

import (
	"sync"

	"github.com/equipeadalove/aduana/internal/nav"
)

// NavRecorder is a nav.Navigator that records every requested route without
// applying any guard.
type NavRecorder struct {
	routes []nav.Route
	mu     sync.Mutex
}

// Navigate records route and returns it unchanged.
func (r *NavRecorder) Navigate(route nav.Route) nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	return route
}

// Routes returns a copy of the recorded routes.
func (r *NavRecorder) Routes() []nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]nav.Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Last returns the most recent route, or the zero route.
func (r *NavRecorder) Last() nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return nav.Route{}
	}
	return r.routes[len(r.routes)-1]
}

// Reset forgets all recorded routes.
func (r *NavRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = nil
}
