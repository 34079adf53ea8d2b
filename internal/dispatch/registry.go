package dispatch

import "fleetsim/internal/region"

// Registry holds one Dispatcher per restaurant and answers the fleet-wide
// queries send-out and the rebalancer both need (the least-loaded
// restaurant, lookup by location).
type Registry struct {
	byRestaurant map[region.Location]*Dispatcher
	order        []region.Location
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byRestaurant: make(map[region.Location]*Dispatcher)}
}

func (r *Registry) add(loc region.Location, d *Dispatcher) {
	if _, exists := r.byRestaurant[loc]; !exists {
		r.order = insertSorted(r.order, loc)
	}
	r.byRestaurant[loc] = d
}

func insertSorted(locs []region.Location, loc region.Location) []region.Location {
	i := 0
	for i < len(locs) && locs[i].Less(loc) {
		i++
	}
	locs = append(locs, region.Location{})
	copy(locs[i+1:], locs[i:])
	locs[i] = loc
	return locs
}

// At looks up the Dispatcher for a restaurant location.
func (r *Registry) At(loc region.Location) (*Dispatcher, bool) {
	d, ok := r.byRestaurant[loc]
	return d, ok
}

// Dispatchers returns every registered Dispatcher, ordered by restaurant
// Location for deterministic iteration.
func (r *Registry) Dispatchers() []*Dispatcher {
	out := make([]*Dispatcher, len(r.order))
	for i, loc := range r.order {
		out[i] = r.byRestaurant[loc]
	}
	return out
}

// LeastLoadedRestaurant returns the restaurant Location with the fewest
// TotalAvailable vehicles, ties broken by Location order.
func (r *Registry) LeastLoadedRestaurant() (region.Location, bool) {
	var best region.Location
	bestN := -1
	found := false
	for _, loc := range r.order {
		n := r.byRestaurant[loc].TotalAvailable()
		if !found || n < bestN {
			best, bestN, found = loc, n, true
		}
	}
	return best, found
}
