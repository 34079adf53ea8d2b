// Package fleet owns the set of vehicles for a run and drives their
// per-tick advance in ascending id order, emitting Spawn on first tick and
// forwarding whatever each vehicle's Move produces. A single owner holds
// the region, calculator, and the vehicle set behind one per-tick entry
// point.
package fleet

import (
	"sort"

	"fleetsim/internal/occupancy"
	"fleetsim/internal/simevent"
	"fleetsim/internal/vehicle"
)

// Manager owns every Vehicle in the run and advances them one tick at a
// time in ascending id order, for deterministic event ordering.
type Manager struct {
	vehicles []*vehicle.Vehicle
	spawned  map[int]bool
}

// NewManager builds a Manager over vehicles, sorted by id.
func NewManager(vehicles []*vehicle.Vehicle) *Manager {
	sorted := append([]*vehicle.Vehicle(nil), vehicles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })
	return &Manager{vehicles: sorted, spawned: make(map[int]bool)}
}

// Vehicles returns every managed vehicle, ascending by id.
func (m *Manager) Vehicles() []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, len(m.vehicles))
	copy(out, m.vehicles)
	return out
}

// VehicleByID looks up a managed vehicle.
func (m *Manager) VehicleByID(id int) (*vehicle.Vehicle, bool) {
	for _, v := range m.vehicles {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

// Tick advances every vehicle by one component and returns the tick's
// event list in emission order: vehicles in id order, and within a
// vehicle, Spawn (if first tick) then whatever Move produces.
func (m *Manager) Tick(tick int) []simevent.Event {
	var events []simevent.Event
	for _, v := range m.vehicles {
		if !m.spawned[v.ID()] {
			m.spawned[v.ID()] = true
			loc := v.Home()
			if cur, ok := v.CurrentComponent(); ok && cur.Kind == occupancy.KindNode {
				loc = cur.A
			}
			events = append(events, simevent.Spawn{VehicleID: v.ID(), Node: loc, Tick: tick})
		}
		events = append(events, v.Move(tick)...)
	}
	return events
}

// Reset returns every vehicle to its starting restaurant and clears spawn
// tracking so Spawn events fire again on the next run.
func (m *Manager) Reset(tick int) {
	for _, v := range m.vehicles {
		v.Reset(tick)
	}
	m.spawned = make(map[int]bool)
}
