// Package occupancy tracks which vehicle sits on which Node or Edge of a
// region.Region, and mediates the restaurant-load / neighborhood-deliver
// hooks the vehicle state machine calls into on arrival. ComponentRef is a
// plain struct with a ComponentKind tag rather than an interface, so a
// Node or Edge reference can be compared and used as a map key directly.
package occupancy

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"fleetsim/internal/order"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
	"fleetsim/internal/simfault"
)

// ComponentKind tags whether a ComponentRef names a Node or an Edge.
type ComponentKind int

const (
	KindNode ComponentKind = iota
	KindEdge
)

// ComponentRef identifies a single Node or Edge for occupancy-tracking
// purposes. For a Node, only A is meaningful. For an Edge, A and B are
// always stored ascending, mirroring region.Edge's own endpoint ordering.
type ComponentRef struct {
	Kind ComponentKind
	A, B region.Location
}

// NodeRef builds the ComponentRef for a Node.
func NodeRef(loc region.Location) ComponentRef {
	return ComponentRef{Kind: KindNode, A: loc}
}

// EdgeRef builds the ComponentRef for an Edge, order-insensitive.
func EdgeRef(a, b region.Location) ComponentRef {
	if b.Less(a) {
		a, b = b, a
	}
	return ComponentRef{Kind: KindEdge, A: a, B: b}
}

func (c ComponentRef) String() string {
	if c.Kind == KindNode {
		return c.A.String()
	}
	return fmt.Sprintf("%s~%s", c.A, c.B)
}

// VehicleCargo is the subset of vehicle behavior the occupancy model needs
// in order to load and unload orders, without importing the vehicle
// package (which itself depends on occupancy).
type VehicleCargo interface {
	ID() int
	Load(o *order.ConfirmedOrder) error
	Unload(o *order.ConfirmedOrder) error
}

type vehicleStats struct {
	arrivalTick int
	previous    ComponentRef
	hasPrevious bool
}

// Occupied is the runtime container tracking which vehicles are present on
// a single Node or Edge, plus per-vehicle arrival stats.
type Occupied struct {
	component ComponentRef
	vehicles  map[int]vehicleStats
}

func newOccupied(c ComponentRef) *Occupied {
	return &Occupied{component: c, vehicles: make(map[int]vehicleStats)}
}

// Component returns the Node or Edge this Occupied tracks.
func (o *Occupied) Component() ComponentRef { return o.component }

func (o *Occupied) addVehicle(id, tick int, previous ComponentRef, hasPrevious bool) {
	o.vehicles[id] = vehicleStats{arrivalTick: tick, previous: previous, hasPrevious: hasPrevious}
}

func (o *Occupied) removeVehicle(id int) {
	delete(o.vehicles, id)
}

// Vehicles returns the ids of vehicles currently present, ascending.
func (o *Occupied) Vehicles() []int {
	out := make([]int, 0, len(o.vehicles))
	for id := range o.vehicles {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ArrivalTick returns the tick the given vehicle entered this component.
func (o *Occupied) ArrivalTick(id int) (int, bool) {
	s, ok := o.vehicles[id]
	return s.arrivalTick, ok
}

// Previous returns the component the given vehicle occupied immediately
// before this one, if any.
func (o *Occupied) Previous(id int) (ComponentRef, bool) {
	s, ok := o.vehicles[id]
	if !ok {
		return ComponentRef{}, false
	}
	return s.previous, s.hasPrevious
}

// Model owns every Occupied<Node>/Occupied<Edge> for a Region, each
// vehicle's current component, and the set of orders ever loaded (used to
// gate first-load OrderReceived emission and to catch delivery of an order
// that was never received).
type Model struct {
	region    *region.Region
	occupied  map[ComponentRef]*Occupied
	current   map[int]ComponentRef
	everSeen  map[uuid.UUID]bool
}

// New builds a Model with one empty Occupied per Node and per Edge of r.
func New(r *region.Region) *Model {
	m := &Model{
		region:   r,
		occupied: make(map[ComponentRef]*Occupied),
		current:  make(map[int]ComponentRef),
		everSeen: make(map[uuid.UUID]bool),
	}
	for _, n := range r.Nodes() {
		ref := NodeRef(n.Loc)
		m.occupied[ref] = newOccupied(ref)
	}
	for _, e := range r.Edges() {
		ref := EdgeRef(e.A, e.B)
		m.occupied[ref] = newOccupied(ref)
	}
	return m
}

// OccupiedAt returns the Occupied tracking the given component.
func (m *Model) OccupiedAt(c ComponentRef) (*Occupied, bool) {
	o, ok := m.occupied[c]
	return o, ok
}

// CurrentComponent returns the component the given vehicle id currently
// occupies.
func (m *Model) CurrentComponent(vehicleID int) (ComponentRef, bool) {
	c, ok := m.current[vehicleID]
	return c, ok
}

// Enter moves vehicleID into dest, removing it from its previous component
// first. The two steps happen within a single call so no callback can
// observe the vehicle as absent from every Occupied.
func (m *Model) Enter(vehicleID, tick int, dest ComponentRef) {
	occ, ok := m.occupied[dest]
	if !ok {
		simfault.Raise("occupancy: vehicle %d entering unknown component %s", vehicleID, dest)
	}

	prev, hasPrev := m.current[vehicleID]
	if hasPrev {
		if prevOcc, ok := m.occupied[prev]; ok {
			prevOcc.removeVehicle(vehicleID)
		}
	}
	occ.addVehicle(vehicleID, tick, prev, hasPrev)
	m.current[vehicleID] = dest
}

// LoadOrder attaches ord to v at restaurantLoc, subject to v's own capacity
// check, and emits OrderReceived the first time ord is loaded anywhere.
func (m *Model) LoadOrder(restaurantLoc region.Location, v VehicleCargo, ord *order.ConfirmedOrder, tick int) ([]simevent.Event, error) {
	n, ok := m.region.NodeAt(restaurantLoc)
	if !ok || !n.IsRestaurant() {
		return nil, fmt.Errorf("occupancy: %v is not a restaurant", restaurantLoc)
	}
	if err := v.Load(ord); err != nil {
		return nil, err
	}

	var events []simevent.Event
	if !m.everSeen[ord.ID] {
		m.everSeen[ord.ID] = true
		events = append(events, simevent.OrderReceived{Order: ord, Tick: tick})
	}
	return events, nil
}

// DeliverOrder removes ord from v at neighborhoodLoc, stamps its delivery
// tick, and emits DeliverOrder. Delivering an order that was never loaded
// (so never seen) is an invariant violation.
func (m *Model) DeliverOrder(neighborhoodLoc region.Location, v VehicleCargo, ord *order.ConfirmedOrder, tick int) ([]simevent.Event, error) {
	n, ok := m.region.NodeAt(neighborhoodLoc)
	if !ok || !n.IsNeighborhood() {
		return nil, fmt.Errorf("occupancy: %v is not a neighborhood", neighborhoodLoc)
	}
	if !m.everSeen[ord.ID] {
		simfault.Raise("occupancy: DeliverOrder for %s with no preceding OrderReceived", ord.ID)
	}
	if err := v.Unload(ord); err != nil {
		return nil, err
	}
	if err := ord.MarkDelivered(tick); err != nil {
		return nil, err
	}
	return []simevent.Event{simevent.DeliverOrder{Order: ord, Tick: tick}}, nil
}

// Reset clears all occupancy and delivery-history state. The Region itself
// is untouched.
func (m *Model) Reset() {
	for _, occ := range m.occupied {
		occ.vehicles = make(map[int]vehicleStats)
	}
	m.current = make(map[int]ComponentRef)
	m.everSeen = make(map[uuid.UUID]bool)
}
