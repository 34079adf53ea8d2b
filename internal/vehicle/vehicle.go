// Package vehicle implements the per-vehicle move-queue state machine:
// a FIFO of Paths, each a node sequence plus a one-shot arrival callback,
// advanced one component (node or edge) per tick — a queue of planned
// steps consumed one per invocation.
package vehicle

import (
	"fmt"

	"fleetsim/internal/occupancy"
	"fleetsim/internal/order"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
)

// PathCalculator is the subset of pathing.Calculator the vehicle state
// machine needs, kept local so this package doesn't depend on pathing.
type PathCalculator interface {
	Path(from, to region.Location) []*region.Node
}

// Path is one queued leg: the node sequence strictly after the vehicle's
// position when the leg was planned, ending at the leg's destination, plus
// the callback to run once the destination is reached.
type Path struct {
	nodes     []region.Location
	onArrival func(v *Vehicle, tick int) []simevent.Event
}

// Vehicle is a capacity-bounded courier with a FIFO move queue of Paths.
// It implements occupancy.VehicleCargo.
type Vehicle struct {
	id       int
	capacity float64
	home     region.Location

	region *region.Region
	calc   PathCalculator
	occ    *occupancy.Model

	orders    []*order.ConfirmedOrder
	moveQueue []*Path
}

// New constructs a Vehicle parked at home. Callers must call Reset once
// before the first tick to register it with occ.
func New(id int, capacity float64, home region.Location, r *region.Region, calc PathCalculator, occ *occupancy.Model) *Vehicle {
	return &Vehicle{
		id:       id,
		capacity: capacity,
		home:     home,
		region:   r,
		calc:     calc,
		occ:      occ,
	}
}

func (v *Vehicle) ID() int                  { return v.id }
func (v *Vehicle) Capacity() float64        { return v.capacity }
func (v *Vehicle) Home() region.Location    { return v.home }
func (v *Vehicle) Idle() bool               { return len(v.moveQueue) == 0 }

// CurrentComponent returns the Node or Edge the vehicle currently occupies.
func (v *Vehicle) CurrentComponent() (occupancy.ComponentRef, bool) {
	return v.occ.CurrentComponent(v.id)
}

// LoadedWeight sums the weight of every order currently aboard.
func (v *Vehicle) LoadedWeight() float64 {
	var sum float64
	for _, o := range v.orders {
		sum += o.Weight
	}
	return sum
}

// Orders returns the orders currently aboard, in load order.
func (v *Vehicle) Orders() []*order.ConfirmedOrder {
	out := make([]*order.ConfirmedOrder, len(v.orders))
	copy(out, v.orders)
	return out
}

// Load attaches o to the vehicle. Preserves the literal count-then-weight
// check order noted as suspect: a count comparison against a
// weight-denominated capacity is checked first, then the real weight sum.
func (v *Vehicle) Load(o *order.ConfirmedOrder) error {
	if len(v.orders) >= int(v.capacity) {
		return fmt.Errorf("vehicle %d: order count %d at capacity %v", v.id, len(v.orders), v.capacity)
	}
	if v.LoadedWeight()+o.Weight > v.capacity {
		return fmt.Errorf("vehicle %d: loading order %s would exceed capacity %v", v.id, o.ID, v.capacity)
	}
	v.orders = append(v.orders, o)
	return nil
}

// Unload removes o by identity.
func (v *Vehicle) Unload(o *order.ConfirmedOrder) error {
	for i, loaded := range v.orders {
		if loaded.ID == o.ID {
			v.orders = append(v.orders[:i], v.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("vehicle %d: unload of order %s not loaded", v.id, o.ID)
}

// tailLocation returns the node a new queued Path should be planned from:
// the final destination of the last queued Path, or the vehicle's current
// node if the queue is empty.
func (v *Vehicle) tailLocation() (region.Location, error) {
	if n := len(v.moveQueue); n > 0 {
		last := v.moveQueue[n-1]
		if len(last.nodes) == 0 {
			return region.Location{}, fmt.Errorf("vehicle %d: queued path has no destination to plan from", v.id)
		}
		return last.nodes[len(last.nodes)-1], nil
	}
	cur, ok := v.occ.CurrentComponent(v.id)
	if !ok || cur.Kind != occupancy.KindNode {
		return region.Location{}, fmt.Errorf("vehicle %d: no current node to plan from", v.id)
	}
	return cur.A, nil
}

// MoveQueued appends a single Path from the queue's current tail to target.
// Rejects target == the current node when the queue is empty.
func (v *Vehicle) MoveQueued(target region.Location, onArrival func(*Vehicle, int) []simevent.Event) error {
	tail, err := v.tailLocation()
	if err != nil {
		return err
	}
	if tail == target && len(v.moveQueue) == 0 {
		return fmt.Errorf("vehicle %d: moveQueued to current node %v with empty queue", v.id, target)
	}
	v.moveQueue = append(v.moveQueue, v.planPath(tail, target, onArrival))
	return nil
}

// MoveDirect discards the move queue and replans immediately. If the
// vehicle is mid-edge, it first inserts a one-step Path to the edge's far
// endpoint so it finishes crossing rather than reversing.
func (v *Vehicle) MoveDirect(target region.Location, onArrival func(*Vehicle, int) []simevent.Event) error {
	cur, ok := v.occ.CurrentComponent(v.id)
	if !ok {
		return fmt.Errorf("vehicle %d: no current component", v.id)
	}

	v.moveQueue = nil
	from := cur.A
	if cur.Kind == occupancy.KindEdge {
		far, err := v.farEndpoint(cur)
		if err != nil {
			return err
		}
		v.moveQueue = append(v.moveQueue, &Path{nodes: []region.Location{far}})
		from = far
	}
	v.moveQueue = append(v.moveQueue, v.planPath(from, target, onArrival))
	return nil
}

func (v *Vehicle) planPath(from, to region.Location, onArrival func(*Vehicle, int) []simevent.Event) *Path {
	nodes := v.calc.Path(from, to)
	locs := make([]region.Location, len(nodes))
	for i, n := range nodes {
		locs[i] = n.Loc
	}
	return &Path{nodes: locs, onArrival: onArrival}
}

// farEndpoint returns the endpoint of edge opposite the node the vehicle
// entered it from.
func (v *Vehicle) farEndpoint(edge occupancy.ComponentRef) (region.Location, error) {
	occ, ok := v.occ.OccupiedAt(edge)
	if !ok {
		return region.Location{}, fmt.Errorf("vehicle %d: unknown edge %s", v.id, edge)
	}
	prev, hasPrev := occ.Previous(v.id)
	if !hasPrev || prev.Kind != occupancy.KindNode {
		return region.Location{}, fmt.Errorf("vehicle %d: cannot determine far endpoint of %s", v.id, edge)
	}
	if prev.A == edge.A {
		return edge.B, nil
	}
	return edge.A, nil
}

// Move advances the vehicle exactly one component for tick. A vehicle
// alternates node -> edge -> node regardless of edge duration; duration
// only feeds planning and scoring, never the movement clock.
func (v *Vehicle) Move(tick int) []simevent.Event {
	if len(v.moveQueue) == 0 {
		return nil
	}
	head := v.moveQueue[0]

	if len(head.nodes) == 0 {
		v.moveQueue = v.moveQueue[1:]
		var events []simevent.Event
		if head.onArrival != nil {
			return head.onArrival(v, tick)
		}
		return append(events, v.Move(tick)...)
	}

	cur, _ := v.occ.CurrentComponent(v.id)
	next := head.nodes[0]

	if cur.Kind == occupancy.KindNode {
		v.occ.Enter(v.id, tick, occupancy.EdgeRef(cur.A, next))
		return nil
	}

	head.nodes = head.nodes[1:]
	lastDur := 0
	if e, ok := v.region.EdgeBetween(cur.A, next); ok {
		lastDur = e.Duration
	}
	v.occ.Enter(v.id, tick, occupancy.NodeRef(next))

	events := []simevent.Event{simevent.ArrivedAtNode{VehicleID: v.id, Node: next, LastEdgeDuration: lastDur, Tick: tick}}
	if n, ok := v.region.NodeAt(next); ok && n.IsRestaurant() {
		events = append(events, simevent.ArrivedAtRestaurant{VehicleID: v.id, Node: next, LastEdgeDuration: lastDur, Tick: tick})
	}

	// Entering this node exhausted the Path's node queue: the same tick
	// that ends a leg also pops it and fires its callback (or, absent one,
	// immediately continues into the next queued leg).
	if len(head.nodes) == 0 {
		v.moveQueue = v.moveQueue[1:]
		if head.onArrival != nil {
			events = append(events, head.onArrival(v, tick)...)
		} else {
			events = append(events, v.Move(tick)...)
		}
	}
	return events
}

// Reset returns the vehicle to its starting restaurant, clears loaded
// orders, and clears the move queue.
func (v *Vehicle) Reset(tick int) {
	v.orders = nil
	v.moveQueue = nil
	v.occ.Enter(v.id, tick, occupancy.NodeRef(v.home))
}
