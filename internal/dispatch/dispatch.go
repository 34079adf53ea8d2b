// Package dispatch implements the per-restaurant route-insertion policy:
// given a new order, it searches three insertion strategies across every
// vehicle currently assigned to the restaurant and commits whichever
// candidate route minimizes lateness (then distance), subject to capacity.
// An order that fits nowhere is deferred to a retry queue rather than
// failing outright.
package dispatch

import (
	"math"
	"sort"

	"fleetsim/internal/occupancy"
	"fleetsim/internal/order"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
	"fleetsim/internal/simfault"
	"fleetsim/internal/vehicle"
)

// PathCalc is the subset of pathing.Calculator the dispatcher needs, kept
// local so this package doesn't depend on pathing directly.
type PathCalc interface {
	Path(from, to region.Location) []*region.Node
	AllPathsFrom(source region.Location) map[region.Location][]*region.Node
}

// Config holds the recognized dispatch tunables.
type Config struct {
	VehicleCapacity   float64
	SendOutSlackTicks int
	SendOutWeightFrac float64
}

// RouteNode is one stop on a planned route: a node location and the
// orders to deliver there.
type RouteNode struct {
	Node   region.Location
	Orders []*order.ConfirmedOrder
}

// Route is an ordered list of RouteNodes, implicitly rooted at the
// managing restaurant (not included as an element).
type Route []RouteNode

type routeVerdict int

const (
	verdictKeep routeVerdict = iota
	verdictSwitch
	verdictBreak
)

// Dispatcher manages one restaurant's planned routes, queued (expected)
// vehicles, and orders that couldn't yet be scheduled.
type Dispatcher struct {
	restaurant region.Location
	region     *region.Region
	calc       PathCalc
	occ        *occupancy.Model
	registry   *Registry
	cfg        Config

	plannedRoutes  map[int]Route
	vehicles       map[int]*vehicle.Vehicle
	queuedVehicles map[int]*vehicle.Vehicle
	pendingOrders  []*order.ConfirmedOrder
}

// NewDispatcher builds a Dispatcher for restaurant and registers it with
// registry so sibling dispatchers can route vehicles to it via rebalancing
// and send-out's least-loaded-restaurant step.
func NewDispatcher(restaurant region.Location, reg *region.Region, calc PathCalc, occ *occupancy.Model, registry *Registry, cfg Config) *Dispatcher {
	d := &Dispatcher{
		restaurant:     restaurant,
		region:         reg,
		calc:           calc,
		occ:            occ,
		registry:       registry,
		cfg:            cfg,
		plannedRoutes:  make(map[int]Route),
		vehicles:       make(map[int]*vehicle.Vehicle),
		queuedVehicles: make(map[int]*vehicle.Vehicle),
	}
	registry.add(restaurant, d)
	return d
}

// Restaurant returns the Location this Dispatcher manages.
func (d *Dispatcher) Restaurant() region.Location { return d.restaurant }

// PlannedRoute returns the current planned route for vehicle id (nil if
// idle or unknown).
func (d *Dispatcher) PlannedRoute(id int) Route { return d.plannedRoutes[id] }

// PendingOrders returns the orders currently deferred.
func (d *Dispatcher) PendingOrders() []*order.ConfirmedOrder {
	out := make([]*order.ConfirmedOrder, len(d.pendingOrders))
	copy(out, d.pendingOrders)
	return out
}

// TotalAvailable is the idle-vehicle count (empty planned route) plus the
// queued (expected-arrival) vehicle count.
func (d *Dispatcher) TotalAvailable() int {
	idle := 0
	for _, route := range d.plannedRoutes {
		if len(route) == 0 {
			idle++
		}
	}
	return idle + len(d.queuedVehicles)
}

// AddVehicle registers v as present at this restaurant with an empty
// planned route, and drops it from the queued set (called on Spawn or on
// arrival here).
func (d *Dispatcher) AddVehicle(v *vehicle.Vehicle) {
	d.plannedRoutes[v.ID()] = nil
	d.vehicles[v.ID()] = v
	delete(d.queuedVehicles, v.ID())
}

// RemoveVehicle drops v from the planned-route set (called when it's sent
// out on a route).
func (d *Dispatcher) RemoveVehicle(id int) {
	delete(d.plannedRoutes, id)
	delete(d.vehicles, id)
}

// AddQueuedVehicle records v as expected to arrive here in the future.
func (d *Dispatcher) AddQueuedVehicle(v *vehicle.Vehicle) {
	d.queuedVehicles[v.ID()] = v
}

func (d *Dispatcher) sortedVehicleIDs() []int {
	ids := make([]int, 0, len(d.plannedRoutes))
	for id := range d.plannedRoutes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IdleVehicleIDs returns, in ascending id order, the ids of vehicles
// present here with an empty planned route — the candidates a rebalancer
// may pull from.
func (d *Dispatcher) IdleVehicleIDs() []int {
	var ids []int
	for _, id := range d.sortedVehicleIDs() {
		if len(d.plannedRoutes[id]) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Vehicle looks up a vehicle present at this restaurant by id.
func (d *Dispatcher) Vehicle(id int) (*vehicle.Vehicle, bool) {
	v, ok := d.vehicles[id]
	return v, ok
}

// Reset clears planned routes, present/queued vehicles, and pending
// orders. Called as part of the service-wide bulk reset; the Region and
// this Dispatcher's registration are untouched.
func (d *Dispatcher) Reset() {
	d.plannedRoutes = make(map[int]Route)
	d.vehicles = make(map[int]*vehicle.Vehicle)
	d.queuedVehicles = make(map[int]*vehicle.Vehicle)
	d.pendingOrders = nil
}

// Tick drains pendingOrders, attempts to schedule newOrders, then sends
// out every non-empty route past the slack or weight threshold, returning
// the OrderReceived events send-out's loads produced, in the order
// send-out visited its vehicles' routes (ascending vehicle id).
func (d *Dispatcher) Tick(currentTick int, newOrders []*order.ConfirmedOrder) []simevent.Event {
	pending := d.pendingOrders
	d.pendingOrders = nil
	for _, o := range pending {
		d.acceptOrder(o, currentTick)
	}
	for _, o := range newOrders {
		d.acceptOrder(o, currentTick)
	}

	var events []simevent.Event
	for _, id := range d.sortedVehicleIDs() {
		route := d.plannedRoutes[id]
		if len(route) == 0 {
			continue
		}
		if d.ticksUntilOff(route, currentTick) < d.cfg.SendOutSlackTicks ||
			d.weight(route) >= d.cfg.SendOutWeightFrac*d.cfg.VehicleCapacity {
			events = append(events, d.sendOut(id, route, currentTick)...)
		}
	}
	return events
}

// acceptOrder finds the best (vehicle, route) insertion across Cases
// A/B/C and commits it, unless a BREAK halts the search (see the
// preserved-as-literal note on the first-BREAK short-circuit) or no
// feasible candidate is ever found, in which case the order is deferred.
func (d *Dispatcher) acceptOrder(o *order.ConfirmedOrder, t int) {
	paths := d.pathsToTarget(o.Target)

	var best Route
	var bestVehicleID int
	haveBest := false

	for _, id := range d.sortedVehicleIDs() {
		route := d.plannedRoutes[id]
		if d.weight(route)+o.Weight > d.cfg.VehicleCapacity {
			continue
		}
		for _, candidate := range d.candidatesFor(route, o, paths) {
			switch d.compareRoute(haveBest, best, candidate, o, t) {
			case verdictBreak:
				d.pendingOrders = append(d.pendingOrders, o)
				return
			case verdictSwitch:
				best = candidate
				bestVehicleID = id
				haveBest = true
			}
		}
	}

	if !haveBest {
		d.pendingOrders = append(d.pendingOrders, o)
		return
	}
	if d.deliveryDuration(o, best)+t > o.Window.Start {
		d.plannedRoutes[bestVehicleID] = best
		return
	}
	d.pendingOrders = append(d.pendingOrders, o)
}

// candidatesFor builds every Case A/B/C candidate for inserting o into
// route.
func (d *Dispatcher) candidatesFor(route Route, o *order.ConfirmedOrder, paths map[region.Location][]*region.Node) []Route {
	if len(route) == 0 {
		p, ok := paths[d.restaurant]
		if !ok || len(p) == 0 {
			return nil
		}
		return []Route{routeNodesFromPath(p, o)}
	}

	var out []Route
	if idx, ok := routeHasLocation(route, o.Target); ok {
		out = append(out, caseB(route, idx, o))
	}
	for i := range route {
		if route[i].Node == o.Target {
			continue // already covered by Case B
		}
		if i+1 < len(route) && route[i+1].Node == o.Target {
			continue // inserting here would duplicate the Case B node
		}
		if c, ok := d.buildCaseC(route, i, o, paths); ok {
			out = append(out, c)
		}
	}
	return out
}

func routeHasLocation(r Route, loc region.Location) (int, bool) {
	for i, rn := range r {
		if rn.Node == loc {
			return i, true
		}
	}
	return -1, false
}

func routeNodesFromPath(path []*region.Node, o *order.ConfirmedOrder) Route {
	out := make(Route, len(path))
	for i, n := range path {
		var orders []*order.ConfirmedOrder
		if i == len(path)-1 {
			orders = []*order.ConfirmedOrder{o}
		}
		out[i] = RouteNode{Node: n.Loc, Orders: orders}
	}
	return out
}

func copyRoute(r Route) Route {
	out := make(Route, len(r))
	copy(out, r)
	return out
}

func caseB(route Route, idx int, o *order.ConfirmedOrder) Route {
	candidate := copyRoute(route)
	rn := candidate[idx]
	newOrders := make([]*order.ConfirmedOrder, len(rn.Orders)+1)
	copy(newOrders, rn.Orders)
	newOrders[len(rn.Orders)] = o
	candidate[idx] = RouteNode{Node: rn.Node, Orders: newOrders}
	return candidate
}

// buildCaseC inserts a detour to the target after route[i], returning to
// route[i]'s successor (if any). paths[n] is Path(n, order.Target) for
// every node n reachable from the target; the return leg is obtained by
// reversing paths[successor] (itself Path(successor, target)) into
// Path(target, successor) and dropping its last node, since that node
// (the successor) is already present as the next RouteNode.
func (d *Dispatcher) buildCaseC(route Route, i int, o *order.ConfirmedOrder, paths map[region.Location][]*region.Node) (Route, bool) {
	a := route[i].Node
	detour, ok := paths[a]
	if !ok || len(detour) == 0 {
		return nil, false
	}

	candidate := make(Route, 0, len(route)+len(detour)+2)
	candidate = append(candidate, route[:i+1]...)
	candidate = append(candidate, routeNodesFromPath(detour, o)...)

	if i+1 < len(route) {
		successor := route[i+1].Node
		succPath, ok := paths[successor]
		if !ok {
			return nil, false
		}
		returnPath := reversePath(d.region, successor, o.Target, succPath)
		if len(returnPath) > 0 {
			returnPath = returnPath[:len(returnPath)-1]
		}
		for _, n := range returnPath {
			candidate = append(candidate, RouteNode{Node: n.Loc})
		}
		candidate = append(candidate, route[i+1:]...)
	}
	return candidate, true
}

// reversePath turns pathSrcToDst (the node sequence strictly after src,
// ending at dst — i.e. Path(src,dst)) into Path(dst,src): the sequence
// strictly after dst, ending at src.
func reversePath(reg *region.Region, src, dst region.Location, pathSrcToDst []*region.Node) []*region.Node {
	if src == dst || len(pathSrcToDst) == 0 {
		return nil
	}
	locs := make([]region.Location, 0, len(pathSrcToDst)+1)
	locs = append(locs, src)
	for _, n := range pathSrcToDst {
		locs = append(locs, n.Loc)
	}
	out := make([]*region.Node, 0, len(locs)-1)
	for i := len(locs) - 2; i >= 0; i-- {
		n, _ := reg.NodeAt(locs[i])
		out = append(out, n)
	}
	return out
}

// pathsToTarget returns, for every node n reachable from target, the
// sequence Path(n, target) — the shortest path from every node to the
// order target, built by reversing the raw AllPathsFrom(target) results
// (which instead give Path(target, n)).
func (d *Dispatcher) pathsToTarget(target region.Location) map[region.Location][]*region.Node {
	raw := d.calc.AllPathsFrom(target)
	paths := make(map[region.Location][]*region.Node, len(raw)+1)
	for n, seq := range raw {
		paths[n] = reversePath(d.region, target, n, seq)
	}
	paths[target] = nil
	return paths
}

// compareRoute implements the candidate-comparison algorithm, including a
// first-BREAK short circuit: a single too-early candidate halts the
// entire search for this order, even if a later candidate would have
// been feasible.
func (d *Dispatcher) compareRoute(haveOld bool, old, candidate Route, o *order.ConfirmedOrder, t int) routeVerdict {
	if d.deliveryDuration(o, candidate)+t < o.Window.Start {
		return verdictBreak
	}
	if !haveOld {
		return verdictSwitch
	}
	oldOff := d.totalTicksOff(old, t)
	newOff := d.totalTicksOff(candidate, t)
	if oldOff == 0 && newOff == 0 {
		if d.distance(candidate) < d.distance(old) {
			return verdictSwitch
		}
		return verdictKeep
	}
	if newOff < oldOff {
		return verdictSwitch
	}
	return verdictKeep
}

func (d *Dispatcher) weight(r Route) float64 {
	var sum float64
	for _, rn := range r {
		for _, o := range rn.Orders {
			sum += o.Weight
		}
	}
	return sum
}

func (d *Dispatcher) distance(r Route) int {
	total := 0
	prev := d.restaurant
	for _, rn := range r {
		if e, ok := d.region.EdgeBetween(prev, rn.Node); ok {
			total += e.Duration
		}
		prev = rn.Node
	}
	return total
}

// deliveryDuration is the cumulative duration, from the restaurant, up to
// the first RouteNode whose location equals o.Target. Requesting it for a
// target absent from r is an invariant violation.
func (d *Dispatcher) deliveryDuration(o *order.ConfirmedOrder, r Route) int {
	total := 0
	prev := d.restaurant
	for _, rn := range r {
		if e, ok := d.region.EdgeBetween(prev, rn.Node); ok {
			total += e.Duration
		}
		if rn.Node == o.Target {
			return total
		}
		prev = rn.Node
	}
	simfault.Raise("dispatch: deliveryDuration: target %v not present in route", o.Target)
	panic("unreachable")
}

func (d *Dispatcher) totalTicksOff(r Route, t int) int {
	total := 0
	cum := 0
	prev := d.restaurant
	for _, rn := range r {
		if e, ok := d.region.EdgeBetween(prev, rn.Node); ok {
			cum += e.Duration
		}
		arrival := t + cum
		for _, o := range rn.Orders {
			total += order.TicksOff(o.Window, arrival)
		}
		prev = rn.Node
	}
	return total
}

// ticksUntilOff is the minimum remaining slack before any order in r
// becomes late. Per Open Question #4, a route with no orders constraining
// it (every RouteNode a bare transit hop) returns math.MaxInt, so the
// slack-based send-out trigger never fires for it; the weight trigger is
// the only one that can.
func (d *Dispatcher) ticksUntilOff(r Route, t int) int {
	best := math.MaxInt
	cum := 0
	prev := d.restaurant
	for _, rn := range r {
		if e, ok := d.region.EdgeBetween(prev, rn.Node); ok {
			cum += e.Duration
		}
		arrival := t + cum
		for _, o := range rn.Orders {
			slack := 0
			if arrival <= o.Window.End {
				slack = o.Window.End - arrival
			}
			if slack < best {
				best = slack
			}
		}
		prev = rn.Node
	}
	return best
}

// sendOut loads every order onto v at the restaurant, queues the delivery
// moves, and finally routes v toward the least-loaded restaurant. Returns
// the OrderReceived events the loads produced, in load order.
func (d *Dispatcher) sendOut(id int, route Route, tick int) []simevent.Event {
	v, ok := d.vehicles[id]
	if !ok {
		return nil
	}

	var events []simevent.Event
	for _, rn := range route {
		for _, o := range rn.Orders {
			ev, err := d.occ.LoadOrder(d.restaurant, v, o, tick)
			if err != nil {
				simfault.Raise("dispatch: send-out load failed for vehicle %d: %v", id, err)
			}
			events = append(events, ev...)
		}
	}

	for _, rn := range route {
		node := rn.Node
		orders := rn.Orders
		onArrival := func(veh *vehicle.Vehicle, arrivalTick int) []simevent.Event {
			var events []simevent.Event
			for _, o := range orders {
				ev, err := d.occ.DeliverOrder(node, veh, o, arrivalTick)
				if err != nil {
					simfault.Raise("dispatch: deliver failed for vehicle %d: %v", veh.ID(), err)
				}
				events = append(events, ev...)
			}
			return events
		}
		if err := v.MoveQueued(node, onArrival); err != nil {
			simfault.Raise("dispatch: moveQueued failed for vehicle %d: %v", id, err)
		}
	}

	if dest, ok := d.registry.LeastLoadedRestaurant(); ok {
		if err := v.MoveQueued(dest, nil); err == nil {
			if destDispatcher, ok := d.registry.At(dest); ok {
				destDispatcher.AddQueuedVehicle(v)
			}
		}
	}
	d.RemoveVehicle(id)
	return events
}
