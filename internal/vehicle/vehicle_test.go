package vehicle

import (
	"testing"

	"github.com/google/uuid"

	"fleetsim/internal/occupancy"
	"fleetsim/internal/order"
	"fleetsim/internal/pathing"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
)

func triangle(t *testing.T) *region.Region {
	t.Helper()
	r, err := region.NewBuilder(nil).
		AddRestaurant(region.Location{X: 0, Y: 0}, "R", []string{"noodles"}).
		AddNeighborhood(region.Location{X: 1, Y: 0}, "A").
		AddNeighborhood(region.Location{X: 0, Y: 1}, "B").
		AddEdgeWithDuration(region.Location{X: 0, Y: 0}, region.Location{X: 1, Y: 0}, 5).
		AddEdgeWithDuration(region.Location{X: 0, Y: 0}, region.Location{X: 0, Y: 1}, 1).
		AddEdgeWithDuration(region.Location{X: 1, Y: 0}, region.Location{X: 0, Y: 1}, 5).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func newVehicleAtHome(t *testing.T, r *region.Region, occ *occupancy.Model, id int, capacity float64, home region.Location) *Vehicle {
	t.Helper()
	v := New(id, capacity, home, r, pathing.New(r), occ)
	v.Reset(0)
	return v
}

func TestMoveQueued_RejectsTargetEqualsCurrentNodeWithEmptyQueue(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	v := newVehicleAtHome(t, r, occ, 1, 10, home)

	if err := v.MoveQueued(home, nil); err == nil {
		t.Fatal("expected error queuing a move to the current node")
	}
}

func TestMove_AlternatesNodeEdgeNodeRegardlessOfDuration(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	a := region.Location{X: 1, Y: 0}
	v := newVehicleAtHome(t, r, occ, 1, 10, home)

	if err := v.MoveQueued(a, nil); err != nil {
		t.Fatalf("MoveQueued: %v", err)
	}

	// Edge R-A has duration 5, but traversal always takes exactly two
	// component transitions: node -> edge, then edge -> node.
	events := v.Move(1)
	if len(events) != 0 {
		t.Fatalf("tick 1: expected no events entering the edge, got %v", events)
	}
	cur, _ := v.CurrentComponent()
	if cur.Kind != occupancy.KindEdge {
		t.Fatalf("tick 1: expected vehicle on edge, got %v", cur)
	}

	events = v.Move(2)
	if len(events) != 1 {
		t.Fatalf("tick 2: expected exactly ArrivedAtNode, got %v", events)
	}
	if _, ok := events[0].(simevent.ArrivedAtNode); !ok {
		t.Fatalf("tick 2: expected ArrivedAtNode, got %T", events[0])
	}
	cur, _ = v.CurrentComponent()
	if cur.Kind != occupancy.KindNode || cur.A != a {
		t.Fatalf("tick 2: expected vehicle at A, got %v", cur)
	}
}

func TestMove_ArrivingAtRestaurantEmitsBothEvents(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	neighborhood := region.Location{X: 1, Y: 0}
	restaurant := region.Location{X: 0, Y: 0}
	v := newVehicleAtHome(t, r, occ, 1, 10, neighborhood)

	if err := v.MoveQueued(restaurant, nil); err != nil {
		t.Fatalf("MoveQueued: %v", err)
	}
	v.Move(1) // enter edge
	events := v.Move(2)
	if len(events) != 2 {
		t.Fatalf("expected ArrivedAtNode + ArrivedAtRestaurant, got %v", events)
	}
	if _, ok := events[1].(simevent.ArrivedAtRestaurant); !ok {
		t.Fatalf("expected second event to be ArrivedAtRestaurant, got %T", events[1])
	}
}

func TestMoveDirect_MidEdge_PlansFromFarEndpoint(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	a := region.Location{X: 1, Y: 0}
	b := region.Location{X: 0, Y: 1}
	v := newVehicleAtHome(t, r, occ, 1, 10, home)

	if err := v.MoveQueued(a, nil); err != nil {
		t.Fatalf("MoveQueued: %v", err)
	}
	v.Move(1) // now mid-edge R-A, previous node is R

	if err := v.MoveDirect(b, nil); err != nil {
		t.Fatalf("MoveDirect: %v", err)
	}
	// The first queued leg should be the one-step hop to A (the far
	// endpoint relative to R), not back to R.
	if len(v.moveQueue) == 0 || len(v.moveQueue[0].nodes) != 1 || v.moveQueue[0].nodes[0] != a {
		t.Fatalf("expected first leg to land on far endpoint A, got %+v", v.moveQueue)
	}
}

func TestLoad_CountCheckBeforeWeightCheck(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	// Capacity 1: count check (len(orders) >= 1) trips before a second,
	// well under weight, order could ever be considered.
	v := newVehicleAtHome(t, r, occ, 1, 1, home)

	light, err := order.New(uuid.New(), region.Location{X: 1, Y: 0}, home, order.TickInterval{Start: 0, End: 5}, nil, 0.1)
	if err != nil {
		t.Fatalf("order.New: %v", err)
	}
	if err := v.Load(light); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	second, err := order.New(uuid.New(), region.Location{X: 0, Y: 1}, home, order.TickInterval{Start: 0, End: 5}, nil, 0.1)
	if err != nil {
		t.Fatalf("order.New: %v", err)
	}
	if err := v.Load(second); err == nil {
		t.Fatal("expected count-based rejection even though weight sum is well under capacity")
	}
}

func TestLoad_WeightCheckRejectsOverCapacity(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	v := newVehicleAtHome(t, r, occ, 10, 5, home)

	heavy, err := order.New(uuid.New(), region.Location{X: 1, Y: 0}, home, order.TickInterval{Start: 0, End: 5}, nil, 6)
	if err != nil {
		t.Fatalf("order.New: %v", err)
	}
	if err := v.Load(heavy); err == nil {
		t.Fatal("expected weight-based rejection")
	}
}

func TestReset_ClearsOrdersAndQueueAndReturnsHome(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	a := region.Location{X: 1, Y: 0}
	v := newVehicleAtHome(t, r, occ, 10, 10, home)

	o, err := order.New(uuid.New(), a, home, order.TickInterval{Start: 0, End: 5}, nil, 1)
	if err != nil {
		t.Fatalf("order.New: %v", err)
	}
	if err := v.Load(o); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := v.MoveQueued(a, nil); err != nil {
		t.Fatalf("MoveQueued: %v", err)
	}

	v.Reset(5)
	if len(v.Orders()) != 0 {
		t.Fatal("expected orders cleared after Reset")
	}
	if !v.Idle() {
		t.Fatal("expected move queue cleared after Reset")
	}
	cur, ok := v.CurrentComponent()
	if !ok || cur.A != home {
		t.Fatalf("expected vehicle back at home after Reset, got %v", cur)
	}
}
