package fleet

import (
	"testing"

	"fleetsim/internal/occupancy"
	"fleetsim/internal/pathing"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
	"fleetsim/internal/vehicle"
)

func triangle(t *testing.T) *region.Region {
	t.Helper()
	r, err := region.NewBuilder(nil).
		AddRestaurant(region.Location{X: 0, Y: 0}, "R", nil).
		AddNeighborhood(region.Location{X: 1, Y: 0}, "A").
		AddEdgeWithDuration(region.Location{X: 0, Y: 0}, region.Location{X: 1, Y: 0}, 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func TestTick_EmitsSpawnOnceThenMoveEvents(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	calc := pathing.New(r)
	v2 := vehicle.New(2, 10, home, r, calc, occ)
	v1 := vehicle.New(1, 10, home, r, calc, occ)
	v1.Reset(0)
	v2.Reset(0)

	m := NewManager([]*vehicle.Vehicle{v2, v1})
	if got := m.Vehicles(); got[0].ID() != 1 || got[1].ID() != 2 {
		t.Fatalf("expected vehicles sorted by id, got %d, %d", got[0].ID(), got[1].ID())
	}

	events := m.Tick(0)
	if len(events) != 2 {
		t.Fatalf("tick 0: expected 2 Spawn events, got %v", events)
	}
	for i, ev := range events {
		s, ok := ev.(simevent.Spawn)
		if !ok {
			t.Fatalf("expected Spawn event, got %T", ev)
		}
		if s.VehicleID != i+1 {
			t.Fatalf("expected Spawn order by id, got vehicle %d at position %d", s.VehicleID, i)
		}
	}

	events = m.Tick(1)
	if len(events) != 0 {
		t.Fatalf("tick 1: expected no events for idle vehicles, got %v", events)
	}
}

func TestReset_ClearsSpawnTracking(t *testing.T) {
	r := triangle(t)
	occ := occupancy.New(r)
	home := region.Location{X: 0, Y: 0}
	calc := pathing.New(r)
	v := vehicle.New(1, 10, home, r, calc, occ)
	v.Reset(0)
	m := NewManager([]*vehicle.Vehicle{v})

	m.Tick(0)
	m.Reset(5)
	events := m.Tick(6)
	if len(events) != 1 {
		t.Fatalf("expected Spawn to re-fire after Reset, got %v", events)
	}
	if _, ok := events[0].(simevent.Spawn); !ok {
		t.Fatalf("expected Spawn event, got %T", events[0])
	}
}
