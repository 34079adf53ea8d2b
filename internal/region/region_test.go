package region

import "testing"

func triangle(t *testing.T) *Region {
	t.Helper()
	r, err := NewBuilder(nil).
		AddRestaurant(Location{0, 0}, "R", []string{"noodles"}).
		AddNeighborhood(Location{1, 0}, "A").
		AddNeighborhood(Location{0, 1}, "B").
		AddEdgeWithDuration(Location{0, 0}, Location{1, 0}, 1).
		AddEdgeWithDuration(Location{0, 0}, Location{0, 1}, 1).
		AddEdgeWithDuration(Location{1, 0}, Location{0, 1}, 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func TestBuilder_BuildsTriangle(t *testing.T) {
	r := triangle(t)
	if len(r.Nodes()) != 3 {
		t.Fatalf("Nodes() len = %d, want 3", len(r.Nodes()))
	}
	if len(r.Edges()) != 3 {
		t.Fatalf("Edges() len = %d, want 3", len(r.Edges()))
	}
	n, ok := r.NodeAt(Location{0, 0})
	if !ok || !n.IsRestaurant() {
		t.Fatalf("NodeAt(0,0) = %v, %v, want restaurant", n, ok)
	}
}

func TestEdgeBetween_OrderInsensitive(t *testing.T) {
	r := triangle(t)
	e1, ok1 := r.EdgeBetween(Location{0, 0}, Location{1, 0})
	e2, ok2 := r.EdgeBetween(Location{1, 0}, Location{0, 0})
	if !ok1 || !ok2 || e1 != e2 {
		t.Fatalf("EdgeBetween should be order-insensitive: %v %v %v %v", e1, ok1, e2, ok2)
	}
}

func TestAddEdgeWithDuration_ReversedEndpointsStoredAscending(t *testing.T) {
	r := triangle(t)
	// triangle adds this edge as AddEdgeWithDuration((1,0), (0,1), 1).
	e, ok := r.EdgeBetween(Location{1, 0}, Location{0, 1})
	if !ok {
		t.Fatal("expected edge to exist")
	}
	if !e.A.Less(e.B) {
		t.Fatalf("edge endpoints not ascending: %v, %v", e.A, e.B)
	}
}

func TestBuild_MissingEdgeForConnectionFails(t *testing.T) {
	b := NewBuilder(nil).
		AddRestaurant(Location{0, 0}, "R", nil).
		AddNeighborhood(Location{1, 0}, "A")
	b.connect(Location{0, 0}, Location{1, 0})
	b.connect(Location{1, 0}, Location{0, 0})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for declared connection with no edge")
	}
}

func TestBuild_SelfLoopRejected(t *testing.T) {
	_, err := NewBuilder(nil).
		AddRestaurant(Location{0, 0}, "R", nil).
		AddEdge(Location{0, 0}, Location{0, 0}).
		Build()
	if err == nil {
		t.Fatal("expected error for self-loop edge")
	}
}

func TestRegion_Equal(t *testing.T) {
	a := triangle(t)
	b := triangle(t)
	if !a.Equal(b) {
		t.Fatal("two identically built regions should be structurally equal")
	}
}

func TestNodeConnections_Sorted(t *testing.T) {
	r := triangle(t)
	n, _ := r.NodeAt(Location{0, 0})
	conns := n.Connections()
	if len(conns) != 2 {
		t.Fatalf("Connections() len = %d, want 2", len(conns))
	}
	if !conns[0].Less(conns[1]) {
		t.Fatalf("Connections() not sorted: %v", conns)
	}
}

func TestEuclideanCalculator_MinimumOne(t *testing.T) {
	d := EuclideanCalculator{}.Distance(Location{0, 0}, Location{0, 0})
	if d != 1 {
		t.Fatalf("Distance(same point) = %d, want 1 (floored)", d)
	}
}
