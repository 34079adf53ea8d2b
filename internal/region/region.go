// Package region models the delivery area as an immutable weighted
// undirected graph: a set of Nodes (restaurants, neighborhoods, and plain
// intersections) keyed by Location, and a set of Edges with positive
// integer travel durations.
package region

import (
	"fmt"
	"math"
	"sort"
)

// Location is a point in the region, totally ordered lexicographically.
type Location struct {
	X, Y int32
}

// Less reports whether l sorts before o (lexicographic on X then Y).
func (l Location) Less(o Location) bool {
	if l.X != o.X {
		return l.X < o.X
	}
	return l.Y < o.Y
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// NodeKind tags the subtype of a Node.
type NodeKind int

const (
	KindIntersection NodeKind = iota
	KindRestaurant
	KindNeighborhood
)

func (k NodeKind) String() string {
	switch k {
	case KindRestaurant:
		return "restaurant"
	case KindNeighborhood:
		return "neighborhood"
	default:
		return "intersection"
	}
}

// Node is a point in the region graph: a restaurant (with a menu), a
// neighborhood, or a plain intersection.
type Node struct {
	Loc         Location
	Name        string
	Kind        NodeKind
	Menu        []string // non-nil only when Kind == KindRestaurant
	connections []Location
}

// Connections returns the Locations this node declares an edge to, sorted
// ascending. The Region guarantees every entry has a matching Edge.
func (n *Node) Connections() []Location {
	out := make([]Location, len(n.connections))
	copy(out, n.connections)
	return out
}

func (n *Node) IsRestaurant() bool   { return n.Kind == KindRestaurant }
func (n *Node) IsNeighborhood() bool { return n.Kind == KindNeighborhood }

// Edge is an undirected connection between two Locations with a positive
// integer travel duration. Endpoints are always stored ascending (A < B).
type Edge struct {
	A, B     Location
	Duration int
}

func newEdge(a, b Location, duration int) (*Edge, error) {
	if !a.Less(b) {
		return nil, fmt.Errorf("region: edge endpoints must be strictly ascending, got %v, %v", a, b)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("region: edge duration must be positive, got %d", duration)
	}
	return &Edge{A: a, B: b, Duration: duration}, nil
}

type edgeKey struct{ A, B Location }

// Region is an immutable weighted undirected graph of Nodes and Edges.
type Region struct {
	nodes map[Location]*Node
	edges map[edgeKey]*Edge
}

// NodeAt returns the Node at loc, if any.
func (r *Region) NodeAt(loc Location) (*Node, bool) {
	n, ok := r.nodes[loc]
	return n, ok
}

// EdgeBetween returns the Edge connecting a and b, order-insensitive.
func (r *Region) EdgeBetween(a, b Location) (*Edge, bool) {
	if b.Less(a) {
		a, b = b, a
	}
	e, ok := r.edges[edgeKey{a, b}]
	return e, ok
}

// Nodes returns all Nodes sorted by Location.
func (r *Region) Nodes() []*Node {
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Loc.Less(out[j].Loc) })
	return out
}

// Edges returns all Edges sorted by (A, B).
func (r *Region) Edges() []*Edge {
	out := make([]*Edge, 0, len(r.edges))
	for _, e := range r.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A.Less(out[j].A)
		}
		return out[i].B.Less(out[j].B)
	})
	return out
}

// Equal reports whether r and other have the same nodes and edges.
func (r *Region) Equal(other *Region) bool {
	if other == nil || len(r.nodes) != len(other.nodes) || len(r.edges) != len(other.edges) {
		return false
	}
	for loc, n := range r.nodes {
		on, ok := other.nodes[loc]
		if !ok || n.Name != on.Name || n.Kind != on.Kind || len(n.Menu) != len(on.Menu) {
			return false
		}
		for i, item := range n.Menu {
			if on.Menu[i] != item {
				return false
			}
		}
	}
	for key, e := range r.edges {
		oe, ok := other.edges[key]
		if !ok || oe.Duration != e.Duration {
			return false
		}
	}
	return true
}

// DistanceCalculator derives a default edge duration from two endpoints.
// Pluggable; only consulted by the Builder when a duration isn't given
// explicitly. Once a Region is built, durations are fixed.
type DistanceCalculator interface {
	Distance(a, b Location) int
}

// EuclideanCalculator is the default DistanceCalculator: rounded straight-line
// distance, floored at 1 so every edge has a positive duration.
type EuclideanCalculator struct{}

func (EuclideanCalculator) Distance(a, b Location) int {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	d := int(math.Round(math.Sqrt(dx*dx + dy*dy)))
	if d < 1 {
		d = 1
	}
	return d
}

// Builder constructs an immutable Region. It is not safe for concurrent use.
type Builder struct {
	calc  DistanceCalculator
	nodes map[Location]*Node
	edges map[edgeKey]*Edge
	conn  map[Location]map[Location]bool
	err   error
}

// NewBuilder creates a Builder using calc to derive default edge durations.
// A nil calc defaults to EuclideanCalculator.
func NewBuilder(calc DistanceCalculator) *Builder {
	if calc == nil {
		calc = EuclideanCalculator{}
	}
	return &Builder{
		calc:  calc,
		nodes: make(map[Location]*Node),
		edges: make(map[edgeKey]*Edge),
		conn:  make(map[Location]map[Location]bool),
	}
}

func (b *Builder) addNode(loc Location, name string, kind NodeKind, menu []string) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.nodes[loc]; exists {
		b.err = fmt.Errorf("region: duplicate node at %v", loc)
		return b
	}
	b.nodes[loc] = &Node{Loc: loc, Name: name, Kind: kind, Menu: menu}
	return b
}

func (b *Builder) AddIntersection(loc Location, name string) *Builder {
	return b.addNode(loc, name, KindIntersection, nil)
}

func (b *Builder) AddRestaurant(loc Location, name string, menu []string) *Builder {
	return b.addNode(loc, name, KindRestaurant, append([]string(nil), menu...))
}

func (b *Builder) AddNeighborhood(loc Location, name string) *Builder {
	return b.addNode(loc, name, KindNeighborhood, nil)
}

// AddEdge adds an edge between a and b with a duration derived from the
// Builder's DistanceCalculator.
func (b *Builder) AddEdge(a, other Location) *Builder {
	return b.AddEdgeWithDuration(a, other, 0)
}

// AddEdgeWithDuration adds an edge between a and b with an explicit positive
// duration. A duration of 0 means "derive it from the DistanceCalculator".
func (b *Builder) AddEdgeWithDuration(a, other Location, duration int) *Builder {
	if b.err != nil {
		return b
	}
	if a == other {
		b.err = fmt.Errorf("region: self-loop edge at %v", a)
		return b
	}
	lo, hi := a, other
	if hi.Less(lo) {
		lo, hi = hi, lo
	}
	if duration <= 0 {
		duration = b.calc.Distance(lo, hi)
	}
	e, err := newEdge(lo, hi, duration)
	if err != nil {
		b.err = err
		return b
	}
	key := edgeKey{lo, hi}
	if _, exists := b.edges[key]; exists {
		b.err = fmt.Errorf("region: duplicate edge %v-%v", lo, hi)
		return b
	}
	b.edges[key] = e
	b.connect(lo, hi)
	b.connect(hi, lo)
	return b
}

func (b *Builder) connect(from, to Location) {
	if b.conn[from] == nil {
		b.conn[from] = make(map[Location]bool)
	}
	b.conn[from][to] = true
}

// Build validates every declared connection has a matching Edge and every
// connection endpoint is a declared Node, then returns the immutable Region.
func (b *Builder) Build() (*Region, error) {
	if b.err != nil {
		return nil, b.err
	}
	for loc, tos := range b.conn {
		if _, ok := b.nodes[loc]; !ok {
			return nil, fmt.Errorf("region: connection from undeclared node %v", loc)
		}
		for to := range tos {
			if _, ok := b.nodes[to]; !ok {
				return nil, fmt.Errorf("region: connection to undeclared node %v", to)
			}
			lo, hi := loc, to
			if hi.Less(lo) {
				lo, hi = hi, lo
			}
			if _, ok := b.edges[edgeKey{lo, hi}]; !ok {
				return nil, fmt.Errorf("region: declared connection %v-%v has no edge", loc, to)
			}
		}
	}
	for loc, n := range b.nodes {
		conns := make([]Location, 0, len(b.conn[loc]))
		for to := range b.conn[loc] {
			conns = append(conns, to)
		}
		sort.Slice(conns, func(i, j int) bool { return conns[i].Less(conns[j]) })
		n.connections = conns
	}
	return &Region{nodes: b.nodes, edges: b.edges}, nil
}
