// Package pathing computes shortest paths over a region.Region using edge
// durations as weights, via a heap-backed Dijkstra priority queue
// generalized from unweighted jump-counting to weighted edge durations and
// from single-target lookups to point-to-point and all-targets-from-source
// queries. The all-paths computation is memoized behind a
// singleflight.Group so concurrent cache fills for the same source
// coalesce into one computation.
package pathing

import (
	"container/heap"
	"sync"

	"golang.org/x/sync/singleflight"

	"fleetsim/internal/region"
)

// pathTree maps every location reachable from a fixed source to the node
// sequence strictly after the source, ending at that location.
type pathTree map[region.Location][]*region.Node

// Calculator is a region-bound shortest-path service. Safe for concurrent
// use; the per-source result is computed once and cached.
type Calculator struct {
	region *region.Region

	mu    sync.RWMutex
	cache map[region.Location]pathTree
	group singleflight.Group
}

// New builds a Calculator over r. r is assumed immutable for the lifetime
// of the Calculator (Region has no mutation API once built).
func New(r *region.Region) *Calculator {
	return &Calculator{
		region: r,
		cache:  make(map[region.Location]pathTree),
	}
}

// Path returns the sequence of nodes strictly after from, ending at to. An
// unreachable or identical from/to pair returns an empty (nil) slice, never
// an error — callers treat that as "no valid insertion".
func (c *Calculator) Path(from, to region.Location) []*region.Node {
	if from == to {
		return nil
	}
	return c.AllPathsFrom(from)[to]
}

// AllPathsFrom returns, for every node reachable from source, the node
// sequence strictly after source ending at that node.
func (c *Calculator) AllPathsFrom(source region.Location) map[region.Location][]*region.Node {
	c.mu.RLock()
	if tree, ok := c.cache[source]; ok {
		c.mu.RUnlock()
		return tree
	}
	c.mu.RUnlock()

	// Coalesce concurrent cache misses for the same source into a single
	// Dijkstra run.
	v, _, _ := c.group.Do(source.String(), func() (interface{}, error) {
		c.mu.RLock()
		if tree, ok := c.cache[source]; ok {
			c.mu.RUnlock()
			return tree, nil
		}
		c.mu.RUnlock()

		tree := c.computeAllPathsFrom(source)

		c.mu.Lock()
		c.cache[source] = tree
		c.mu.Unlock()
		return tree, nil
	})
	return v.(pathTree)
}

// PathDuration sums edge durations along Path(from, to). Returns 0 for an
// unreachable or identical pair.
func (c *Calculator) PathDuration(from, to region.Location) int {
	path := c.Path(from, to)
	if len(path) == 0 {
		return 0
	}
	total := 0
	prev := from
	for _, n := range path {
		e, ok := c.region.EdgeBetween(prev, n.Loc)
		if !ok {
			return total
		}
		total += e.Duration
		prev = n.Loc
	}
	return total
}

type heapEntry struct {
	loc  region.Location
	dist int
}

// priorityQueue is a container/heap min-heap keyed on dist, with Location
// added as a secondary sort key so that distance ties are broken
// deterministically regardless of push order.
type priorityQueue []heapEntry

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].loc.Less(pq[j].loc)
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(heapEntry))
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

func (c *Calculator) computeAllPathsFrom(source region.Location) pathTree {
	dist := map[region.Location]int{source: 0}
	prev := map[region.Location]region.Location{}
	visited := map[region.Location]bool{}

	pq := &priorityQueue{{loc: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(heapEntry)
		if visited[item.loc] {
			continue
		}
		visited[item.loc] = true

		node, ok := c.region.NodeAt(item.loc)
		if !ok {
			continue
		}
		for _, nb := range node.Connections() {
			edge, ok := c.region.EdgeBetween(item.loc, nb)
			if !ok {
				continue
			}
			nd := item.dist + edge.Duration
			if d, seen := dist[nb]; !seen || nd < d {
				dist[nb] = nd
				prev[nb] = item.loc
				heap.Push(pq, heapEntry{loc: nb, dist: nd})
			}
		}
	}

	tree := make(pathTree, len(dist))
	for loc := range dist {
		if loc == source {
			continue
		}
		var seq []region.Location
		for cur := loc; cur != source; cur = prev[cur] {
			seq = append(seq, cur)
		}
		for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
		nodes := make([]*region.Node, len(seq))
		for i, l := range seq {
			nodes[i], _ = c.region.NodeAt(l)
		}
		tree[loc] = nodes
	}
	return tree
}
