// Package ordergen implements the external order-generator collaborator:
// a pure function of tick producing the confirmed orders that arrive that
// tick, drawn from a package-owned *rand.Rand seeded once at construction
// (never the global generator).
package ordergen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"fleetsim/internal/order"
	"fleetsim/internal/region"
)

// Params configures a FridayEveningGenerator.
type Params struct {
	Seed       int64
	LastTick   int
	OrderCount int
	StdDev     float64
	MaxWeight  float64
	// WindowTicks is the width of each generated order's delivery window,
	// centered on the sampled delivery tick.
	WindowTicks int
}

// FridayEveningGenerator serves the orders of one pre-sampled run: every
// order's delivery tick, restaurant, neighborhood, menu item, and weight
// are drawn once at construction from Params' seeded rng, so GenerateOrders
// is a genuinely pure lookup thereafter — repeated calls with the same tick
// always return the same orders.
type FridayEveningGenerator struct {
	lastTick int
	byTick   map[int][]*order.ConfirmedOrder
}

// New builds a FridayEveningGenerator over r's restaurants and
// neighborhoods using p, sampling p.OrderCount orders' delivery ticks from
// a truncated Normal(0.5*LastTick, StdDev) distribution. Returns an error
// if r has no restaurant or no neighborhood to draw from.
func New(r *region.Region, p Params) (*FridayEveningGenerator, error) {
	var restaurants, neighborhoods []*region.Node
	for _, n := range r.Nodes() {
		switch {
		case n.IsRestaurant():
			restaurants = append(restaurants, n)
		case n.IsNeighborhood():
			neighborhoods = append(neighborhoods, n)
		}
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("ordergen: region has no restaurants")
	}
	if len(neighborhoods) == 0 {
		return nil, fmt.Errorf("ordergen: region has no neighborhoods")
	}
	if p.WindowTicks <= 0 {
		p.WindowTicks = 10
	}

	rng := rand.New(rand.NewSource(p.Seed))
	mean := 0.5 * float64(p.LastTick)

	g := &FridayEveningGenerator{lastTick: p.LastTick, byTick: make(map[int][]*order.ConfirmedOrder)}
	for i := 0; i < p.OrderCount; i++ {
		deliveryTick := truncatedNormalTick(rng, mean, p.StdDev, p.LastTick)

		restaurant := restaurants[rng.Intn(len(restaurants))]
		neighborhood := neighborhoods[rng.Intn(len(neighborhoods))]
		weight := rng.Float64() * p.MaxWeight
		if weight <= 0 {
			weight = p.MaxWeight
		}

		var items []string
		if len(restaurant.Menu) > 0 {
			items = []string{restaurant.Menu[rng.Intn(len(restaurant.Menu))]}
		}

		half := p.WindowTicks / 2
		window := order.TickInterval{Start: maxInt(0, deliveryTick-half), End: deliveryTick + (p.WindowTicks - half)}

		o, err := order.New(uuid.New(), neighborhood.Loc, restaurant.Loc, window, items, weight)
		if err != nil {
			return nil, err
		}
		g.byTick[deliveryTick] = append(g.byTick[deliveryTick], o)
	}
	return g, nil
}

// GenerateOrders returns the orders whose sampled delivery tick equals
// tick. tick must not be negative.
func (g *FridayEveningGenerator) GenerateOrders(tick int) ([]*order.ConfirmedOrder, error) {
	if tick < 0 {
		return nil, fmt.Errorf("ordergen: tick %d out of bounds", tick)
	}
	out := make([]*order.ConfirmedOrder, len(g.byTick[tick]))
	copy(out, g.byTick[tick])
	return out, nil
}

// truncatedNormalTick samples from a Normal(mean, stdDev) distribution,
// resampling until the result falls inside [0, lastTick] (the
// "truncated" part of the generator's name), then rounds to the nearest
// tick.
func truncatedNormalTick(rng *rand.Rand, mean, stdDev float64, lastTick int) int {
	if stdDev <= 0 {
		return int(math.Round(mean))
	}
	for {
		v := rng.NormFloat64()*stdDev + mean
		if v >= 0 && v <= float64(lastTick) {
			return int(math.Round(v))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
