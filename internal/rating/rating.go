// Package rating implements the three rating collaborators: small
// stateful scorers, each fed the event list from every tick and reducible
// to a score in [0,1] on demand.
package rating

import (
	"fmt"

	"github.com/google/uuid"

	"fleetsim/internal/order"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
)

// Rater is fed every tick's event list and reduces its observations to a
// score in [0,1] on demand.
type Rater interface {
	Observe(events []simevent.Event)
	Score() float64
}

// DistanceQuerier is the subset of pathing.Calculator TravelDistance needs.
type DistanceQuerier interface {
	PathDuration(from, to region.Location) int
}

func validateFactor(name string, f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("rating: %s factor %v outside [0,1]", name, f)
	}
	return nil
}

// AmountDelivered scores the fraction of received orders that were
// delivered, tolerant of up to a (1-factor) fraction left undelivered.
type AmountDelivered struct {
	factor    float64
	received  int
	delivered int
}

// NewAmountDelivered builds an AmountDelivered rater. factor must be in
// [0,1].
func NewAmountDelivered(factor float64) (*AmountDelivered, error) {
	if err := validateFactor("AmountDelivered", factor); err != nil {
		return nil, err
	}
	return &AmountDelivered{factor: factor}, nil
}

func (r *AmountDelivered) Observe(events []simevent.Event) {
	for _, e := range events {
		switch e.(type) {
		case simevent.OrderReceived:
			r.received++
		case simevent.DeliverOrder:
			r.delivered++
		}
	}
}

// Score returns 1 - undelivered/(total*(1-factor)), clamped to 0 when that
// ratio exceeds 1.
func (r *AmountDelivered) Score() float64 {
	if r.received == 0 {
		return 1
	}
	denom := float64(r.received) * (1 - r.factor)
	if denom <= 0 {
		if r.received > r.delivered {
			return 0
		}
		return 1
	}
	ratio := float64(r.received-r.delivered) / denom
	if ratio > 1 {
		return 0
	}
	return 1 - ratio
}

// InTime scores how close deliveries landed to their windows. Orders that
// never reach delivery contribute the maximum penalty; Score always
// reflects the live delivery state of every order seen so far, since
// ConfirmedOrder.ActualDeliveryTick can change between one Observe call and
// the next Score call.
type InTime struct {
	maxTicksOff int
	ignored     int
	orders      map[uuid.UUID]*order.ConfirmedOrder
}

// NewInTime builds an InTime rater. maxTicksOff caps the penalty per order;
// ignored is the number of off-window ticks forgiven before they count.
func NewInTime(maxTicksOff, ignored int) *InTime {
	return &InTime{maxTicksOff: maxTicksOff, ignored: ignored, orders: make(map[uuid.UUID]*order.ConfirmedOrder)}
}

func (r *InTime) Observe(events []simevent.Event) {
	for _, e := range events {
		if rec, ok := e.(simevent.OrderReceived); ok {
			r.orders[rec.Order.ID] = rec.Order
		}
	}
}

func (r *InTime) Score() float64 {
	if len(r.orders) == 0 {
		return 1
	}
	total := 0
	for _, o := range r.orders {
		ticksOff := r.maxTicksOff
		if actual, ok := o.ActualDeliveryTick(); ok {
			raw := order.TicksOff(o.Window, actual) - r.ignored
			if raw < 0 {
				raw = 0
			}
			if raw > r.maxTicksOff {
				raw = r.maxTicksOff
			}
			ticksOff = raw
		}
		total += ticksOff
	}
	return 1 - float64(total)/float64(r.maxTicksOff*len(r.orders))
}

// TravelDistance scores fleet efficiency: the cheapest possible round trip
// per delivered order (restaurant -> target, doubled, as if the vehicle had
// gone and immediately returned) against the edges actually traversed
// fleet-wide. Only ArrivedAtNode feeds actual — ArrivedAtRestaurant is
// co-emitted for the same arrival and must not be counted twice.
type TravelDistance struct {
	calc   DistanceQuerier
	factor float64
	worst  int
	actual int
}

// NewTravelDistance builds a TravelDistance rater. factor must be in (0,1].
func NewTravelDistance(calc DistanceQuerier, factor float64) (*TravelDistance, error) {
	if factor <= 0 || factor > 1 {
		return nil, fmt.Errorf("rating: TravelDistance factor %v outside (0,1]", factor)
	}
	return &TravelDistance{calc: calc, factor: factor}, nil
}

func (r *TravelDistance) Observe(events []simevent.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case simevent.DeliverOrder:
			r.worst += 2 * r.calc.PathDuration(ev.Order.Restaurant, ev.Order.Target)
		case simevent.ArrivedAtNode:
			r.actual += ev.LastEdgeDuration
		}
	}
}

// Score returns 1 - actual/(worst*factor), clamped to [0,1]: the Rater
// contract (§6) promises a score in that range even though a fleet that
// drives far more than its worst-case round trips would otherwise drive
// the raw formula negative.
func (r *TravelDistance) Score() float64 {
	if r.worst == 0 {
		return 1
	}
	score := 1 - float64(r.actual)/(float64(r.worst)*r.factor)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
