// Package service wires the region, occupancy model, fleet manager,
// restaurant dispatchers, rebalancer, order generator, and raters into a
// single per-tick entry point: order generation → per-dispatcher tick →
// rebalance → per-vehicle move. Every collaborator is constructed once,
// then one loop drives them tick by tick.
package service

import (
	"fmt"

	"fleetsim/internal/dispatch"
	"fleetsim/internal/fleet"
	"fleetsim/internal/occupancy"
	"fleetsim/internal/order"
	"fleetsim/internal/rating"
	"fleetsim/internal/rebalance"
	"fleetsim/internal/region"
	"fleetsim/internal/simevent"
)

// OrderGenerator is the external order-generator contract.
type OrderGenerator interface {
	GenerateOrders(tick int) ([]*order.ConfirmedOrder, error)
}

// Service is the tick-driver: generate orders, let every dispatcher plan,
// rebalance idle vehicles, then advance the fleet, feeding the resulting
// events to every rater.
type Service struct {
	region           *region.Region
	occ              *occupancy.Model
	fleet            *fleet.Manager
	registry         *dispatch.Registry
	rebalancer       *rebalance.Rebalancer
	rebalanceEnabled bool
	generator        OrderGenerator
	raters           []rating.Rater
}

// New builds a Service over its already-constructed collaborators.
func New(r *region.Region, occ *occupancy.Model, fm *fleet.Manager, registry *dispatch.Registry,
	rebalanceEnabled bool, generator OrderGenerator, raters ...rating.Rater) *Service {
	return &Service{
		region:           r,
		occ:              occ,
		fleet:            fm,
		registry:         registry,
		rebalancer:       rebalance.New(registry),
		rebalanceEnabled: rebalanceEnabled,
		generator:        generator,
		raters:           raters,
	}
}

// Tick runs exactly one simulation tick and returns its event list in
// emission order.
func (s *Service) Tick(tick int) ([]simevent.Event, error) {
	newOrders, err := s.generator.GenerateOrders(tick)
	if err != nil {
		return nil, fmt.Errorf("service: tick %d: %w", tick, err)
	}

	byRestaurant := make(map[region.Location][]*order.ConfirmedOrder, len(newOrders))
	for _, o := range newOrders {
		byRestaurant[o.Restaurant] = append(byRestaurant[o.Restaurant], o)
	}
	var events []simevent.Event
	for _, d := range s.registry.Dispatchers() {
		events = append(events, d.Tick(tick, byRestaurant[d.Restaurant()])...)
	}

	if s.rebalanceEnabled {
		s.rebalancer.Rebalance(tick)
	}

	events = append(events, s.fleet.Tick(tick)...)
	s.routeArrivals(events)
	for _, r := range s.raters {
		r.Observe(events)
	}
	return events, nil
}

// routeArrivals calls AddVehicle on the dispatcher managing the restaurant
// a vehicle just spawned at, or has come to rest at (its move queue is
// empty). A vehicle merely passing through a restaurant mid-route still
// emits ArrivedAtRestaurant but must not be re-homed there while it is
// still mid-flight with a live move queue and loaded orders.
func (s *Service) routeArrivals(events []simevent.Event) {
	for _, e := range events {
		var vehicleID int
		var loc region.Location
		terminal := false
		switch ev := e.(type) {
		case simevent.Spawn:
			vehicleID, loc, terminal = ev.VehicleID, ev.Node, true
		case simevent.ArrivedAtRestaurant:
			vehicleID, loc = ev.VehicleID, ev.Node
		default:
			continue
		}
		v, ok := s.fleet.VehicleByID(vehicleID)
		if !ok {
			continue
		}
		if !terminal && !v.Idle() {
			continue
		}
		d, ok := s.registry.At(loc)
		if !ok {
			continue
		}
		d.AddVehicle(v)
	}
}

// Reset clears vehicle state, dispatcher state, and pending orders across
// every collaborator, without altering the Region.
func (s *Service) Reset(tick int) {
	s.occ.Reset()
	s.fleet.Reset(tick)
	for _, d := range s.registry.Dispatchers() {
		d.Reset()
	}
}
