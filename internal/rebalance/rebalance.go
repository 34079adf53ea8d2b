// Package rebalance implements the fleet-wide idle-vehicle redistribution
// that runs once after every dispatcher has ticked: compute a per-entity
// target, then move idle vehicles into under-target dispatchers from donor
// dispatchers that are themselves below target. A dispatcher at or above
// target never donates.
package rebalance

import (
	"fleetsim/internal/dispatch"
)

// Rebalancer redistributes idle vehicles across every registered
// Dispatcher, using the donor rule described on Rebalance.
type Rebalancer struct {
	registry *dispatch.Registry
}

// New builds a Rebalancer over registry.
func New(registry *dispatch.Registry) *Rebalancer {
	return &Rebalancer{registry: registry}
}

// Rebalance computes target = floor(totalIdleVehicles / numRestaurants)
// and, for each dispatcher short of target, repeatedly migrates one idle
// vehicle from any other dispatcher whose totalAvailable < target — a
// donor must itself be under target to qualify, preserved as written. No
// dispatcher receives more than its own initial deficit in a single call.
func (r *Rebalancer) Rebalance(tick int) {
	dispatchers := r.registry.Dispatchers()
	if len(dispatchers) == 0 {
		return
	}

	totalIdle := 0
	for _, d := range dispatchers {
		totalIdle += len(d.IdleVehicleIDs())
	}
	target := totalIdle / len(dispatchers)

	for _, recipient := range dispatchers {
		deficit := target - recipient.TotalAvailable()
		for deficit > 0 {
			donor, vehID, ok := r.findDonor(dispatchers, recipient, target)
			if !ok {
				break
			}
			r.migrate(donor, recipient, vehID, tick)
			deficit--
		}
	}
}

// findDonor returns the first dispatcher (in registry order, excluding
// recipient) with an idle vehicle to give up whose totalAvailable < target
// — see the doc comment on Rebalance for the preserved-literal
// condition this implements.
func (r *Rebalancer) findDonor(dispatchers []*dispatch.Dispatcher, recipient *dispatch.Dispatcher, target int) (*dispatch.Dispatcher, int, bool) {
	for _, donor := range dispatchers {
		if donor == recipient {
			continue
		}
		if donor.TotalAvailable() >= target {
			continue
		}
		idle := donor.IdleVehicleIDs()
		if len(idle) == 0 {
			continue
		}
		return donor, idle[0], true
	}
	return nil, 0, false
}

// migrate moves the vehicle identified by vehID from donor to recipient:
// drop it from the donor's planned-route set, queue it toward the
// recipient's restaurant, and record it as expected there. The vehicle
// only rejoins a dispatcher's planned-route set once it actually arrives
// and the service layer calls addVehicle in response to its
// ArrivedAtRestaurantEvent.
func (r *Rebalancer) migrate(donor, recipient *dispatch.Dispatcher, vehID, tick int) {
	v, ok := donor.Vehicle(vehID)
	if !ok {
		return
	}
	if err := v.MoveQueued(recipient.Restaurant(), nil); err != nil {
		return
	}
	donor.RemoveVehicle(vehID)
	recipient.AddQueuedVehicle(v)
}
