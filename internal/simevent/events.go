// Package simevent holds the event value types emitted by the vehicle
// manager over the course of a tick and consumed by dispatchers and raters.
package simevent

import (
	"fleetsim/internal/order"
	"fleetsim/internal/region"
)

// Event is implemented by every simulation event. It carries no behavior;
// the marker method exists only to close the set of valid event types.
type Event interface {
	isEvent()
}

// Spawn is emitted the first tick a vehicle enters the simulation.
type Spawn struct {
	VehicleID int
	Node      region.Location
	Tick      int
}

// ArrivedAtNode is emitted whenever a vehicle completes an edge traversal
// and enters a node.
type ArrivedAtNode struct {
	VehicleID        int
	Node             region.Location
	LastEdgeDuration int
	Tick             int
}

// ArrivedAtRestaurant is emitted in addition to ArrivedAtNode when the node
// entered is a Restaurant.
type ArrivedAtRestaurant struct {
	VehicleID        int
	Node             region.Location
	LastEdgeDuration int
	Tick             int
}

// OrderReceived is emitted the first time an order is loaded onto a vehicle.
type OrderReceived struct {
	Order *order.ConfirmedOrder
	Tick  int
}

// DeliverOrder is emitted when an order is delivered at a neighborhood.
type DeliverOrder struct {
	Order *order.ConfirmedOrder
	Tick  int
}

func (Spawn) isEvent()               {}
func (ArrivedAtNode) isEvent()       {}
func (ArrivedAtRestaurant) isEvent() {}
func (OrderReceived) isEvent()       {}
func (DeliverOrder) isEvent()        {}
