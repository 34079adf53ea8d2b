// Package order defines the ConfirmedOrder data type shared by the
// dispatcher, occupancy model, and raters.
package order

import (
	"fmt"

	"github.com/google/uuid"

	"fleetsim/internal/region"
)

// TickInterval is an inclusive delivery window [Start, End].
type TickInterval struct {
	Start, End int
}

// TicksOff is how many ticks the arrival tick lies outside the window
// (before Start or after End); never negative, zero if the arrival falls
// inside the window.
func TicksOff(w TickInterval, arrivalTick int) int {
	off := 0
	if w.Start > arrivalTick {
		off += w.Start - arrivalTick
	}
	if arrivalTick > w.End {
		off += arrivalTick - w.End
	}
	return off
}

// ConfirmedOrder is a single delivery request: a target location, the owning
// restaurant, a delivery window, line items, and a weight. ActualDeliveryTick
// is assigned exactly once, on delivery.
type ConfirmedOrder struct {
	ID         uuid.UUID
	Target     region.Location
	Restaurant region.Location
	Window     TickInterval
	Items      []string
	Weight     float64

	actualDeliveryTick *int
}

// New constructs a ConfirmedOrder. Weight must be positive and Window.Start
// must not exceed Window.End.
func New(id uuid.UUID, target, restaurant region.Location, window TickInterval, items []string, weight float64) (*ConfirmedOrder, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("order: weight must be positive, got %v", weight)
	}
	if window.Start > window.End {
		return nil, fmt.Errorf("order: window start %d after end %d", window.Start, window.End)
	}
	return &ConfirmedOrder{
		ID:         id,
		Target:     target,
		Restaurant: restaurant,
		Window:     window,
		Items:      append([]string(nil), items...),
		Weight:     weight,
	}, nil
}

// Delivered reports whether the order has already been delivered.
func (o *ConfirmedOrder) Delivered() bool {
	return o.actualDeliveryTick != nil
}

// ActualDeliveryTick returns the tick the order was delivered at, if any.
func (o *ConfirmedOrder) ActualDeliveryTick() (int, bool) {
	if o.actualDeliveryTick == nil {
		return 0, false
	}
	return *o.actualDeliveryTick, true
}

// MarkDelivered stamps the delivery tick. An order may be delivered exactly
// once: a second call returns an error and leaves the first tick in place.
func (o *ConfirmedOrder) MarkDelivered(tick int) error {
	if o.actualDeliveryTick != nil {
		return fmt.Errorf("order: %s already delivered at tick %d, cannot redeliver at %d", o.ID, *o.actualDeliveryTick, tick)
	}
	o.actualDeliveryTick = &tick
	return nil
}
