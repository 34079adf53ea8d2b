package order

import (
	"testing"

	"github.com/google/uuid"

	"fleetsim/internal/region"
)

func TestNew_RejectsNonPositiveWeight(t *testing.T) {
	_, err := New(uuid.New(), region.Location{}, region.Location{}, TickInterval{0, 5}, nil, 0)
	if err == nil {
		t.Fatal("expected error for zero weight")
	}
}

func TestNew_RejectsInvertedWindow(t *testing.T) {
	_, err := New(uuid.New(), region.Location{}, region.Location{}, TickInterval{5, 0}, nil, 1)
	if err == nil {
		t.Fatal("expected error for start > end")
	}
}

func TestMarkDelivered_OnceOnly(t *testing.T) {
	o, err := New(uuid.New(), region.Location{X: 1, Y: 0}, region.Location{X: 0, Y: 0}, TickInterval{0, 10}, []string{"noodles"}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if o.Delivered() {
		t.Fatal("new order should not be delivered")
	}
	if err := o.MarkDelivered(3); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if tick, ok := o.ActualDeliveryTick(); !ok || tick != 3 {
		t.Fatalf("ActualDeliveryTick() = %d, %v, want 3, true", tick, ok)
	}
	if err := o.MarkDelivered(4); err == nil {
		t.Fatal("expected error on second delivery")
	}
}

func TestTicksOff(t *testing.T) {
	w := TickInterval{Start: 10, End: 20}
	cases := []struct {
		tick int
		want int
	}{
		{5, 5},
		{10, 0},
		{15, 0},
		{20, 0},
		{25, 5},
	}
	for _, c := range cases {
		if got := TicksOff(w, c.tick); got != c.want {
			t.Errorf("TicksOff(%v, %d) = %d, want %d", w, c.tick, got, c.want)
		}
	}
}
