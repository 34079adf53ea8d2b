// Package simfault defines the fatal fault type used to signal invariant
// violations: abort-worthy conditions rather than recoverable business
// logic (a malformed edge, a vehicle on an unknown component, delivery of
// an order that was never received).
package simfault

import "fmt"

// Invariant is panicked, never returned, when a state the simulator
// guarantees never to reach is reached anyway.
type Invariant struct {
	Msg string
}

func (i Invariant) Error() string { return "invariant violation: " + i.Msg }

// Raise panics with an Invariant built from a formatted message.
func Raise(format string, args ...interface{}) {
	panic(Invariant{Msg: fmt.Sprintf(format, args...)})
}
