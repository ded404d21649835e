// Package source provides host side edge sources for ws8610.Receiver.
//
// A source implements both ws8610.Interrupt and ws8610.Clock, and runs as a
// framework.Runnable producing edges in its own goroutine:
//
//   - replay: recorded pulse durations on a virtual clock
//   - sim: synthesized transmissions of virtual sensors
//   - serial: durations forwarded by a microcontroller over UART
//   - gpio: a Linux GPIO line
package source
