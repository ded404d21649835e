//go:build tinygo

package ws8610

import "machine"

// Pin binds the receiver to a GPIO pin change interrupt.
type Pin struct {
	pin machine.Pin
}

// NewPin configures the pin as input.
func NewPin(pin machine.Pin) *Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return &Pin{pin: pin}
}

// Attach implements Interrupt.
func (p *Pin) Attach(handler func()) error {
	return p.pin.SetInterrupt(machine.PinToggle, func(machine.Pin) { handler() })
}

// Detach implements Interrupt.
func (p *Pin) Detach() error {
	return p.pin.SetInterrupt(machine.PinToggle, nil)
}

// NewPinReceiver creates a Receiver listening on a pin with default settings.
func NewPinReceiver(pin machine.Pin) *Receiver {
	return NewReceiver(NewPin(pin), NewMonotonicClock(), DefaultConfig())
}
