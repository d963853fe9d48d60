package control

import "errors"

// Fault identifies the last per-tick fault for telemetry. Per-tick
// faults degrade the output to a safe frame; they never panic and are
// never fatal. Only configuration errors abort startup.
type Fault uint8

const (
	FaultNone Fault = iota
	// FaultSensor: an ADC or reference reading was outside the
	// physically valid range for the channel.
	FaultSensor
	// FaultEncoder: the encoder count jumped further in one tick than
	// the configured mechanical limit allows.
	FaultEncoder
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultSensor:
		return "sensor"
	case FaultEncoder:
		return "encoder"
	}
	return "unknown"
}

var (
	// ErrSensorFault is returned when an analog reading is outside the
	// physically valid range (reference collapsed, raw above full scale).
	ErrSensorFault = errors.New("analog reading out of range")

	// ErrEncoderFault is returned when the per-tick encoder delta
	// exceeds the plausibility bound for the mechanics.
	ErrEncoderFault = errors.New("implausible encoder jump")
)
