//go:build rp2040

package main

import (
	"errors"
	"machine"

	"godrive/control"
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// PhasePWM drives the four half-bridge inputs of the power stage.
//
// RP2040: GPIO pin N maps to:
//
//	Slice: (N >> 1) & 0x7  (divide by 2, mod 8)
//	Channel: N & 1          (even=A, odd=B)
//
// The four outputs start on an even GPIO so the bridge spans exactly two
// slices, both configured with the same period.
type PhasePWM struct {
	pins    [4]machine.Pin
	groups  [4]pwmPeripheral
	chans   [4]uint8
	maxDuty uint32
}

// NewPhasePWM configures four consecutive pins starting at first as the
// phase outputs. maxDuty is the full-scale value of a control.Frame entry;
// freqHz sets the PWM carrier frequency.
func NewPhasePWM(first machine.Pin, maxDuty uint32, freqHz uint32) (*PhasePWM, error) {
	if first&1 != 0 {
		return nil, errors.New("phase pins must start on an even GPIO")
	}
	if maxDuty == 0 || freqHz == 0 {
		return nil, errors.New("invalid PWM parameters")
	}

	d := &PhasePWM{maxDuty: maxDuty}
	period := uint64(1000000000) / uint64(freqHz)

	configured := make(map[uint8]pwmPeripheral)
	for i := 0; i < 4; i++ {
		pin := first + machine.Pin(i)
		sliceNum := uint8((uint32(pin) >> 1) & 0x7)

		pwm, ok := configured[sliceNum]
		if !ok {
			pwm = getPWMPeripheral(sliceNum)
			if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
				return nil, err
			}
			configured[sliceNum] = pwm
		}

		channel, err := pwm.Channel(pin)
		if err != nil {
			return nil, err
		}

		d.pins[i] = pin
		d.groups[i] = pwm
		d.chans[i] = channel
	}

	d.AllOff()
	return d, nil
}

// WriteFrame applies one commutation frame to the four outputs.
func (d *PhasePWM) WriteFrame(f control.Frame) {
	for i := 0; i < 4; i++ {
		v := uint32(f[i])
		if v > d.maxDuty {
			v = d.maxDuty
		}
		top := d.groups[i].Top()
		// Scale frame value (0..maxDuty) to hardware counts (0..top).
		d.groups[i].Set(d.chans[i], (v*top)/d.maxDuty)
	}
}

// AllOff drives every phase output low.
func (d *PhasePWM) AllOff() {
	for i := 0; i < 4; i++ {
		d.groups[i].Set(d.chans[i], 0)
	}
}

// getPWMPeripheral returns the PWM peripheral for a given slice number.
// RP2040 has 8 PWM slices: PWM0-PWM7. TinyGo exposes them as globals of
// the unexported *pwmGroup type, so they are returned via pwmPeripheral.
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		// Should never happen with proper masking
		return machine.PWM0
	}
}
