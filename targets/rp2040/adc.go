//go:build rp2040

package main

import (
	"machine"

	"godrive/control"
)

// railRef is the reference value reported in Sample.VRef. The current
// sensors on this board are ratiometric to the same 3.3V rail that feeds
// the converter, so the reference is full scale by construction: the
// 12-bit peripheral maximum widened to the 16-bit range Get() reports.
const railRef = 4095 << 4

// BoardSampler reads the three phase-current channels and the supply
// divider. ADC0..ADC2 carry the current sensor outputs, ADC3 the divided
// bus voltage.
type BoardSampler struct {
	current [3]machine.ADC
	supply  machine.ADC
}

func NewBoardSampler() (*BoardSampler, error) {
	machine.InitADC()

	s := &BoardSampler{
		current: [3]machine.ADC{
			{Pin: machine.ADC0},
			{Pin: machine.ADC1},
			{Pin: machine.ADC2},
		},
		supply: machine.ADC{Pin: machine.ADC3},
	}

	for i := range s.current {
		if err := s.current[i].Configure(machine.ADCConfig{}); err != nil {
			return nil, err
		}
	}
	if err := s.supply.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Sample captures one reading of every analog channel. The encoder angle
// and tick stamp are supplied by the caller so all fields describe the
// same instant as closely as the hardware allows.
func (s *BoardSampler) Sample(encoder uint16, ticks uint32) control.Sample {
	var out control.Sample
	out.Encoder = encoder
	out.Ticks = ticks
	for i := range s.current {
		// TinyGo ADC values are 16-bit top-justified regardless of the
		// peripheral's native resolution.
		out.Current[i] = s.current[i].Get()
	}
	out.Supply = s.supply.Get()
	out.VRef = railRef
	return out
}
