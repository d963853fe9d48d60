package control

// Analog signal conditioning: ratiometric normalization of raw ADC
// counts against the reference channel, bipolar current-sense
// conversion, and the filtered supply-voltage estimate that feeds the
// commutation limiting factor.

// minValidVRef is the floor below which the reference reading is
// treated as a wiring or reference-supply failure rather than noise.
const minValidVRef = 1 << 8

// normalizeSlack tolerates readings slightly above the reference
// before declaring the channel faulted (sensor offset and ADC noise).
const normalizeSlack = Q15 / 64

// Normalize scales a raw reading against the reference channel reading
// and returns a ratio in Q15 clamped to [0, 32768]. It returns
// ErrSensorFault when the reference has collapsed or the reading is
// meaningfully above it.
func Normalize(raw, vref uint16) (int32, error) {
	if vref < minValidVRef {
		return 0, ErrSensorFault
	}
	ratio := (int32(raw) << 15) / int32(vref)
	if ratio > Q15+normalizeSlack {
		return 0, ErrSensorFault
	}
	if ratio > Q15 {
		ratio = Q15
	}
	return ratio, nil
}

// BipolarCurrent converts a ratiometric reading from a current sensor
// centered at half the reference into a signed Q15 value, where ±32768
// is full scale in either direction.
func BipolarCurrent(raw, vref uint16) (int32, error) {
	ratio, err := Normalize(raw, vref)
	if err != nil {
		return 0, err
	}
	return (ratio - Q15/2) << 1, nil
}

// SupplyMonitor filters raw supply-voltage samples into a millivolt
// estimate. Negative artifacts from filter transients clamp to zero;
// the supply estimate is never negative.
type SupplyMonitor struct {
	lpf         LowPass
	fullScaleMV int32
}

// NewSupplyMonitor returns a monitor where fullScaleMV is the supply
// voltage corresponding to a full-scale ADC reading (divider included)
// and alpha is the Q15 smoothing factor of the noise filter.
func NewSupplyMonitor(alpha, fullScaleMV int32) *SupplyMonitor {
	return &SupplyMonitor{lpf: NewLowPass(alpha, false), fullScaleMV: fullScaleMV}
}

// Update consumes one raw sample and returns the filtered estimate in
// millivolts.
func (m *SupplyMonitor) Update(raw uint16) int32 {
	mv := int32((int64(raw) * int64(m.fullScaleMV)) >> 16)
	out := m.lpf.Step(mv)
	if out < 0 {
		return 0
	}
	return out
}

// MilliVolts returns the current estimate without consuming a sample.
func (m *SupplyMonitor) MilliVolts() int32 {
	out := m.lpf.Output()
	if out < 0 {
		return 0
	}
	return out
}

// Reset clears the filter state.
func (m *SupplyMonitor) Reset() {
	m.lpf.Reset()
}
