package control

// PID + feed-forward regulators.
//
// Two numeric realizations share one contract: the fixed-point form is
// fully deterministic (no rounding drift across ticks) and is the
// default on targets without an FPU; the float form trades that for
// dynamic range. Gains are Q15 in both (32768 == 1.0) and the tick
// period is folded into the I and D gains, so Update is called exactly
// once per control tick.

// Gains holds the Q15 controller gains for one axis.
type Gains struct {
	P  int32 `json:"p"`
	I  int32 `json:"i"`
	D  int32 `json:"d"`
	FF int32 `json:"ff"`
}

// Regulator is the per-tick control-law contract. Update consumes the
// setpoint and measurement in the same unit and returns the command,
// silently clamped to the configured output limit. Reset clears the
// integrator and derivative memory so a re-enabled axis starts fresh.
type Regulator interface {
	Update(setpoint, measured, feedforward int32) int32
	Reset()
}

// PIDFixed is the integer realization. The integrator accumulates
// Ki-scaled error with 15 fractional bits and only while the unclamped
// output is inside the limit (anti-windup); saturation is silent.
type PIDFixed struct {
	gains  Gains
	limit  int32
	wrap   bool
	integ  int64 // Ki*error accumulator, Q15
	prev   int32 // previous error for the derivative
	primed bool
}

// NewPIDFixed returns a fixed-point regulator clamped to ±limit.
// wrapAware selects shortest-path error for angular loops.
func NewPIDFixed(g Gains, limit int32, wrapAware bool) *PIDFixed {
	return &PIDFixed{gains: g, limit: limit, wrap: wrapAware}
}

func (c *PIDFixed) Update(setpoint, measured, feedforward int32) int32 {
	err := setpoint - measured
	if c.wrap {
		err = WrapDiff(uint16(setpoint), uint16(measured))
	}
	var derr int32
	if c.primed {
		derr = err - c.prev
	}
	c.prev = err
	c.primed = true

	raw := int64(c.gains.P)*int64(err) +
		c.integ +
		int64(c.gains.D)*int64(derr) +
		int64(c.gains.FF)*int64(feedforward)
	out := raw >> 15

	lo, hi := int64(-c.limit), int64(c.limit)
	if out > hi {
		return int32(hi)
	}
	if out < lo {
		return int32(lo)
	}
	// Output is inside the limit: safe to keep integrating.
	c.integ += int64(c.gains.I) * int64(err)
	return int32(out)
}

func (c *PIDFixed) Reset() {
	c.integ = 0
	c.prev = 0
	c.primed = false
}

// PIDFloat is the float32 realization of the same contract.
type PIDFloat struct {
	kp, ki, kd, kff float32
	limit           float32
	wrap            bool
	integ           float32
	prev            float32
	primed          bool
}

// NewPIDFloat returns a float regulator with the same Q15 gain inputs
// as the fixed form, converted once at construction.
func NewPIDFloat(g Gains, limit int32, wrapAware bool) *PIDFloat {
	const q = float32(Q15)
	return &PIDFloat{
		kp:    float32(g.P) / q,
		ki:    float32(g.I) / q,
		kd:    float32(g.D) / q,
		kff:   float32(g.FF) / q,
		limit: float32(limit),
		wrap:  wrapAware,
	}
}

func (c *PIDFloat) Update(setpoint, measured, feedforward int32) int32 {
	ierr := setpoint - measured
	if c.wrap {
		ierr = WrapDiff(uint16(setpoint), uint16(measured))
	}
	err := float32(ierr)
	var derr float32
	if c.primed {
		derr = err - c.prev
	}
	c.prev = err
	c.primed = true

	raw := c.kp*err + c.integ + c.kd*derr + c.kff*float32(feedforward)
	if raw > c.limit {
		return int32(c.limit)
	}
	if raw < -c.limit {
		return int32(-c.limit)
	}
	c.integ += c.ki * err
	return int32(raw)
}

func (c *PIDFloat) Reset() {
	c.integ = 0
	c.prev = 0
	c.primed = false
}
