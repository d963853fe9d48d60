package control

// Drive is the per-axis control loop core: one Tick call per control
// period turns the latest sensor snapshot and a setpoint into a duty
// frame. Everything here is bounded time with no allocation, so the
// tick deadline is a property of the code, not a runtime condition.

import "strconv"

// Drive owns all per-axis state. It is driven by exactly one goroutine
// (or timer interrupt); the only concurrent access is the sample
// buffer handoff.
type Drive struct {
	cfg  Config
	mode Mode

	buf     SampleBuffer
	sel     *Selector
	tracker *Tracker
	speed   *Estimator
	angle   LowPass
	supply  *SupplyMonitor
	reg     Regulator

	polePairs uint32
	enabled   bool
	fault     Fault
	uvEvents  uint32
	prevSet   int64
	tick      uint32
}

// New builds a drive from a validated configuration. Configuration
// errors are fatal here, at startup, never mid-tick.
func New(cfg Config) (*Drive, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	motor, _ := cfg.MotorType()
	pattern, _ := cfg.Pattern()
	mode, _ := cfg.ControlMode()

	sel, err := NewSelector(motor, pattern, cfg.MaxDuty)
	if err != nil {
		return nil, err
	}

	d := &Drive{
		cfg:       cfg,
		mode:      mode,
		sel:       sel,
		tracker:   NewTracker(cfg.MaxDeltaPerTick),
		speed:     NewEstimator(cfg.SpeedDepth, cfg.TickHz),
		angle:     NewLowPass(cfg.Smoothing, true),
		supply:    NewSupplyMonitor(cfg.Smoothing, cfg.SupplyFullScaleMV),
		polePairs: uint32(cfg.PolePairs),
	}
	if cfg.FixedPoint {
		d.reg = NewPIDFixed(cfg.Gains, cfg.OutputLimitMV, false)
	} else {
		d.reg = NewPIDFloat(cfg.Gains, cfg.OutputLimitMV, false)
	}
	return d, nil
}

// Capture returns the sample handoff buffer for the acquisition path.
func (d *Drive) Capture() *SampleBuffer {
	return &d.buf
}

// SetEnabled switches the axis between driving and safe state. On
// disable the regulator, speed window and angle filter are reset (not
// bypassed), so re-enabling never reuses a stale integrator.
func (d *Drive) SetEnabled(on bool) {
	if !on {
		d.reg.Reset()
		d.speed.Reset()
		d.angle.Reset()
	}
	d.enabled = on
}

// Enabled reports whether the axis is driving.
func (d *Drive) Enabled() bool {
	return d.enabled
}

// LastFault returns the most recent fault kind; sticky until cleared.
func (d *Drive) LastFault() Fault {
	return d.fault
}

// ClearFault resets the telemetry fault latch.
func (d *Drive) ClearFault() {
	d.fault = FaultNone
}

// UndervoltageEvents counts ticks where the supply could not realize
// the requested vector and the limiting factor engaged. Telemetry
// only; limiting is not an error.
func (d *Drive) UndervoltageEvents() uint32 {
	return d.uvEvents
}

// Position returns the unwrapped shaft position in counts.
func (d *Drive) Position() int64 {
	return d.tracker.Position()
}

// Speed returns the current velocity estimate in counts per second.
func (d *Drive) Speed() int32 {
	return d.speed.Estimate()
}

// SetMotor re-resolves the commutation law between ticks. The active
// channel permutation is carried over, so motor and pattern changes
// compose in either order.
func (d *Drive) SetMotor(motor MotorType) error {
	sel, err := NewSelector(motor, d.sel.Pattern(), d.cfg.MaxDuty)
	if err != nil {
		return err
	}
	d.sel = sel
	return nil
}

// SetPhasePattern re-resolves the channel permutation between ticks.
func (d *Drive) SetPhasePattern(pattern PhasePattern) error {
	sel, err := NewSelector(d.sel.Motor(), pattern, d.cfg.MaxDuty)
	if err != nil {
		return err
	}
	d.sel = sel
	return nil
}

// Tick runs one control period: snapshot, conditioning and tracking,
// estimation, control law, commutation. On a per-tick fault it
// records the fault kind, returns the error and an all-zero safe
// frame; the caller chooses between holding and stopping.
func (d *Drive) Tick(setpoint int64) (Frame, error) {
	d.tick++
	s := d.buf.Snapshot()

	if !d.enabled {
		d.prevSet = setpoint
		// Conditioning and tracking keep running while disabled so
		// the unwrapped position follows shaft motion larger than
		// the per-tick wrap bound; only the control and commutation
		// stages are skipped. Invalid samples (startup, collapsed
		// reference) are skipped without faulting since the output
		// is already safe.
		if s.VRef >= minValidVRef {
			d.supply.Update(s.Supply)
			if angle, err := d.tracker.Update(s.Encoder); err == nil {
				d.angle.Step(int32(angle.Angle))
				d.speed.Push(d.tracker.Position(), s.Ticks)
			}
		}
		return Frame{}, nil
	}

	supplyMV := d.supply.Update(s.Supply)
	if s.VRef < minValidVRef {
		d.fault = FaultSensor
		return Frame{}, ErrSensorFault
	}

	angle, err := d.tracker.Update(s.Encoder)
	if err != nil {
		d.fault = FaultEncoder
		return Frame{}, err
	}
	filtered := uint16(d.angle.Step(int32(angle.Angle)))
	d.speed.Push(d.tracker.Position(), s.Ticks)
	elAngle := uint16(uint32(filtered) * d.polePairs)

	// Feed-forward input is the per-tick setpoint rate.
	ff := sat32(setpoint - d.prevSet)
	d.prevSet = setpoint

	var outMV int32
	switch d.mode {
	case ModePosition:
		outMV = d.reg.Update(sat32(setpoint-d.tracker.Position()), 0, ff)
	case ModeSpeed:
		outMV = d.reg.Update(sat32(setpoint), d.speed.Estimate(), ff)
	case ModeTorque:
		iq, ierr := d.measureQCurrent(s, elAngle)
		if ierr != nil {
			d.fault = FaultSensor
			return Frame{}, ierr
		}
		outMV = d.reg.Update(sat32(setpoint), iq, ff)
	}

	amp, limited := AmplitudeForVoltage(outMV, supplyMV)
	if limited {
		d.uvEvents++
		if debugEnabled {
			Debug("undervoltage limiting, supply_mv=" + strconv.Itoa(int(supplyMV)))
		}
	}

	return d.sel.Commute(d.command(amp, elAngle)), nil
}

// command orients the voltage vector for the active motor type: DC
// uses the signed amplitude directly, stepper and BLDC lead the rotor
// by a quarter electrical turn in the commanded direction.
func (d *Drive) command(amp int16, elAngle uint16) Command {
	if d.sel.Motor() == MotorDC {
		return Command{Amplitude: amp}
	}
	if amp < 0 {
		return Command{Amplitude: -amp, ElAngle: elAngle - QuarterTurn}
	}
	return Command{Amplitude: amp, ElAngle: elAngle + QuarterTurn}
}

// measureQCurrent conditions the phase-current channels and projects
// them onto the rotor q axis. For DC motors the single sensed current
// is the feedback directly.
func (d *Drive) measureQCurrent(s Sample, elAngle uint16) (int32, error) {
	ia, err := BipolarCurrent(s.Current[0], s.VRef)
	if err != nil {
		return 0, err
	}
	if d.sel.Motor() == MotorDC {
		return ia, nil
	}
	ib, err := BipolarCurrent(s.Current[1], s.VRef)
	if err != nil {
		return 0, err
	}
	ic, err := BipolarCurrent(s.Current[2], s.VRef)
	if err != nil {
		return 0, err
	}
	return QAxisCurrent(ia, ib, ic, elAngle), nil
}

// sat32 clamps an int64 difference into int32 range.
func sat32(v int64) int32 {
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	if v < -(1 << 31) {
		return -(1 << 31)
	}
	return int32(v)
}
