package control

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Axis configuration. Loaded once before the control loop starts and
// never mutated concurrently with a running tick. Invalid values are
// rejected at startup; nothing here is discovered mid-tick.

var (
	errUnknownMotor   = errors.New("unknown motor type")
	errUnknownPattern = errors.New("unknown phase pattern")
	errUnknownMode    = errors.New("unknown control mode")
)

// Mode selects which quantity the control law regulates.
type Mode uint8

const (
	// ModePosition regulates the unwrapped shaft position in counts.
	ModePosition Mode = iota
	// ModeSpeed regulates angular velocity in counts per second.
	ModeSpeed
	// ModeTorque regulates the q-axis current (field-oriented for
	// BLDC, direct current for DC).
	ModeTorque
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeSpeed:
		return "speed"
	case ModeTorque:
		return "torque"
	}
	return "unknown"
}

// Config enumerates everything the core needs for one axis.
type Config struct {
	Motor        string `json:"motor"`         // "dc", "stepper", "bldc"
	PhasePattern string `json:"phase_pattern"` // "abcd", "acdb", "adbc", "dcab"
	Mode         string `json:"mode"`          // "position", "speed", "torque"
	PolePairs    int    `json:"pole_pairs"`

	Gains      Gains `json:"gains"`
	FixedPoint bool  `json:"fixed_point"` // numeric realization of the regulator

	// OutputLimitMV is the maximum motor voltage the regulator may
	// request, in millivolts.
	OutputLimitMV int32 `json:"output_limit_mv"`

	// Smoothing is the Q15 low-pass factor for the tracked angle and
	// the supply estimate, in (0, 32768].
	Smoothing int32 `json:"smoothing"`

	SpeedDepth int    `json:"speed_depth"` // speed estimator window, samples
	TickHz     uint32 `json:"tick_hz"`     // control loop rate

	// MaxDeltaPerTick bounds the plausible encoder movement per tick,
	// in counts; derived from maximum mechanical speed.
	MaxDeltaPerTick int32 `json:"max_delta_per_tick"`

	MaxDuty uint16 `json:"max_duty"` // PWM compare full scale

	// SupplyFullScaleMV is the supply voltage at full ADC reading,
	// divider included.
	SupplyFullScaleMV int32 `json:"supply_full_scale_mv"`
}

// LoadConfig parses a JSON configuration and applies defaults. The
// result still has to pass Validate before use.
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in missing values with workable defaults.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "position"
	}
	if c.PhasePattern == "" {
		c.PhasePattern = "abcd"
	}
	if c.PolePairs == 0 {
		c.PolePairs = 1
	}
	if c.Smoothing == 0 {
		c.Smoothing = Q15 / 4
	}
	if c.SpeedDepth == 0 {
		c.SpeedDepth = 8
	}
	if c.TickHz == 0 {
		c.TickHz = 10000
	}
	if c.MaxDeltaPerTick == 0 {
		c.MaxDeltaPerTick = HalfTurn - 1
	}
	if c.MaxDuty == 0 {
		c.MaxDuty = 255
	}
	if c.SupplyFullScaleMV == 0 {
		c.SupplyFullScaleMV = 36300 // 3.3V reference through an 11:1 divider
	}
	if c.OutputLimitMV == 0 {
		c.OutputLimitMV = 12000
	}
}

// MotorType resolves the configured motor string.
func (c *Config) MotorType() (MotorType, error) {
	switch c.Motor {
	case "dc":
		return MotorDC, nil
	case "stepper":
		return MotorStepper, nil
	case "bldc":
		return MotorBLDC, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownMotor, c.Motor)
}

// Pattern resolves the configured phase-pattern string.
func (c *Config) Pattern() (PhasePattern, error) {
	switch c.PhasePattern {
	case "abcd":
		return PatternABCD, nil
	case "acdb":
		return PatternACDB, nil
	case "adbc":
		return PatternADBC, nil
	case "dcab":
		return PatternDCAB, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownPattern, c.PhasePattern)
}

// ControlMode resolves the configured mode string.
func (c *Config) ControlMode() (Mode, error) {
	switch c.Mode {
	case "position":
		return ModePosition, nil
	case "speed":
		return ModeSpeed, nil
	case "torque":
		return ModeTorque, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownMode, c.Mode)
}

// Validate rejects configurations the tick function cannot run with.
// Validation failures are fatal at startup.
func (c *Config) Validate() error {
	if _, err := c.MotorType(); err != nil {
		return err
	}
	if _, err := c.Pattern(); err != nil {
		return err
	}
	if _, err := c.ControlMode(); err != nil {
		return err
	}
	if c.PolePairs < 1 || c.PolePairs > 64 {
		return fmt.Errorf("pole_pairs %d out of range 1..64", c.PolePairs)
	}
	if c.Smoothing <= 0 || c.Smoothing > Q15 {
		return fmt.Errorf("smoothing %d out of range (0, %d]", c.Smoothing, Q15)
	}
	if c.SpeedDepth < 2 || c.SpeedDepth > 256 {
		return fmt.Errorf("speed_depth %d out of range 2..256", c.SpeedDepth)
	}
	if c.TickHz == 0 {
		return errors.New("tick_hz must be set")
	}
	if c.MaxDeltaPerTick <= 0 || c.MaxDeltaPerTick >= HalfTurn {
		return fmt.Errorf("max_delta_per_tick %d out of range 1..%d", c.MaxDeltaPerTick, HalfTurn-1)
	}
	if c.OutputLimitMV <= 0 {
		return errors.New("output_limit_mv must be positive")
	}
	if c.SupplyFullScaleMV <= 0 {
		return errors.New("supply_full_scale_mv must be positive")
	}
	if c.MaxDuty == 0 {
		return errors.New("max_duty must be positive")
	}
	return nil
}

// DefaultBLDCConfig returns a workable configuration for a small BLDC
// gimbal motor on a 12V supply.
func DefaultBLDCConfig() *Config {
	cfg := &Config{
		Motor:        "bldc",
		PhasePattern: "abcd",
		Mode:         "position",
		PolePairs:    7,
		Gains:        Gains{P: 4 * Q15, I: Q15 / 64, D: Q15 / 2},
		FixedPoint:   true,
	}
	cfg.applyDefaults()
	return cfg
}
