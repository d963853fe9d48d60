// Package telemetry parses the periodic status lines the drive firmware
// prints on its USB console.
package telemetry

import (
	"strconv"
	"strings"
)

// Status is one decoded firmware status report.
type Status struct {
	Position     int64  // unwrapped shaft position, counts
	Velocity     int32  // counts per second
	Fault        string // "none", "sensor", "encoder"
	Undervoltage uint32 // cumulative limiting events
}

// Parse decodes a firmware status line of the form
//
//	pos=<n> vel=<n> fault=<s> uv=<n>
//
// It reports ok=false for anything else (command echoes, errors, boot
// banner) so callers can pass every console line through it.
func Parse(line string) (Status, bool) {
	var st Status
	if !strings.HasPrefix(line, "pos=") {
		return st, false
	}

	seen := 0
	for _, field := range strings.Fields(line) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			return Status{}, false
		}
		switch key {
		case "pos":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Status{}, false
			}
			st.Position = v
		case "vel":
			v, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return Status{}, false
			}
			st.Velocity = int32(v)
		case "fault":
			st.Fault = value
		case "uv":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Status{}, false
			}
			st.Undervoltage = uint32(v)
		default:
			// Unknown keys from newer firmware are ignored.
			continue
		}
		seen++
	}
	if seen != 4 {
		return Status{}, false
	}
	return st, true
}

// Healthy reports whether the status carries no active fault.
func (s Status) Healthy() bool {
	return s.Fault == "" || s.Fault == "none"
}
