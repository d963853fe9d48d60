package telemetry

import "testing"

func TestParseStatusLine(t *testing.T) {
	st, ok := Parse("pos=-131072 vel=25000 fault=none uv=3")
	if !ok {
		t.Fatal("expected a status line to parse")
	}
	if st.Position != -131072 {
		t.Errorf("position: got %d, want -131072", st.Position)
	}
	if st.Velocity != 25000 {
		t.Errorf("velocity: got %d, want 25000", st.Velocity)
	}
	if st.Fault != "none" {
		t.Errorf("fault: got %q, want %q", st.Fault, "none")
	}
	if st.Undervoltage != 3 {
		t.Errorf("undervoltage: got %d, want 3", st.Undervoltage)
	}
	if !st.Healthy() {
		t.Error("status with fault=none should be healthy")
	}
}

func TestParseFaultedStatus(t *testing.T) {
	st, ok := Parse("pos=0 vel=0 fault=encoder uv=0")
	if !ok {
		t.Fatal("expected a status line to parse")
	}
	if st.Healthy() {
		t.Error("status with fault=encoder should not be healthy")
	}
}

func TestParseRejectsOtherLines(t *testing.T) {
	lines := []string{
		"",
		"godrive ready, type 'help'",
		"err: unknown command (try 'help')",
		"fault: implausible encoder jump",
		"pos=abc vel=0 fault=none uv=0",
		"pos=1 vel=2", // truncated
	}
	for _, line := range lines {
		if _, ok := Parse(line); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", line)
		}
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	st, ok := Parse("pos=10 vel=20 fault=none uv=0 temp=31")
	if !ok {
		t.Fatal("extra keys should not break parsing")
	}
	if st.Position != 10 || st.Velocity != 20 {
		t.Errorf("got %+v", st)
	}
}
