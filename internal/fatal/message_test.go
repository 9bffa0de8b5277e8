package fatal

import (
	"math"
	"strings"
	"testing"
)

func TestMessage_FormatAssertion(t *testing.T) {
	var m message
	m.formatAssertion("x > 0", "foo.cpp", 42)

	want := "Assertion `x > 0' failed, file \"foo.cpp\", line 42"
	if got := string(m.bytes()); got != want {
		t.Errorf("formatAssertion() = %q, want %q", got, want)
	}
	if m.buf[m.n] != 0 {
		t.Error("message is not terminated")
	}
}

func TestMessage_AppendInt(t *testing.T) {
	tests := []struct {
		v    int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{42, "42"},
		{-13, "-13"},
		{1234567890, "1234567890"},
		{math.MaxInt64, "9223372036854775807"},
		{math.MinInt64, "-9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var m message
			m.appendInt(tt.v)
			if got := string(m.bytes()); got != tt.want {
				t.Errorf("appendInt(%d) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestMessage_Truncation(t *testing.T) {
	tests := []struct {
		name string
		expr string
		file string
	}{
		{"long expression", strings.Repeat("x", 2*MessageCapacity), "foo.cpp"},
		{"long file", "x > 0", strings.Repeat("f", MessageCapacity)},
		{"exactly at capacity", strings.Repeat("e", MessageCapacity-len("Assertion `")), "foo.cpp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m message
			m.formatAssertion(tt.expr, tt.file, 42)

			if m.n != MessageCapacity {
				t.Errorf("length = %d, want %d", m.n, MessageCapacity)
			}
			if m.buf[MessageCapacity] != 0 {
				t.Error("terminator was overwritten")
			}
			if !strings.HasPrefix(string(m.bytes()), "Assertion `") {
				t.Errorf("unexpected prefix: %q", string(m.bytes()[:20]))
			}
		})
	}
}

func TestMessage_DoesNotAllocate(t *testing.T) {
	expr := strings.Repeat("y", 100)
	allocs := testing.AllocsPerRun(100, func() {
		var m message
		m.formatAssertion(expr, "bar.go", 7)
		if m.n == 0 {
			t.Fatal("empty message")
		}
	})
	if allocs != 0 {
		t.Errorf("formatAssertion allocated %.1f times per run, want 0", allocs)
	}
}
