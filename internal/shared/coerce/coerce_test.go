package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"string", "abc", "abc", true},
		{"integral float", float64(42), "42", true},
		{"fractional float", 1.5, "1.5", true},
		{"bool", true, "true", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := String(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFloatAndInt(t *testing.T) {
	t.Parallel()

	f, ok := Float("19.99")
	assert.True(t, ok)
	assert.InDelta(t, 19.99, f, 1e-9)

	_, ok = Float("abc")
	assert.False(t, ok)

	n, ok := Int(" 3 ")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Int(2.5)
	assert.False(t, ok)

	assert.Nil(t, IntPtr("wide"))
	assert.Equal(t, 12, *IntPtr(float64(12)))
}

func TestBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"true bool", true, true},
		{"string true", " TRUE ", true},
		{"string t", "t", true},
		{"string 1", "1", true},
		{"string no", "no", false},
		{"zero", float64(0), false},
		{"nonzero", float64(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bool(tt.in, "true", "t", "1"))
		})
	}
}

func TestFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"Yes", true, true},
		{" on ", true, true},
		{"y", true, true},
		{"1", true, true},
		{"false", false, true},
		{"OFF", false, true},
		{"no", false, true},
		{"f", false, true},
		{"0", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Flag(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpper(t *testing.T) {
	t.Parallel()

	s, ok := Upper("mens")
	assert.True(t, ok)
	assert.Equal(t, "MENS", s)

	_, ok = Upper(3)
	assert.False(t, ok)
}

func TestTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	got, ok := Time("2025-03-01T12:30:00+00:00")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = Time("2025-03-01T12:30:00.000000")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	assert.Nil(t, TimePtr("yesterday"))
	assert.Nil(t, TimePtr(nil))
}
