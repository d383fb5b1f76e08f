package xpt2046

import (
	"errors"
	"testing"
)

func TestStableValue(t *testing.T) {
	tests := []struct {
		name    string
		in      []uint16
		want    uint16
		wantErr error
	}{
		{"burst of three", []uint16{800, 810, 805}, 805, nil},
		{"high outlier rejected", []uint16{10, 12, 11, 500, 13}, 12, nil},
		{"low outlier rejected", []uint16{900, 3, 903, 897, 901}, 900, nil},
		{"pair averaged", []uint16{10, 20}, 15, nil},
		{"corrupt sample dropped", []uint16{8191, 1000, 1010}, 1005, nil},
		{"two corrupt dropped of five", []uint16{5000, 4096, 100, 110, 120}, 110, nil},
		{"one valid left", []uint16{8191, 8191, 900}, 0, ErrShortSample},
		{"nothing valid", []uint16{8191, 4096}, 0, ErrShortSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]uint16, len(tt.in))
			copy(buf, tt.in)
			got, err := stableValue(buf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("stableValue(%v) err = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("stableValue(%v) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("stableValue(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestStableValueDeterministic(t *testing.T) {
	in := []uint16{1500, 1482, 1510, 1499, 1503}

	run := func() uint16 {
		buf := make([]uint16, len(in))
		copy(buf, in)
		v, err := stableValue(buf)
		if err != nil {
			t.Fatalf("stableValue: %v", err)
		}
		return v
	}

	first := run()
	for i := 0; i < 10; i++ {
		if got := run(); got != first {
			t.Fatalf("run %d returned %d, first run returned %d", i, got, first)
		}
	}
}

func TestPressureOf(t *testing.T) {
	tests := []struct {
		z1, z2 uint16
		want   uint16
	}{
		{600, 600, 4095},
		{0, 4095, 0},
		{100, 4000, 195},
		{4095, 0, 8190},
		{0, 5000, 0}, // corrupt z2 clamps instead of wrapping
	}
	for _, tt := range tests {
		if got := pressureOf(tt.z1, tt.z2); got != tt.want {
			t.Errorf("pressureOf(%d, %d) = %d, want %d", tt.z1, tt.z2, got, tt.want)
		}
	}
}
