package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSOL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  uint64
	}{
		{"whole", "2", 2_000_000_000},
		{"fraction", "0.5", 500_000_000},
		{"one lamport", "0.000000001", 1},
		{"zero", "0", 0},
		{"trailing zeros", "1.500000000", 1_500_000_000},
		{"exponent form", "1e-9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSOL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSOL_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"garbage", "abc"},
		{"empty", ""},
		{"negative", "-1"},
		{"sub lamport", "0.0000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSOL(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFormatLamports(t *testing.T) {
	tests := []struct {
		name     string
		lamports uint64
		want     string
	}{
		{"whole", 2_000_000_000, "2"},
		{"fraction", 500_000_000, "0.5"},
		{"one lamport", 1, "0.000000001"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLamports(tt.lamports))
		})
	}
}

func TestParseSOL_RoundTrip(t *testing.T) {
	for _, lamports := range []uint64{1, 999, 1_000_000_000, 123_456_789_012} {
		got, err := ParseSOL(FormatLamports(lamports))
		require.NoError(t, err)
		assert.Equal(t, lamports, got)
	}
}
