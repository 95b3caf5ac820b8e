package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		FailThreshold:    3,
		SuccessThreshold: 2,
		Timeout:          time.Second,
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"closed", StateClosed, "CLOSED"},
		{"open", StateOpen, "OPEN"},
		{"half_open", StateHalfOpen, "HALF_OPEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestBreaker_New(t *testing.T) {
	breaker := New(testConfig())
	assert.NotNil(t, breaker)
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.Allow())
}

func TestBreaker_TransitionToOpen(t *testing.T) {
	breaker := New(testConfig())

	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, StateClosed, breaker.State())

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker := New(testConfig())

	breaker.Record(false)
	breaker.Record(false)
	breaker.Record(true)
	breaker.Record(false)
	breaker.Record(false)

	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	breaker := New(testConfig())
	now := time.Now()
	breaker.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		breaker.Record(false)
	}
	assert.False(t, breaker.Allow())

	now = now.Add(2 * time.Second)
	assert.True(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())
}

func TestBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	breaker := New(testConfig())
	now := time.Now()
	breaker.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		breaker.Record(false)
	}
	now = now.Add(2 * time.Second)
	assert.True(t, breaker.Allow())

	breaker.Record(true)
	assert.Equal(t, StateHalfOpen, breaker.State())
	breaker.Record(true)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	breaker := New(testConfig())
	now := time.Now()
	breaker.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		breaker.Record(false)
	}
	now = now.Add(2 * time.Second)
	assert.True(t, breaker.Allow())

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_Reset(t *testing.T) {
	breaker := New(testConfig())
	for i := 0; i < 3; i++ {
		breaker.Record(false)
	}
	assert.Equal(t, StateOpen, breaker.State())

	breaker.Reset()
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.Allow())
}
