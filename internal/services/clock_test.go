package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

func TestFakeClock_RunsDueCallbacksInOrder(t *testing.T) {
	clock := NewFakeClock(testNow)
	var order []string

	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(time.Second, func() {
		order = append(order, "a")
		clock.AfterFunc(500*time.Millisecond, func() { order = append(order, "a2") })
	})
	clock.AfterFunc(5*time.Second, func() { order = append(order, "late") })

	clock.Advance(2 * time.Second)

	assert.Equal(t, []string{"a", "a2", "b"}, order)
	assert.Equal(t, testNow.Add(2*time.Second), clock.Now())
	assert.Equal(t, 1, clock.Pending())
}

func TestFakeClock_Stop(t *testing.T) {
	clock := NewFakeClock(testNow)
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, clock.Pending())
}

func TestFakeClock_ZeroDelayNeedsAdvance(t *testing.T) {
	clock := NewFakeClock(testNow)
	fired := false
	clock.AfterFunc(0, func() { fired = true })

	assert.False(t, fired)
	clock.Advance(0)
	assert.True(t, fired)
}
