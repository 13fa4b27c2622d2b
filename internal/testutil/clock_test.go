package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedNow(t *testing.T) {
	now := FixedNow(Epoch)
	assert.Equal(t, Epoch, now())
	assert.Equal(t, Epoch, now())
}

func TestStepClock_Advances(t *testing.T) {
	clock := NewStepClock(Epoch, time.Millisecond)

	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(time.Millisecond), clock.Now())
	assert.Equal(t, Epoch.Add(2*time.Millisecond), clock.Now())
	assert.Equal(t, int64(3), clock.Reads())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(Epoch, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()

	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, Epoch, clock.Now())
}

func TestStepClock_Deterministic(t *testing.T) {
	a := NewStepClock(Epoch, time.Microsecond)
	b := NewStepClock(Epoch, time.Microsecond)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Now(), b.Now())
	}
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(Epoch, time.Nanosecond)
	const goroutines, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				ts := clock.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
}
