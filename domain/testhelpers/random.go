package testhelpers

import (
	"fmt"
	"sync"
)

// ScriptedRandom replays a fixed sequence of values, each reduced modulo the
// requested bound. Once the script runs out it returns 0.
type ScriptedRandom struct {
	mu     sync.Mutex
	values []int64
	calls  int
}

// NewScriptedRandom creates a source that yields values in order
func NewScriptedRandom(values ...int64) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

func (r *ScriptedRandom) Intn(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid random bound %d", n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var v int64
	if r.calls < len(r.values) {
		v = r.values[r.calls]
	}
	r.calls++
	return v % n, nil
}

// Calls returns how many values have been drawn
func (r *ScriptedRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
