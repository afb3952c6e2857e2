package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
)

type fakeKeypad struct {
	memory.Keypad
	calls int
}

func (f *fakeKeypad) SetKey(key memory.Key, pressed bool) {
	f.calls++
	f.Set(key, pressed)
}

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeKeypad, *fakeClock) {
	keypad := &fakeKeypad{}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewManager(keypad)
	m.now = clock.now
	return m, keypad, clock
}

func TestManager_KeypadActions(t *testing.T) {
	m, keypad, _ := newTestManager()

	m.Trigger(action.KeyA, event.Press)
	assert.True(t, keypad.IsPressed(0xA))

	m.Trigger(action.KeyA, event.Release)
	m.Trigger(action.KeyA, event.Press)
	m.Trigger(action.KeyA, event.Release)

	assert.False(t, keypad.IsPressed(0xA))
	assert.Equal(t, 4, keypad.calls, "keypad events must never be debounced")
}

func TestManager_KeypadActionsDoNotRunCallbacks(t *testing.T) {
	m, _, _ := newTestManager()
	called := false
	m.On(action.Key1, event.Press, func() { called = true })

	m.Trigger(action.Key1, event.Press)

	assert.False(t, called)
}

func TestManager_Debouncing(t *testing.T) {
	tests := []struct {
		name        string
		eventType   event.Type
		timeBetween time.Duration
		wantCalls   int
	}{
		{name: "rapid press is debounced", eventType: event.Press, timeBetween: 100 * time.Millisecond, wantCalls: 1},
		{name: "slow press is not debounced", eventType: event.Press, timeBetween: 400 * time.Millisecond, wantCalls: 2},
		{name: "rapid release is debounced", eventType: event.Release, timeBetween: 10 * time.Millisecond, wantCalls: 1},
		{name: "hold is never debounced", eventType: event.Hold, timeBetween: 10 * time.Millisecond, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, clock := newTestManager()
			calls := 0
			m.On(action.EmulatorPauseToggle, tt.eventType, func() { calls++ })

			m.Trigger(action.EmulatorPauseToggle, tt.eventType)
			clock.advance(tt.timeBetween)
			m.Trigger(action.EmulatorPauseToggle, tt.eventType)

			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestManager_MultipleCallbacks(t *testing.T) {
	m, _, _ := newTestManager()
	var order []int
	m.On(action.EmulatorQuit, event.Press, func() { order = append(order, 1) })
	m.On(action.EmulatorQuit, event.Press, func() { order = append(order, 2) })

	m.Trigger(action.EmulatorQuit, event.Press)
	m.Trigger(action.EmulatorSnapshot, event.Press)

	assert.Equal(t, []int{1, 2}, order)
}

func TestManager_NilKeypad(t *testing.T) {
	m := NewManager(nil)
	assert.NotPanics(t, func() { m.Trigger(action.Key0, event.Press) })
}

func TestDefaultKeyMap(t *testing.T) {
	seen := make(map[action.Action]bool)
	for _, act := range DefaultKeyMap {
		if act.IsKeypad() {
			seen[act] = true
		}
	}
	assert.Len(t, seen, 16, "every keypad key needs a default binding")

	act, ok := GetDefaultMapping("x")
	assert.True(t, ok)
	assert.Equal(t, action.Key0, act)

	_, ok = GetDefaultMapping("F1")
	assert.False(t, ok)
}
