package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChanged_EmptyWhenEqual(t *testing.T) {
	initial := Values{"name": "milk", "completed": false}
	current := Values{"name": "milk", "completed": false}
	assert.Empty(t, Changed(current, initial))
}

func TestChanged_ReportsDifferingKeys(t *testing.T) {
	initial := Values{"name": "milk", "completed": false}
	current := Values{"name": "oat milk", "completed": false}

	delta := Changed(current, initial)
	assert.Equal(t, Values{"name": "oat milk"}, delta)
}

func TestChanged_AbsentFromInitialCountsChanged(t *testing.T) {
	delta := Changed(Values{"note": ""}, Values{})
	assert.Equal(t, Values{"note": ""}, delta)
}

func TestChanged_DoesNotMutateInputs(t *testing.T) {
	initial := Values{"a": 1}
	current := Values{"a": 2, "b": 3}

	Changed(current, initial)

	assert.Equal(t, Values{"a": 1}, initial)
	assert.Equal(t, Values{"a": 2, "b": 3}, current)
}

func TestChanged_SameInputsSameDelta(t *testing.T) {
	initial := Values{"a": 1, "b": "x"}
	current := Values{"a": 2, "b": "x"}

	first := Changed(current, initial)
	second := Changed(current, initial)
	assert.Equal(t, first, second)
}

func TestLooseEqual(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int vs float", 1, 1.0, true},
		{"int vs numeric string", 42, "42", true},
		{"bool vs one", true, 1, true},
		{"bool vs zero", false, 0, true},
		{"bool vs string zero", false, "0", true},
		{"nil vs nil", nil, nil, true},
		{"nil vs empty string", nil, "", false},
		{"nil vs zero", nil, 0, false},
		{"same instant", now, now.UTC(), true},
		{"different instants", now, now.Add(time.Second), false},
		{"time vs string", now, now.Format(time.RFC3339), false},
		{"non-numeric strings differ", "abc", "abd", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, looseEqual(tc.a, tc.b))
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("on"))
	assert.True(t, Truthy(1))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(time.Time{}))
}
