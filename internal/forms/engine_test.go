package forms

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoFields = []Field{
	{ID: "name", Label: "Name", Kind: Text, Required: true},
	{ID: "completed", Label: "Completed", Kind: Checkbox},
}

func TestEngine_InitialSnapshotIsIsolated(t *testing.T) {
	initial := Values{"name": "milk"}
	eng := NewEngine(todoFields, initial)

	eng.SetField("name", "bread")
	initial["name"] = "mutated"

	assert.Equal(t, "bread", eng.Value("name"))
	assert.Equal(t, Values{"name": "milk"}, eng.Initial())
}

func TestEngine_CheckboxSetFieldToggles(t *testing.T) {
	eng := NewEngine(todoFields, Values{"completed": false})

	// Whatever the raw event value is, a checkbox set flips the
	// stored value.
	eng.SetField("completed", "anything")
	assert.Equal(t, true, eng.Value("completed"))

	eng.SetField("completed", "anything")
	assert.Equal(t, false, eng.Value("completed"))
}

func TestEngine_DirtyTracksDelta(t *testing.T) {
	eng := NewEngine(todoFields, Values{"name": "milk", "completed": false})
	assert.False(t, eng.Dirty())

	eng.SetField("name", "bread")
	assert.True(t, eng.Dirty())

	eng.SetField("name", "milk")
	assert.False(t, eng.Dirty())
}

func TestEngine_SubmitFullValues(t *testing.T) {
	eng := NewEngine(todoFields, Values{"name": "milk", "completed": false})
	eng.SetField("name", "bread")

	var got Values
	err := eng.Submit(func(values Values) error {
		got = values
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Values{"name": "bread", "completed": false}, got)
}

func TestEngine_SubmitChangesOnly(t *testing.T) {
	eng := NewEngine(todoFields, Values{"name": "milk", "completed": false})
	eng.SubmitChangesOnly = true
	eng.SetField("completed", nil)

	var got Values
	err := eng.Submit(func(values Values) error {
		got = values
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Values{"completed": true}, got)
}

func TestEngine_RequestSubmitSamePath(t *testing.T) {
	eng := NewEngine(todoFields, Values{"name": "milk"})
	eng.SubmitChangesOnly = true
	eng.SetField("name", "bread")

	var got Values
	require.NoError(t, eng.RequestSubmit(func(values Values) error {
		got = values
		return nil
	}))
	assert.Equal(t, Values{"name": "bread"}, got)
}

func postForm(t *testing.T, form url.Values) *Engine {
	t.Helper()
	req := httptest.NewRequest("POST", "/todos/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	eng := NewEngine(todoFields, nil)
	require.NoError(t, eng.ParseRequest(req))
	return eng
}

func TestEngine_ParseRequest(t *testing.T) {
	eng := postForm(t, url.Values{
		"name":      {"bread"},
		"completed": {"on"},
		"__initial": {`{"name":"milk","completed":false}`},
	})

	assert.False(t, eng.Bot())
	assert.Equal(t, "bread", eng.Value("name"))
	assert.Equal(t, true, eng.Value("completed"))
	assert.Equal(t, Values{"name": "bread", "completed": true}, eng.Changed())
}

func TestEngine_ParseRequest_UncheckedCheckboxAbsent(t *testing.T) {
	// Browsers omit unchecked checkboxes from the post entirely.
	eng := postForm(t, url.Values{
		"name":      {"milk"},
		"__initial": {`{"name":"milk","completed":true}`},
	})

	assert.Equal(t, false, eng.Value("completed"))
	assert.Equal(t, Values{"completed": false}, eng.Changed())
}

func TestEngine_HoneypotDropsSubmission(t *testing.T) {
	eng := postForm(t, url.Values{
		"name":      {"spam"},
		"hp_robots": {"on"},
	})

	assert.True(t, eng.Bot())
	called := false
	require.NoError(t, eng.Submit(func(Values) error {
		called = true
		return nil
	}))
	assert.False(t, called, "honeypot submission must not reach the handler")
}

func TestControlFor_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		controlFor(Field{ID: "x", Kind: Kind("slider")}, nil, RenderConfig{})
	})
}
