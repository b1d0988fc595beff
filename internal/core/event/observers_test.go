package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversOrderAndRemove(t *testing.T) {
	var o Observers[int]
	var got []string

	o.Add(func(v int) { got = append(got, "a") })
	hb := o.Add(func(v int) { got = append(got, "b") })
	o.Add(func(v int) { got = append(got, "c") })
	require.Equal(t, 3, o.Len())

	o.Notify(1)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	require.True(t, o.Remove(hb))
	assert.False(t, o.Remove(hb))
	got = nil
	o.Notify(2)
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestObserversSelfRemovalDuringNotify(t *testing.T) {
	var o Observers[string]
	calls := 0
	var h Handle
	h = o.Add(func(string) {
		calls++
		o.Remove(h)
	})
	o.Add(func(string) { calls++ })

	o.Notify("x")
	assert.Equal(t, 2, calls)
	o.Notify("y")
	assert.Equal(t, 3, calls)
}

func TestObserversZeroValueNotify(t *testing.T) {
	var o Observers[*int]
	assert.NotPanics(t, func() { o.Notify(nil) })
}
