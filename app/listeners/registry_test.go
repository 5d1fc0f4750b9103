package listeners

import (
	"errors"
	"testing"

	"postboard/app/dom"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	node := dom.NewElement("button")

	var fired []string
	a := NewListener(func(Event) error { fired = append(fired, "a"); return nil })
	b := NewListener(func(ev Event) error {
		assert.Same(t, node, ev.Target)
		assert.Equal(t, "click", ev.Type)
		fired = append(fired, "b")
		return nil
	})

	r.Add(node, "click", a)
	r.Add(node, "click", a)
	r.Add(node, "click", b)
	assert.Equal(t, 2, r.Count(node, "click"))

	assert.NoError(t, r.Dispatch(node, "click"))
	assert.Equal(t, []string{"a", "b"}, fired)

	t.Run("removing a different instance is a no-op", func(t *testing.T) {
		lookalike := NewListener(func(Event) error { return nil })
		r.Remove(node, "click", lookalike)
		assert.Equal(t, 2, r.Count(node, "click"))
	})

	t.Run("remove by identity", func(t *testing.T) {
		r.Remove(node, "click", a)
		assert.Equal(t, 1, r.Count(node, "click"))
		r.Remove(node, "click", b)
		assert.Equal(t, 0, r.Count(node, "click"))
		assert.Equal(t, 0, r.Nodes())
	})

	t.Run("dispatch without listeners", func(t *testing.T) {
		assert.NoError(t, r.Dispatch(node, "click"))
	})
}

func TestRegistry_DispatchJoinsErrors(t *testing.T) {
	r := NewRegistry()
	node := dom.NewElement("button")
	errBoom := errors.New("boom")

	calls := 0
	r.Add(node, "click", NewListener(func(Event) error { calls++; return errBoom }))
	r.Add(node, "click", NewListener(func(Event) error { calls++; return nil }))

	err := r.Dispatch(node, "click")
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}
