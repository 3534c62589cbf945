package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPublishAndLookup(t *testing.T) {
	r := NewRegistry()
	cmd := named("Text/upcase")
	require.NoError(t, r.Publish(cmd))

	got, ok := r.Lookup("Text/upcase")
	require.True(t, ok)
	assert.Same(t, cmd, got)

	got, ok = r.Get("/commands/Text/upcase")
	require.True(t, ok)
	assert.Same(t, cmd, got)

	_, ok = r.Get("Text/upcase")
	assert.False(t, ok, "paths need the /commands/ prefix")
	assert.Equal(t, "/commands/Text/upcase", Path("Text/upcase"))
}

func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()
	first := named("Text/dup")
	second := named("Text/dup")

	require.NoError(t, r.Publish(first))
	require.NoError(t, r.Publish(second))

	assert.Equal(t, 1, r.Count())
	got, _ := r.Lookup("Text/dup")
	assert.Same(t, second, got)
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	assert.True(t, errors.Is(r.Publish(nil), ErrNilCommand))
	assert.True(t, errors.Is(r.Publish(&Base{}), ErrCommandNameEmpty))
	assert.Panics(t, func() { r.MustPublish(&Base{}) })
}

func TestRegistryListing(t *testing.T) {
	r := NewRegistry()
	r.MustPublish(&Base{Name: "b/two", Scope: "source.go"})
	r.MustPublish(&Base{Name: "a/one"})
	r.MustPublish(&Base{Name: "c/three", Scope: "source.go"})

	assert.Equal(t, []string{"a/one", "b/two", "c/three"}, r.Names())
	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a/one", all[0].Meta().Name)
	assert.Len(t, r.InScope("source.go"), 2)

	assert.True(t, r.Remove("a/one"))
	assert.False(t, r.Remove("a/one"))
	assert.False(t, r.Has("a/one"))
	assert.Equal(t, 2, r.Count())
}
