package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVariants(t *testing.T) {
	reg := NewRegistry[int]()
	var got []string
	reg.Register("zoomToRegion", func(n int) { got = append(got, "zoom") })

	h, err := None[int]().Resolve(reg)
	require.NoError(t, err)
	h(1)

	h, err = Func(func(n int) { got = append(got, "direct") }).Resolve(nil)
	require.NoError(t, err)
	h(2)

	h, err = Named[int]("zoomToRegion").Resolve(reg)
	require.NoError(t, err)
	h(3)

	assert.Equal(t, []string{"direct", "zoom"}, got)
}

func TestEmptyVariantsAreNone(t *testing.T) {
	assert.Equal(t, KindNone, Func[int](nil).Kind())
	assert.Equal(t, KindNone, Named[int]("  ").Kind())
	assert.Equal(t, KindNamed, Named[int]("x").Kind())
	assert.Equal(t, "x", Named[int](" x ").Name())
}

func TestUnknownNameFailsAtResolve(t *testing.T) {
	reg := NewRegistry[string]()
	reg.Register("b", func(string) {})
	reg.Register("a", func(string) {})

	_, err := Named[string]("missing").Resolve(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))

	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, []string{"a", "b"}, aerr.Known)
	assert.Contains(t, err.Error(), "missing")

	_, err = Named[string]("missing").Resolve(nil)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}
