package tzresolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmaren/chronodeck/tzresolve"
)

func newFinder(t *testing.T) *tzresolve.Finder {
	t.Helper()
	f, err := tzresolve.NewFinder()
	require.NoError(t, err)
	return f
}

func TestResolve_KnownCities(t *testing.T) {
	f := newFinder(t)

	tz, err := f.Resolve(51.51, -0.13)
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", tz)

	tz, err = f.Resolve(35.68, 139.69)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", tz)
}

func TestResolve_InvalidCoordinates(t *testing.T) {
	f := newFinder(t)

	_, err := f.Resolve(91, 0)
	assert.ErrorIs(t, err, tzresolve.ErrInvalidCoordinate)

	_, err = f.Resolve(0, -181)
	assert.ErrorIs(t, err, tzresolve.ErrInvalidCoordinate)
}
