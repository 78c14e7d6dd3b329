package tzresolve

import (
	"errors"
	"fmt"

	"github.com/ringsaturn/tzf"
)

var (
	// ErrResolutionFailed is returned when no timezone covers the
	// coordinate, e.g. in open ocean.
	ErrResolutionFailed = errors.New("no timezone found for coordinates")

	// ErrInvalidCoordinate is returned for out-of-range WGS-84 degrees.
	ErrInvalidCoordinate = errors.New("invalid coordinates")
)

// Resolver maps a coordinate to an IANA timezone identifier.
type Resolver interface {
	Resolve(lat, lon float64) (string, error)
}

// Finder resolves timezones from the boundary data embedded in tzf.
// Construction parses that data once; share a single Finder.
type Finder struct {
	finder tzf.F
}

// NewFinder builds a Finder from the default embedded dataset.
func NewFinder() (*Finder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone boundary data: %w", err)
	}
	return &Finder{finder: f}, nil
}

// Resolve returns the IANA timezone identifier for the coordinate.
func (f *Finder) Resolve(lat, lon float64) (string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
	}

	tz := f.finder.GetTimezoneName(lon, lat)
	if tz == "" {
		return "", fmt.Errorf("%w: lat=%v lon=%v", ErrResolutionFailed, lat, lon)
	}

	return tz, nil
}
