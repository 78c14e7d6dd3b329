package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmaren/chronodeck/clock"
)

var (
	// ErrDuplicateLocation is returned when adding a location whose name is
	// already tracked, compared case-insensitively.
	ErrDuplicateLocation = errors.New("location already exists")

	// ErrNotFound is returned when removing an id that is not in the registry.
	ErrNotFound = errors.New("location not found")

	// ErrInvalidReorder is returned when a reorder sequence is not a
	// permutation of the current ids.
	ErrInvalidReorder = errors.New("reorder is not a permutation of current locations")
)

// ID is the opaque stable identity of a tracked location. The presentation
// layer holds only ids; the registry owns the entries.
type ID string

// Location is one tracked place: a display name plus the data needed to
// compute its local time and day/night state.
type Location struct {
	ID       ID
	Name     string
	Timezone string // IANA identifier, e.g. "Europe/London"
	Lat      float64
	Lon      float64
	Country  string // ISO country code, may be empty
}

// Registry is an ordered collection of tracked locations. The slice order
// is the display order: insertion order until the user reorders it, and
// independent of any chronological ordering computed per tick.
//
// All methods are safe for concurrent use; Snapshot gives the tick loop a
// consistent copy so a concurrent mutation is observed either fully or
// not at all.
type Registry struct {
	mu        sync.Mutex
	locations []Location
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends a new location and returns its fresh id. The name must not
// collide with an existing entry (case-normalized) and the timezone
// identifier must be resolvable, so a half-valid entry can never be
// registered.
func (r *Registry) Add(name, timezoneID string, lat, lon float64, country string) (ID, error) {
	if timezoneID == "" {
		return "", fmt.Errorf("%w: empty identifier for %q", clock.ErrInvalidTimezone, name)
	}
	if _, err := time.LoadLocation(timezoneID); err != nil {
		return "", fmt.Errorf("%w: %q: %v", clock.ErrInvalidTimezone, timezoneID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := normalizeName(name)
	for _, loc := range r.locations {
		if normalizeName(loc.Name) == normalized {
			return "", fmt.Errorf("%w: %q", ErrDuplicateLocation, loc.Name)
		}
	}

	id := ID(uuid.NewString())
	r.locations = append(r.locations, Location{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Timezone: timezoneID,
		Lat:      lat,
		Lon:      lon,
		Country:  country,
	})

	return id, nil
}

// Remove deletes the location with the given id, preserving the relative
// order of the remaining entries.
func (r *Registry) Remove(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, loc := range r.locations {
		if loc.ID == id {
			r.locations = append(r.locations[:i], r.locations[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Reorder replaces the display order with the given id sequence, which
// must be an exact permutation of the current ids. The registry is left
// untouched on failure.
func (r *Registry) Reorder(ids []ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(ids) != len(r.locations) {
		return fmt.Errorf("%w: got %d ids, have %d locations", ErrInvalidReorder, len(ids), len(r.locations))
	}

	byID := make(map[ID]Location, len(r.locations))
	for _, loc := range r.locations {
		byID[loc.ID] = loc
	}

	reordered := make([]Location, 0, len(ids))
	for _, id := range ids {
		loc, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated id %s", ErrInvalidReorder, id)
		}
		delete(byID, id)
		reordered = append(reordered, loc)
	}

	r.locations = reordered
	return nil
}

// Snapshot returns a copy of the locations in display order.
func (r *Registry) Snapshot() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// Len returns the number of tracked locations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locations)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
