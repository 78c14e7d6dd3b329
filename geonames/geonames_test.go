package geonames

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleLine builds a minimal GeoNames record with the fields we consume.
func sampleLine(name, lat, lon, country, tz string) string {
	fields := make([]string, 19)
	fields[1] = name
	fields[4] = lat
	fields[5] = lon
	fields[8] = country
	fields[17] = tz
	return strings.Join(fields, "\t")
}

func seeded() *Database {
	return &Database{
		ready: true,
		cities: []City{
			{Name: "London", CountryCode: "GB", Timezone: "Europe/London", Lat: 51.51, Lon: -0.13},
			{Name: "Londonderry", CountryCode: "GB", Timezone: "Europe/London", Lat: 54.99, Lon: -7.31},
			{Name: "Tokyo", CountryCode: "JP", Timezone: "Asia/Tokyo", Lat: 35.68, Lon: 139.69},
		},
	}
}

func TestParseLine(t *testing.T) {
	city, ok := parseLine(sampleLine("Reykjavík", "64.14", "-21.90", "IS", "Atlantic/Reykjavik"))
	require.True(t, ok)
	assert.Equal(t, "Reykjavík", city.Name)
	assert.Equal(t, "IS", city.CountryCode)
	assert.Equal(t, "Atlantic/Reykjavik", city.Timezone)
	assert.InDelta(t, 64.14, city.Lat, 0.001)
	assert.InDelta(t, -21.90, city.Lon, 0.001)
}

func TestParseLine_Rejects(t *testing.T) {
	_, ok := parseLine("too\tfew\tfields")
	assert.False(t, ok)

	_, ok = parseLine(sampleLine("Nowhere", "not-a-number", "0", "XX", "Etc/UTC"))
	assert.False(t, ok)

	_, ok = parseLine(sampleLine("Nowhere", "0", "0", "XX", ""))
	assert.False(t, ok, "records without a timezone are useless here")
}

func TestSearch_ExactBeforePartial(t *testing.T) {
	db := seeded()

	results := db.Search("london", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "London", results[0].Name)
	assert.Equal(t, "Londonderry", results[1].Name)
}

func TestSearch_MinimumQueryLength(t *testing.T) {
	db := seeded()
	assert.Empty(t, db.Search("lo", 10))
}

func TestSearch_NotReady(t *testing.T) {
	db := NewDatabase()
	assert.Empty(t, db.Search("london", 10))
}

func TestGeocode(t *testing.T) {
	db := seeded()

	city, err := db.Geocode("  TOKYO ")
	require.NoError(t, err)
	assert.Equal(t, "JP", city.CountryCode)
	assert.InDelta(t, 139.69, city.Lon, 0.001)
}

func TestGeocode_Unknown(t *testing.T) {
	db := seeded()

	_, err := db.Geocode("Atlantis")
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}

func TestGeocode_NotReady(t *testing.T) {
	db := NewDatabase()

	_, err := db.Geocode("London")
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}
