package geonames

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const (
	// DownloadURL serves the GeoNames dump of cities with 15000+ population.
	DownloadURL = "http://download.geonames.org/export/dump/cities15000.zip"
	// CacheFileName is the name of the cached cities file.
	CacheFileName = "cities15000.txt"
)

// ErrGeocodeFailed is returned when a city name cannot be resolved to
// coordinates.
var ErrGeocodeFailed = errors.New("no such city")

// City is one GeoNames record: a place name with its coordinates and the
// metadata shown in search results.
type City struct {
	Name        string
	CountryCode string
	Timezone    string
	Lat         float64
	Lon         float64
}

// Database holds the GeoNames city data. It doubles as the geocoder: city
// name in, coordinates out.
type Database struct {
	cities []City
	ready  bool
	err    error
	mu     sync.RWMutex
}

// NewDatabase creates an empty, not-yet-loaded database.
func NewDatabase() *Database {
	return &Database{}
}

// LoadAsync loads the database in the background. Ready/error state is
// polled via IsReady and Err; the add flow stays disabled until then so
// loading never blocks a tick.
func (db *Database) LoadAsync() {
	go func() {
		if err := db.load(); err != nil {
			slog.Error("geonames load failed", "component", "geonames", "error", err)
			db.mu.Lock()
			db.err = err
			db.mu.Unlock()
		}
	}()
}

func (db *Database) load() error {
	cachePath, err := cachePath()
	if err != nil {
		return fmt.Errorf("failed to get cache path: %w", err)
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		slog.Info("downloading GeoNames city data", "component", "geonames", "url", DownloadURL)
		if err := downloadAndExtract(cachePath); err != nil {
			return fmt.Errorf("failed to download GeoNames data: %w", err)
		}
	}

	cities, err := parseFile(cachePath)
	if err != nil {
		return fmt.Errorf("failed to parse GeoNames data: %w", err)
	}
	slog.Info("GeoNames city data loaded", "component", "geonames", "cities", len(cities))

	db.mu.Lock()
	db.cities = cities
	db.ready = true
	db.mu.Unlock()

	return nil
}

// IsReady reports whether the database is loaded.
func (db *Database) IsReady() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ready
}

// Err returns any error that occurred during loading.
func (db *Database) Err() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.err
}

// Search returns up to maxResults cities matching the query, exact name
// matches first, then prefix and substring matches.
func (db *Database) Search(query string, maxResults int) []City {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !db.ready {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 3 {
		return nil
	}

	var exact []City
	var partial []City

	for _, city := range db.cities {
		lower := strings.ToLower(city.Name)

		switch {
		case lower == query:
			exact = append(exact, city)
		case strings.HasPrefix(lower, query), strings.Contains(lower, query):
			partial = append(partial, city)
		}

		if len(exact)+len(partial) >= maxResults {
			break
		}
	}

	results := append(exact, partial...)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// Geocode resolves a city name to its record, matching the full name
// case-insensitively. The first record wins when several cities share a
// name; GeoNames orders larger cities first.
func (db *Database) Geocode(name string) (City, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !db.ready {
		return City{}, fmt.Errorf("%w: city database not loaded", ErrGeocodeFailed)
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, city := range db.cities {
		if strings.ToLower(city.Name) == normalized {
			return city, nil
		}
	}

	return City{}, fmt.Errorf("%w: %q", ErrGeocodeFailed, name)
}

func cachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cache", "chronodeck", CacheFileName), nil
}

// downloadAndExtract fetches the GeoNames zip and unpacks the city list
// into the cache.
func downloadAndExtract(targetPath string) error {
	cacheDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tempZip := filepath.Join(cacheDir, "cities15000.zip")
	if err := downloadFile(DownloadURL, tempZip); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer os.Remove(tempZip)

	if err := extractFile(tempZip, CacheFileName, targetPath); err != nil {
		return fmt.Errorf("failed to extract file: %w", err)
	}

	return nil
}

func downloadFile(url, filepath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractFile(zipPath, fileName, targetPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == fileName {
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()

			out, err := os.Create(targetPath)
			if err != nil {
				return err
			}
			defer out.Close()

			_, err = io.Copy(out, rc)
			return err
		}
	}

	return fmt.Errorf("file %s not found in zip archive", fileName)
}

// parseFile reads the tab-separated GeoNames dump. Field layout per the
// GeoNames readme: 1=name, 4=latitude, 5=longitude, 8=country code,
// 17=timezone.
func parseFile(path string) ([]City, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cities []City
	scanner := bufio.NewScanner(file)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		city, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		cities = append(cities, city)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cities, nil
}

func parseLine(line string) (City, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 18 {
		return City{}, false
	}

	lat, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return City{}, false
	}
	lon, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return City{}, false
	}

	if fields[17] == "" {
		return City{}, false
	}

	return City{
		Name:        fields[1],
		CountryCode: fields[8],
		Timezone:    fields[17],
		Lat:         lat,
		Lon:         lon,
	}, true
}
