package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Location is a place to report on.
type Location struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
	Include string  `json:"include" yaml:"include"`
}

const defaultInclude = "minutely"

// DefaultLocation is used when no locations file is configured.
var DefaultLocation = Location{
	ID:      "raleigh",
	Name:    "Raleigh, NC",
	Lat:     35.7796,
	Lon:     -78.6382,
	Include: defaultInclude,
}

type locationsFile struct {
	Locations []Location `json:"locations" yaml:"locations"`
}

// LocationRegistry holds the locations loaded from a file.
type LocationRegistry struct {
	mu        sync.RWMutex
	locations []Location
	idx       map[string]Location
}

// NewLocationRegistry builds a registry from already validated locations.
func NewLocationRegistry(locs ...Location) (*LocationRegistry, error) {
	reg := &LocationRegistry{
		locations: make([]Location, 0, len(locs)),
		idx:       make(map[string]Location, len(locs)),
	}
	for i := range locs {
		loc := sanitizeLocation(locs[i])
		if err := validateLocation(loc); err != nil {
			return nil, fmt.Errorf("locations[%d]: %w", i, err)
		}
		if _, exists := reg.idx[loc.ID]; exists {
			return nil, fmt.Errorf("duplicate location id %q", loc.ID)
		}
		reg.locations = append(reg.locations, loc)
		reg.idx[loc.ID] = loc
	}
	return reg, nil
}

// LoadLocations loads the location registry from a YAML/JSON file.
func LoadLocations(path string) (*LocationRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("locations file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open locations file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	parsed, err := parseLocations(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Locations) == 0 {
		return nil, errors.New("locations file contains no locations entries")
	}

	return NewLocationRegistry(parsed.Locations...)
}

func parseLocations(data []byte, ext string) (locationsFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out locationsFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return locationsFile{}, errors.New("locations file format not recognized (expected YAML or JSON)")
}

func sanitizeLocation(l Location) Location {
	l.ID = strings.TrimSpace(l.ID)
	l.Name = strings.TrimSpace(l.Name)
	l.Include = strings.TrimSpace(l.Include)
	if l.Name == "" {
		l.Name = l.ID
	}
	if l.Include == "" {
		l.Include = defaultInclude
	}
	return l
}

func validateLocation(l Location) error {
	if l.ID == "" {
		return errors.New("id is required")
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("lat out of range for location %q", l.ID)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("lon out of range for location %q", l.ID)
	}
	return nil
}

// All returns all configured locations.
func (r *LocationRegistry) All() []Location {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// ByID returns the location with the given id.
func (r *LocationRegistry) ByID(id string) (Location, bool) {
	if r == nil {
		return Location{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Location{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.idx[id]
	return loc, ok
}
