package data

import (
	"errors"
	"io/fs"
	"strings"
)

// DefaultPresetCities is used until someone saves a preset list.
var DefaultPresetCities = []string{"London", "New York", "Tokyo", "Paris", "Sydney"}

type presetsFile struct {
	Cities []string `json:"cities"`
}

// Presets is the list of one-click cities shown on the dashboard, kept in a JSON file.
type Presets struct {
	path string
}

// NewPresets returns a store backed by path. An empty path keeps the defaults only.
func NewPresets(path string) *Presets {
	return &Presets{path: path}
}

func (p *Presets) Get() ([]string, error) {
	if p.path == "" {
		return append([]string(nil), DefaultPresetCities...), nil
	}
	file, err := JsonReadSharedLock[presetsFile](p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return append([]string(nil), DefaultPresetCities...), nil
	}
	if err != nil {
		return nil, err
	}
	return file.Cities, nil
}

// Set replaces the preset list. Names are trimmed, blanks dropped and duplicates
// (case-insensitive) removed, keeping the first spelling.
func (p *Presets) Set(cities []string) ([]string, error) {
	cleaned := CleanCityList(cities)
	if p.path == "" {
		return nil, errors.New("no presets file configured")
	}
	err := JsonUpdateExclusiveLock(p.path, func(file *presetsFile) error {
		file.Cities = cleaned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleaned, nil
}

func CleanCityList(cities []string) []string {
	seen := make(map[string]bool, len(cities))
	cleaned := make([]string, 0, len(cities))
	for _, city := range cities {
		city = strings.TrimSpace(city)
		key := strings.ToLower(city)
		if city == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, city)
	}
	return cleaned
}
