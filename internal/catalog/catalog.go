// Package catalog loads the reference exercise library that example workouts
// are built from.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

//go:embed exercises.yaml
var defaultCatalog []byte

// Entry is one exercise of a catalog file.
type Entry struct {
	Name            string  `yaml:"name"`
	Instructions    string  `yaml:"instructions"`
	Type            string  `yaml:"type"`
	Muscle          string  `yaml:"muscle"`
	Equipment       string  `yaml:"equipment"`
	EquipmentNeeded bool    `yaml:"equipment_needed"`
	Difficulty      string  `yaml:"difficulty"`
	Time            *int    `yaml:"time"`
	Image           *string `yaml:"image"`
}

type file struct {
	Exercises []Entry `yaml:"exercises"`
}

// Parse decodes a catalog document. Unknown fields are rejected.
func Parse(r io.Reader) ([]Entry, error) {
	var f file
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, e := range f.Exercises {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Muscle) == "" {
			return nil, fmt.Errorf("catalog entry %d: name and muscle are required", i)
		}
	}
	return f.Exercises, nil
}

// Load reads a catalog file; an empty path selects the built-in catalog.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultCatalog))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Seed upserts entries into repo and returns how many were written.
func Seed(ctx context.Context, repo repository.CatalogRepository, entries []Entry) (int, error) {
	for i, e := range entries {
		exercise := e.Exercise()
		if err := repo.Upsert(ctx, &exercise); err != nil {
			return i, fmt.Errorf("seed %q: %w", e.Name, err)
		}
	}
	return len(entries), nil
}

// Exercise converts the entry into a catalog exercise. Muscles are stored
// lower-case so lookups match regardless of how the file spells them.
func (e Entry) Exercise() domain.Exercise {
	return domain.Exercise{
		Name:            strings.TrimSpace(e.Name),
		Instructions:    e.Instructions,
		Type:            e.Type,
		Muscle:          strings.ToLower(strings.TrimSpace(e.Muscle)),
		Equipment:       e.Equipment,
		EquipmentNeeded: e.EquipmentNeeded,
		Difficulty:      e.Difficulty,
		Time:            e.Time,
		Image:           e.Image,
	}
}
