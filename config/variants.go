package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"drivesim/game"
)

// variantFile is the on-disk shape:
//
//	variants:
//	  - name: night
//	    sensitivity: {device: 1.2, keyboard: 0.4}
//	    start: {x: 0, z: -25, heading: 3.14159}
type variantFile struct {
	Variants []variantEntry `yaml:"variants"`
}

type variantEntry struct {
	Name        string       `yaml:"name"`
	Sensitivity *sensitivity `yaml:"sensitivity"`
	Start       startPose    `yaml:"start"`
	Track       *game.Track  `yaml:"track"`
}

type sensitivity struct {
	Device   *float64 `yaml:"device"`
	Keyboard *float64 `yaml:"keyboard"`
	Default  *float64 `yaml:"default"`
}

type startPose struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
	Heading float64 `yaml:"heading"`
}

// LoadVariants reads extra variants from path and merges them over the
// built-ins. Entries may override a built-in by name.
func LoadVariants(path string) (map[string]game.Variant, error) {
	out := game.Variants()
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variants: %w", err)
	}
	var f variantFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse variants %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Variants))
	for i, e := range f.Variants {
		if e.Name == "" {
			return nil, fmt.Errorf("variants %s: entry %d has no name", path, i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("variants %s: duplicate name %q", path, e.Name)
		}
		seen[e.Name] = true
		out[e.Name] = e.variant()
	}
	return out, nil
}

func (e variantEntry) variant() game.Variant {
	sens := game.DefaultSensitivity
	if s := e.Sensitivity; s != nil {
		if s.Device != nil {
			sens.Device = *s.Device
		}
		if s.Keyboard != nil {
			sens.Keyboard = *s.Keyboard
		}
		if s.Default != nil {
			sens.Default = *s.Default
		}
	}
	track := game.OvalTrack
	if e.Track != nil {
		track = *e.Track
	}
	return game.Variant{
		Name:        e.Name,
		Sensitivity: sens,
		Start: game.Pose{
			Position: game.Vec3{X: e.Start.X, Y: e.Start.Y, Z: e.Start.Z},
			Heading:  e.Start.Heading,
		},
		Track: track,
	}
}
