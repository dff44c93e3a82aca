package game

import (
	"fmt"
	"sort"
)

// Track describes the oval layout the renderer builds. Only the start line
// matters to the simulation; the rest is passed through to clients.
type Track struct {
	Name           string  `yaml:"name" json:"name"`
	StraightLength float64 `yaml:"straight_length" json:"straightLength"`
	Radius         float64 `yaml:"radius" json:"radius"`
	Width          float64 `yaml:"width" json:"width"`
	StartLine      Vec3    `yaml:"start_line" json:"startLine"`
}

var OvalTrack = Track{
	Name:           "oval",
	StraightLength: 80,
	Radius:         25,
	Width:          12,
	StartLine:      Vec3{X: 0, Y: GroundClearance, Z: 25},
}

// Variant is one flavour of the driving demo.
type Variant struct {
	Name        string
	Sensitivity Sensitivity
	Start       Pose
	Track       Track
}

var builtinVariants = map[string]Variant{
	"oval": {
		Name:        "oval",
		Sensitivity: DefaultSensitivity,
		Start:       Pose{Position: OvalTrack.StartLine},
		Track:       OvalTrack,
	},
	"practice": {
		Name:        "practice",
		Sensitivity: Sensitivity{Device: 1.0, Keyboard: 0.25, Default: 1.0},
		Start:       Pose{Position: Vec3{Y: GroundClearance}},
		Track:       OvalTrack,
	},
}

func Variants() map[string]Variant {
	out := make(map[string]Variant, len(builtinVariants))
	for k, v := range builtinVariants {
		out[k] = v
	}
	return out
}

func VariantNames(vs map[string]Variant) []string {
	names := make([]string, 0, len(vs))
	for k := range vs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func LookupVariant(name string) (Variant, error) {
	v, ok := builtinVariants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q", name)
	}
	return v, nil
}
