// Package asset loads the visual proxies drawn at each sensor node: the
// built-in icospheres and user-supplied OBJ meshes with an optional
// texture.
package asset

import (
	"errors"
	"fmt"
	"image/color"

	"haptics-installer/internal/mesh"
	"haptics-installer/internal/scene"
)

// ReferenceRadius is the sensor radius the visual proxies are authored
// at. A proxy for a node of radius r is scaled by r / ReferenceRadius.
const ReferenceRadius = 0.0375

// Visual paths of the two built-in proxies.
const (
	LowPolyVisual  = "Visualizers/default_icosphere_20tri"
	HighPolyVisual = "Visualizers/default_icosphere_80tri"
)

// ErrNotFound is returned when no library has the requested visual.
var ErrNotFound = errors.New("visual not found")

// Visual is a loaded proxy: geometry plus material.
type Visual struct {
	Path     string
	Mesh     *mesh.Mesh
	Material *mesh.Material
}

// Instantiate creates an object named after the visual under parent, with
// a renderer sharing the visual's mesh.
func (v *Visual) Instantiate(name string, parent *scene.Object) *scene.Object {
	obj := scene.New(name)
	obj.AddComponent(&scene.Renderer{Mesh: v.Mesh, Material: v.Material.Clone()})
	if parent != nil {
		obj.SetParent(parent, false)
	}
	return obj
}

// Library resolves a visual path to a loaded visual.
type Library interface {
	LoadVisual(path string) (*Visual, error)
}

// VisualPath picks the built-in proxy for the requested detail level.
func VisualPath(lowPoly bool) string {
	if lowPoly {
		return LowPolyVisual
	}
	return HighPolyVisual
}

// DefaultMaterial is the translucent tint used by the built-in proxies.
func DefaultMaterial() *mesh.Material {
	return &mesh.Material{Name: "haptic_visualizer", Color: color.NRGBA{R: 64, G: 200, B: 255, A: 160}}
}

// Builtin serves the two icosphere proxies.
type Builtin struct{}

func (Builtin) LoadVisual(path string) (*Visual, error) {
	var sub int
	switch path {
	case LowPolyVisual:
		sub = 0
	case HighPolyVisual:
		sub = 1
	default:
		return nil, fmt.Errorf("asset: builtin %s: %w", path, ErrNotFound)
	}
	return &Visual{Path: path, Mesh: mesh.Icosphere(sub, ReferenceRadius), Material: DefaultMaterial()}, nil
}

// Chain tries each library in order and returns the first hit. Errors
// other than ErrNotFound stop the search.
type Chain []Library

func (c Chain) LoadVisual(path string) (*Visual, error) {
	for _, lib := range c {
		v, err := lib.LoadVisual(path)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("asset: %s: %w", path, ErrNotFound)
}
