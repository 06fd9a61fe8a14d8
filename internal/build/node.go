// Package build turns a haptic map into a prefab subtree on the avatar:
// one sensor node per placed record, a visual proxy per node and the
// prefab's own menu.
package build

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/diag"
	"haptics-installer/internal/hapticmap"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/scene"
)

// ReferenceRadius is the radius the visual proxies are authored at.
const ReferenceRadius = asset.ReferenceRadius

// IndividualNodesMenuPath is where per-node toggles land in the menu. The
// host menu cannot hide entries, so they are parked in a folder.
const IndividualNodesMenuPath = "Haptics/Ignore Me/Individual Nodes"

// Builder creates prefabs. LowPoly picks the 20-triangle proxy over the
// 80-triangle one.
type Builder struct {
	Assets  asset.Library
	LowPoly bool
	Log     *slog.Logger
}

// New returns a builder using lib (the built-in visuals when nil) and the
// low-poly proxy.
func New(lib asset.Library, log *slog.Logger) *Builder {
	if lib == nil {
		lib = asset.Builtin{}
	}
	return &Builder{Assets: lib, LowPoly: true, Log: log}
}

func (b *Builder) logger() *slog.Logger {
	if b.Log == nil {
		return slog.Default()
	}
	return b.Log
}

// LocalParameterName strips hapticmap.AddressPrefix from address. When the
// prefix is missing the address is returned unchanged with ok false.
func LocalParameterName(address string) (name string, ok bool) {
	if !strings.HasPrefix(address, hapticmap.AddressPrefix) {
		return address, false
	}
	return address[len(hapticmap.AddressPrefix):], true
}

// NodeName is the object name of the index-th node of a map.
func NodeName(index int, mapName string) string {
	return fmt.Sprintf("%d_%s", index, mapName)
}

// VisualToggle is the saved global-show toggle attached to every visual.
func VisualToggle(name string) *scene.Toggle {
	return &scene.Toggle{
		Name:      name,
		MenuPath:  IndividualNodesMenuPath,
		Parameter: menu.GlobalShowParam,
		Global:    true,
		Saved:     true,
	}
}

// BuildNode creates the sensor node for def under parent. An address
// without the parameter prefix is reported and used as is. When the visual
// proxy cannot be loaded the node is removed again and the error returned.
// report may be nil.
func (b *Builder) BuildNode(def hapticmap.Node, index int, mapName string, parent *scene.Object, report *diag.Report) (*scene.Object, error) {
	if report == nil {
		report = diag.NewReport(b.Log)
	}
	name := NodeName(index, mapName)
	param, ok := LocalParameterName(def.Address)
	if !ok {
		report.Error(diag.InputDefect, name, "address %q does not start with %s", def.Address, hapticmap.AddressPrefix)
	}

	node := scene.New(name)
	node.SetParent(parent, false)
	node.Position = def.Position()
	node.AddComponent(&scene.ArmatureLink{Bone: def.TargetBone})
	node.AddComponent(&scene.TargetBone{Bone: def.TargetBone})
	node.AddComponent(&scene.Contact{
		Radius:        def.Radius,
		CollisionTags: append([]string(nil), scene.DefaultCollisionTags...),
		AllowSelf:     false,
		AllowOthers:   true,
		LocalOnly:     true,
		Receiver:      scene.ReceiverProximity,
		Parameter:     param,
	})

	if _, err := b.attachVisual(node, def.Radius); err != nil {
		node.Destroy()
		report.Error(diag.AssetMissing, name, "visualizer not created: %v", err)
		return nil, err
	}
	return node, nil
}

// attachVisual loads the proxy and parents a scaled instance under node.
func (b *Builder) attachVisual(node *scene.Object, radius float64) (*scene.Object, error) {
	if b.Assets == nil {
		return nil, errors.New("build: no asset library")
	}
	p := asset.VisualPath(b.LowPoly)
	v, err := b.Assets.LoadVisual(p)
	if err != nil {
		return nil, fmt.Errorf("build: load visual %s: %w", p, err)
	}
	vis := v.Instantiate(path.Base(p), node)
	s := radius / ReferenceRadius
	vis.Scale = vis.Scale.Mul(s)
	vis.AddComponent(VisualToggle(vis.Name))
	return vis, nil
}
