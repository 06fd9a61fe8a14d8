// Package optimize merges the haptic prefabs installed on an avatar into
// one integration object: sensors regrouped per bone, one combined visual
// mesh per group and a single merged menu.
package optimize

import (
	"cogentcore.org/core/base/ordmap"

	"haptics-installer/internal/diag"
	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/scene"
)

// NodesName is the child holding sensor nodes, both in a prefab and in the
// integration object.
const NodesName = "nodes"

// DefaultBone receives nodes that carry no bone tag.
const DefaultBone = humanoid.Head

// Group is the set of sensor nodes attached to one bone.
type Group struct {
	Bone  humanoid.Bone
	Nodes []*scene.Object
}

// GroupNodes collects the sensor nodes of every container by their stored
// bone tag. Groups come back in the order their bone was first seen; nodes
// keep container order then child order, and a node reached twice is
// taken once. Containers without a nodes child are reported and returned
// by name.
//
// A container may be the output of an earlier pass: bone objects under its
// nodes child (an ArmatureLink, no TargetBone) are opened and their sensors
// grouped, skipping the combined visuals.
func GroupNodes(containers []*scene.Object, report *diag.Report) (groups []*Group, empty []string) {
	if report == nil {
		report = diag.NewReport(nil)
	}
	byBone := ordmap.New[humanoid.Bone, *Group]()
	seen := make(map[*scene.Object]bool)
	add := func(n *scene.Object, fallback humanoid.Bone, tagged bool) {
		if seen[n] {
			return
		}
		seen[n] = true
		bone := fallback
		if tag, ok := scene.Get[*scene.TargetBone](n); ok && tag.Bone.Valid() {
			bone = tag.Bone
		} else if !tagged {
			report.Error(diag.ResolutionFailure, n.Path(), "no target bone, grouped under %s", fallback)
		}
		g, ok := byBone.ValueByKeyTry(bone)
		if !ok {
			g = &Group{Bone: bone}
			byBone.Add(bone, g)
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, c := range containers {
		if c == nil {
			continue
		}
		nodes := c.Find(NodesName)
		if nodes == nil {
			report.Warn(diag.InputDefect, c.Name, "no %q child, container skipped", NodesName)
			empty = append(empty, c.Name)
			continue
		}
		for _, n := range nodes.Children() {
			if link, ok := boneGroup(n); ok {
				for _, s := range n.Children() {
					if s.Name == VisualsName {
						continue
					}
					add(s, link.Bone, true)
				}
				continue
			}
			add(n, DefaultBone, false)
		}
	}
	return byBone.Values(), empty
}

// boneGroup reports whether n is a bone object made by an earlier pass.
func boneGroup(n *scene.Object) (*scene.ArmatureLink, bool) {
	if _, ok := scene.Get[*scene.TargetBone](n); ok {
		return nil, false
	}
	link, ok := scene.Get[*scene.ArmatureLink](n)
	if !ok || !link.Bone.Valid() || n.ChildCount() == 0 {
		return nil, false
	}
	return link, true
}
