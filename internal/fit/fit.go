// Package fit snaps sensor nodes onto the body surface along the radial
// direction of the bone each node is bound to.
package fit

import (
	"errors"
	"log/slog"
	"sort"

	"haptics-installer/internal/diag"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/scene"
	"haptics-installer/internal/skeleton"
	"haptics-installer/internal/surface"
)

// AxisEpsilon is the radial distance below which a node counts as lying on
// its bone axis and is left alone.
const AxisEpsilon = 1e-6

// ErrNoNodes is returned by FitPrefab when the prefab has no "nodes" child.
var ErrNoNodes = errors.New("prefab has no nodes object")

// Raycaster queries the body surface. Implementations must not change the
// surface and must report back-face hits.
type Raycaster interface {
	Raycast(origin, dir mathutil.Vec3, maxDist float64) (surface.Hit, bool)
}

// Fitter moves nodes onto the surface. Only node world positions change.
type Fitter struct {
	Surface Raycaster
	Frames  skeleton.Frames
	Log     *slog.Logger
}

// Result summarizes one pass. Flagged and Skipped hold node indices in
// ascending order; FlaggedNames holds the names of the flagged nodes in
// the same order, which stay valid when map records were skipped at build.
type Result struct {
	Flagged      []int
	FlaggedNames []string
	Skipped      []int
	Moved        int
	Report       *diag.Report
}

// IsFlagged reports whether node i could not be fitted.
func (r Result) IsFlagged(i int) bool {
	n := sort.SearchInts(r.Flagged, i)
	return n < len(r.Flagged) && r.Flagged[n] == i
}

// Flags returns the flagged indices as an editable set.
func (r Result) Flags() *FlagSet {
	return NewFlagSet(r.Flagged...)
}

// FitPrefab fits the children of the prefab's "nodes" object.
func (f *Fitter) FitPrefab(prefab *scene.Object) (Result, error) {
	nodes := prefab.Find("nodes")
	if nodes == nil {
		return Result{Report: diag.NewReport(f.Log)}, ErrNoNodes
	}
	return f.Fit(nodes.Children()), nil
}

// Fit runs the surface fit on each node in order. Index i in the result
// refers to nodes[i].
func (f *Fitter) Fit(nodes []*scene.Object) Result {
	log := f.Log
	if log == nil {
		log = slog.Default()
	}
	res := Result{Report: diag.NewReport(log)}
	for i, node := range nodes {
		switch f.fitNode(node, res.Report) {
		case outcomeMoved:
			res.Moved++
		case outcomeFlagged:
			res.Flagged = append(res.Flagged, i)
			res.FlaggedNames = append(res.FlaggedNames, node.Name)
		case outcomeSkipped:
			res.Skipped = append(res.Skipped, i)
		}
	}
	log.Info("surface fit done", "nodes", len(nodes), "moved", res.Moved,
		"flagged", len(res.Flagged), "skipped", len(res.Skipped))
	return res
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeMoved
	outcomeFlagged
	outcomeSkipped
)

func (f *Fitter) fitNode(node *scene.Object, report *diag.Report) outcome {
	tag, ok := scene.Get[*scene.TargetBone](node)
	if !ok {
		report.Error(diag.ResolutionFailure, node.Name, "node has no target bone")
		return outcomeSkipped
	}
	frame, ok := f.Frames.Lookup(tag.Bone)
	if !ok {
		report.Error(diag.ResolutionFailure, node.Name, "bone %s is not resolved on this rig", tag.Bone)
		return outcomeSkipped
	}

	p := node.WorldPosition()
	boneToNode := p.Sub(frame.Position)
	closest := frame.Position.Add(frame.Up.Mul(boneToNode.Dot(frame.Up)))
	radial := closest.Sub(p)
	dist := radial.Len()
	if dist < AxisEpsilon {
		return outcomeUnchanged
	}
	dir := radial.Mul(1 / dist)

	// outside the surface: the surface lies between the node and the axis
	if hit, ok := f.Surface.Raycast(p, dir, dist); ok {
		node.SetWorldPosition(hit.Point)
		return outcomeMoved
	}
	// inside the surface
	if hit, ok := f.Surface.Raycast(p, dir.Mul(-1), 0); ok {
		node.SetWorldPosition(hit.Point)
		return outcomeMoved
	}
	report.Warn(diag.GeometricFailure, node.Name, "could not fit node to the surface")
	return outcomeFlagged
}
