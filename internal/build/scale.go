package build

import (
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/scene"
)

// Node scale limits offered for fine tuning.
const (
	MinNodeScale = 0.1
	MaxNodeScale = 2.5
)

// ClampScale limits s to [MinNodeScale, MaxNodeScale].
func ClampScale(s float64) float64 {
	return min(max(s, MinNodeScale), MaxNodeScale)
}

// ScaleNode sets a uniform local scale on node, clamped, and returns the
// scale applied.
func ScaleNode(node *scene.Object, s float64) float64 {
	s = ClampScale(s)
	node.Scale = mathutil.Vec3{s, s, s}
	return s
}

// ScaleNodes applies ScaleNode to every child of the prefab's "nodes"
// object. Returns the scale applied and the number of nodes touched.
func ScaleNodes(prefab *scene.Object, s float64) (float64, int) {
	s = ClampScale(s)
	nodes := prefab.Find("nodes")
	if nodes == nil {
		return s, 0
	}
	for _, n := range nodes.Children() {
		ScaleNode(n, s)
	}
	return s, nodes.ChildCount()
}
