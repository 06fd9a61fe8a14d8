package optimize

import (
	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/build"
	"haptics-installer/internal/diag"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
	"haptics-installer/internal/scene"
)

// VisualsName is the child carrying a group's combined visual mesh.
const VisualsName = "visuals"

// VisualMeshName names the combined mesh of a group object.
func VisualMeshName(group string) string {
	return "VisMesh_" + group
}

// Consolidate merges one proxy per sensor child of group into a single
// mesh in group's local space and attaches it on a new "visuals" child
// with the reference material and the global show toggle. Children
// without a contact are reported and skipped. It returns nil when ref has
// no geometry or no child produced an instance.
func Consolidate(group *scene.Object, ref *asset.Visual, report *diag.Report) *scene.Object {
	if report == nil {
		report = diag.NewReport(nil)
	}
	if ref == nil || ref.Mesh == nil || ref.Mesh.TriangleCount() == 0 {
		report.Error(diag.AssetMissing, group.Path(), "reference visual has no geometry")
		return nil
	}
	toLocal := group.WorldToLocalMatrix()
	var instances []mesh.CombineInstance
	for _, child := range group.Children() {
		if child.Name == VisualsName {
			continue
		}
		c, ok := scene.Get[*scene.Contact](child)
		if !ok {
			report.Warn(diag.AssetMissing, child.Path(), "no contact, not drawn")
			continue
		}
		instances = append(instances, mesh.CombineInstance{
			Mesh:      ref.Mesh,
			Transform: toLocal.Mul4(proxyMatrix(child, c.Radius)),
		})
	}
	if len(instances) == 0 {
		return nil
	}

	combined := mesh.Combine(VisualMeshName(group.Name), instances)
	vis := group.NewChild(VisualsName)
	vis.AddComponent(&scene.Renderer{Mesh: combined, Material: ref.Material.Clone()})
	vis.AddComponent(build.VisualToggle(VisualsName))
	return vis
}

// proxyMatrix places a reference proxy at the sensor's world pose, sized to
// its contact radius.
func proxyMatrix(sensor *scene.Object, radius float64) mgl64.Mat4 {
	ls := sensor.LossyScale()
	s := max(ls[0], ls[1], ls[2]) * radius / build.ReferenceRadius
	return mathutil.TRS(sensor.WorldPosition(), sensor.WorldRotation(), mathutil.Vec3{s, s, s})
}
