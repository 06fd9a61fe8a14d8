package batch

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
	"haptics-installer/internal/raster"
	"haptics-installer/internal/scene"
)

// StoredColor is used for meshes read back from the store, which keeps
// geometry but not materials.
var StoredColor = color.NRGBA{R: 64, G: 200, B: 255, A: 255}

// OverviewJob is the name of the job drawing every group together.
const OverviewJob = "all"

// JobsFromGraph makes one job per object in root's subtree that carries a
// renderer, named after the object's parent (the bone group for combined
// visuals), followed by an overview job with all of them.
func JobsFromGraph(root *scene.Object) []Job {
	var jobs []Job
	var all []raster.Item
	root.Walk(func(o *scene.Object) bool {
		r, ok := scene.Get[*scene.Renderer](o)
		if !ok || r.Mesh == nil {
			return true
		}
		it := raster.Item{Mesh: r.Mesh, Transform: o.WorldMatrix()}
		if r.Material != nil {
			it.Color = r.Material.Color
		}
		it.Color.A = 255
		name := o.Name
		if p := o.Parent(); p != nil {
			name = p.Name
		}
		jobs = append(jobs, Job{Name: name, Items: []raster.Item{it}})
		all = append(all, it)
		return true
	})
	if len(all) > 0 {
		jobs = append(jobs, Job{Name: OverviewJob, Items: all})
	}
	return jobs
}

// JobsFromSnapshot rebuilds preview jobs for a stored bake. meshes is keyed
// by object path; each is placed by the world matrix accumulated down snap.
// Paths missing from snap are skipped. Jobs follow snapshot order.
func JobsFromSnapshot(snap scene.Snapshot, meshes map[string]*mesh.Mesh) []Job {
	var jobs []Job
	var all []raster.Item
	var walk func(s scene.Snapshot, parentPath, parentName string, parent mgl64.Mat4)
	walk = func(s scene.Snapshot, parentPath, parentName string, parent mgl64.Mat4) {
		path := s.Name
		if parentPath != "" {
			path = parentPath + "/" + s.Name
		}
		rot := mgl64.Quat{W: s.Rotation[0], V: mgl64.Vec3{s.Rotation[1], s.Rotation[2], s.Rotation[3]}}
		world := parent.Mul4(mathutil.TRS(s.Position, rot, s.Scale))
		if m, ok := meshes[path]; ok && m != nil {
			it := raster.Item{Mesh: m, Transform: world, Color: StoredColor}
			name := parentName
			if name == "" {
				name = s.Name
			}
			jobs = append(jobs, Job{Name: name, Items: []raster.Item{it}})
			all = append(all, it)
		}
		for _, c := range s.Children {
			walk(c, path, s.Name, world)
		}
	}
	walk(snap, "", "", mgl64.Ident4())
	if len(all) > 0 {
		jobs = append(jobs, Job{Name: OverviewJob, Items: all})
	}
	return jobs
}
