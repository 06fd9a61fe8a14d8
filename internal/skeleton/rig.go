// Package skeleton loads avatar rigs, builds their armature in the scene
// graph and resolves humanoid bones to world-space frames.
package skeleton

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/scene"
)

// Joint is one armature transform in bind pose. Parent is the index of the
// parent joint, or -1 for a joint directly under the avatar root.
type Joint struct {
	Name     string     `yaml:"name"`
	Parent   int        `yaml:"parent"`
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"` // Euler degrees
}

// HumanBone maps a humanoid bone name ("Left Upper Arm") to the armature
// transform that plays it.
type HumanBone struct {
	HumanName string `yaml:"human"`
	BoneName  string `yaml:"bone"`
}

// Rig is an avatar description: armature, humanoid mapping and the body
// surface mesh used for fitting.
type Rig struct {
	Name     string      `yaml:"name"`
	BodyMesh string      `yaml:"body_mesh"`
	Joints   []Joint     `yaml:"joints"`
	Humanoid []HumanBone `yaml:"humanoid"`

	// Dir is the directory the rig was loaded from.
	Dir string `yaml:"-"`
}

// LoadRig reads a rig YAML file.
func LoadRig(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("skeleton: read %s: %w", path, err)
	}
	var rig Rig
	if err := yaml.Unmarshal(data, &rig); err != nil {
		return nil, fmt.Errorf("skeleton: parse %s: %w", path, err)
	}
	if rig.Name == "" {
		return nil, fmt.Errorf("skeleton: %s: rig has no name", path)
	}
	for i, j := range rig.Joints {
		if j.Parent >= i {
			return nil, fmt.Errorf("skeleton: %s: joint %d (%s) has parent %d, parents must come first", path, i, j.Name, j.Parent)
		}
	}
	rig.Dir = filepath.Dir(path)
	return &rig, nil
}

// BodyMeshPath resolves BodyMesh against the rig's directory.
func (r *Rig) BodyMeshPath() string {
	if r.BodyMesh == "" || filepath.IsAbs(r.BodyMesh) {
		return r.BodyMesh
	}
	return filepath.Join(r.Dir, r.BodyMesh)
}

func (j Joint) local() (mathutil.Vec3, mgl64.Quat) {
	pos := mathutil.Vec3{j.Position[0], j.Position[1], j.Position[2]}
	q := mathutil.EulerToQuat(j.Rotation[0], j.Rotation[1], j.Rotation[2])
	return pos, q
}

// BuildWorldMatrices computes the bind-pose world transform of every joint
// relative to the avatar root. Returns a slice indexed by joint index.
func BuildWorldMatrices(joints []Joint) []mgl64.Mat4 {
	worlds := make([]mgl64.Mat4, len(joints))
	for i, j := range joints {
		pos, q := j.local()
		local := mathutil.TRS(pos, q, mathutil.Vec3{1, 1, 1})

		// Chain with parent
		if j.Parent >= 0 && j.Parent < i {
			worlds[i] = worlds[j.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// BuildArmature creates the avatar root object with one child object per
// joint, nested by parent index.
func BuildArmature(rig *Rig) *scene.Object {
	root := scene.New(rig.Name)
	objs := make([]*scene.Object, len(rig.Joints))
	for i, j := range rig.Joints {
		parent := root
		if j.Parent >= 0 && j.Parent < i {
			parent = objs[j.Parent]
		}
		o := parent.NewChild(j.Name)
		o.Position, o.Rotation = j.local()
		objs[i] = o
	}
	return root
}
