package scene

import (
	"encoding/json"

	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/mesh"
)

// ReceiverType selects when a contact receiver reports.
type ReceiverType string

const (
	ReceiverProximity ReceiverType = "proximity"
	ReceiverConstant  ReceiverType = "constant"
	ReceiverOnEnter   ReceiverType = "on_enter"
)

// DefaultCollisionTags are the colliders a haptic contact reacts to.
var DefaultCollisionTags = []string{"Head", "Hand", "Foot", "Torso", "HapticCollider", "Finger"}

// Contact is a proximity sensor writing to a local parameter.
type Contact struct {
	Radius        float64      `json:"radius"`
	CollisionTags []string     `json:"collision_tags"`
	AllowSelf     bool         `json:"allow_self"`
	AllowOthers   bool         `json:"allow_others"`
	LocalOnly     bool         `json:"local_only"`
	Receiver      ReceiverType `json:"receiver"`
	Parameter     string       `json:"parameter"`
}

func (*Contact) Kind() string { return "Contact" }

func (c *Contact) Clone() Component {
	out := *c
	out.CollisionTags = append([]string(nil), c.CollisionTags...)
	return &out
}

// TargetBone records the humanoid bone a node was authored against.
type TargetBone struct {
	Bone humanoid.Bone `json:"bone"`
}

func (*TargetBone) Kind() string { return "TargetBone" }

func (t *TargetBone) Clone() Component {
	out := *t
	return &out
}

// ArmatureLink asks the avatar build to reparent the object onto a bone.
type ArmatureLink struct {
	Bone humanoid.Bone `json:"bone"`
}

func (*ArmatureLink) Kind() string { return "ArmatureLink" }

func (a *ArmatureLink) Clone() Component {
	out := *a
	return &out
}

// Renderer draws a mesh with a material. Clones share the mesh, matching
// how instances reference one mesh asset.
type Renderer struct {
	Mesh     *mesh.Mesh
	Material *mesh.Material
}

func (*Renderer) Kind() string { return "Renderer" }

func (r *Renderer) Clone() Component {
	return &Renderer{Mesh: r.Mesh, Material: r.Material.Clone()}
}

// MarshalJSON writes the mesh summary rather than its buffers.
func (r *Renderer) MarshalJSON() ([]byte, error) {
	type summary struct {
		Mesh      string `json:"mesh,omitempty"`
		Triangles int    `json:"triangles"`
		Parts     int    `json:"parts"`
		Material  string `json:"material,omitempty"`
	}
	var s summary
	if r.Mesh != nil {
		s.Mesh = r.Mesh.Name
		s.Triangles = r.Mesh.TriangleCount()
		s.Parts = len(r.Mesh.Parts)
	}
	if r.Material != nil {
		s.Material = r.Material.Name
	}
	return json.Marshal(s)
}

// Toggle is a menu toggle that enables the object while its parameter is
// on.
type Toggle struct {
	Name      string `json:"name"`
	MenuPath  string `json:"menu_path"`
	Parameter string `json:"parameter"`
	Global    bool   `json:"global"`
	Saved     bool   `json:"saved"`
}

func (*Toggle) Kind() string { return "Toggle" }

func (t *Toggle) Clone() Component {
	out := *t
	return &out
}

// FullController installs parameters, global parameters and a menu on the
// avatar.
type FullController struct {
	Parameters   *menu.Parameters `json:"parameters"`
	GlobalParams []string         `json:"global_params"`
	Menu         *menu.Menu       `json:"menu"`
}

func (*FullController) Kind() string { return "FullController" }

func (f *FullController) Clone() Component {
	out := &FullController{
		Parameters:   f.Parameters.Clone(),
		GlobalParams: append([]string(nil), f.GlobalParams...),
		Menu:         f.Menu.Clone(),
	}
	rebind(out.Menu, f.Parameters, out.Parameters)
	return out
}

// MenuData keeps the root menu of a prefab readable for a later merge.
// The root menu carries its parameter list.
type MenuData struct {
	Menu *menu.Menu `json:"menu"`
}

func (*MenuData) Kind() string { return "MenuData" }

func (m *MenuData) Clone() Component {
	out := &MenuData{Menu: m.Menu.Clone()}
	if out.Menu != nil {
		out.Menu.Parameters = m.Menu.Parameters.Clone()
		rebind(out.Menu, m.Menu.Parameters, out.Menu.Parameters)
	}
	return out
}

// rebind points every menu in the tree that used from at to.
func rebind(m *menu.Menu, from, to *menu.Parameters) {
	if m == nil {
		return
	}
	if m.Parameters == from {
		m.Parameters = to
	}
	for _, c := range m.Controls {
		rebind(c.SubMenu, from, to)
	}
}
