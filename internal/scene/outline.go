package scene

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outline renders the subtree as an indented listing of names and
// component summaries. It contains no coordinates, so it is stable across
// platforms and suited to golden files.
func Outline(o *Object) string {
	var sb strings.Builder
	writeOutline(&sb, o, 0)
	return sb.String()
}

func writeOutline(sb *strings.Builder, o *Object, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(o.Name)
	if len(o.components) > 0 {
		parts := make([]string, len(o.components))
		for i, c := range o.components {
			parts[i] = describe(c)
		}
		sb.WriteString(" [")
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("]")
	}
	sb.WriteString("\n")
	for _, c := range o.children {
		writeOutline(sb, c, depth+1)
	}
}

func describe(c Component) string {
	switch v := c.(type) {
	case *Contact:
		return "Contact:" + v.Parameter
	case *TargetBone:
		return "TargetBone:" + v.Bone.String()
	case *ArmatureLink:
		return "ArmatureLink:" + v.Bone.String()
	case *Renderer:
		if v.Mesh == nil {
			return "Renderer"
		}
		return fmt.Sprintf("Renderer:%s/%d", v.Mesh.Name, len(v.Mesh.Parts))
	case *Toggle:
		return "Toggle:" + v.Parameter
	case *FullController:
		n := 0
		if v.Parameters != nil {
			n = len(v.Parameters.List)
		}
		return fmt.Sprintf("FullController:%d", n)
	default:
		return c.Kind()
	}
}

// Snapshot is a serializable copy of a subtree.
type Snapshot struct {
	Name       string              `json:"name"`
	Position   [3]float64          `json:"position"`
	Rotation   [4]float64          `json:"rotation"` // w, x, y, z
	Scale      [3]float64          `json:"scale"`
	Components []ComponentSnapshot `json:"components,omitempty"`
	Children   []Snapshot          `json:"children,omitempty"`
}

// ComponentSnapshot pairs a component kind with its JSON encoding.
type ComponentSnapshot struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// TakeSnapshot serializes the subtree rooted at o using local transforms.
func TakeSnapshot(o *Object) (Snapshot, error) {
	s := Snapshot{
		Name:     o.Name,
		Position: o.Position,
		Rotation: [4]float64{o.Rotation.W, o.Rotation.V[0], o.Rotation.V[1], o.Rotation.V[2]},
		Scale:    o.Scale,
	}
	for _, c := range o.components {
		data, err := json.Marshal(c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("scene: snapshot %s %s: %w", o.Path(), c.Kind(), err)
		}
		s.Components = append(s.Components, ComponentSnapshot{Kind: c.Kind(), Data: data})
	}
	for _, ch := range o.children {
		cs, err := TakeSnapshot(ch)
		if err != nil {
			return Snapshot{}, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// Count returns the number of objects in the snapshot tree.
func (s Snapshot) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}
