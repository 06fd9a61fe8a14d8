// Package scene is the in-memory scene graph the builder and optimizer
// work on: named objects with local transforms, a parent chain, and typed
// components.
package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/mathutil"
)

// CloneSuffix is appended to the name of an instantiated copy.
const CloneSuffix = "(Clone)"

// Object is one node in the graph. The zero value is not usable; call New.
type Object struct {
	Name     string
	Position mathutil.Vec3 // local
	Rotation mgl64.Quat    // local
	Scale    mathutil.Vec3 // local

	parent     *Object
	children   []*Object
	components []Component
	destroyed  bool
}

// New returns a parentless object with an identity transform.
func New(name string) *Object {
	return &Object{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mathutil.Vec3{1, 1, 1},
	}
}

// NewChild creates an object under o with an identity local transform.
func (o *Object) NewChild(name string) *Object {
	c := New(name)
	c.SetParent(o, false)
	return c
}

// Parent returns the parent or nil for a root.
func (o *Object) Parent() *Object { return o.parent }

// Children returns a copy of the child list.
func (o *Object) Children() []*Object {
	return append([]*Object(nil), o.children...)
}

// ChildCount returns the number of direct children.
func (o *Object) ChildCount() int { return len(o.children) }

// Child returns the i-th child.
func (o *Object) Child(i int) *Object { return o.children[i] }

// Destroyed reports whether Destroy was called on o or an ancestor.
func (o *Object) Destroyed() bool { return o.destroyed }

// SetParent moves o under p (nil detaches it). With keepWorld the local
// transform is recomputed so the world transform is unchanged; otherwise
// the local values are kept as they are.
func (o *Object) SetParent(p *Object, keepWorld bool) {
	var world mgl64.Mat4
	var worldRot mgl64.Quat
	var worldScale mathutil.Vec3
	if keepWorld {
		world = o.WorldMatrix()
		worldRot = o.WorldRotation()
		worldScale = o.LossyScale()
	}
	if o.parent != nil {
		o.parent.removeChild(o)
	}
	o.parent = p
	if p != nil {
		p.children = append(p.children, o)
	}
	if !keepWorld {
		return
	}
	if p == nil {
		o.Position = mathutil.Translation(world)
		o.Rotation = worldRot
		o.Scale = worldScale
		return
	}
	o.Position = mathutil.MulPoint(p.WorldMatrix().Inv(), mathutil.Translation(world))
	o.Rotation = p.WorldRotation().Inverse().Mul(worldRot).Normalize()
	ps := p.LossyScale()
	o.Scale = mathutil.Vec3{safeDiv(worldScale[0], ps[0]), safeDiv(worldScale[1], ps[1]), safeDiv(worldScale[2], ps[2])}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return a / b
}

func (o *Object) removeChild(c *Object) {
	for i, ch := range o.children {
		if ch == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// Find looks up a descendant by a slash-separated path of direct child
// names, e.g. "nodes" or "menu/visuals".
func (o *Object) Find(path string) *Object {
	cur := o
	for _, name := range strings.Split(path, "/") {
		var next *Object
		for _, c := range cur.children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// FindDeep returns the first object named name in a depth-first pre-order
// walk starting at o itself.
func (o *Object) FindDeep(name string) *Object {
	var found *Object
	o.Walk(func(x *Object) bool {
		if x.Name == name {
			found = x
			return false
		}
		return true
	})
	return found
}

// Walk visits o and its descendants depth-first in child order until fn
// returns false.
func (o *Object) Walk(fn func(*Object) bool) bool {
	if !fn(o) {
		return false
	}
	for _, c := range o.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Path returns the slash-separated names from the root down to o.
func (o *Object) Path() string {
	if o.parent == nil {
		return o.Name
	}
	return o.parent.Path() + "/" + o.Name
}

// Destroy detaches o from its parent and marks the subtree destroyed.
func (o *Object) Destroy() {
	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}
	o.Walk(func(x *Object) bool {
		x.destroyed = true
		return true
	})
}

// DestroyChildren destroys every child of o.
func (o *Object) DestroyChildren() {
	for _, c := range o.Children() {
		c.Destroy()
	}
}

// Clone copies o, its components and its subtree. The copy has no parent.
func (o *Object) Clone() *Object {
	c := &Object{
		Name:     o.Name,
		Position: o.Position,
		Rotation: o.Rotation,
		Scale:    o.Scale,
	}
	for _, comp := range o.components {
		c.components = append(c.components, comp.Clone())
	}
	for _, ch := range o.children {
		cc := ch.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Instantiate clones src under parent, keeping src's world transform, and
// names the copy "<name>(Clone)".
func Instantiate(src, parent *Object) *Object {
	c := src.Clone()
	c.Name = src.Name + CloneSuffix
	c.Position = src.WorldPosition()
	c.Rotation = src.WorldRotation()
	c.Scale = src.LossyScale()
	if parent != nil {
		c.SetParent(parent, true)
	}
	return c
}
