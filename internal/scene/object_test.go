package scene

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/mesh"
)

func vecNear(t *testing.T, want, got mathutil.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9), "want %v got %v", want, got)
}

func TestWorldTransformChain(t *testing.T) {
	root := New("root")
	root.Position = mathutil.Vec3{1, 0, 0}
	root.Rotation = mgl64.QuatRotate(mgl64.DegToRad(90), mathutil.Vec3{0, 1, 0})
	root.Scale = mathutil.Vec3{2, 2, 2}

	child := root.NewChild("child")
	child.Position = mathutil.Vec3{0, 0, 1}

	// +Z rotated 90° about Y is +X, scaled by 2, offset by root.
	vecNear(t, mathutil.Vec3{3, 0, 0}, child.WorldPosition())
	vecNear(t, mathutil.Vec3{2, 2, 2}, child.LossyScale())
	vecNear(t, mathutil.Vec3{0, 1, 0}, child.Up())

	child.SetWorldPosition(mathutil.Vec3{1, 4, 0})
	vecNear(t, mathutil.Vec3{1, 4, 0}, child.WorldPosition())
	vecNear(t, mathutil.Vec3{0, 2, 0}, child.Position)
}

func TestSetParentKeepWorld(t *testing.T) {
	a := New("a")
	a.Position = mathutil.Vec3{5, 0, 0}
	b := New("b")
	b.Position = mathutil.Vec3{0, 3, 0}
	b.Rotation = mgl64.QuatRotate(mgl64.DegToRad(45), mathutil.Vec3{0, 0, 1})

	b.SetParent(a, true)
	vecNear(t, mathutil.Vec3{0, 3, 0}, b.WorldPosition())
	vecNear(t, mathutil.Vec3{-5, 3, 0}, b.Position)
	assert.True(t, b.WorldRotation().ApproxEqualThreshold(mgl64.QuatRotate(mgl64.DegToRad(45), mathutil.Vec3{0, 0, 1}), 1e-9))

	c := New("c")
	c.Position = mathutil.Vec3{1, 1, 1}
	c.SetParent(a, false)
	vecNear(t, mathutil.Vec3{6, 1, 1}, c.WorldPosition())

	c.SetParent(nil, true)
	assert.Nil(t, c.Parent())
	vecNear(t, mathutil.Vec3{6, 1, 1}, c.Position)
	assert.Equal(t, 1, a.ChildCount())
}

func TestFind(t *testing.T) {
	root := New("prefab")
	nodes := root.NewChild("nodes")
	n0 := nodes.NewChild("0_vest")
	root.NewChild("menu")

	assert.Same(t, nodes, root.Find("nodes"))
	assert.Same(t, n0, root.Find("nodes/0_vest"))
	assert.Nil(t, root.Find("0_vest"))
	assert.Same(t, n0, root.FindDeep("0_vest"))
	assert.Same(t, root, root.FindDeep("prefab"))
	assert.Nil(t, root.FindDeep("missing"))
	assert.Equal(t, "prefab/nodes/0_vest", n0.Path())
}

func TestDestroy(t *testing.T) {
	root := New("root")
	a := root.NewChild("a")
	a1 := a.NewChild("a1")
	root.NewChild("b")

	a.Destroy()
	assert.True(t, a.Destroyed())
	assert.True(t, a1.Destroyed())
	assert.Equal(t, 1, root.ChildCount())

	root.DestroyChildren()
	assert.Zero(t, root.ChildCount())
	assert.False(t, root.Destroyed())
}

func TestCloneAndInstantiate(t *testing.T) {
	src := New("Haptic-Prefab_vest_alice")
	src.Position = mathutil.Vec3{0, 1, 0}
	node := src.NewChild("nodes").NewChild("0_vest")
	node.AddComponent(&Contact{Radius: 0.05, CollisionTags: []string{"Hand"}, Parameter: "vest/0"})
	node.AddComponent(&TargetBone{Bone: humanoid.Chest})

	parent := New("Haptics-Integration")
	parent.Position = mathutil.Vec3{0, 0, 2}
	clone := Instantiate(src, parent)

	assert.Equal(t, "Haptic-Prefab_vest_alice(Clone)", clone.Name)
	assert.Same(t, parent, clone.Parent())
	vecNear(t, src.WorldPosition(), clone.WorldPosition())

	cn := clone.Find("nodes/0_vest")
	require.NotNil(t, cn)
	contact, ok := Get[*Contact](cn)
	require.True(t, ok)
	contact.Radius = 1
	contact.CollisionTags[0] = "Foot"

	orig, _ := Get[*Contact](node)
	assert.Equal(t, 0.05, orig.Radius)
	assert.Equal(t, "Hand", orig.CollisionTags[0])

	bone, ok := Get[*TargetBone](cn)
	require.True(t, ok)
	assert.Equal(t, humanoid.Chest, bone.Bone)
}

func TestComponents(t *testing.T) {
	o := New("o")
	o.AddComponent(&Toggle{Name: "a"})
	o.AddComponent(&Toggle{Name: "b"})
	o.AddComponent(&ArmatureLink{Bone: humanoid.Head})
	require.Len(t, o.Components(), 2)

	tg, ok := Get[*Toggle](o)
	require.True(t, ok)
	assert.Equal(t, "b", tg.Name)

	assert.True(t, o.RemoveComponent("Toggle"))
	assert.False(t, o.RemoveComponent("Toggle"))
	_, ok = Get[*Toggle](o)
	assert.False(t, ok)
}

func TestMenuDataCloneRebindsParameters(t *testing.T) {
	root, main, params := menu.Templates()
	md := &MenuData{Menu: root}
	c := md.Clone().(*MenuData)

	require.NotSame(t, params, c.Menu.Parameters)
	assert.Same(t, c.Menu.Parameters, c.Menu.Main().Parameters)
	c.Menu.Parameters.Add(menu.Parameter{Name: "extra"})
	assert.Len(t, params.List, 2)
	assert.Same(t, params, main.Parameters)
}

func TestOutlineAndSnapshot(t *testing.T) {
	root := New("root")
	n := root.NewChild("nodes").NewChild("Head")
	n.AddComponent(&ArmatureLink{Bone: humanoid.Head})
	v := n.NewChild("visuals")
	v.AddComponent(&Renderer{Mesh: mesh.Icosphere(0, 1), Material: &mesh.Material{Name: "vis"}})

	want := "root\n" +
		"  nodes\n" +
		"    Head [ArmatureLink:Head]\n" +
		"      visuals [Renderer:Icosphere_20/1]\n"
	assert.Equal(t, want, Outline(root))

	snap, err := TakeSnapshot(root)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count())

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"triangles":20`)
	assert.Contains(t, string(data), `"bone":"Head"`)
}
