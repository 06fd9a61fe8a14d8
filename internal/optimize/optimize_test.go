package optimize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/build"
	"haptics-installer/internal/diag"
	"haptics-installer/internal/hapticmap"
	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/scene"
)

func mapConfig(name, author string, version int, bones ...humanoid.Bone) *hapticmap.Config {
	cfg := &hapticmap.Config{Meta: hapticmap.Meta{MapName: name, MapAuthor: author, MapVersion: version}}
	for i, b := range bones {
		cfg.Nodes = append(cfg.Nodes, hapticmap.Node{
			NodeData:   hapticmap.NodeData{X: 0.05 * float64(i), Y: 0.1, Z: 0.02},
			Address:    fmt.Sprintf("%s%s/%d", hapticmap.AddressPrefix, name, i),
			Radius:     0.05,
			TargetBone: b,
		})
	}
	return cfg
}

// installTwo builds a five-node vest (Head, Head, Chest, Head, Chest) and a
// one-node cap (Head) on avatar.
func installTwo(t *testing.T, avatar *scene.Object) []*scene.Object {
	t.Helper()
	b := build.New(nil, nil)
	vest, err := b.BuildPrefab(avatar, mapConfig("vest", "alice", 1,
		humanoid.Head, humanoid.Head, humanoid.Chest, humanoid.Head, humanoid.Chest))
	require.NoError(t, err)
	hat, err := b.BuildPrefab(avatar, mapConfig("cap", "bob", 3, humanoid.Head))
	require.NoError(t, err)
	return []*scene.Object{vest.Root, hat.Root}
}

func TestRunGroupsByBone(t *testing.T) {
	avatar := scene.New("Avatar")
	prefabs := installTwo(t, avatar)

	res, err := New(nil, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, GroupSummary{Bone: humanoid.Head, Nodes: 4, Triangles: 80, Parts: 4}, res.Groups[0])
	assert.Equal(t, GroupSummary{Bone: humanoid.Chest, Nodes: 2, Triangles: 40, Parts: 2}, res.Groups[1])
	assert.Empty(t, res.EmptyContainers)
	assert.False(t, res.Report.HasErrors(), res.Report.String())

	head := res.Root.Find("nodes/Head")
	require.NotNil(t, head)
	var names []string
	for _, c := range head.Children() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"0_vest", "1_vest", "3_vest", "0_cap", VisualsName}, names)
}

func TestRunGolden(t *testing.T) {
	avatar := scene.New("Avatar")
	prefabs := installTwo(t, avatar)

	res, err := New(nil, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "integration_outline", []byte(scene.Outline(res.Root)))
}

func TestRunKeepsWorldPositions(t *testing.T) {
	avatar := scene.New("Avatar")
	avatar.Position = mathutil.Vec3{1, 0, -2}
	avatar.Rotation = mgl64.QuatRotate(0.7, mathutil.Vec3{0, 1, 0})
	prefabs := installTwo(t, avatar)

	res, err := New(nil, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)

	for _, orig := range prefabs[0].Find("nodes").Children() {
		tag, _ := scene.Get[*scene.TargetBone](orig)
		got := res.Root.Find("nodes/" + tag.Bone.String() + "/" + orig.Name)
		require.NotNil(t, got, orig.Name)
		assert.True(t, got.WorldPosition().ApproxEqualThreshold(orig.WorldPosition(), 1e-9), orig.Name)

		c, ok := scene.Get[*scene.Contact](got)
		require.True(t, ok)
		oc, _ := scene.Get[*scene.Contact](orig)
		assert.Equal(t, oc.Parameter, c.Parameter)
		assert.NotSame(t, oc, c)
	}
}

func TestRunMeshIndependentOfAvatarPlacement(t *testing.T) {
	meshOf := func(avatar *scene.Object) []mathutil.Vec3 {
		res, err := New(nil, nil).Run(context.Background(), avatar, installTwo(t, avatar))
		require.NoError(t, err)
		r, ok := scene.Get[*scene.Renderer](res.Root.Find("nodes/Chest/visuals"))
		require.True(t, ok)
		return r.Mesh.Vertices
	}

	still := scene.New("A")
	moved := scene.New("B")
	moved.Position = mathutil.Vec3{3, -1, 7}
	moved.Rotation = mgl64.QuatRotate(1.2, mathutil.Vec3{1, 1, 0}.Normalize())

	a, b := meshOf(still), meshOf(moved)
	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, a[i].ApproxEqualThreshold(b[i], 1e-9), "vertex %d", i)
	}
}

func TestRunMergesMenus(t *testing.T) {
	avatar := scene.New("Avatar")
	prefabs := installTwo(t, avatar)

	res, err := New(nil, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)

	obj := res.Root.Find(MenuName)
	require.NotNil(t, obj)
	fc, ok := scene.Get[*scene.FullController](obj)
	require.True(t, ok)
	assert.Equal(t, GlobalParams, fc.GlobalParams)
	assert.Equal(t, []string{
		menu.GlobalIntensityParam,
		menu.GlobalShowParam,
		"haptic/prefabs/alice/vest/v1",
		"haptic/prefabs/bob/cap/v3",
	}, fc.Parameters.Names())
	assert.Equal(t, 1+1+8+8, res.ParameterCost)

	main := fc.Menu.Main()
	require.NotNil(t, main)
	assert.Equal(t, []string{"Show Nodes", "Intensity", "vest V1", "cap V3"}, main.ControlNames())
	assert.Same(t, fc.Parameters, main.Parameters)

	md, ok := scene.Get[*scene.MenuData](obj)
	require.True(t, ok)
	assert.Same(t, fc.Menu, md.Menu)
}

func TestRunAgainOnOutput(t *testing.T) {
	avatar := scene.New("Avatar")
	avatar.Position = mathutil.Vec3{0.5, 0, 1}
	b := build.New(nil, nil)
	vest, err := b.BuildPrefab(avatar, mapConfig("vest", "alice", 1, humanoid.Head, humanoid.Head, humanoid.Chest))
	require.NoError(t, err)
	p := New(nil, nil)
	first, err := p.Run(context.Background(), avatar, []*scene.Object{vest.Root})
	require.NoError(t, err)

	hat, err := b.BuildPrefab(avatar, mapConfig("cap", "bob", 3, humanoid.Head))
	require.NoError(t, err)
	second, err := p.Run(context.Background(), avatar, []*scene.Object{first.Root, hat.Root})
	require.NoError(t, err)

	require.Len(t, second.Groups, 2)
	assert.Equal(t, GroupSummary{Bone: humanoid.Head, Nodes: 3, Triangles: 60, Parts: 3}, second.Groups[0])
	assert.Equal(t, GroupSummary{Bone: humanoid.Chest, Nodes: 1, Triangles: 20, Parts: 1}, second.Groups[1])
	assert.Zero(t, second.Report.Count(diag.ResolutionFailure), second.Report.String())
	assert.Zero(t, second.Report.Count(diag.AssetMissing), second.Report.String())

	assert.Equal(t, []string{"0_vest", "1_vest", "0_cap", VisualsName},
		objectNames(second.Root.Find("nodes/Head").Children()))
	for _, orig := range vest.Nodes {
		tag, _ := scene.Get[*scene.TargetBone](orig)
		got := second.Root.Find("nodes/" + tag.Bone.String() + "/" + orig.Name)
		require.NotNil(t, got, orig.Name)
		assert.True(t, got.WorldPosition().ApproxEqualThreshold(orig.WorldPosition(), 1e-9), orig.Name)
	}

	fc, ok := scene.Get[*scene.FullController](second.Root.Find(MenuName))
	require.True(t, ok)
	assert.Equal(t, []string{"Show Nodes", "Intensity", "vest V1", "cap V3"}, fc.Menu.Main().ControlNames())
	assert.Equal(t, 1+1+8+8, second.ParameterCost)
}

func TestRunStripsClonesAndLeavesSources(t *testing.T) {
	avatar := scene.New("Avatar")
	prefabs := installTwo(t, avatar)

	res, err := New(nil, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)

	clone := res.Root.Child(0)
	assert.Equal(t, "Haptic-Prefab_vest_alice", clone.Name)
	assert.Zero(t, clone.ChildCount())

	assert.Equal(t, 5, prefabs[0].Find("nodes").ChildCount())
	assert.NotNil(t, prefabs[0].Find("menu"))
}

func TestRunRejectsConcurrentPass(t *testing.T) {
	p := New(nil, nil)
	p.mu.Lock()
	_, err := p.Run(context.Background(), scene.New("A"), nil)
	assert.ErrorIs(t, err, ErrPassInProgress)
	p.mu.Unlock()

	_, err = p.Run(context.Background(), nil, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPassInProgress)
}

type recordingPersister struct {
	bakes []Bake
	err   error
}

func (p *recordingPersister) SaveBake(_ context.Context, b Bake) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.bakes = append(p.bakes, b)
	return fmt.Sprintf("bake-%d", len(p.bakes)), nil
}

func TestRunPersists(t *testing.T) {
	avatar := scene.New("Avatar")
	rec := &recordingPersister{}
	p := New(nil, nil)
	p.Persister = rec
	p.Flagged = map[string][]string{"Haptic-Prefab_vest_alice": {"4_vest"}}

	res, err := p.Run(context.Background(), avatar, installTwo(t, avatar))
	require.NoError(t, err)
	assert.Equal(t, "bake-1", res.BakeID)
	require.Len(t, rec.bakes, 1)
	assert.Equal(t, "Avatar", rec.bakes[0].Name)
	assert.Equal(t, p.Flagged, rec.bakes[0].Flagged)
	assert.Same(t, res.Root, rec.bakes[0].Root)

	rec.err = errors.New("disk full")
	res, err = p.Run(context.Background(), avatar, nil)
	assert.ErrorContains(t, err, "disk full")
	require.NotNil(t, res)
	assert.Empty(t, res.BakeID)
}

type brokenLibrary struct{}

func (brokenLibrary) LoadVisual(string) (*asset.Visual, error) {
	return nil, asset.ErrNotFound
}

func TestRunWithoutReferenceVisual(t *testing.T) {
	avatar := scene.New("Avatar")
	prefabs := installTwo(t, avatar)

	res, err := New(brokenLibrary{}, nil).Run(context.Background(), avatar, prefabs)
	require.NoError(t, err)
	assert.Len(t, res.Groups, 2)
	assert.Equal(t, 4, res.Groups[0].Nodes)
	assert.Zero(t, res.Groups[0].Parts)
	assert.Nil(t, res.Root.Find("nodes/Head/visuals"))
	assert.Positive(t, res.Report.Count(diag.AssetMissing))
}

func TestGroupNodes(t *testing.T) {
	a := scene.New("a")
	an := a.NewChild(NodesName)
	an.NewChild("a0").AddComponent(&scene.TargetBone{Bone: humanoid.LeftHand})
	an.NewChild("untagged")
	an.NewChild("a2").AddComponent(&scene.TargetBone{Bone: humanoid.Head})
	b := scene.New("b")
	b.NewChild(NodesName).NewChild("b0").AddComponent(&scene.TargetBone{Bone: humanoid.LeftHand})
	bare := scene.New("bare")

	report := diag.NewReport(nil)
	groups, empty := GroupNodes([]*scene.Object{a, bare, nil, b}, report)

	require.Len(t, groups, 2)
	assert.Equal(t, humanoid.LeftHand, groups[0].Bone)
	assert.Equal(t, []string{"a0", "b0"}, objectNames(groups[0].Nodes))
	assert.Equal(t, humanoid.Head, groups[1].Bone)
	assert.Equal(t, []string{"untagged", "a2"}, objectNames(groups[1].Nodes))
	assert.Equal(t, []string{"bare"}, empty)
	assert.Equal(t, 1, report.Count(diag.ResolutionFailure))
	assert.Equal(t, 1, report.Count(diag.InputDefect))
}

func TestGroupNodesUnion(t *testing.T) {
	var containers []*scene.Object
	total := 0
	for i, n := range []int{3, 0, 2} {
		c := scene.New(fmt.Sprintf("c%d", i))
		nodes := c.NewChild(NodesName)
		for j := 0; j < n; j++ {
			nodes.NewChild(fmt.Sprintf("n%d", j)).AddComponent(&scene.TargetBone{Bone: humanoid.Bone(j)})
			total++
		}
		containers = append(containers, c)
	}

	groups, empty := GroupNodes(containers, nil)
	assert.Empty(t, empty)
	got := 0
	for _, g := range groups {
		got += len(g.Nodes)
	}
	assert.Equal(t, total, got)
}

func TestGroupNodesSkipsRepeats(t *testing.T) {
	vest := scene.New("vest")
	nodes := vest.NewChild(NodesName)
	nodes.NewChild("0_vest").AddComponent(&scene.TargetBone{Bone: humanoid.Head})
	nodes.NewChild("1_vest").AddComponent(&scene.TargetBone{Bone: humanoid.Head})

	groups, _ := GroupNodes([]*scene.Object{vest, vest}, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"0_vest", "1_vest"}, objectNames(groups[0].Nodes))
}

func TestGroupNodesOpensBoneGroups(t *testing.T) {
	out := scene.New(IntegrationName)
	nodes := out.NewChild(NodesName)
	chest := nodes.NewChild("Chest")
	chest.AddComponent(&scene.ArmatureLink{Bone: humanoid.Chest})
	chest.NewChild("2_vest").AddComponent(&scene.TargetBone{Bone: humanoid.Chest})
	chest.NewChild("4_vest")
	chest.NewChild(VisualsName).AddComponent(&scene.Renderer{})
	nodes.NewChild("loose").AddComponent(&scene.TargetBone{Bone: humanoid.Head})

	report := diag.NewReport(nil)
	groups, _ := GroupNodes([]*scene.Object{out}, report)
	require.Len(t, groups, 2)
	assert.Equal(t, humanoid.Chest, groups[0].Bone)
	assert.Equal(t, []string{"2_vest", "4_vest"}, objectNames(groups[0].Nodes))
	assert.Equal(t, []string{"loose"}, objectNames(groups[1].Nodes))
	assert.Zero(t, report.Len())
}

func objectNames(objs []*scene.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name
	}
	return out
}

func TestConsolidate(t *testing.T) {
	ref, err := asset.Builtin{}.LoadVisual(asset.LowPolyVisual)
	require.NoError(t, err)

	group := scene.New("Spine")
	group.Position = mathutil.Vec3{0, 1, 0}
	s0 := group.NewChild("s0")
	s0.Position = mathutil.Vec3{0.2, 0, 0}
	s0.AddComponent(&scene.Contact{Radius: build.ReferenceRadius * 2})
	s1 := group.NewChild("s1")
	s1.Scale = mathutil.Vec3{3, 3, 3}
	s1.AddComponent(&scene.Contact{Radius: build.ReferenceRadius})
	group.NewChild("bare")

	report := diag.NewReport(nil)
	vis := Consolidate(group, ref, report)
	require.NotNil(t, vis)
	assert.Equal(t, VisualsName, vis.Name)
	assert.Equal(t, 1, report.Count(diag.AssetMissing))

	r, ok := scene.Get[*scene.Renderer](vis)
	require.True(t, ok)
	assert.Equal(t, "VisMesh_Spine", r.Mesh.Name)
	require.Len(t, r.Mesh.Parts, 2)
	assert.Equal(t, 40, r.Mesh.TriangleCount())
	assert.Equal(t, ref.Material.Name, r.Material.Name)
	tg, ok := scene.Get[*scene.Toggle](vis)
	require.True(t, ok)
	assert.Equal(t, menu.GlobalShowParam, tg.Parameter)

	// Part vertices sit on spheres of the scaled radius around each sensor,
	// expressed in the group's local space.
	for _, v := range r.Mesh.PartVertices(0) {
		assert.InDelta(t, 2*build.ReferenceRadius, v.Sub(mathutil.Vec3{0.2, 0, 0}).Len(), 1e-9)
	}
	for _, v := range r.Mesh.PartVertices(1) {
		assert.InDelta(t, 3*build.ReferenceRadius, v.Len(), 1e-9)
	}
}

func TestConsolidateWithoutGeometry(t *testing.T) {
	group := scene.New("Head")
	group.NewChild("s").AddComponent(&scene.Contact{Radius: 0.1})

	report := diag.NewReport(nil)
	assert.Nil(t, Consolidate(group, nil, report))
	assert.Nil(t, Consolidate(group, &asset.Visual{}, report))
	assert.Equal(t, 2, report.Count(diag.AssetMissing))
	assert.Equal(t, 1, group.ChildCount())
}
