package optimize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/diag"
	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/scene"
)

// Names of the objects a pass creates.
const (
	IntegrationName = "Haptics-Integration"
	MenuName        = "menu"
	ParametersName  = "Parameters_Integration"
)

// ErrPassInProgress is returned when Run is called while another pass on
// the same pipeline has not finished.
var ErrPassInProgress = errors.New("optimize: pass already in progress")

// GlobalParams are the parameters shared by every installed map.
var GlobalParams = []string{menu.GlobalIntensityParam, menu.GlobalShowParam}

// Bake is what a pass hands to a Persister.
type Bake struct {
	Name          string
	Root          *scene.Object
	Groups        []GroupSummary
	ParameterCost int
	Report        *diag.Report
	// Flagged maps prefab names to the nodes the fitter could not place.
	Flagged map[string][]string
}

// Persister stores a finished pass and returns its id.
type Persister interface {
	SaveBake(ctx context.Context, b Bake) (string, error)
}

// GroupSummary describes one bone group of the output.
type GroupSummary struct {
	Bone      humanoid.Bone `json:"bone"`
	Nodes     int           `json:"nodes"`
	Triangles int           `json:"triangles"`
	Parts     int           `json:"parts"`
}

// Result is the outcome of one pass.
type Result struct {
	Root            *scene.Object
	Groups          []GroupSummary
	ParameterCost   int
	EmptyContainers []string
	BakeID          string
	Report          *diag.Report
}

// Pipeline runs optimization passes. Only one pass runs at a time.
type Pipeline struct {
	Assets    asset.Library
	LowPoly   bool
	Persister Persister
	Log       *slog.Logger
	// Inherit holds findings of earlier stages (build, fit). They are
	// copied into the report of every pass.
	Inherit *diag.Report
	// Flagged is passed on to the Persister with every bake.
	Flagged map[string][]string

	mu sync.Mutex
}

// New returns a pipeline drawing the low-poly proxy from lib (the
// built-in visuals when nil).
func New(lib asset.Library, log *slog.Logger) *Pipeline {
	if lib == nil {
		lib = asset.Builtin{}
	}
	return &Pipeline{Assets: lib, LowPoly: true, Log: log}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

// run holds the state of one pass.
type run struct {
	log    *slog.Logger
	report *diag.Report
	root   *scene.Object
	clones []*scene.Object
	ref    *asset.Visual
}

// Run merges prefabs into a new integration object under avatar. The
// prefabs themselves are left untouched; their clones are emptied and kept
// as markers. Data problems end up in the result's report. The returned
// error is non-nil only for a nil avatar, a concurrent pass or a failed
// save, in the last case together with the result.
func (p *Pipeline) Run(ctx context.Context, avatar *scene.Object, prefabs []*scene.Object) (*Result, error) {
	if !p.mu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer p.mu.Unlock()
	if avatar == nil {
		return nil, errors.New("optimize: nil avatar root")
	}

	log := p.logger()
	r := &run{log: log, report: diag.NewReport(log)}
	if p.Inherit != nil {
		r.report.Entries = append(r.report.Entries, p.Inherit.Entries...)
	}
	r.root = avatar.NewChild(IntegrationName)
	for _, pf := range prefabs {
		if pf == nil {
			continue
		}
		r.clones = append(r.clones, scene.Instantiate(pf, r.root))
	}
	log.Info("optimizing prefabs", "avatar", avatar.Name, "prefabs", len(r.clones))

	res := &Result{Root: r.root, Report: r.report}

	ref, err := p.Assets.LoadVisual(asset.VisualPath(p.LowPoly))
	if err != nil {
		r.report.Error(diag.AssetMissing, asset.VisualPath(p.LowPoly), "reference visual: %v", err)
	}
	r.ref = ref

	nodes := r.root.NewChild(NodesName)
	groups, empty := GroupNodes(r.clones, r.report)
	res.EmptyContainers = empty
	for _, g := range groups {
		res.Groups = append(res.Groups, r.buildGroup(nodes, g))
	}

	res.ParameterCost = r.mergeMenus()
	r.stripClones()

	log.Info("optimized", "groups", len(res.Groups), "parameter_cost", res.ParameterCost,
		"diagnostics", r.report.Len())

	if p.Persister != nil {
		id, err := p.Persister.SaveBake(ctx, Bake{
			Name:          avatar.Name,
			Root:          r.root,
			Groups:        res.Groups,
			ParameterCost: res.ParameterCost,
			Report:        r.report,
			Flagged:       p.Flagged,
		})
		if err != nil {
			return res, fmt.Errorf("optimize: save %s: %w", avatar.Name, err)
		}
		res.BakeID = id
		log.Info("saved bake", "id", id)
	}
	return res, nil
}

// buildGroup recreates the group's sensors under a bone object at their
// original world pose and consolidates their visuals.
func (r *run) buildGroup(parent *scene.Object, g *Group) GroupSummary {
	gobj := parent.NewChild(g.Bone.String())
	gobj.AddComponent(&scene.ArmatureLink{Bone: g.Bone})

	sum := GroupSummary{Bone: g.Bone}
	for _, n := range g.Nodes {
		contact, ok := scene.Get[*scene.Contact](n)
		if !ok {
			r.report.Warn(diag.AssetMissing, n.Path(), "no contact, node dropped")
			continue
		}
		sensor := scene.New(n.Name)
		sensor.Position = n.WorldPosition()
		sensor.Rotation = n.WorldRotation()
		sensor.Scale = n.LossyScale()
		sensor.SetParent(gobj, true)
		sensor.AddComponent(contact.Clone())
		if tag, ok := scene.Get[*scene.TargetBone](n); ok {
			sensor.AddComponent(tag.Clone())
		} else {
			r.report.Warn(diag.AssetMissing, n.Path(), "no target bone tag, using %s", g.Bone)
			sensor.AddComponent(&scene.TargetBone{Bone: g.Bone})
		}
		sum.Nodes++
	}

	if vis := Consolidate(gobj, r.ref, r.report); vis != nil {
		if rd, ok := scene.Get[*scene.Renderer](vis); ok && rd.Mesh != nil {
			sum.Triangles = rd.Mesh.TriangleCount()
			sum.Parts = len(rd.Mesh.Parts)
		}
	}
	r.log.Debug("group built", "bone", g.Bone, "nodes", sum.Nodes, "parts", sum.Parts)
	return sum
}

// mergeMenus builds the integration menu from the templates and the menu
// data of every clone. It returns the merged parameter cost.
func (r *run) mergeMenus() int {
	root, main, params := menu.Templates()
	params.Name = ParametersName

	var srcParams []*menu.Parameters
	var srcMenus []*menu.Menu
	for _, c := range r.clones {
		obj := c.Find(MenuName)
		if obj == nil {
			r.report.Warn(diag.InputDefect, c.Name, "no %q child", MenuName)
			continue
		}
		md, ok := scene.Get[*scene.MenuData](obj)
		if !ok || md.Menu == nil {
			r.report.Warn(diag.InputDefect, obj.Path(), "no menu data")
			continue
		}
		srcParams = append(srcParams, md.Menu.Parameters)
		if m := md.Menu.Main(); m != nil {
			srcMenus = append(srcMenus, m)
		} else {
			r.report.Warn(diag.InputDefect, obj.Path(), "root menu has no main page")
		}
	}

	cost := menu.MergeParameters(srcParams, params)
	added := menu.MergeMenus(srcMenus, main)
	bindParameters(root, params)

	obj := r.root.NewChild(MenuName)
	obj.AddComponent(&scene.FullController{
		Parameters:   params,
		GlobalParams: append([]string(nil), GlobalParams...),
		Menu:         root,
	})
	obj.AddComponent(&scene.MenuData{Menu: root})
	r.log.Debug("menus merged", "parameters", len(params.List), "controls_added", added, "cost", cost)
	return cost
}

// bindParameters points every menu of the tree at params.
func bindParameters(m *menu.Menu, params *menu.Parameters) {
	if m == nil {
		return
	}
	m.Parameters = params
	for _, c := range m.Controls {
		bindParameters(c.SubMenu, params)
	}
}

func (r *run) stripClones() {
	for _, c := range r.clones {
		c.Name = strings.TrimSuffix(c.Name, scene.CloneSuffix)
		c.DestroyChildren()
	}
}
