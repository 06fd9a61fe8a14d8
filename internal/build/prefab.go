package build

import (
	"errors"
	"fmt"

	"haptics-installer/internal/diag"
	"haptics-installer/internal/hapticmap"
	"haptics-installer/internal/menu"
	"haptics-installer/internal/scene"
)

// Prefab is the result of building one map.
type Prefab struct {
	Root *scene.Object
	// Nodes are the built sensor nodes in build order.
	Nodes []*scene.Object
	// Failed lists map indices whose node could not be built.
	Failed []int
	// Skipped lists map indices of external-address records.
	Skipped   []int
	AssetPath string
	Report    *diag.Report
}

// BuildPrefab creates "Haptic-Prefab_<name>_<author>" under parent with a
// "menu" child carrying the prefab menu and a "nodes" child holding one
// sensor per non-external record. Node failures are reported and do not
// stop the build.
func (b *Builder) BuildPrefab(parent *scene.Object, cfg *hapticmap.Config) (*Prefab, error) {
	if cfg == nil {
		return nil, errors.New("build: nil config")
	}
	log := b.logger()
	report := diag.NewReport(log)
	if cfg.Meta.MapName == "" || cfg.Meta.MapAuthor == "" {
		report.Error(diag.InputDefect, cfg.Source, "map name and author are required")
	}
	if len(cfg.Nodes) == 0 {
		report.Error(diag.InputDefect, cfg.Source, "map has no nodes")
	}

	root := scene.New(cfg.PrefabName())
	if parent != nil {
		root.SetParent(parent, false)
	}
	menuObj := root.NewChild("menu")
	nodesObj := root.NewChild("nodes")

	out := &Prefab{Root: root, AssetPath: cfg.PrefabPath(), Report: report}
	for i, def := range cfg.Nodes {
		if def.IsExternalAddress {
			log.Info("skipping node with external address", "index", i, "address", def.Address)
			out.Skipped = append(out.Skipped, i)
			continue
		}
		n, err := b.BuildNode(def, i, cfg.Meta.MapName, nodesObj, report)
		if err != nil {
			out.Failed = append(out.Failed, i)
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}

	rootMenu, params := BuildMenu(cfg)
	menuObj.AddComponent(&scene.FullController{
		Parameters:   params,
		GlobalParams: []string{menu.GlobalIntensityParam, menu.GlobalShowParam},
		Menu:         rootMenu,
	})
	menuObj.AddComponent(&scene.MenuData{Menu: rootMenu})

	log.Info("built prefab", "prefab", root.Name, "nodes", len(out.Nodes),
		"failed", len(out.Failed), "external", len(out.Skipped), "asset", out.AssetPath)
	return out, nil
}

// BuildMenu copies the menu templates for one map, adds the map's identity
// parameter and a "<name> V<version>" button to the main page.
func BuildMenu(cfg *hapticmap.Config) (*menu.Menu, *menu.Parameters) {
	root, main, params := menu.Templates()
	params.Name = fmt.Sprintf("Parameters_%s", cfg.Meta.MapName)
	params.Add(menu.IdentityParam(cfg.Meta.MapAuthor, cfg.Meta.MapName, cfg.Meta.MapVersion))
	main.Controls = append(main.Controls, &menu.Control{
		Name:  fmt.Sprintf("%s V%d", cfg.Meta.MapName, cfg.Meta.MapVersion),
		Type:  menu.Button,
		Value: 1,
	})
	return root, params
}
