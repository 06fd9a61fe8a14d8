package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/batch"
	"haptics-installer/internal/build"
	"haptics-installer/internal/config"
	"haptics-installer/internal/diag"
	"haptics-installer/internal/fit"
	"haptics-installer/internal/hapticmap"
	"haptics-installer/internal/optimize"
	"haptics-installer/internal/raster"
	"haptics-installer/internal/scene"
	"haptics-installer/internal/skeleton"
	"haptics-installer/internal/store"
	"haptics-installer/internal/surface"
)

// BakeOptions holds flags for the bake command.
type BakeOptions struct {
	*RootOptions
	Rig      string
	Maps     []string
	Fit      bool
	Strict   bool
	HighPoly bool
	Assets   string
	Store    string
	Preview  string
	View     string
	Workers  int
}

// BakeSummary is the output of a bake.
type BakeSummary struct {
	Avatar        string                  `json:"avatar"`
	Prefabs       []string                `json:"prefabs"`
	Groups        []optimize.GroupSummary `json:"groups"`
	ParameterCost int                     `json:"parameter_cost"`
	Flagged       map[string][]string     `json:"flagged,omitempty"`
	Diagnostics   []diag.Entry            `json:"diagnostics,omitempty"`
	BakeID        string                  `json:"bake_id,omitempty"`
	Previews      []batch.Result          `json:"previews,omitempty"`
}

func (s BakeSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Avatar: %s (%d prefabs)\n", s.Avatar, len(s.Prefabs))
	for _, g := range s.Groups {
		fmt.Fprintf(&sb, "  %-16s %3d nodes  %5d tris\n", g.Bone, g.Nodes, g.Triangles)
	}
	fmt.Fprintf(&sb, "Parameter cost: %d bits\n", s.ParameterCost)
	for _, name := range slices.Sorted(maps.Keys(s.Flagged)) {
		fmt.Fprintf(&sb, "Flagged in %s: %s\n", name, strings.Join(s.Flagged[name], ", "))
	}
	if len(s.Diagnostics) > 0 {
		fmt.Fprintf(&sb, "Diagnostics (%d):\n", len(s.Diagnostics))
		for _, e := range s.Diagnostics {
			fmt.Fprintf(&sb, "  %s\n", e)
		}
	}
	if s.BakeID != "" {
		fmt.Fprintf(&sb, "Stored as %s\n", s.BakeID)
	}
	if len(s.Previews) > 0 {
		ok := 0
		for _, p := range s.Previews {
			if p.Success {
				ok++
			}
		}
		fmt.Fprintf(&sb, "Previews: %d/%d\n", ok, len(s.Previews))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// NewBakeCommand creates the bake command.
func NewBakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bake --rig <avatar.yaml> --map <map.json>...",
		Short: "Build, fit and optimize haptic maps on an avatar",
		Long: `Build one prefab per map on the avatar described by the rig file,
optionally snap every node onto the body surface, then merge all prefabs
into the Haptics-Integration object. The result can be stored in a bake
database and rendered to WebP previews.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBake(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rig, "rig", "", "avatar rig file (required)")
	cmd.Flags().StringArrayVar(&opts.Maps, "map", nil, "haptic map file (repeatable, required)")
	cmd.Flags().BoolVar(&opts.Fit, "fit", false, "snap nodes onto the body surface")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any node is flagged")
	cmd.Flags().BoolVar(&opts.HighPoly, "high-poly", false, "use the 80-triangle node visual")
	cmd.Flags().StringVar(&opts.Assets, "assets", "", "visual asset directory")
	cmd.Flags().StringVar(&opts.Store, "store", "", "bake database to save into")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "directory for WebP previews")
	cmd.Flags().StringVar(&opts.View, "view", "front", "preview view (front|side|top)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "preview workers (default: NumCPU)")
	cmd.MarkFlagRequired("rig")
	cmd.MarkFlagRequired("map")

	return cmd
}

func parseView(s string) (raster.View, error) {
	for _, v := range []raster.View{raster.Front, raster.Side, raster.Top} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

func runBake(ctx context.Context, opts *BakeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())

	view, err := parseView(opts.View)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad --view", err)
	}
	cfg, err := opts.appConfig(config.Flags{
		AssetDir:  opts.Assets,
		OutputDir: opts.Preview,
		StorePath: opts.Store,
		HighPoly:  opts.HighPoly,
		Workers:   opts.Workers,
	})
	if err != nil {
		return err
	}

	rig, err := skeleton.LoadRig(opts.Rig)
	if err != nil {
		return WrapExitError(ExitCommandError, "load rig", err)
	}
	avatar := skeleton.BuildArmature(rig)

	var lib asset.Library = asset.Builtin{}
	if cfg.AssetDir != "" {
		lib = asset.Chain{asset.NewDirLibrary(cfg.AssetDir), asset.Builtin{}}
	}

	validator, err := hapticmap.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "load map schema", err)
	}

	builder := build.New(lib, log)
	builder.LowPoly = cfg.LowPoly()
	findings := diag.NewReport(log)
	var prefabs []*scene.Object
	summary := BakeSummary{Avatar: avatar.Name}
	for _, path := range opts.Maps {
		m, err := validator.Load(path)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid map", err)
		}
		p, err := builder.BuildPrefab(avatar, m)
		if err != nil {
			return WrapExitError(ExitCommandError, "build "+path, err)
		}
		findings.Merge(p.Report)
		prefabs = append(prefabs, p.Root)
		summary.Prefabs = append(summary.Prefabs, p.Root.Name)
	}

	if opts.Fit {
		flagged, err := fitPrefabs(rig, avatar, prefabs, findings, log)
		if err != nil {
			return err
		}
		summary.Flagged = flagged
	}

	pipeline := optimize.New(lib, log)
	pipeline.LowPoly = cfg.LowPoly()
	pipeline.Inherit = findings
	pipeline.Flagged = summary.Flagged
	if cfg.StorePath != "" {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "open store", err)
		}
		defer st.Close()
		pipeline.Persister = st
	}

	res, err := pipeline.Run(ctx, avatar, prefabs)
	if err != nil {
		return WrapExitError(ExitCommandError, "optimize", err)
	}
	summary.Groups = res.Groups
	summary.ParameterCost = res.ParameterCost
	summary.Diagnostics = res.Report.Entries
	summary.BakeID = res.BakeID

	if opts.Preview != "" {
		results := batch.RenderPreviews(ctx, batch.Config{
			OutputDir:   cfg.OutputDir,
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			Workers:     cfg.Workers,
			View:        view,
			Log:         log,
		}, batch.JobsFromGraph(res.Root))
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return WrapExitError(ExitCommandError, "preview dir", err)
		}
		if err := batch.WriteManifest(filepath.Join(cfg.OutputDir, "manifest.json"), results); err != nil {
			return WrapExitError(ExitCommandError, "write manifest", err)
		}
		summary.Previews = results
	}

	if err := formatter.Success(summary); err != nil {
		return err
	}
	if opts.Strict && len(summary.Flagged) > 0 {
		return NewExitError(ExitFailure, "nodes could not be fitted")
	}
	return nil
}

// fitPrefabs snaps the nodes of every prefab onto the rig's body mesh and
// returns the names of the flagged nodes per prefab.
func fitPrefabs(rig *skeleton.Rig, avatar *scene.Object, prefabs []*scene.Object, findings *diag.Report, log *slog.Logger) (map[string][]string, error) {
	bodyPath := rig.BodyMeshPath()
	if bodyPath == "" {
		return nil, NewExitError(ExitCommandError, "rig has no body_mesh to fit against")
	}
	body, err := asset.LoadOBJ(bodyPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load body mesh", err)
	}

	fitter := &fit.Fitter{
		Surface: surface.NewCollider(body, avatar.WorldMatrix()),
		Frames:  skeleton.ResolveFrames(rig.Humanoid, avatar, log),
		Log:     log,
	}
	flagged := make(map[string][]string)
	for _, p := range prefabs {
		res, err := fitter.FitPrefab(p)
		if err != nil {
			findings.Warn(diag.InputDefect, p.Name, "not fitted: %v", err)
			continue
		}
		findings.Merge(res.Report)
		if len(res.FlaggedNames) > 0 {
			flagged[p.Name] = res.FlaggedNames
		}
	}
	return flagged, nil
}
