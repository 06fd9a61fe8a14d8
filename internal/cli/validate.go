package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"haptics-installer/internal/hapticmap"
)

// MapStatus is the validation outcome of one map file.
type MapStatus struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Name   string `json:"name,omitempty"`
	Nodes  int    `json:"nodes,omitempty"`
	Placed int    `json:"placed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool        `json:"valid"`
	Maps  []MapStatus `json:"maps"`
}

func (r ValidationResult) String() string {
	var sb strings.Builder
	for _, m := range r.Maps {
		if m.Valid {
			fmt.Fprintf(&sb, "✓ %s: %s, %d nodes (%d placed)\n", m.File, m.Name, m.Nodes, m.Placed)
		} else {
			fmt.Fprintf(&sb, "✗ %s: %s\n", m.File, m.Error)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <map.json>...",
		Short: "Check haptic map files against the map schema",
		Long: `Validate haptic map files without building anything.

Each file is checked against the map schema: at least one node, a map
name and author, positive radii and known humanoid bone names.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	v, err := hapticmap.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "load map schema", err)
	}

	res := ValidationResult{Valid: true}
	for _, f := range files {
		st := MapStatus{File: f}
		cfg, err := v.Load(f)
		if err != nil {
			st.Error = err.Error()
			res.Valid = false
		} else {
			st.Valid = true
			st.Name = cfg.PrefabName()
			st.Nodes = len(cfg.Nodes)
			st.Placed = cfg.PlacedNodes()
		}
		res.Maps = append(res.Maps, st)
	}

	if !res.Valid {
		if err := formatter.Error("invalid map files", res.Maps); err != nil {
			return err
		}
		if opts.Format != "json" {
			fmt.Fprintln(formatter.Writer, res)
		}
		return NewExitError(ExitFailure, "validation failed")
	}
	return formatter.Success(res)
}
