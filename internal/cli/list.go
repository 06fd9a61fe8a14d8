package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"haptics-installer/internal/config"
	"haptics-installer/internal/store"
)

// BakeList is the output of the list command.
type BakeList struct {
	Bakes []store.Summary `json:"bakes"`
}

func (l BakeList) String() string {
	if len(l.Bakes) == 0 {
		return "No bakes stored."
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAVATAR\tCREATED\tGROUPS\tCOST")
	for _, b := range l.Bakes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.Name, b.CreatedAt.Format(time.DateTime), len(b.Groups), b.ParameterCost)
	}
	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var storePath string
	cmd := &cobra.Command{
		Use:           "list --store <bakes.db>",
		Short:         "List stored bakes, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.appConfig(config.Flags{StorePath: storePath})
			if err != nil {
				return err
			}
			if cfg.StorePath == "" {
				return NewExitError(ExitCommandError, "no bake database: use --store or store_path in the config")
			}
			st, err := store.Open(cfg.StorePath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer st.Close()

			bakes, err := st.ListBakes(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "list bakes", err)
			}
			return rootOpts.formatter(cmd).Success(BakeList{Bakes: bakes})
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "bake database")
	return cmd
}
